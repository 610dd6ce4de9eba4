package source

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/okian/trainlog/internal/domain/model"
)

// ReadJSON reads either an array of row objects or an object with a
// "rows" array. Numbers are kept as json.Number.
func ReadJSON(r io.Reader, name string) (model.Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Source{}, err
	}

	var rows []model.RawRow
	if err := decodeJSON(data, &rows); err != nil {
		var wrapped struct {
			Name string         `json:"name"`
			Rows []model.RawRow `json:"rows"`
		}
		if err2 := decodeJSON(data, &wrapped); err2 != nil {
			return model.Source{}, err
		}
		if wrapped.Name != "" {
			name = wrapped.Name
		}
		rows = wrapped.Rows
	}
	return model.Source{Name: name, Rows: rows}, nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
