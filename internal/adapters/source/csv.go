package source

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/okian/trainlog/internal/domain/model"
)

// ReadCSV reads a header row followed by data rows. Blank cells are
// omitted from the row map; short rows are accepted.
func ReadCSV(r io.Reader, name string) (model.Source, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return model.Source{Name: name}, nil
	}
	if err != nil {
		return model.Source{}, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	src := model.Source{Name: name}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Source{}, err
		}
		row := make(model.RawRow, len(header))
		for i, v := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if v = strings.TrimSpace(v); v != "" {
				row[header[i]] = v
			}
		}
		src.Rows = append(src.Rows, row)
	}
	return src, nil
}
