package swagger

import _ "embed"

// OpenAPI is the OpenAPI 3 document of the read API, kept next to the
// handlers it describes.
//
//go:embed openapi.yaml
var OpenAPI []byte
