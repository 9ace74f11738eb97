// Package docs serves the embedded OpenAPI description of the JSON API.
package docs

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.yaml
var openapi []byte

func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(openapi)
	})
}
