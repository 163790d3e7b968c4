package handler

import (
	_ "embed"
	"net/http"
)

// OpenAPISpec is the OpenAPI 3 description of the public routes.
//
//go:embed openapi.yaml
var OpenAPISpec []byte

// OpenAPI serves the embedded API description.
// GET /openapi.yaml
func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(OpenAPISpec)
}
