package httpadapter

import (
	_ "embed"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

//go:embed openapi.yaml
var openapiSpec []byte

func mustLoadSpecRouter() routers.Router {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		panic("load openapi spec: " + err.Error())
	}
	if err := doc.Validate(loader.Context); err != nil {
		panic("validate openapi spec: " + err.Error())
	}
	specRouter, err := gorillamux.NewRouter(doc)
	if err != nil {
		panic("build openapi router: " + err.Error())
	}
	return specRouter
}

// requestValidationMiddleware rejects requests that do not conform to the
// published contract before they reach a handler. Multipart bodies are
// exempt from body validation so uploads stream through untouched.
func requestValidationMiddleware(next http.Handler) http.Handler {
	specRouter := mustLoadSpecRouter()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := specRouter.FindRoute(r)
		if err != nil {
			// Unknown paths fall through to the mux's own 404/405.
			next.ServeHTTP(w, r)
			return
		}

		options := &openapi3filter.Options{}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			options.ExcludeRequestBody = true
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options:    options,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			slog.Warn("request_validation_failed", "path", r.URL.Path, "error", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request does not match api contract"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
