package http

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// requestValidator checks requests against the embedded OpenAPI document
// before they reach a handler. Paths the document does not describe, such as
// /metrics and /swagger, pass through untouched.
func (s *Server) requestValidator() (func(http.Handler) http.Handler, error) {
	swagger, err := GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("loading openapi document: %w", err)
	}
	// Match on the request path alone.
	swagger.Servers = nil

	router, err := legacy.NewRouter(swagger)
	if err != nil {
		return nil, fmt.Errorf("building openapi router: %w", err)
	}
	opts := &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, params, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: params,
				Route:      route,
				Options:    opts,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				s.logger.Warn("request rejected by schema", "method", r.Method, "path", r.URL.Path, "error", err)
				s.writeJSON(w, http.StatusBadRequest, Error{Error: "invalid request: " + err.Error()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}
