package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/pixelpilot/internal/logging"
	presentation "github.com/aretw0/pixelpilot/internal/presentation/graph"
	"github.com/aretw0/pixelpilot/internal/runtime"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/graph"
	"github.com/aretw0/pixelpilot/pkg/ports"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:generate go tool oapi-codegen -package http -generate types,chi-server,spec -o api.gen.go ../../../api/openapi.yaml

// Engine is the control surface the HTTP server drives.
// *pixelpilot.Engine satisfies it.
type Engine interface {
	Start(ctx context.Context) error
	Stop() error
	Step(ctx context.Context) (runtime.TickReport, error)
	Status() runtime.Status
	Mutate(op graph.Op) (string, error)
	Document(name string) *schema.Document
	Rules() []domain.RuleSpec
	AddRuleSpec(spec domain.RuleSpec) (string, error)
	RemoveRule(id string) error
	State() ports.StateStore
}

// Server implements the generated ServerInterface over an Engine.
type Server struct {
	Engine  Engine
	Streams *Broadcaster
	Version string

	logger   *slog.Logger
	gatherer prometheus.Gatherer
	runCtx   context.Context
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves /metrics from the given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithBroadcaster streams engine events on /events. The broadcaster must also
// be registered as the engine's event sink.
func WithBroadcaster(b *Broadcaster) Option {
	return func(s *Server) {
		s.Streams = b
	}
}

// WithVersion is reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// WithRunContext bounds engines started through POST /engine/start.
// Defaults to context.Background, since a request context ends with the request.
func WithRunContext(ctx context.Context) Option {
	return func(s *Server) {
		s.runCtx = ctx
	}
}

// NewServer wires a Server with its defaults.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		Engine:  engine,
		Version: "dev",
		logger:  logging.NewNop(),
		runCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewBroadcaster()
	}
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Routes()
}

// Routes mounts the generated routes plus the document, Swagger UI and
// metrics endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	validate, err := s.requestValidator()
	if err != nil {
		s.logger.Error("request validation disabled", "error", err)
	} else {
		r.Use(validate)
	}

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		doc, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load OpenAPI document", http.StatusInternalServerError)
			s.logger.Error("Failed to load OpenAPI document", "error", err)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(doc)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(HandlerFromMux(s, r))
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>PixelPilot API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Health{Status: "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	s.writeJSON(w, http.StatusOK, Info{
		App:             "pixelpilot-http",
		Version:         strings.TrimSpace(s.Version),
		ApiVersion:      apiVersion,
		DocumentVersion: schema.DocumentVersion,
	})
}

// GetStatus handles the GET /engine/status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, mapStatusFromDomain(s.Engine.Status()))
}

// PostStart handles the POST /engine/start request.
func (s *Server) PostStart(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Start(s.runCtx); err != nil {
		s.writeError(w, "start", err)
		return
	}
	s.writeJSON(w, http.StatusOK, mapStatusFromDomain(s.Engine.Status()))
}

// PostStop handles the POST /engine/stop request.
func (s *Server) PostStop(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Stop(); err != nil {
		s.writeError(w, "stop", err)
		return
	}
	s.writeJSON(w, http.StatusOK, mapStatusFromDomain(s.Engine.Status()))
}

// PostStep handles the POST /engine/step request.
func (s *Server) PostStep(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Engine.Step(r.Context())
	if err != nil {
		s.writeError(w, "step", err)
		return
	}
	s.writeJSON(w, http.StatusOK, mapTickFromDomain(rep))
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request, params GetGraphParams) {
	name := ""
	if params.Name != nil {
		name = *params.Name
	}
	s.writeJSON(w, http.StatusOK, s.Engine.Document(name))
}

// GetMermaid handles the GET /graph/mermaid request.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(presentation.GenerateMermaid(s.Engine.Document(""), nil)))
}

// PostNode handles the POST /graph/nodes request.
func (s *Server) PostNode(w http.ResponseWriter, r *http.Request) {
	var body PostNodeJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	id, err := s.Engine.Mutate(graph.AddNode(mapNodeToDomain(body)))
	if err != nil {
		s.writeError(w, "add_node", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, Created{Id: id})
}

// DeleteNode handles the DELETE /graph/nodes/{id} request.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := s.Engine.Mutate(graph.RemoveNode(id)); err != nil {
		s.writeError(w, "remove_node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostLink handles the POST /graph/links request.
func (s *Server) PostLink(w http.ResponseWriter, r *http.Request) {
	var body PostLinkJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	link := domain.Link{FromNode: body.FromNode, FromPort: body.FromPort, ToNode: body.ToNode, ToPort: body.ToPort}
	if _, err := s.Engine.Mutate(graph.AddLink(link)); err != nil {
		s.writeError(w, "add_link", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, body)
}

// DeleteLink handles the DELETE /graph/links request. The body names the
// target port; the source is optional.
func (s *Server) DeleteLink(w http.ResponseWriter, r *http.Request) {
	var body DeleteLinkJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	link := domain.Link{ToNode: body.ToNode, ToPort: body.ToPort}
	if body.FromNode != nil {
		link.FromNode = *body.FromNode
	}
	if body.FromPort != nil {
		link.FromPort = *body.FromPort
	}
	if _, err := s.Engine.Mutate(graph.RemoveLink(link)); err != nil {
		s.writeError(w, "remove_link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRules handles the GET /rules request.
func (s *Server) GetRules(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Rules())
}

// PostRule handles the POST /rules request.
func (s *Server) PostRule(w http.ResponseWriter, r *http.Request) {
	var body PostRuleJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	id, err := s.Engine.AddRuleSpec(mapRuleToDomain(body))
	if err != nil {
		s.writeError(w, "add_rule", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, Created{Id: id})
}

// DeleteRule handles the DELETE /rules/{id} request.
func (s *Server) DeleteRule(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.Engine.RemoveRule(id); err != nil {
		s.writeError(w, "remove_rule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetState handles the GET /state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Engine.State().Snapshot(r.Context())
	if err != nil {
		s.writeError(w, "snapshot", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// GetStateKey handles the GET /state/{key} request.
func (s *Server) GetStateKey(w http.ResponseWriter, r *http.Request, key string) {
	v, ok, err := s.Engine.State().Get(r.Context(), key)
	if err != nil {
		s.writeError(w, "get_state", err)
		return
	}
	if !ok {
		s.writeJSON(w, http.StatusNotFound, Error{Error: fmt.Sprintf("state key %q not set", key)})
		return
	}
	s.writeJSON(w, http.StatusOK, StateEntry{Key: key, Value: v})
}

// PutStateKey handles the PUT /state/{key} request. The body is {"value": ...}
// with a scalar value; integers stay integers. Deleting goes through
// DELETE /state/{key}, so a missing or null value is rejected.
func (s *Server) PutStateKey(w http.ResponseWriter, r *http.Request, key string) {
	var body PutStateKeyJSONRequestBody
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if body.Value == nil {
		s.writeError(w, "set_state", fmt.Errorf("%w: value is required", domain.ErrInvalidConfig))
		return
	}
	v, err := domain.FromAny(body.Value)
	if err != nil {
		s.writeError(w, "set_state", err)
		return
	}
	if err := s.Engine.State().Set(r.Context(), key, v); err != nil {
		s.writeError(w, "set_state", err)
		return
	}
	s.writeJSON(w, http.StatusOK, StateEntry{Key: key, Value: v})
}

// DeleteStateKey handles the DELETE /state/{key} request.
func (s *Server) DeleteStateKey(w http.ResponseWriter, r *http.Request, key string) {
	if err := s.Engine.State().Delete(r.Context(), key); err != nil {
		s.writeError(w, "delete_state", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.badRequest(w, r, err)
		return false
	}
	return true
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
	s.writeJSON(w, http.StatusBadRequest, Error{Error: "invalid request body: " + err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "op", op, "error", err)
	} else {
		s.logger.Debug("request rejected", "op", op, "status", status, "error", err)
	}
	s.writeJSON(w, status, Error{Error: err.Error()})
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrDuplicateRule),
		errors.Is(err, domain.ErrPortOccupied),
		errors.Is(err, domain.ErrAlreadyRunning),
		domain.IsConcurrencyViolation(err):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownNode),
		errors.Is(err, domain.ErrUnknownLink),
		errors.Is(err, domain.ErrUnknownRule):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownPort),
		errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrInvalidKey),
		domain.IsConfigurationError(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func ptr[T any](v T) *T {
	return &v
}

func mapStatusFromDomain(st runtime.Status) EngineStatus {
	out := EngineStatus{
		Running:        st.Running,
		TargetHz:       st.TargetHz,
		Ticks:          int64(st.Ticks),
		Overruns:       int64(st.Overruns),
		LastDurationMs: durationMS(st.LastDuration),
		Nodes:          st.Nodes,
		Rules:          st.Rules,
	}
	if !st.LastTick.IsZero() {
		out.LastTick = ptr(st.LastTick)
	}
	return out
}

func mapTickFromDomain(rep runtime.TickReport) TickReport {
	out := TickReport{
		Tick:       int64(rep.Tick),
		DurationMs: durationMS(rep.Duration),
		Overrun:    rep.Overrun,
		Passes:     rep.Passes,
		Converged:  rep.Converged,
		RulesFired: nonNil(rep.RulesFired),
		Fired:      nonNil(rep.Fired),
		Faults:     make([]Fault, 0, len(rep.Faults)),
	}
	for _, f := range rep.Faults {
		out.Faults = append(out.Faults, Fault{Id: f.NodeID, Error: f.Err.Error()})
	}
	return out
}

func mapNodeToDomain(n NodeSpec) domain.NodeSpec {
	spec := domain.NodeSpec{
		Kind: domain.NodeKind(n.Kind),
		Type: n.Type,
	}
	if n.Id != nil {
		spec.ID = *n.Id
	}
	if n.Name != nil {
		spec.Name = *n.Name
	}
	if n.Config != nil {
		spec.Config = *n.Config
	}
	if n.Position != nil {
		spec.Position = &domain.Point{X: n.Position.X, Y: n.Position.Y}
	}
	return spec
}

func mapBlocksToDomain(blocks []BlockSpec) []domain.BlockSpec {
	out := make([]domain.BlockSpec, len(blocks))
	for i, b := range blocks {
		out[i] = domain.BlockSpec{Type: b.Type}
		if b.Config != nil {
			out[i].Config = *b.Config
		}
	}
	return out
}

func mapRuleToDomain(r RuleSpec) domain.RuleSpec {
	spec := domain.RuleSpec{
		Conditions: mapBlocksToDomain(r.Conditions),
		Actions:    mapBlocksToDomain(r.Actions),
	}
	if r.Id != nil {
		spec.ID = *r.Id
	}
	if r.Name != nil {
		spec.Name = *r.Name
	}
	if r.Logic != nil {
		spec.Logic = *r.Logic
	}
	if r.Disabled != nil {
		spec.Disabled = *r.Disabled
	}
	if r.Requires != nil {
		spec.Requires = &domain.StateRequirement{Key: r.Requires.Key, Value: r.Requires.Value}
	}
	return spec
}

func durationMS(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
