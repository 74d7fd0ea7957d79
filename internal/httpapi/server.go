package httpapi

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"predictd/internal/session"
	"predictd/internal/sysinfo"
	"predictd/pkg/types"
)

// Service defines what the HTTP layer needs from the interactive session.
type Service interface {
	SetText(text string) (types.Snapshot, bool)
	Refresh() (types.Snapshot, bool)
	UpdateSettings(s types.Settings) (types.Snapshot, bool, error)
	Snapshot() types.Snapshot
	History() []types.HistoryEntry
	Subscribe() (string, <-chan session.Event)
	Unsubscribe(id string)
	Status() types.StatusResponse
}

// Predictor performs one-shot predictions outside the session.
type Predictor interface {
	Predict(ctx context.Context, req types.PredictRequest) (*types.PredictionResult, error)
}

// CredentialAdmin exposes runtime credential management.
type CredentialAdmin interface {
	Set(key string)
	Status() types.CredentialStatus
}

// HostSampler reads host resource usage for the status endpoint.
type HostSampler interface {
	Sample() (sysinfo.Stats, error)
}

// Deps bundles everything the HTTP layer serves. Host and Web are
// optional; the corresponding features degrade gracefully without them.
type Deps struct {
	Session     Service
	Predictor   Predictor
	Credentials CredentialAdmin
	Profiles    []types.Profile
	Host        HostSampler
	Web         fs.FS
}

func NewMux(deps Deps) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/input", handleInput(deps.Session))
		r.Post("/refresh", handleRefresh(deps.Session))
		r.Get("/state", handleState(deps.Session))
		r.Get("/history", handleHistory(deps.Session))
		r.Get("/settings", handleGetSettings(deps.Session))
		r.Put("/settings", handlePutSettings(deps.Session))
		r.Get("/models", handleModels(deps.Profiles))
		r.Get("/credential", handleGetCredential(deps.Credentials))
		r.Put("/credential", handlePutCredential(deps.Credentials))
		r.Post("/predict", handlePredict(deps.Predictor))
		r.Get("/events", handleEvents(deps.Session))
		r.Get("/status", handleStatus(deps))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Credentials != nil && deps.Credentials.Status().Present {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("missing credential"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	if deps.Web != nil {
		r.Handle("/*", http.FileServer(http.FS(deps.Web)))
	}

	return r
}
