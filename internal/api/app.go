// Package api expõe o DataProcessor via HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mubench-review/models"
)

// Processor é o subconjunto do DataProcessor usado pelos handlers.
type Processor interface {
	GetPotentialHitsIndex(ctx context.Context, table string) ([]models.ProjectIndex, error)
	GetDatasets(ctx context.Context, prefix string) ([]string, error)
	GetDetectors(ctx context.Context, prefix string) ([]string, error)
}

// Pinger verifica a conexão com o banco.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App guarda as dependências do servidor.
type App struct {
	processor Processor
	db        Pinger
	registry  *prometheus.Registry
	metrics   *metrics
}

// NewApp cria um App com registro Prometheus próprio.
func NewApp(processor Processor, db Pinger) *App {
	registry := prometheus.NewRegistry()
	return &App{
		processor: processor,
		db:        db,
		registry:  registry,
		metrics:   newMetrics(registry),
	}
}

// Handler devolve o roteador com recovery, request ID, logs e métricas.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(a.metrics.middleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/hits/{table}", a.handleHits)
		r.Get("/datasets", a.handleDatasets)
		r.Get("/detectors", a.handleDetectors)
	})
	r.Get("/healthz", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	return r
}
