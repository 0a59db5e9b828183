// Package httpsvc — REST API кофейни поверх каталога и журнала заказов.
package httpsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/health"
	"github.com/vladislavdragonenkov/titan-coffee/internal/metrics"
	"github.com/vladislavdragonenkov/titan-coffee/internal/validation"
)

const maxBodyBytes = 1 << 20

// CatalogService описывает операции каталога, нужные API.
type CatalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
	FindByCode(ctx context.Context, code string) (domain.Product, bool, error)
	Update(ctx context.Context, id string, upd domain.ProductUpdate) (domain.Product, error)
	Remove(ctx context.Context, id string) (domain.Product, error)
	AddBatch(ctx context.Context, entries []json.RawMessage) domain.BatchResult[domain.Product]
}

// LedgerService описывает операции журнала заказов, нужные API.
type LedgerService interface {
	List(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	Update(ctx context.Context, id string, upd domain.OrderUpdate) (domain.Order, error)
	Remove(ctx context.Context, id string) (domain.Order, error)
	AddBatch(ctx context.Context, entries []json.RawMessage) domain.BatchResult[domain.Order]
}

// Config — необязательные зависимости API.
type Config struct {
	AppName     string
	Health      *health.Handler
	Metrics     *metrics.ShopMetrics
	FrontendURL string

	// RateLimit запросов с одного IP за RateWindow, 0 отключает лимит.
	// RateCounter хранит счётчики окон; nil означает счётчик httprate в памяти процесса.
	RateLimit   int
	RateWindow  time.Duration
	RateCounter httprate.LimitCounter

	Logger *log.Entry
}

// Handler обслуживает /api/products, /api/orders, /api/health и /.
type Handler struct {
	catalog CatalogService
	ledger  LedgerService
	cfg     Config
	logger  *log.Entry
}

// NewHandler создаёт обработчик API.
func NewHandler(catalog CatalogService, ledger LedgerService, cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	if cfg.AppName == "" {
		cfg.AppName = "Titan Coffee Shop API"
	}
	return &Handler{
		catalog: catalog,
		ledger:  ledger,
		cfg:     cfg,
		logger:  logger,
	}
}

// Router собирает chi-роутер со всеми middleware.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(h.instrument)
	r.Use(h.recoverer)
	r.Use(securityHeaders(h.cfg.FrontendURL))
	if h.cfg.RateLimit > 0 {
		r.Use(h.rateLimiter())
	}

	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.notFound)

	r.Get("/", h.root)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)

		r.Get("/products", h.listProducts)
		r.Post("/products", h.createProducts)
		r.Get("/products/{productCode}", h.getProduct)
		r.Put("/products/{productCode}", h.updateProduct)
		r.Delete("/products/{productCode}", h.deleteProduct)

		r.Get("/orders", h.listOrders)
		r.Post("/orders", h.createOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Put("/orders/{id}", h.updateOrder)
		r.Delete("/orders/{id}", h.deleteOrder)
	})
	return r
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "Welcome to %s!", h.cfg.AppName)
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": string(health.StatusHealthy)})
		return
	}
	h.cfg.Health.ServeHTTP(w, r)
}

func (h *Handler) notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: msgNotFound, Code: "not_found"})
}

// readBody читает тело с ограничением размера.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("request body exceeds %d bytes: %w", maxBodyBytes, validation.ErrMalformedBody)
		}
		return nil, fmt.Errorf("read body: %w", validation.ErrMalformedBody)
	}
	return body, nil
}

// readBatch разбирает тело как объект или массив объектов.
func readBatch(w http.ResponseWriter, r *http.Request) ([]json.RawMessage, error) {
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	entries, err := validation.SplitBatch(body)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("request body must contain at least one entry: %w", validation.ErrMalformedBody)
	}
	return entries, nil
}

// readFields разбирает тело как один JSON-объект.
func readFields(w http.ResponseWriter, r *http.Request) (validation.Fields, error) {
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	return validation.Decode(body)
}

// batchStatus возвращает 201, если всё сохранено, 503, если всё отклонено из-за хранилища, иначе 400.
func batchStatus[T any](result domain.BatchResult[T]) int {
	switch {
	case result.OK():
		return http.StatusCreated
	case result.Unavailable():
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
