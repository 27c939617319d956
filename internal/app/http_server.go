package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/coffeeshop/internal/health"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/desk"
)

const shutdownTimeout = 5 * time.Second

type orderView struct {
	ID          string   `json:"id"`
	Status      string   `json:"status"`
	Description string   `json:"description"`
	Total       string   `json:"total"`
	TotalMinor  int64    `json:"total_minor"`
	ItemCount   int      `json:"item_count"`
	Lines       []string `json:"lines,omitempty"`
}

type timelineView struct {
	Type     string    `json:"type"`
	Reason   string    `json:"reason"`
	Occurred time.Time `json:"occurred"`
}

type historyView struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	AppliedAt   time.Time `json:"applied_at"`
}

// opsHandler отдаёт оператору заказы, их журнал и историю команд в JSON.
type opsHandler struct {
	desk *desk.Desk
}

// newOpsRouter собирает HTTP-маршруты: метрики, проверки здоровья и просмотр заказов.
func newOpsRouter(d *desk.Desk, health *healthcheck.Handler) http.Handler {
	h := &opsHandler{desk: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/healthz", health)
	r.Get("/readyz", health.Ready)
	r.Get("/livez", healthcheck.Live)

	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/timeline", h.getTimeline)
	r.Get("/history", h.listHistory)
	return r
}

func (h *opsHandler) listOrders(w http.ResponseWriter, _ *http.Request) {
	records := h.desk.Orders()
	views := make([]orderView, 0, len(records))
	for _, rec := range records {
		views = append(views, newOrderView(rec.ID, rec.Entry, false))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *opsHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := h.desk.Entry(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderView(id, entry, true))
}

func (h *opsHandler) getTimeline(w http.ResponseWriter, r *http.Request) {
	events, err := h.desk.Timeline(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]timelineView, 0, len(events))
	for _, event := range events {
		views = append(views, timelineView{Type: event.Type, Reason: event.Reason, Occurred: event.Occurred})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *opsHandler) listHistory(w http.ResponseWriter, _ *http.Request) {
	records := h.desk.History()
	views := make([]historyView, 0, len(records))
	for _, rec := range records {
		views = append(views, historyView{
			ID:          rec.ID,
			Kind:        string(rec.Kind),
			Description: rec.Description,
			AppliedAt:   rec.AppliedAt,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func newOrderView(id string, entry domain.OrderEntry, withLines bool) orderView {
	view := orderView{
		ID:          id,
		Status:      string(entry.Status),
		Description: entry.Order.Description(),
		Total:       domain.FormatMinor(entry.Order.TotalMinor()),
		TotalMinor:  entry.Order.TotalMinor(),
		ItemCount:   entry.Order.ItemCount(),
	}
	if withLines {
		view.Lines = entry.Order.Lines()
	}
	return view
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrOrderNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// startOpsServer запускает HTTP-сервер и останавливает его по отмене ctx.
func startOpsServer(ctx context.Context, addr string, handler http.Handler, logger *log.Entry) *http.Server {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("ops endpoints on %s: /metrics /healthz /readyz /livez /orders /history", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("ops server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("ops server shutdown with error")
	}
}
