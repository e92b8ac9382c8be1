package handler

import (
	"net/http"

	"github.com/boddenberg/pizzaria-client-go/internal/cart"
	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/notify"
	"github.com/boddenberg/pizzaria-client-go/internal/orders"
	"github.com/boddenberg/pizzaria-client-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Checkout & order tracking
// ============================================================

type cancelOrderRequest struct {
	Confirmed bool `json:"confirmed"`
}

type ordersResponse struct {
	orders.Snapshot
	Results []orders.View `json:"results,omitempty"`
}

func quoteHandler(checkout *service.Checkout, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/checkout/quote")
		defer span.End()

		option := domain.DeliveryOption(r.URL.Query().Get("deliveryOption"))
		quote, err := checkout.Quote(ctx, option)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, quote)
	}
}

func submitOrderHandler(checkout *service.Checkout, feed *notify.Feed, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/checkout")
		defer span.End()

		var req service.SubmitRequest
		if !decodeBody(w, r, &req) {
			return
		}
		span.SetAttributes(attribute.String("delivery.option", string(req.DeliveryOption)))

		order, err := checkout.Submit(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		feed.Notify(ctx, notify.KindSuccess, "Pedido realizado com sucesso!")
		writeJSON(w, http.StatusCreated, order)
	}
}

// listOrdersHandler serves the cached list. With ?q= or ?status= the
// filtered matches are returned alongside the snapshot.
func listOrdersHandler(poller *orders.Poller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := ordersResponse{Snapshot: poller.Snapshot()}

		q := r.URL.Query()
		term, status := q.Get("q"), domain.OrderStatus(q.Get("status"))
		if status != "" && !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		if term != "" || status != "" {
			resp.Results = poller.Filter(term, status)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getOrderHandler(poller *orders.Poller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "orderId")
		view, ok := poller.Order(id)
		if !ok {
			writeError(w, http.StatusNotFound, (&domain.ErrNotFound{Resource: "order", ID: id}).Error())
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func cancelOrderHandler(poller *orders.Poller, feed *notify.Feed, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/orders/{orderId}/cancel")
		defer span.End()

		id := chi.URLParam(r, "orderId")
		span.SetAttributes(attribute.String("order.id", id))

		var req cancelOrderRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := poller.Cancel(ctx, id, req.Confirmed); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		feed.Notify(ctx, notify.KindSuccess, "Pedido cancelado")

		view, _ := poller.Order(id)
		writeJSON(w, http.StatusOK, view)
	}
}

func reorderHandler(checkout *service.Checkout, crt *cart.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/orders/{orderId}/reorder")
		defer span.End()

		id := chi.URLParam(r, "orderId")
		span.SetAttributes(attribute.String("order.id", id))

		if _, err := checkout.Reorder(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, crt.Snapshot())
	}
}
