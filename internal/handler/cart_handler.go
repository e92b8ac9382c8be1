package handler

import (
	"net/http"

	"github.com/boddenberg/pizzaria-client-go/internal/app"
	"github.com/boddenberg/pizzaria-client-go/internal/cart"
	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Menu & cart
// ============================================================

type addItemRequest struct {
	ProductID string `json:"productId"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func getMenuHandler(a *app.App, catalog *service.Catalog, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/menu")
		defer span.End()

		tenantID := a.Tenant()
		span.SetAttributes(attribute.String("tenant.id", tenantID.String()))

		menu, err := catalog.Menu(ctx, tenantID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, menu)
	}
}

func getCartHandler(crt *cart.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, crt.Snapshot())
	}
}

// addCartItemHandler resolves the product against the menu of the current
// tenant so a stale view cannot add another pizzeria's product.
func addCartItemHandler(a *app.App, catalog *service.Catalog, crt *cart.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cart/items")
		defer span.End()

		var req addItemRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.ProductID == "" {
			writeError(w, http.StatusBadRequest, "productId is required")
			return
		}

		tenantID := a.Tenant()
		if tenantID == "" {
			writeError(w, http.StatusBadRequest, "nenhuma pizzaria selecionada")
			return
		}
		span.SetAttributes(
			attribute.String("tenant.id", tenantID.String()),
			attribute.String("product.id", req.ProductID),
		)

		product, err := catalog.Product(ctx, tenantID, req.ProductID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if !product.Available {
			handleServiceError(w, &domain.ErrConflict{Message: product.Name + " está indisponível"}, logger)
			return
		}

		if err := crt.Add(ctx, product); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, crt.Snapshot())
	}
}

func setCartItemHandler(crt *cart.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/cart/items/{productId}")
		defer span.End()

		var req setQuantityRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := crt.SetQuantity(ctx, chi.URLParam(r, "productId"), req.Quantity); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, crt.Snapshot())
	}
}

func removeCartItemHandler(crt *cart.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/cart/items/{productId}")
		defer span.End()

		if err := crt.Remove(ctx, chi.URLParam(r, "productId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, crt.Snapshot())
	}
}

func clearCartHandler(crt *cart.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/cart")
		defer span.End()

		if err := crt.Clear(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, crt.Snapshot())
	}
}
