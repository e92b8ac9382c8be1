package handler

import (
	"net/http"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/notify"
	"github.com/boddenberg/pizzaria-client-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Tenant admin
// ============================================================

func adminListProductsHandler(admin *service.Admin, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/products")
		defer span.End()

		products, err := admin.Products(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, products)
	}
}

func adminUpdateProductHandler(admin *service.Admin, feed *notify.Feed, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/products/{productId}")
		defer span.End()

		id := chi.URLParam(r, "productId")
		span.SetAttributes(attribute.String("product.id", id))

		var patch domain.ProductPatch
		if !decodeBody(w, r, &patch) {
			return
		}

		product, err := admin.UpdateProduct(ctx, id, &patch)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		feed.Notify(ctx, notify.KindSuccess, "Produto atualizado")
		writeJSON(w, http.StatusOK, product)
	}
}

func adminGetTenantHandler(admin *service.Admin, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/tenant")
		defer span.End()

		t, err := admin.MyTenant(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func adminUpdateTenantHandler(admin *service.Admin, feed *notify.Feed, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/tenant")
		defer span.End()

		var patch domain.TenantPatch
		if !decodeBody(w, r, &patch) {
			return
		}

		t, err := admin.UpdateMyTenant(ctx, &patch)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		feed.Notify(ctx, notify.KindSuccess, "Dados da pizzaria atualizados")
		writeJSON(w, http.StatusOK, t)
	}
}

// ============================================================
// Platform (super-admin)
// ============================================================

func listTenantsHandler(platform *service.Platform, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/platform/tenants")
		defer span.End()

		tenants, err := platform.ListTenants(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tenants)
	}
}

func createTenantHandler(platform *service.Platform, feed *notify.Feed, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/platform/tenants")
		defer span.End()

		var req domain.CreateTenantRequest
		if !decodeBody(w, r, &req) {
			return
		}

		t, err := platform.CreateTenant(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		feed.Notify(ctx, notify.KindSuccess, "Pizzaria criada: "+t.Name)
		writeJSON(w, http.StatusCreated, t)
	}
}
