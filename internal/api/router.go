package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"coinmarket/internal/infra/metrics"
)

// NewRouter constructs the router with all API endpoints registered.
func NewRouter(svc Service, invoices InvoiceCreator) http.Handler {
	h := NewHandler(svc, invoices)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Post("/users", h.RegisterHandler)
	r.Get("/items", h.ListItemsHandler)
	r.Post("/items/{itemId}/resolve", h.ResolveItemHandler)

	r.Get("/user/{userId}/balance", h.GetBalanceHandler)
	r.Get("/user/{userId}/purchases", h.ListPurchasesHandler)
	r.Post("/user/{userId}/purchase/{itemId}", h.PurchaseHandler)
	r.Post("/user/{userId}/topup", h.TopUpHandler)
	r.Post("/user/{userId}/invoice", h.CreateInvoiceHandler)

	return r
}
