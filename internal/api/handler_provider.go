package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"coinmarket/internal/provider"
	"coinmarket/internal/repos/accounts"
	"coinmarket/internal/repos/catalog"
	"coinmarket/internal/repos/purchases"
	"coinmarket/internal/repos/topups"
	"coinmarket/internal/services/market"
)

// Service is the transaction-engine surface the handlers depend on.
type Service interface {
	Register(ctx context.Context, userID int64, phone string) error
	GetBalance(ctx context.Context, userID int64) (int64, error)
	ListOpenItems(ctx context.Context) ([]catalog.Item, error)
	ListPurchases(ctx context.Context, userID int64) ([]purchases.Record, error)
	Purchase(ctx context.Context, userID, itemID int64) (market.Receipt, error)
	ResolveItem(ctx context.Context, requesterID, itemID int64, outcome catalog.Outcome) (market.RefundSummary, error)
	TopUp(ctx context.Context, userID int64, providerTxID string, amount int64) (int64, error)
}

// InvoiceCreator creates payment-provider invoices. Nil when no provider is
// configured; the invoice endpoint then answers 503.
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, userID, amount int64) (provider.Invoice, error)
}

// HandlerProvider wraps the market service and exposes HTTP handlers.
type HandlerProvider struct {
	svc      Service
	invoices InvoiceCreator
}

// NewHandler returns a new handler provider.
func NewHandler(svc Service, invoices InvoiceCreator) *HandlerProvider {
	return &HandlerProvider{svc: svc, invoices: invoices}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s", name)
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}

	return id, nil
}

// decodeBody reads a size-capped JSON body with unknown fields rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}

		return fmt.Errorf("invalid JSON")
	}

	return nil
}

// --- Handlers ---

type registerRequest struct {
	UserID int64  `json:"userId"`
	Phone  string `json:"phone"`
}

// RegisterHandler handles POST /users
func (h *HandlerProvider) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "userId must be positive")
		return
	}
	if req.Phone == "" {
		writeError(w, http.StatusBadRequest, "phone required")
		return
	}

	err := h.svc.Register(r.Context(), req.UserID, req.Phone)
	if err != nil {
		if errors.Is(err, accounts.ErrAlreadyRegistered) {
			writeError(w, http.StatusConflict, "user already registered")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"userId":  req.UserID,
		"balance": int64(0),
	})
}

// GetBalanceHandler handles GET /user/{userId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotRegistered) {
			writeError(w, http.StatusNotFound, "user not registered")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  userID,
		"balance": balance,
	})
}

// ListItemsHandler handles GET /items
func (h *HandlerProvider) ListItemsHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListOpenItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type itemResponse struct {
		ID       int64  `json:"id"`
		Category string `json:"category"`
		Title    string `json:"title"`
		Odds     string `json:"odds"`
		Price    int64  `json:"price"`
	}

	resp := make([]itemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, itemResponse{
			ID:       it.ID,
			Category: it.Category,
			Title:    it.Title,
			Odds:     it.Odds,
			Price:    it.Price,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListPurchasesHandler handles GET /user/{userId}/purchases
func (h *HandlerProvider) ListPurchasesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	recs, err := h.svc.ListPurchases(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type purchaseResponse struct {
		ItemID    int64 `json:"itemId"`
		PricePaid int64 `json:"pricePaid"`
		Refunded  bool  `json:"refunded"`
	}

	resp := make([]purchaseResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, purchaseResponse{
			ItemID:    rec.ItemID,
			PricePaid: rec.PricePaid,
			Refunded:  rec.Refunded,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// PurchaseHandler handles POST /user/{userId}/purchase/{itemId}
func (h *HandlerProvider) PurchaseHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	itemID, err := parseIDParam(r, "itemId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid itemId in path")
		return
	}

	receipt, err := h.svc.Purchase(r.Context(), userID, itemID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrItemNotFound):
			writeError(w, http.StatusNotFound, "item not found")
			return
		case errors.Is(err, accounts.ErrNotRegistered):
			writeError(w, http.StatusNotFound, "user not registered")
			return
		case errors.Is(err, accounts.ErrInsufficientFunds):
			writeError(w, http.StatusPaymentRequired, "insufficient funds")
			return
		case errors.Is(err, purchases.ErrDuplicatePurchase):
			writeError(w, http.StatusConflict, "item already purchased")
			return
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":    receipt.UserID,
		"itemId":    receipt.ItemID,
		"pricePaid": receipt.PricePaid,
	})
}

type resolveRequest struct {
	Outcome string `json:"outcome"`
}

// ResolveItemHandler handles POST /items/{itemId}/resolve. The requester's
// verified identity arrives in the X-Admin-ID header; authorization against
// the admin set happens in the service.
func (h *HandlerProvider) ResolveItemHandler(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseIDParam(r, "itemId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid itemId in path")
		return
	}

	requesterID, err := strconv.ParseInt(r.Header.Get("X-Admin-ID"), 10, 64)
	if err != nil || requesterID <= 0 {
		writeError(w, http.StatusUnauthorized, "missing or invalid X-Admin-ID header")
		return
	}

	var req resolveRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := market.ParseOutcome(req.Outcome)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outcome")
		return
	}

	summary, err := h.svc.ResolveItem(r.Context(), requesterID, itemID, outcome)
	if err != nil {
		switch {
		case errors.Is(err, market.ErrUnauthorized):
			writeError(w, http.StatusForbidden, "unauthorized")
			return
		case errors.Is(err, catalog.ErrItemNotFound):
			writeError(w, http.StatusNotFound, "item not found")
			return
		case errors.Is(err, catalog.ErrAlreadyResolved):
			writeError(w, http.StatusConflict, "item already resolved")
			return
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	failed := summary.Failed
	if failed == nil {
		failed = []int64{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"itemId":   itemID,
		"outcome":  string(outcome),
		"refunded": summary.Refunded,
		"failed":   failed,
	})
}

type topUpRequest struct {
	TransactionID string `json:"transactionId"`
	Amount        int64  `json:"amount"`
}

// TopUpHandler handles POST /user/{userId}/topup — the provider's payment
// confirmation. Retries with the same transactionId answer 409 and credit
// nothing.
func (h *HandlerProvider) TopUpHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req topUpRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.TransactionID == "" {
		writeError(w, http.StatusBadRequest, "transactionId required")
		return
	}

	newBalance, err := h.svc.TopUp(r.Context(), userID, req.TransactionID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, market.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "amount must be positive")
			return
		case errors.Is(err, accounts.ErrNotRegistered):
			writeError(w, http.StatusNotFound, "user not registered")
			return
		case errors.Is(err, topups.ErrDuplicateTopUp):
			writeError(w, http.StatusConflict, "duplicate transaction")
			return
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  userID,
		"balance": newBalance,
	})
}

type invoiceRequest struct {
	Amount int64 `json:"amount"`
}

// CreateInvoiceHandler handles POST /user/{userId}/invoice
func (h *HandlerProvider) CreateInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	if h.invoices == nil {
		writeError(w, http.StatusServiceUnavailable, "payment provider not configured")
		return
	}

	var req invoiceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	// Invoices are only offered to registered users.
	_, err = h.svc.GetBalance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotRegistered) {
			writeError(w, http.StatusNotFound, "user not registered")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	inv, err := h.invoices.CreateInvoice(r.Context(), userID, req.Amount)
	if err != nil {
		slog.Error("create invoice failed", "user_id", userID, "error", err)
		writeError(w, http.StatusBadGateway, "payment provider error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"invoiceId":  inv.ID,
		"invoiceUrl": inv.URL,
	})
}
