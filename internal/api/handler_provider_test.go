package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinmarket/internal/provider"
	"coinmarket/internal/repos/accounts"
	"coinmarket/internal/repos/catalog"
	"coinmarket/internal/repos/purchases"
	"coinmarket/internal/repos/topups"
	"coinmarket/internal/services/market"
)

type stubService struct {
	registerErr error

	balance    int64
	balanceErr error

	items    []catalog.Item
	itemsErr error

	purchasesResp []purchases.Record
	purchasesErr  error

	receipt     market.Receipt
	purchaseErr error

	summary    market.RefundSummary
	resolveErr error

	// captured resolve arguments
	resolvedBy      int64
	resolvedOutcome catalog.Outcome

	topUpBalance int64
	topUpErr     error
}

func (s *stubService) Register(ctx context.Context, userID int64, phone string) error {
	return s.registerErr
}

func (s *stubService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return s.balance, s.balanceErr
}

func (s *stubService) ListOpenItems(ctx context.Context) ([]catalog.Item, error) {
	return s.items, s.itemsErr
}

func (s *stubService) ListPurchases(ctx context.Context, userID int64) ([]purchases.Record, error) {
	return s.purchasesResp, s.purchasesErr
}

func (s *stubService) Purchase(ctx context.Context, userID, itemID int64) (market.Receipt, error) {
	return s.receipt, s.purchaseErr
}

func (s *stubService) ResolveItem(ctx context.Context, requesterID, itemID int64, outcome catalog.Outcome) (market.RefundSummary, error) {
	s.resolvedBy = requesterID
	s.resolvedOutcome = outcome

	return s.summary, s.resolveErr
}

func (s *stubService) TopUp(ctx context.Context, userID int64, providerTxID string, amount int64) (int64, error) {
	return s.topUpBalance, s.topUpErr
}

type stubInvoices struct {
	inv provider.Invoice
	err error
}

func (s *stubInvoices) CreateInvoice(ctx context.Context, userID, amount int64) (provider.Invoice, error) {
	return s.inv, s.err
}

func doRequest(t *testing.T, svc Service, invoices InvoiceCreator, method, target string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	NewRouter(svc, invoices).ServeHTTP(rec, req)

	return rec
}

func TestRegisterHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		svc        *stubService
		wantStatus int
	}{
		{
			name:       "created",
			body:       map[string]any{"userId": 1, "phone": "+370600"},
			svc:        &stubService{},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "already_registered",
			body:       map[string]any{"userId": 1, "phone": "+370600"},
			svc:        &stubService{registerErr: accounts.ErrAlreadyRegistered},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "missing_phone",
			body:       map[string]any{"userId": 1},
			svc:        &stubService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty_body",
			body:       nil,
			svc:        &stubService{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doRequest(t, tt.svc, nil, http.MethodPost, "/users", tt.body, nil)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestGetBalanceHandler(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{balance: 60}
		rec := doRequest(t, svc, nil, http.MethodGet, "/user/1/balance", nil, nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.EqualValues(t, 60, resp["balance"])
	})

	t.Run("not_registered", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{balanceErr: accounts.ErrNotRegistered}
		rec := doRequest(t, svc, nil, http.MethodGet, "/user/1/balance", nil, nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad_user_id", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, &stubService{}, nil, http.MethodGet, "/user/abc/balance", nil, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListItemsHandler(t *testing.T) {
	t.Parallel()

	svc := &stubService{items: []catalog.Item{
		{ID: 1, Category: "Football", Title: "derby", Odds: "2.10", Price: 40, Outcome: catalog.OutcomePending},
	}}

	rec := doRequest(t, svc, nil, http.MethodGet, "/items", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.EqualValues(t, 1, resp[0]["id"])
	assert.EqualValues(t, 40, resp[0]["price"])
	// outcome is internal state, not part of the listing
	assert.NotContains(t, resp[0], "outcome")
}

func TestPurchaseHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		svc        *stubService
		wantStatus int
	}{
		{
			name:       "ok",
			svc:        &stubService{receipt: market.Receipt{UserID: 1, ItemID: 2, PricePaid: 40}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "item_not_found",
			svc:        &stubService{purchaseErr: catalog.ErrItemNotFound},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "user_not_registered",
			svc:        &stubService{purchaseErr: accounts.ErrNotRegistered},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "insufficient_funds",
			svc:        &stubService{purchaseErr: accounts.ErrInsufficientFunds},
			wantStatus: http.StatusPaymentRequired,
		},
		{
			name:       "duplicate_purchase",
			svc:        &stubService{purchaseErr: purchases.ErrDuplicatePurchase},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doRequest(t, tt.svc, nil, http.MethodPost, "/user/1/purchase/2", nil, nil)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestResolveItemHandler(t *testing.T) {
	t.Parallel()

	t.Run("ok_passes_admin_and_outcome", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{summary: market.RefundSummary{Refunded: 2}}
		rec := doRequest(t, svc, nil, http.MethodPost, "/items/5/resolve",
			map[string]any{"outcome": "lost"},
			map[string]string{"X-Admin-ID": "900"},
		)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, int64(900), svc.resolvedBy)
		assert.Equal(t, catalog.OutcomeLost, svc.resolvedOutcome)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.EqualValues(t, 2, resp["refunded"])
		assert.Equal(t, []any{}, resp["failed"])
	})

	t.Run("missing_admin_header", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, &stubService{}, nil, http.MethodPost, "/items/5/resolve",
			map[string]any{"outcome": "lost"}, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("not_an_admin", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{resolveErr: market.ErrUnauthorized}
		rec := doRequest(t, svc, nil, http.MethodPost, "/items/5/resolve",
			map[string]any{"outcome": "lost"},
			map[string]string{"X-Admin-ID": "123"},
		)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("already_resolved", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{resolveErr: catalog.ErrAlreadyResolved}
		rec := doRequest(t, svc, nil, http.MethodPost, "/items/5/resolve",
			map[string]any{"outcome": "won"},
			map[string]string{"X-Admin-ID": "900"},
		)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid_outcome", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, &stubService{}, nil, http.MethodPost, "/items/5/resolve",
			map[string]any{"outcome": "draw"},
			map[string]string{"X-Admin-ID": "900"},
		)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTopUpHandler(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{topUpBalance: 120}
		rec := doRequest(t, svc, nil, http.MethodPost, "/user/1/topup",
			map[string]any{"transactionId": "prov-tx-1", "amount": 60}, nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.EqualValues(t, 120, resp["balance"])
	})

	t.Run("duplicate_transaction", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{topUpErr: topups.ErrDuplicateTopUp}
		rec := doRequest(t, svc, nil, http.MethodPost, "/user/1/topup",
			map[string]any{"transactionId": "prov-tx-1", "amount": 60}, nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing_transaction_id", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, &stubService{}, nil, http.MethodPost, "/user/1/topup",
			map[string]any{"amount": 60}, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateInvoiceHandler(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		invoices := &stubInvoices{inv: provider.Invoice{ID: "inv-1", URL: "https://pay.example/inv-1"}}
		rec := doRequest(t, &stubService{}, invoices, http.MethodPost, "/user/1/invoice",
			map[string]any{"amount": 60}, nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "https://pay.example/inv-1", resp["invoiceUrl"])
	})

	t.Run("provider_not_configured", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, &stubService{}, nil, http.MethodPost, "/user/1/invoice",
			map[string]any{"amount": 60}, nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("provider_error", func(t *testing.T) {
		t.Parallel()

		invoices := &stubInvoices{err: context.DeadlineExceeded}
		rec := doRequest(t, &stubService{}, invoices, http.MethodPost, "/user/1/invoice",
			map[string]any{"amount": 60}, nil)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("user_not_registered", func(t *testing.T) {
		t.Parallel()

		invoices := &stubInvoices{inv: provider.Invoice{ID: "inv-1", URL: "u"}}
		svc := &stubService{balanceErr: accounts.ErrNotRegistered}
		rec := doRequest(t, svc, invoices, http.MethodPost, "/user/1/invoice",
			map[string]any{"amount": 60}, nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, &stubService{}, nil, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
