package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dferrantino/quotehub-backend/internal/pricing"
	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
)

type testPricingService struct {
	setFn    func(ctx context.Context, input pricing.SetPrivatePriceInput) (*models.PrivatePrice, error)
	removeFn func(ctx context.Context, input pricing.RemovePrivatePriceInput) error
	priceFn  func(ctx context.Context, productID, viewerPartyID uuid.UUID) (*pricing.EffectivePrice, error)
}

func (s *testPricingService) SetPrivatePrice(ctx context.Context, input pricing.SetPrivatePriceInput) (*models.PrivatePrice, error) {
	if s.setFn != nil {
		return s.setFn(ctx, input)
	}
	return &models.PrivatePrice{ID: uuid.New()}, nil
}

func (s *testPricingService) RemovePrivatePrice(ctx context.Context, input pricing.RemovePrivatePriceInput) error {
	if s.removeFn != nil {
		return s.removeFn(ctx, input)
	}
	return nil
}

func (s *testPricingService) EffectivePriceFor(ctx context.Context, productID, viewerPartyID uuid.UUID) (*pricing.EffectivePrice, error) {
	if s.priceFn != nil {
		return s.priceFn(ctx, productID, viewerPartyID)
	}
	return &pricing.EffectivePrice{}, nil
}

func TestUpsertPrivatePrice(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	partyID := uuid.New()
	userID := uuid.New()
	productID := uuid.New()
	buyerID := uuid.New()

	makeRequest := func(body string, svc pricing.Service) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+productID.String()+"/private-prices", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(partyContext(req.Context(), partyID, userID))
		req = addRouteParam(req, "productId", productID.String())
		rec := httptest.NewRecorder()
		UpsertPrivatePrice(svc, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing buyer", func(t *testing.T) {
		rec := makeRequest(`{"fixed_amount":"10.00"}`, &testPricingService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 when buyer missing, got %d", rec.Code)
		}
	})

	t.Run("invalid fixed amount", func(t *testing.T) {
		rec := makeRequest(`{"buyer_party_id":"`+buyerID.String()+`","fixed_amount":"ten"}`, &testPricingService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed amount, got %d", rec.Code)
		}
	})

	t.Run("fixed price", func(t *testing.T) {
		var captured pricing.SetPrivatePriceInput
		svc := &testPricingService{
			setFn: func(ctx context.Context, input pricing.SetPrivatePriceInput) (*models.PrivatePrice, error) {
				captured = input
				return &models.PrivatePrice{ID: uuid.New(), ProductID: input.ProductID, PartyID: input.CounterpartPartyID}, nil
			},
		}
		rec := makeRequest(`{"buyer_party_id":"`+buyerID.String()+`","fixed_amount":"99.95","fixed_currency":"EUR"}`, svc)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on upsert, got %d", rec.Code)
		}
		if captured.ProductID != productID || captured.CounterpartPartyID != buyerID {
			t.Fatalf("unexpected input %+v", captured)
		}
		if captured.Fixed == nil || captured.Fixed.Currency != enums.CurrencyEUR {
			t.Fatalf("expected EUR fixed price, got %+v", captured.Fixed)
		}
		if !captured.Fixed.Amount.Equal(decimalFromString(t, "99.95")) {
			t.Fatalf("expected amount 99.95, got %s", captured.Fixed.Amount)
		}
	})

	t.Run("discount", func(t *testing.T) {
		var captured pricing.SetPrivatePriceInput
		svc := &testPricingService{
			setFn: func(ctx context.Context, input pricing.SetPrivatePriceInput) (*models.PrivatePrice, error) {
				captured = input
				return &models.PrivatePrice{ID: uuid.New()}, nil
			},
		}
		rec := makeRequest(`{"buyer_party_id":"`+buyerID.String()+`","discount_percent":"12.5"}`, svc)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on upsert, got %d", rec.Code)
		}
		if captured.Fixed != nil {
			t.Fatalf("expected no fixed price, got %+v", captured.Fixed)
		}
		if captured.DiscountPercent == nil || !captured.DiscountPercent.Equal(decimalFromString(t, "12.5")) {
			t.Fatalf("expected discount 12.5, got %v", captured.DiscountPercent)
		}
	})
}

func TestRemovePrivatePrice(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	partyID := uuid.New()
	userID := uuid.New()
	productID := uuid.New()
	buyerID := uuid.New()

	makeRequest := func(query string, svc pricing.Service) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+productID.String()+"/private-prices"+query, nil)
		req = req.WithContext(partyContext(req.Context(), partyID, userID))
		req = addRouteParam(req, "productId", productID.String())
		rec := httptest.NewRecorder()
		RemovePrivatePrice(svc, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing buyer param", func(t *testing.T) {
		rec := makeRequest("", &testPricingService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 without buyer_party_id, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		called := false
		svc := &testPricingService{
			removeFn: func(ctx context.Context, input pricing.RemovePrivatePriceInput) error {
				called = true
				if input.ProductID != productID || input.CounterpartPartyID != buyerID || input.ActorPartyID != partyID {
					t.Fatalf("unexpected input %+v", input)
				}
				return nil
			},
		}
		rec := makeRequest("?buyer_party_id="+buyerID.String(), svc)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204 on remove, got %d", rec.Code)
		}
		if !called {
			t.Fatal("expected RemovePrivatePrice to be invoked")
		}
	})
}

func TestEffectivePriceResolvesViewer(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	partyID := uuid.New()
	productID := uuid.New()

	var viewer uuid.UUID
	svc := &testPricingService{
		priceFn: func(ctx context.Context, pid, viewerPartyID uuid.UUID) (*pricing.EffectivePrice, error) {
			viewer = viewerPartyID
			return &pricing.EffectivePrice{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String()+"/effective-price", nil)
	req = req.WithContext(partyContext(req.Context(), partyID, uuid.New()))
	req = addRouteParam(req, "productId", productID.String())
	rec := httptest.NewRecorder()
	EffectivePrice(svc, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if viewer != partyID {
		t.Fatalf("expected viewer %s, got %s", partyID, viewer)
	}
}
