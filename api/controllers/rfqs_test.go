package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/api/middleware"
	"github.com/dferrantino/quotehub-backend/internal/rfq"
	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
)

func TestSubmitRFQ(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	partyID := uuid.New()
	userID := uuid.New()

	makeRequest := func(ctx context.Context, body string, stub *stubRFQControllerService) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rfqs", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		SubmitRFQ(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing party", func(t *testing.T) {
		ctx := middleware.WithUserID(context.Background(), userID.String())
		rec := makeRequest(ctx, `{}`, &stubRFQControllerService{})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 when party missing, got %d", rec.Code)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		ctx := middleware.WithPartyID(context.Background(), partyID.String())
		rec := makeRequest(ctx, `{}`, &stubRFQControllerService{})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 when user missing, got %d", rec.Code)
		}
	})

	t.Run("invalid quantity", func(t *testing.T) {
		ctx := middleware.WithPartyID(context.Background(), partyID.String())
		ctx = middleware.WithUserID(ctx, userID.String())
		rec := makeRequest(ctx, `{"quantity":"lots"}`, &stubRFQControllerService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed quantity, got %d", rec.Code)
		}
	})

	t.Run("invalid target party id", func(t *testing.T) {
		ctx := middleware.WithPartyID(context.Background(), partyID.String())
		ctx = middleware.WithUserID(ctx, userID.String())
		rec := makeRequest(ctx, `{"target_party_id":"not-a-uuid"}`, &stubRFQControllerService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed target party id, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctx := middleware.WithPartyID(context.Background(), partyID.String())
		ctx = middleware.WithUserID(ctx, userID.String())
		stub := &stubRFQControllerService{}
		body := `{"subject":"bulk packaging","quantity":"150.5","target_price":"12.99","target_currency":"USD"}`
		rec := makeRequest(ctx, body, stub)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 on success, got %d", rec.Code)
		}
		if stub.submitted == nil {
			t.Fatalf("expected SubmitRequest to be invoked")
		}
		if stub.submitted.RequestingPartyID != partyID {
			t.Fatalf("expected requesting party %s, got %s", partyID, stub.submitted.RequestingPartyID)
		}
		if stub.submitted.ActorUserID != userID {
			t.Fatalf("expected actor user %s, got %s", userID, stub.submitted.ActorUserID)
		}
		if stub.submitted.Quantity == nil || !stub.submitted.Quantity.Equal(decimalFromString(t, "150.5")) {
			t.Fatalf("expected quantity 150.5, got %v", stub.submitted.Quantity)
		}
		if stub.submitted.TargetCurrency == nil || *stub.submitted.TargetCurrency != "USD" {
			t.Fatalf("expected target currency USD, got %v", stub.submitted.TargetCurrency)
		}
	})
}

func TestSubmitQuoteResponse(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	partyID := uuid.New()
	userID := uuid.New()
	requestID := uuid.New()

	makeRequest := func(rfqParam, body string, stub *stubRFQControllerService) *httptest.ResponseRecorder {
		ctx := middleware.WithPartyID(context.Background(), partyID.String())
		ctx = middleware.WithUserID(ctx, userID.String())
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("rfqId", rfqParam)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rfqs/"+rfqParam+"/responses", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		SubmitQuoteResponse(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("invalid rfq id", func(t *testing.T) {
		rec := makeRequest("not-a-uuid", `{"price":"10.00","currency":"USD"}`, &stubRFQControllerService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed rfq id, got %d", rec.Code)
		}
	})

	t.Run("missing price", func(t *testing.T) {
		rec := makeRequest(requestID.String(), `{"currency":"USD"}`, &stubRFQControllerService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 when price missing, got %d", rec.Code)
		}
	})

	t.Run("invalid currency", func(t *testing.T) {
		rec := makeRequest(requestID.String(), `{"price":"10.00","currency":"ZZZ"}`, &stubRFQControllerService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown currency, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubRFQControllerService{}
		rec := makeRequest(requestID.String(), `{"price":"42.50","currency":"EUR","quantity":"10"}`, stub)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 on success, got %d", rec.Code)
		}
		if stub.responded == nil {
			t.Fatalf("expected SubmitResponse to be invoked")
		}
		if stub.responded.RequestID != requestID {
			t.Fatalf("expected request %s, got %s", requestID, stub.responded.RequestID)
		}
		if stub.responded.RespondingPartyID != partyID {
			t.Fatalf("expected responding party %s, got %s", partyID, stub.responded.RespondingPartyID)
		}
		if !stub.responded.Price.Equal(decimalFromString(t, "42.50")) {
			t.Fatalf("expected price 42.50, got %s", stub.responded.Price)
		}
	})
}

func TestAcceptQuoteResponse(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	partyID := uuid.New()
	userID := uuid.New()
	requestID := uuid.New()
	responseID := uuid.New()

	makeRequest := func(rfqParam, responseParam string, stub *stubRFQControllerService) *httptest.ResponseRecorder {
		ctx := middleware.WithPartyID(context.Background(), partyID.String())
		ctx = middleware.WithUserID(ctx, userID.String())
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("rfqId", rfqParam)
		routeCtx.URLParams.Add("responseId", responseParam)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rfqs/"+rfqParam+"/responses/"+responseParam+"/accept", nil)
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		AcceptQuoteResponse(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("invalid response id", func(t *testing.T) {
		rec := makeRequest(requestID.String(), "not-a-uuid", &stubRFQControllerService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed response id, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubRFQControllerService{}
		rec := makeRequest(requestID.String(), responseID.String(), stub)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on success, got %d", rec.Code)
		}
		if stub.accepted == nil {
			t.Fatalf("expected AcceptResponse to be invoked")
		}
		if stub.accepted.ResponseID != responseID {
			t.Fatalf("expected response %s, got %s", responseID, stub.accepted.ResponseID)
		}
		if stub.accepted.ActingPartyID != partyID {
			t.Fatalf("expected acting party %s, got %s", partyID, stub.accepted.ActingPartyID)
		}
	})
}

func TestCancelRFQAllowsEmptyBody(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	partyID := uuid.New()
	userID := uuid.New()
	requestID := uuid.New()

	ctx := middleware.WithPartyID(context.Background(), partyID.String())
	ctx = middleware.WithUserID(ctx, userID.String())
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("rfqId", requestID.String())
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rfqs/"+requestID.String()+"/cancel", nil)
	req = req.WithContext(ctx)

	stub := &stubRFQControllerService{}
	rec := httptest.NewRecorder()
	CancelRFQ(stub, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on cancel without body, got %d", rec.Code)
	}
	if stub.cancelled == nil {
		t.Fatalf("expected Cancel to be invoked")
	}
	if stub.cancelled.Reason != nil {
		t.Fatalf("expected no reason on empty body, got %v", stub.cancelled.Reason)
	}
}

func decimalFromString(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", raw, err)
	}
	return value
}

type stubRFQControllerService struct {
	submitted *rfq.SubmitRequestInput
	responded *rfq.SubmitResponseInput
	accepted  *rfq.AcceptResponseInput
	cancelled *rfq.CancelInput
}

func (s *stubRFQControllerService) SubmitRequest(ctx context.Context, input rfq.SubmitRequestInput) (*models.QuoteRequest, error) {
	s.submitted = &input
	return &models.QuoteRequest{ID: uuid.New(), RequestingPartyID: input.RequestingPartyID}, nil
}

func (s *stubRFQControllerService) SubmitResponse(ctx context.Context, input rfq.SubmitResponseInput) (*models.QuoteResponse, error) {
	s.responded = &input
	return &models.QuoteResponse{ID: uuid.New(), QuoteRequestID: input.RequestID}, nil
}

func (s *stubRFQControllerService) AcceptResponse(ctx context.Context, input rfq.AcceptResponseInput) (*models.QuoteRequest, error) {
	s.accepted = &input
	return &models.QuoteRequest{ID: input.RequestID}, nil
}

func (s *stubRFQControllerService) RejectResponse(ctx context.Context, input rfq.RejectResponseInput) (*models.QuoteRequest, error) {
	panic("unimplemented")
}

func (s *stubRFQControllerService) SubmitCounter(ctx context.Context, input rfq.SubmitCounterInput) (*models.CounterOffer, error) {
	panic("unimplemented")
}

func (s *stubRFQControllerService) Cancel(ctx context.Context, input rfq.CancelInput) (*models.QuoteRequest, error) {
	s.cancelled = &input
	return &models.QuoteRequest{ID: input.RequestID}, nil
}

func (s *stubRFQControllerService) Delete(ctx context.Context, input rfq.DeleteInput) error {
	panic("unimplemented")
}

func (s *stubRFQControllerService) GetRequest(ctx context.Context, requestID, viewerPartyID uuid.UUID) (*rfq.RequestDetail, error) {
	panic("unimplemented")
}

func (s *stubRFQControllerService) ListForParty(ctx context.Context, input rfq.ListForPartyInput) (*rfq.RequestPage, error) {
	panic("unimplemented")
}

func (s *stubRFQControllerService) SweepExpired(ctx context.Context, limit int) (int, error) {
	panic("unimplemented")
}
