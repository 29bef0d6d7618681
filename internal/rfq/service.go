package rfq

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/internal/pricing"
	"github.com/dferrantino/quotehub-backend/pkg/db"
	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/outbox"
	"github.com/dferrantino/quotehub-backend/pkg/outbox/payloads"
	"github.com/dferrantino/quotehub-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type partyReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type effectivePricer interface {
	EffectivePriceFor(ctx context.Context, productID, viewerPartyID uuid.UUID) (*pricing.EffectivePrice, error)
}

// Service is the public operation surface of the negotiation. Every mutation
// runs as a single atomic transaction: read current state, validate guards,
// write new state, emit the domain event. Nothing here retries a failed
// transition; a Conflict tells the caller to re-fetch and decide.
type Service interface {
	SubmitRequest(ctx context.Context, input SubmitRequestInput) (*models.QuoteRequest, error)
	SubmitResponse(ctx context.Context, input SubmitResponseInput) (*models.QuoteResponse, error)
	AcceptResponse(ctx context.Context, input AcceptResponseInput) (*models.QuoteRequest, error)
	RejectResponse(ctx context.Context, input RejectResponseInput) (*models.QuoteRequest, error)
	SubmitCounter(ctx context.Context, input SubmitCounterInput) (*models.CounterOffer, error)
	Cancel(ctx context.Context, input CancelInput) (*models.QuoteRequest, error)
	Delete(ctx context.Context, input DeleteInput) error
	GetRequest(ctx context.Context, requestID, viewerPartyID uuid.UUID) (*RequestDetail, error)
	ListForParty(ctx context.Context, input ListForPartyInput) (*RequestPage, error)
	SweepExpired(ctx context.Context, limit int) (int, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxEmitter
	parties  partyReader
	products productReader
	pricer   effectivePricer
}

// NewService builds a negotiation service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxEmitter, parties partyReader, products productReader, pricer effectivePricer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("negotiation repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if parties == nil {
		return nil, fmt.Errorf("party reader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("effective pricer required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   outboxSvc,
		parties:  parties,
		products: products,
		pricer:   pricer,
	}, nil
}

func (s *service) SubmitRequest(ctx context.Context, input SubmitRequestInput) (*models.QuoteRequest, error) {
	if input.RequestingPartyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party context missing")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == nil && (input.Subject == nil || strings.TrimSpace(*input.Subject) == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject or product required")
	}
	if input.TargetPartyID != nil && *input.TargetPartyID == input.RequestingPartyID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target must be a different party")
	}
	if input.Quantity != nil && !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if input.TargetPrice != nil {
		if input.TargetPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "target price must not be negative")
		}
		if input.TargetCurrency == nil || !input.TargetCurrency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "target price requires a supported currency")
		}
	}
	now := time.Now().UTC()
	if input.ExpiresAt != nil && !input.ExpiresAt.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiration must be in the future")
	}

	var created *models.QuoteRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.ensureCompanyParty(ctx, input.RequestingPartyID); err != nil {
			return err
		}
		if input.TargetPartyID != nil {
			target, err := s.parties.FindByID(ctx, *input.TargetPartyID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "target party not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load target party")
			}
			if target.Type != enums.PartyTypeSupplier {
				return pkgerrors.New(pkgerrors.CodeValidation, "target party must be a supplier")
			}
		}
		if input.ProductID != nil {
			product, err := s.products.FindByID(ctx, *input.ProductID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "product is not active")
			}
		}

		req := &models.QuoteRequest{
			RequestingPartyID: input.RequestingPartyID,
			TargetPartyID:     input.TargetPartyID,
			RequestedByUserID: input.ActorUserID,
			ProductID:         input.ProductID,
			Subject:           input.Subject,
			Description:       input.Description,
			Category:          input.Category,
			Quantity:          input.Quantity,
			Unit:              input.Unit,
			TargetPrice:       input.TargetPrice,
			TargetCurrency:    input.TargetCurrency,
			Status:            enums.QuoteRequestStatusPending,
			ExpiresAt:         input.ExpiresAt,
		}
		saved, err := s.repo.WithTx(tx).CreateRequest(ctx, req)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote request")
		}
		created = saved

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteRequestSubmitted,
			AggregateType: enums.AggregateQuoteRequest,
			AggregateID:   saved.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.RequestingPartyID, input.ActorRole),
			Data: payloads.QuoteRequestSubmittedEvent{
				QuoteRequestID:  saved.ID,
				RequestingParty: saved.RequestingPartyID,
				TargetPartyID:   saved.TargetPartyID,
				ProductID:       saved.ProductID,
				ExpiresAt:       saved.ExpiresAt,
				RequestedByUser: saved.RequestedByUserID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) SubmitResponse(ctx context.Context, input SubmitResponseInput) (*models.QuoteResponse, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote request id required")
	}
	if input.RespondingPartyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party context missing")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency is not supported")
	}
	if input.Quantity != nil && !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}

	var created *models.QuoteResponse
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := time.Now().UTC()

		if err := s.ensureSupplierParty(ctx, input.RespondingPartyID); err != nil {
			return err
		}
		req, err := s.loadRequest(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if err := s.failExpired(ctx, req, now); err != nil {
			return err
		}
		if err := CanSubmitResponse(req, input.RespondingPartyID, now); err != nil {
			return err
		}

		price := input.Price.Round(2)
		resp := &models.QuoteResponse{
			QuoteRequestID:    req.ID,
			RespondingPartyID: input.RespondingPartyID,
			RespondedByUserID: input.ActorUserID,
			Price:             price,
			Currency:          input.Currency,
			Quantity:          input.Quantity,
			Unit:              input.Unit,
			ValidUntil:        input.ValidUntil,
			Message:           input.Message,
			Terms:             input.Terms,
		}
		saved, err := repo.CreateResponse(ctx, resp)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote response")
		}
		created = saved

		updates := map[string]any{"status": enums.QuoteRequestStatusResponded}
		if req.RespondingPartyID == nil {
			updates["responding_party_id"] = input.RespondingPartyID
		}
		if err := repo.UpdateRequest(ctx, req.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote request status")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteResponseSubmitted,
			AggregateType: enums.AggregateQuoteResponse,
			AggregateID:   saved.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.RespondingPartyID, input.ActorRole),
			Data: payloads.QuoteResponseSubmittedEvent{
				QuoteResponseID: saved.ID,
				QuoteRequestID:  req.ID,
				RequestingParty: req.RequestingPartyID,
				RespondingParty: saved.RespondingPartyID,
				Price:           saved.Price,
				Currency:        saved.Currency,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) AcceptResponse(ctx context.Context, input AcceptResponseInput) (*models.QuoteRequest, error) {
	if input.RequestID == uuid.Nil || input.ResponseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote request id and response id required")
	}
	if input.ActingPartyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party context missing")
	}

	var result *models.QuoteRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := time.Now().UTC()

		req, err := s.loadRequest(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if err := s.failExpired(ctx, req, now); err != nil {
			return err
		}
		resp, err := s.loadResponse(ctx, repo, input.ResponseID)
		if err != nil {
			return err
		}
		if err := CanAcceptResponse(req, resp, input.ActingPartyID, now); err != nil {
			return err
		}

		rows, err := repo.AcceptResponse(ctx, req.ID, resp.ID)
		if err != nil {
			if db.IsUniqueViolation(err, "ux_quote_responses_accepted") {
				return pkgerrors.New(pkgerrors.CodeConflict, "another response was already accepted")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept quote response")
		}
		if rows == 0 {
			// Lost the race to a sibling, or the response closed underneath
			// us. Either way the winner is decided elsewhere.
			return pkgerrors.New(pkgerrors.CodeConflict, "another response was already accepted")
		}

		updates := map[string]any{
			"status":              enums.QuoteRequestStatusAccepted,
			"responding_party_id": resp.RespondingPartyID,
		}
		if err := repo.UpdateRequest(ctx, req.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote request status")
		}
		req.Status = enums.QuoteRequestStatusAccepted
		req.RespondingPartyID = &resp.RespondingPartyID
		result = req

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteResponseAccepted,
			AggregateType: enums.AggregateQuoteResponse,
			AggregateID:   resp.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActingPartyID, input.ActorRole),
			Data: payloads.QuoteResponseDecisionEvent{
				QuoteResponseID: resp.ID,
				QuoteRequestID:  req.ID,
				RequestingParty: req.RequestingPartyID,
				RespondingParty: resp.RespondingPartyID,
				Accepted:        true,
				RequestStatus:   enums.QuoteRequestStatusAccepted,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RejectResponse(ctx context.Context, input RejectResponseInput) (*models.QuoteRequest, error) {
	if input.RequestID == uuid.Nil || input.ResponseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote request id and response id required")
	}
	if input.ActingPartyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party context missing")
	}

	var result *models.QuoteRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := time.Now().UTC()

		req, err := s.loadRequest(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if err := s.failExpired(ctx, req, now); err != nil {
			return err
		}
		resp, err := s.loadResponse(ctx, repo, input.ResponseID)
		if err != nil {
			return err
		}
		if err := CanRejectResponse(req, resp, input.ActingPartyID, now); err != nil {
			return err
		}

		if err := repo.RejectResponse(ctx, resp.ID, input.Comment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject quote response")
		}

		open, err := repo.CountOpenResponses(ctx, req.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open responses")
		}
		// Rejecting the last open response reopens the request so the seller
		// may re-bid.
		newStatus := enums.QuoteRequestStatusResponded
		if open == 0 {
			newStatus = enums.QuoteRequestStatusPending
		}
		if newStatus != req.Status {
			if err := repo.UpdateRequest(ctx, req.ID, map[string]any{"status": newStatus}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote request status")
			}
		}
		req.Status = newStatus
		result = req

		comment := ""
		if input.Comment != nil {
			comment = *input.Comment
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteResponseRejected,
			AggregateType: enums.AggregateQuoteResponse,
			AggregateID:   resp.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActingPartyID, input.ActorRole),
			Data: payloads.QuoteResponseDecisionEvent{
				QuoteResponseID: resp.ID,
				QuoteRequestID:  req.ID,
				RequestingParty: req.RequestingPartyID,
				RespondingParty: resp.RespondingPartyID,
				Accepted:        false,
				RequestStatus:   newStatus,
				Comment:         comment,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) SubmitCounter(ctx context.Context, input SubmitCounterInput) (*models.CounterOffer, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote request id required")
	}
	if input.ActingPartyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party context missing")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.CounterPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counter price must not be negative")
	}
	if !input.CounterCurrency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency is not supported")
	}

	var created *models.CounterOffer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := time.Now().UTC()

		req, err := s.loadRequest(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if err := s.failExpired(ctx, req, now); err != nil {
			return err
		}
		if err := CanSubmitCounter(req, input.ActingPartyID, now); err != nil {
			return err
		}
		if input.ResponseID != nil {
			resp, err := s.loadResponse(ctx, repo, *input.ResponseID)
			if err != nil {
				return err
			}
			if resp.QuoteRequestID != req.ID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "response does not belong to quote request")
			}
		}

		offer := &models.CounterOffer{
			QuoteRequestID:   req.ID,
			QuoteResponseID:  input.ResponseID,
			ProposedByUserID: input.ActorUserID,
			CounterPrice:     input.CounterPrice.Round(2),
			CounterCurrency:  input.CounterCurrency,
			Message:          input.Message,
		}
		saved, err := repo.CreateCounter(ctx, offer)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create counter offer")
		}
		created = saved

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCounterOfferSubmitted,
			AggregateType: enums.AggregateCounterOffer,
			AggregateID:   saved.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActingPartyID, input.ActorRole),
			Data: payloads.CounterOfferSubmittedEvent{
				CounterOfferID:  saved.ID,
				QuoteRequestID:  req.ID,
				QuoteResponseID: saved.QuoteResponseID,
				ProposedByUser:  saved.ProposedByUserID,
				CounterPrice:    saved.CounterPrice,
				CounterCurrency: saved.CounterCurrency,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.QuoteRequest, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote request id required")
	}
	if input.ActingPartyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party context missing")
	}

	var result *models.QuoteRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := time.Now().UTC()

		req, err := s.loadRequest(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if err := s.failExpired(ctx, req, now); err != nil {
			return err
		}
		if err := CanCancel(req, input.ActingPartyID, now); err != nil {
			return err
		}

		updates := map[string]any{
			"status":       enums.QuoteRequestStatusCancelled,
			"cancelled_at": now,
		}
		if err := repo.UpdateRequest(ctx, req.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel quote request")
		}
		req.Status = enums.QuoteRequestStatusCancelled
		req.CancelledAt = &now
		result = req

		reason := ""
		if input.Reason != nil {
			reason = *input.Reason
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteRequestCancelled,
			AggregateType: enums.AggregateQuoteRequest,
			AggregateID:   req.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActingPartyID, input.ActorRole),
			Data: payloads.QuoteRequestCancelledEvent{
				QuoteRequestID:  req.ID,
				RequestingParty: req.RequestingPartyID,
				CancelledAt:     now,
				Reason:          reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, input DeleteInput) error {
	if input.RequestID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "quote request id required")
	}
	if input.ActingPartyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "party context missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := time.Now().UTC()

		req, err := s.loadRequest(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if err := s.failExpired(ctx, req, now); err != nil {
			return err
		}
		count, err := repo.CountResponses(ctx, req.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count responses")
		}
		if err := CanDelete(req, input.ActingPartyID, count, now); err != nil {
			return err
		}

		if err := repo.UpdateRequest(ctx, req.ID, map[string]any{
			"status": enums.QuoteRequestStatusDeleted,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete quote request")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteRequestDeleted,
			AggregateType: enums.AggregateQuoteRequest,
			AggregateID:   req.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActingPartyID, input.ActorRole),
			Data: payloads.QuoteRequestDeletedEvent{
				QuoteRequestID:  req.ID,
				RequestingParty: req.RequestingPartyID,
				DeletedAt:       now,
			},
		})
	})
}

func (s *service) GetRequest(ctx context.Context, requestID, viewerPartyID uuid.UUID) (*RequestDetail, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote request id required")
	}
	if viewerPartyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party context missing")
	}

	req, err := s.repo.FindRequestWithChildren(ctx, requestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote request")
	}

	now := time.Now().UTC()
	status := EffectiveStatus(req, now)
	if status == enums.QuoteRequestStatusDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote request not found")
	}
	if !canView(req, viewerPartyID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quote request is not visible to party")
	}

	// Prices in different currencies are not comparable, so ranking is
	// per currency group. The request's target currency group, when one
	// is set, leads; within a group the cheapest bid comes first.
	responses := make([]models.QuoteResponse, len(req.Responses))
	copy(responses, req.Responses)
	sort.SliceStable(responses, func(i, j int) bool {
		ci, cj := responses[i].Currency, responses[j].Currency
		if ci != cj {
			if req.TargetCurrency != nil {
				if ci == *req.TargetCurrency {
					return true
				}
				if cj == *req.TargetCurrency {
					return false
				}
			}
			return ci < cj
		}
		return responses[i].Price.LessThan(responses[j].Price)
	})

	detail := &RequestDetail{
		Request:       *req,
		Status:        status,
		Responses:     responses,
		CounterOffers: req.CounterOffers,
	}
	if req.ProductID != nil {
		price, err := s.pricer.EffectivePriceFor(ctx, *req.ProductID, viewerPartyID)
		if err == nil {
			detail.YourEffectivePrice = price
		} else if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, err
		}
	}
	return detail, nil
}

func (s *service) ListForParty(ctx context.Context, input ListForPartyInput) (*RequestPage, error) {
	if input.PartyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party context missing")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	rows, err := s.repo.ListForParty(ctx, ListQuery{
		PartyID: input.PartyID,
		Status:  input.Status,
		Limit:   pagination.LimitWithBuffer(input.Pagination.Limit),
		Cursor:  cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quote requests")
	}

	page := &RequestPage{}
	now := time.Now().UTC()
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		page.Requests = append(page.Requests, RequestSummary{
			Request: rows[i],
			Status:  EffectiveStatus(&rows[i], now),
		})
	}
	if hasMore {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// SweepExpired persists the expired status for requests past their deadline
// and emits the expiry event once per request. Reporting efficiency only;
// reads never trust the stored status over the clock.
func (s *service) SweepExpired(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	now := time.Now().UTC()
	candidates, err := s.repo.ListExpiredCandidates(ctx, now, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired candidates")
	}

	swept := 0
	for i := range candidates {
		req := candidates[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			rows, err := repo.MarkExpired(ctx, req.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark request expired")
			}
			if rows == 0 {
				return nil
			}
			swept++
			return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventQuoteRequestExpired,
				AggregateType: enums.AggregateQuoteRequest,
				AggregateID:   req.ID,
				Version:       1,
				Data: payloads.QuoteRequestExpiredEvent{
					QuoteRequestID:  req.ID,
					RequestingParty: req.RequestingPartyID,
					ExpiredAt:       *req.ExpiresAt,
				},
			})
		})
		if err != nil {
			return swept, err
		}
	}
	return swept, nil
}

func (s *service) loadRequest(ctx context.Context, repo Repository, id uuid.UUID) (*models.QuoteRequest, error) {
	req, err := repo.FindRequestByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote request")
	}
	if req.Status == enums.QuoteRequestStatusDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote request not found")
	}
	return req, nil
}

func (s *service) loadParty(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	party, err := s.parties.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}
	return party, nil
}

// ensureCompanyParty gates the buyer-side operations. Only an active
// company may open a quote request.
func (s *service) ensureCompanyParty(ctx context.Context, partyID uuid.UUID) error {
	party, err := s.loadParty(ctx, partyID)
	if err != nil {
		return err
	}
	if party.Type != enums.PartyTypeCompany {
		return pkgerrors.New(pkgerrors.CodeForbidden, "party is not a company")
	}
	if !party.IsActive {
		return pkgerrors.New(pkgerrors.CodeForbidden, "party is inactive")
	}
	return nil
}

// ensureSupplierParty gates the seller-side operations. Only an active
// supplier may put a price on a request.
func (s *service) ensureSupplierParty(ctx context.Context, partyID uuid.UUID) error {
	party, err := s.loadParty(ctx, partyID)
	if err != nil {
		return err
	}
	if party.Type != enums.PartyTypeSupplier {
		return pkgerrors.New(pkgerrors.CodeForbidden, "party is not a supplier")
	}
	if !party.IsActive {
		return pkgerrors.New(pkgerrors.CodeForbidden, "party is inactive")
	}
	return nil
}

func (s *service) loadResponse(ctx context.Context, repo Repository, id uuid.UUID) (*models.QuoteResponse, error) {
	resp, err := repo.FindResponseByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote response not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote response")
	}
	return resp, nil
}

// failExpired fails an operation that observed a passed deadline, after
// persisting the expired status in its own transaction so the rollback of
// the failed operation does not undo it. The persistence is best effort;
// reads never trust the stored value over the clock.
func (s *service) failExpired(ctx context.Context, req *models.QuoteRequest, now time.Time) error {
	if !ExpiryObserved(req, now) {
		return nil
	}
	_ = s.persistExpiry(ctx, req)
	return pkgerrors.New(pkgerrors.CodeExpired, "quote request expired")
}

// persistExpiry writes the expired status and emits the expiry event once.
// The event carries no actor; expiry belongs to the clock, not the caller
// who happened to observe it.
func (s *service) persistExpiry(ctx context.Context, req *models.QuoteRequest) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).MarkExpired(ctx, req.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteRequestExpired,
			AggregateType: enums.AggregateQuoteRequest,
			AggregateID:   req.ID,
			Version:       1,
			Data: payloads.QuoteRequestExpiredEvent{
				QuoteRequestID:  req.ID,
				RequestingParty: req.RequestingPartyID,
				ExpiredAt:       *req.ExpiresAt,
			},
		})
	})
}

func canView(req *models.QuoteRequest, partyID uuid.UUID) bool {
	if req.RequestingPartyID == partyID {
		return true
	}
	if req.TargetPartyID != nil {
		return *req.TargetPartyID == partyID
	}
	if req.RespondingPartyID != nil && *req.RespondingPartyID == partyID {
		return true
	}
	for i := range req.Responses {
		if req.Responses[i].RespondingPartyID == partyID {
			return true
		}
	}
	// Open requests are visible to every supplier.
	return true
}

func buildActor(userID, partyID uuid.UUID, role string) *outbox.ActorRef {
	actor := &outbox.ActorRef{UserID: userID, Role: role}
	if partyID != uuid.Nil {
		actor.PartyID = &partyID
	}
	return actor
}
