package rfq

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	"github.com/dferrantino/quotehub-backend/pkg/pagination"
)

// ListQuery scopes the paginated request list to one party.
type ListQuery struct {
	PartyID uuid.UUID
	Status  *enums.QuoteRequestStatus
	Limit   int
	Cursor  *pagination.Cursor
}

// Repository exposes negotiation ledger persistence. All status and
// acceptance writes go through the service's guarded transitions; nothing
// else may touch those columns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateRequest(ctx context.Context, req *models.QuoteRequest) (*models.QuoteRequest, error)
	FindRequestByID(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error)
	FindRequestWithChildren(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error)
	UpdateRequest(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListForParty(ctx context.Context, query ListQuery) ([]models.QuoteRequest, error)
	ListExpiredCandidates(ctx context.Context, now time.Time, limit int) ([]models.QuoteRequest, error)
	MarkExpired(ctx context.Context, id uuid.UUID) (int64, error)

	CreateResponse(ctx context.Context, resp *models.QuoteResponse) (*models.QuoteResponse, error)
	FindResponseByID(ctx context.Context, id uuid.UUID) (*models.QuoteResponse, error)
	CountResponses(ctx context.Context, requestID uuid.UUID) (int64, error)
	CountOpenResponses(ctx context.Context, requestID uuid.UUID) (int64, error)
	AcceptResponse(ctx context.Context, requestID, responseID uuid.UUID) (int64, error)
	RejectResponse(ctx context.Context, responseID uuid.UUID, comment *string) error

	CreateCounter(ctx context.Context, offer *models.CounterOffer) (*models.CounterOffer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a negotiation repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRequest(ctx context.Context, req *models.QuoteRequest) (*models.QuoteRequest, error) {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (r *repository) FindRequestByID(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error) {
	var req models.QuoteRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindRequestWithChildren(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error) {
	var req models.QuoteRequest
	err := r.db.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("responded_at ASC")
		}).
		Preload("CounterOffers", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) UpdateRequest(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.QuoteRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListForParty(ctx context.Context, query ListQuery) ([]models.QuoteRequest, error) {
	q := r.db.WithContext(ctx).
		Model(&models.QuoteRequest{}).
		Where("requesting_party_id = ? OR target_party_id = ? OR responding_party_id = ?",
			query.PartyID, query.PartyID, query.PartyID).
		Where("status <> ?", enums.QuoteRequestStatusDeleted)

	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if query.Cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var requests []models.QuoteRequest
	err := q.Order("created_at DESC, id DESC").
		Limit(query.Limit).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) ListExpiredCandidates(ctx context.Context, now time.Time, limit int) ([]models.QuoteRequest, error) {
	var requests []models.QuoteRequest
	err := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Where("status IN ?", []enums.QuoteRequestStatus{
			enums.QuoteRequestStatusPending,
			enums.QuoteRequestStatusResponded,
		}).
		Order("expires_at ASC").
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// MarkExpired flips a stale stored status to expired. The status predicate
// keeps it from clobbering a terminal status written since the candidate was
// read.
func (r *repository) MarkExpired(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.QuoteRequest{}).
		Where("id = ? AND status IN ?", id, []enums.QuoteRequestStatus{
			enums.QuoteRequestStatusPending,
			enums.QuoteRequestStatusResponded,
		}).
		Update("status", enums.QuoteRequestStatusExpired)
	return res.RowsAffected, res.Error
}

func (r *repository) CreateResponse(ctx context.Context, resp *models.QuoteResponse) (*models.QuoteResponse, error) {
	if err := r.db.WithContext(ctx).Create(resp).Error; err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *repository) FindResponseByID(ctx context.Context, id uuid.UUID) (*models.QuoteResponse, error) {
	var resp models.QuoteResponse
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&resp).Error
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *repository) CountResponses(ctx context.Context, requestID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.QuoteResponse{}).
		Where("quote_request_id = ?", requestID).
		Count(&count).Error
	return count, err
}

func (r *repository) CountOpenResponses(ctx context.Context, requestID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.QuoteResponse{}).
		Where("quote_request_id = ? AND is_rejected = ? AND is_accepted = ?", requestID, false, false).
		Count(&count).Error
	return count, err
}

// AcceptResponse flips is_accepted on one response only if no sibling has
// won already. Zero rows affected means the caller lost the race or the
// response is no longer acceptable; the partial unique index
// ux_quote_responses_accepted backstops the write under concurrent commits.
func (r *repository) AcceptResponse(ctx context.Context, requestID, responseID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE quote_responses
		SET is_accepted = ?, updated_at = ?
		WHERE id = ?
		  AND quote_request_id = ?
		  AND is_rejected = ?
		  AND NOT EXISTS (
			SELECT 1 FROM quote_responses AS sibling
			WHERE sibling.quote_request_id = ?
			  AND sibling.is_accepted = ?
		  )`,
		true, time.Now().UTC(), responseID, requestID, false, requestID, true)
	return res.RowsAffected, res.Error
}

func (r *repository) RejectResponse(ctx context.Context, responseID uuid.UUID, comment *string) error {
	return r.db.WithContext(ctx).
		Model(&models.QuoteResponse{}).
		Where("id = ?", responseID).
		Updates(map[string]any{
			"is_rejected":       true,
			"rejection_comment": comment,
		}).Error
}

func (r *repository) CreateCounter(ctx context.Context, offer *models.CounterOffer) (*models.CounterOffer, error) {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}
