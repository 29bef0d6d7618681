package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/outbox"
	"github.com/dferrantino/quotehub-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type partyReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
}

// Service owns the write boundary for private-price overrides and the
// viewer-facing effective price read path. All domain validation (discount
// range, non-negative amounts, known currency) happens here so the resolver
// never sees out-of-domain inputs.
type Service interface {
	SetPrivatePrice(ctx context.Context, input SetPrivatePriceInput) (*models.PrivatePrice, error)
	RemovePrivatePrice(ctx context.Context, input RemovePrivatePriceInput) error
	EffectivePriceFor(ctx context.Context, productID, viewerPartyID uuid.UUID) (*EffectivePrice, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	products productReader
	parties  partyReader
	outbox   outboxEmitter
}

// SetPrivatePriceInput carries a fixed-or-discount override for one
// (product, counterpart) pair. Exactly one of Fixed and DiscountPercent must
// be set.
type SetPrivatePriceInput struct {
	ProductID          uuid.UUID
	CounterpartPartyID uuid.UUID
	ActorUserID        uuid.UUID
	ActorPartyID       uuid.UUID
	Fixed              *FixedPrice
	DiscountPercent    *decimal.Decimal
}

// RemovePrivatePriceInput identifies the override to remove.
type RemovePrivatePriceInput struct {
	ProductID          uuid.UUID
	CounterpartPartyID uuid.UUID
	ActorPartyID       uuid.UUID
}

// NewService builds a pricing service with the required dependencies.
func NewService(repo Repository, tx txRunner, products productReader, parties partyReader, outboxSvc outboxEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("private price repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if parties == nil {
		return nil, fmt.Errorf("party reader required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		parties:  parties,
		outbox:   outboxSvc,
	}, nil
}

func (s *service) SetPrivatePrice(ctx context.Context, input SetPrivatePriceInput) (*models.PrivatePrice, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.CounterpartPartyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counterpart party id required")
	}
	if input.ActorPartyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party context missing")
	}
	if input.CounterpartPartyID == input.ActorPartyID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counterpart must be a different party")
	}
	kind, err := validateOverrideInput(input)
	if err != nil {
		return nil, err
	}

	var saved *models.PrivatePrice
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.products.FindByID(ctx, input.ProductID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product.SupplierPartyID != input.ActorPartyID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to party")
		}
		if _, err := s.parties.FindByID(ctx, input.CounterpartPartyID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "counterpart party not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load counterpart party")
		}

		repo := s.repo.WithTx(tx)
		row := buildOverrideRow(input, kind)

		existing, err := repo.FindByProductAndParty(ctx, input.ProductID, input.CounterpartPartyID)
		switch {
		case err == nil:
			// Replace semantics: a second write for the same pair swaps the
			// override in place, never duplicates.
			updates := map[string]any{
				"kind":             row.Kind,
				"fixed_amount":     row.FixedAmount,
				"fixed_currency":   row.FixedCurrency,
				"discount_percent": row.DiscountPercent,
			}
			if err := repo.Update(ctx, existing.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace private price")
			}
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
			saved = row
		case err == gorm.ErrRecordNotFound:
			created, err := repo.Create(ctx, row)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create private price")
			}
			saved = created
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load private price")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPrivatePriceChanged,
			AggregateType: enums.AggregateProduct,
			AggregateID:   product.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, PartyID: &input.ActorPartyID},
			Data: payloads.PrivatePriceChangedEvent{
				ProductID:       product.ID,
				SupplierPartyID: product.SupplierPartyID,
				BuyerPartyID:    input.CounterpartPartyID,
				Kind:            &kind,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *service) RemovePrivatePrice(ctx context.Context, input RemovePrivatePriceInput) error {
	if input.ProductID == uuid.Nil || input.CounterpartPartyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id and counterpart party id required")
	}
	if input.ActorPartyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "party context missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.products.FindByID(ctx, input.ProductID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product.SupplierPartyID != input.ActorPartyID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to party")
		}

		removed, err := s.repo.WithTx(tx).Delete(ctx, input.ProductID, input.CounterpartPartyID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete private price")
		}
		if removed == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "private price not found")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPrivatePriceChanged,
			AggregateType: enums.AggregateProduct,
			AggregateID:   product.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{PartyID: &input.ActorPartyID},
			Data: payloads.PrivatePriceChangedEvent{
				ProductID:       product.ID,
				SupplierPartyID: product.SupplierPartyID,
				BuyerPartyID:    input.CounterpartPartyID,
				Removed:         true,
			},
		})
	})
}

func (s *service) EffectivePriceFor(ctx context.Context, productID, viewerPartyID uuid.UUID) (*EffectivePrice, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	var override Override
	if viewerPartyID != uuid.Nil && viewerPartyID != product.SupplierPartyID {
		row, err := s.repo.FindByProductAndParty(ctx, productID, viewerPartyID)
		switch {
		case err == nil:
			override = OverrideFromModel(row)
		case err == gorm.ErrRecordNotFound:
			// Public price applies.
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load private price")
		}
	}

	resolved := Resolve(Money{Amount: product.DefaultPrice, Currency: product.DefaultCurrency}, override)
	return &resolved, nil
}

// OverrideFromModel converts a stored private-price row into the resolver's
// sum type. Rows with an unknown kind resolve to no override.
func OverrideFromModel(row *models.PrivatePrice) Override {
	if row == nil {
		return nil
	}
	switch row.Kind {
	case enums.PrivatePriceKindFixed:
		if row.FixedAmount == nil || row.FixedCurrency == nil {
			return nil
		}
		return FixedPrice{Amount: *row.FixedAmount, Currency: *row.FixedCurrency}
	case enums.PrivatePriceKindDiscount:
		if row.DiscountPercent == nil {
			return nil
		}
		return Discount{Percent: *row.DiscountPercent}
	default:
		return nil
	}
}

func validateOverrideInput(input SetPrivatePriceInput) (enums.PrivatePriceKind, error) {
	if input.Fixed != nil && input.DiscountPercent != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "fixed price and discount are mutually exclusive")
	}
	switch {
	case input.Fixed != nil:
		if input.Fixed.Amount.IsNegative() {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "fixed price must not be negative")
		}
		if !input.Fixed.Currency.IsValid() {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "fixed price currency is not supported")
		}
		return enums.PrivatePriceKindFixed, nil
	case input.DiscountPercent != nil:
		if input.DiscountPercent.IsNegative() || input.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
		}
		return enums.PrivatePriceKindDiscount, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "either fixed price or discount is required")
	}
}

func buildOverrideRow(input SetPrivatePriceInput, kind enums.PrivatePriceKind) *models.PrivatePrice {
	row := &models.PrivatePrice{
		ProductID:       input.ProductID,
		PartyID:         input.CounterpartPartyID,
		Kind:            kind,
		CreatedByUserID: input.ActorUserID,
	}
	if kind == enums.PrivatePriceKindFixed {
		amount := input.Fixed.Amount.Round(2)
		currency := input.Fixed.Currency
		row.FixedAmount = &amount
		row.FixedCurrency = &currency
		return row
	}
	percent := *input.DiscountPercent
	row.DiscountPercent = &percent
	return row
}
