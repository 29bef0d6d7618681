package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/pagination"
)

// Service exposes supplier catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, userID, supplierPartyID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, userID, supplierPartyID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeactivateProduct(ctx context.Context, userID, supplierPartyID, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	SKU             string
	Name            string
	Description     *string
	Categories      []string
	Unit            enums.ProductUnit
	DefaultPrice    decimal.Decimal
	DefaultCurrency enums.Currency
	MinOrderQty     *decimal.Decimal
	IsActive        bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name            *string
	Description     *string
	Categories      *[]string
	Unit            *enums.ProductUnit
	DefaultPrice    *decimal.Decimal
	DefaultCurrency *enums.Currency
	MinOrderQty     *decimal.Decimal
	IsActive        *bool
}

// ListProductsInput captures the inputs to paginate/filter the catalog.
type ListProductsInput struct {
	SupplierPartyID *uuid.UUID
	Category        string
	ActiveOnly      bool
	Pagination      pagination.Params
	Cursor          string
}

type productRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySupplierAndSKU(ctx context.Context, supplierPartyID uuid.UUID, sku string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	List(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error)
}

type partyLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
}

type membershipChecker interface {
	UserHasRole(ctx context.Context, userID, partyID uuid.UUID, roles ...enums.MemberRole) (bool, error)
}

type service struct {
	repo        productRepository
	parties     partyLoader
	memberships membershipChecker
}

// NewService constructs a catalog service instance.
func NewService(repo productRepository, parties partyLoader, memberships membershipChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if parties == nil {
		return nil, fmt.Errorf("party repository required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	return &service{
		repo:        repo,
		parties:     parties,
		memberships: memberships,
	}, nil
}

var catalogRoles = []enums.MemberRole{
	enums.MemberRoleOwner,
	enums.MemberRoleAdmin,
	enums.MemberRoleMember,
}

func (s *service) ensureSupplierParty(ctx context.Context, partyID uuid.UUID) error {
	party, err := s.parties.FindByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}
	if party.Type != enums.PartyTypeSupplier {
		return pkgerrors.New(pkgerrors.CodeForbidden, "party is not a supplier")
	}
	if !party.IsActive {
		return pkgerrors.New(pkgerrors.CodeForbidden, "party is inactive")
	}
	return nil
}

func (s *service) ensureUserRole(ctx context.Context, userID, partyID uuid.UUID) error {
	ok, err := s.memberships.UserHasRole(ctx, userID, partyID, catalogRoles...)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient party role")
	}
	return nil
}

func validatePrice(amount decimal.Decimal, currency enums.Currency) error {
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "default_price cannot be negative")
	}
	if !currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, userID, supplierPartyID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit")
	}
	if err := validatePrice(input.DefaultPrice, input.DefaultCurrency); err != nil {
		return nil, err
	}
	if input.MinOrderQty != nil && !input.MinOrderQty.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_order_qty must be positive")
	}

	if err := s.ensureSupplierParty(ctx, supplierPartyID); err != nil {
		return nil, err
	}
	if err := s.ensureUserRole(ctx, userID, supplierPartyID); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindBySupplierAndSKU(ctx, supplierPartyID, sku); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
	}

	product := &models.Product{
		SupplierPartyID: supplierPartyID,
		SKU:             sku,
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		Categories:      pq.StringArray(input.Categories),
		Unit:            input.Unit,
		DefaultPrice:    input.DefaultPrice.Round(2),
		DefaultCurrency: input.DefaultCurrency,
		MinOrderQty:     input.MinOrderQty,
		IsActive:        input.IsActive,
	}
	if product.Categories == nil {
		product.Categories = pq.StringArray{}
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}
	return NewProductDTO(product), nil
}

func (s *service) UpdateProduct(ctx context.Context, userID, supplierPartyID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if err := s.ensureSupplierParty(ctx, supplierPartyID); err != nil {
		return nil, err
	}
	if err := s.ensureUserRole(ctx, userID, supplierPartyID); err != nil {
		return nil, err
	}

	product, err := s.loadOwnedProduct(ctx, supplierPartyID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Categories != nil {
		product.Categories = pq.StringArray(*input.Categories)
		if product.Categories == nil {
			product.Categories = pq.StringArray{}
		}
	}
	if input.Unit != nil {
		if !input.Unit.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit")
		}
		product.Unit = *input.Unit
	}
	if input.DefaultPrice != nil {
		product.DefaultPrice = input.DefaultPrice.Round(2)
	}
	if input.DefaultCurrency != nil {
		product.DefaultCurrency = *input.DefaultCurrency
	}
	if err := validatePrice(product.DefaultPrice, product.DefaultCurrency); err != nil {
		return nil, err
	}
	if input.MinOrderQty != nil {
		if !input.MinOrderQty.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_order_qty must be positive")
		}
		product.MinOrderQty = input.MinOrderQty
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return NewProductDTO(product), nil
}

func (s *service) DeactivateProduct(ctx context.Context, userID, supplierPartyID, productID uuid.UUID) error {
	if err := s.ensureUserRole(ctx, userID, supplierPartyID); err != nil {
		return err
	}

	product, err := s.loadOwnedProduct(ctx, supplierPartyID, productID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return nil
	}

	product.IsActive = false
	if err := s.repo.Update(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	params := listProductsParams{
		SupplierPartyID: input.SupplierPartyID,
		Category:        strings.TrimSpace(input.Category),
		ActiveOnly:      input.ActiveOnly,
		Limit:           input.Pagination.Limit,
	}
	if input.Cursor != "" {
		cursor, err := pagination.ParseCursor(input.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	result := &ProductListResult{Items: make([]ProductDTO, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, *NewProductDTO(&rows[i]))
	}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) loadOwnedProduct(ctx context.Context, supplierPartyID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.SupplierPartyID != supplierPartyID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to party")
	}
	return product, nil
}
