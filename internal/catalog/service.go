package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Nishantvt5/merch-app/pkg/db"
	pkgerrors "github.com/Nishantvt5/merch-app/pkg/errors"
	"github.com/Nishantvt5/merch-app/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes the read side of the catalog to shoppers and the cart engine.
type Service interface {
	ProductForCart(ctx context.Context, id uuid.UUID) (*CartProduct, error)
	ProductForCartTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*CartProduct, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListProducts(ctx context.Context, params ListParams) (*ProductListResult, error)
	ProductDetail(ctx context.Context, categorySlug, productSlug string) (*ProductDetailDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds the public catalog service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// ProductForCart returns pricing data for an available product. Missing and
// unavailable products are indistinguishable to the caller.
func (s *service) ProductForCart(ctx context.Context, id uuid.UUID) (*CartProduct, error) {
	return s.ProductForCartTx(ctx, nil, id)
}

// ProductForCartTx is ProductForCart bound to tx. On Postgres the product row
// is share-locked until tx ends, so it cannot be deleted or withdrawn while a
// line referencing it is written.
func (s *service) ProductForCartTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*CartProduct, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.NotFound("product")
	}
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	product, err := repo.FindAvailableProduct(ctx, id, tx != nil)
	if err != nil {
		return nil, mapRepoError(err, "product", "load product")
	}
	return &CartProduct{
		ID:          product.ID,
		Name:        product.Name,
		Price:       product.Price,
		IsAvailable: product.IsAvailable,
	}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListActiveCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewCategoryDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) ListProducts(ctx context.Context, params ListParams) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	result := &ProductListResult{}
	query := productListQuery{
		Cursor: cursor,
		Limit:  pagination.LimitWithBuffer(params.Limit),
	}

	if slug := strings.TrimSpace(params.CategorySlug); slug != "" {
		category, err := s.repo.FindCategoryBySlug(ctx, slug)
		if err != nil {
			return nil, mapRepoError(err, "category", "load category")
		}
		dto := NewCategoryDTO(category)
		result.Category = &dto
		query.CategoryID = &category.ID
	}

	rows, err := s.repo.ListAvailableProducts(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	page, more := pagination.Trim(rows, params.Limit)
	result.Products = make([]ProductSummaryDTO, 0, len(page))
	for i := range page {
		result.Products = append(result.Products, NewProductSummaryDTO(&page[i]))
	}
	if more {
		last := page[len(page)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func (s *service) ProductDetail(ctx context.Context, categorySlug, productSlug string) (*ProductDetailDTO, error) {
	categorySlug = strings.TrimSpace(categorySlug)
	productSlug = strings.TrimSpace(productSlug)
	if categorySlug == "" || productSlug == "" {
		return nil, pkgerrors.NotFound("product")
	}
	product, err := s.repo.FindAvailableBySlugs(ctx, categorySlug, productSlug)
	if err != nil {
		return nil, mapRepoError(err, "product", "load product detail")
	}
	return NewProductDetailDTO(product), nil
}

// mapRepoError translates storage errors into the API taxonomy.
func mapRepoError(err error, resource, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.NotFound(resource)
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, resource+" already exists")
	case pkgerrors.As(err) != nil:
		return err
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}
