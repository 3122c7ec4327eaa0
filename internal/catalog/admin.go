package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Nishantvt5/merch-app/pkg/db/models"
	pkgerrors "github.com/Nishantvt5/merch-app/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var maxPrice = decimal.New(1, 8)

// Column widths of product_attribute_values.value and product_images.alt_text.
const (
	maxAttributeValueLen = 255
	maxAltTextLen        = 200
)

// AdminService is the catalog management surface reserved for admin accounts.
type AdminService interface {
	CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryUpdate) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetailDTO, error)
	CreateProduct(ctx context.Context, input ProductInput) (*ProductDetailDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductUpdate) (*ProductDetailDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListAttributes(ctx context.Context) ([]AttributeDTO, error)
	CreateAttribute(ctx context.Context, name string) (*AttributeDTO, error)
	SetAttributeValue(ctx context.Context, productID, attributeID uuid.UUID, value string) (*AttributeValueDTO, error)
	DeleteAttributeValue(ctx context.Context, productID, attributeID uuid.UUID) error

	AddImage(ctx context.Context, productID uuid.UUID, input ImageInput) (*ImageDTO, error)
	SetMainImage(ctx context.Context, imageID uuid.UUID) (*ImageDTO, error)
	DeleteImage(ctx context.Context, imageID uuid.UUID) error
}

// CategoryInput creates a category. The slug is derived from Name.
type CategoryInput struct {
	Name        string
	Description string
	IsActive    *bool
}

// CategoryUpdate carries optional category changes. The slug is immutable.
type CategoryUpdate struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// ProductInput creates a product. The slug is derived from Name.
type ProductInput struct {
	CategoryID  *uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	IsAvailable *bool
}

// ProductUpdate carries optional product changes. The slug is immutable.
type ProductUpdate struct {
	CategoryID    *uuid.UUID
	ClearCategory bool
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	Stock         *int
	IsAvailable   *bool
}

type ImageInput struct {
	Image   string
	AltText string
	IsMain  bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type adminService struct {
	repo *Repository
	tx   txRunner
}

// NewAdminService builds the catalog management service.
func NewAdminService(repo *Repository, tx txRunner) (AdminService, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &adminService{repo: repo, tx: tx}, nil
}

func (s *adminService) CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name", "name is required")
	}
	slug, err := slugFor(name)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		IsActive:    input.IsActive == nil || *input.IsActive,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, mapRepoError(err, "category", "create category")
	}
	dto := NewCategoryDTO(category)
	return &dto, nil
}

func (s *adminService) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryUpdate) (*CategoryDTO, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "category", "load category")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, validationError("name", "name cannot be blank")
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.repo.SaveCategory(ctx, category); err != nil {
		return nil, mapRepoError(err, "category", "update category")
	}
	dto := NewCategoryDTO(category)
	return &dto, nil
}

func (s *adminService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).DeleteCategory(ctx, id)
		if err != nil {
			return mapRepoError(err, "category", "delete category")
		}
		if affected == 0 {
			return pkgerrors.NotFound("category")
		}
		return nil
	})
}

func (s *adminService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetailDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "product", "load product")
	}
	return NewProductDetailDTO(product), nil
}

func (s *adminService) CreateProduct(ctx context.Context, input ProductInput) (*ProductDetailDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name", "name is required")
	}
	slug, err := slugFor(name)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if input.Stock < 0 {
		return nil, validationError("stock", "stock cannot be negative")
	}
	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID:  input.CategoryID,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Stock:       input.Stock,
		IsAvailable: input.IsAvailable == nil || *input.IsAvailable,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, mapRepoError(err, "product", "create product")
	}
	return s.GetProduct(ctx, product.ID)
}

func (s *adminService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductUpdate) (*ProductDetailDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "product", "load product")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, validationError("name", "name cannot be blank")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, validationError("stock", "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.IsAvailable != nil {
		product.IsAvailable = *input.IsAvailable
	}
	switch {
	case input.ClearCategory:
		product.CategoryID = nil
	case input.CategoryID != nil:
		if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = input.CategoryID
	}

	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return nil, mapRepoError(err, "product", "update product")
	}
	return s.GetProduct(ctx, product.ID)
}

func (s *adminService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).DeleteProduct(ctx, id)
		if err != nil {
			return mapRepoError(err, "product", "delete product")
		}
		if affected == 0 {
			return pkgerrors.NotFound("product")
		}
		return nil
	})
}

func (s *adminService) ListAttributes(ctx context.Context) ([]AttributeDTO, error) {
	rows, err := s.repo.ListAttributes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attributes")
	}
	out := make([]AttributeDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, AttributeDTO{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

func (s *adminService) CreateAttribute(ctx context.Context, name string) (*AttributeDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name", "name is required")
	}
	attribute := &models.ProductAttribute{Name: name}
	if err := s.repo.CreateAttribute(ctx, attribute); err != nil {
		return nil, mapRepoError(err, "attribute", "create attribute")
	}
	return &AttributeDTO{ID: attribute.ID, Name: attribute.Name}, nil
}

func (s *adminService) SetAttributeValue(ctx context.Context, productID, attributeID uuid.UUID, value string) (*AttributeValueDTO, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, validationError("value", "value is required")
	}
	if utf8.RuneCountInString(value) > maxAttributeValueLen {
		return nil, validationError("value", fmt.Sprintf("value must be at most %d characters", maxAttributeValueLen))
	}
	if _, err := s.repo.FindProductByID(ctx, productID); err != nil {
		return nil, mapRepoError(err, "product", "load product")
	}
	if _, err := s.repo.FindAttributeByID(ctx, attributeID); err != nil {
		return nil, mapRepoError(err, "attribute", "load attribute")
	}

	stored, err := s.repo.UpsertAttributeValue(ctx, &models.ProductAttributeValue{
		ProductID:   productID,
		AttributeID: attributeID,
		Value:       value,
	})
	if err != nil {
		return nil, mapRepoError(err, "attribute value", "upsert attribute value")
	}
	dto := NewAttributeValueDTO(*stored)
	return &dto, nil
}

func (s *adminService) DeleteAttributeValue(ctx context.Context, productID, attributeID uuid.UUID) error {
	affected, err := s.repo.DeleteAttributeValue(ctx, productID, attributeID)
	if err != nil {
		return mapRepoError(err, "attribute value", "delete attribute value")
	}
	if affected == 0 {
		return pkgerrors.NotFound("attribute value")
	}
	return nil
}

// AddImage attaches an image to the product. A main image demotes any previous one.
func (s *adminService) AddImage(ctx context.Context, productID uuid.UUID, input ImageInput) (*ImageDTO, error) {
	ref := strings.TrimSpace(input.Image)
	if ref == "" {
		return nil, validationError("image", "image is required")
	}
	altText := strings.TrimSpace(input.AltText)
	if utf8.RuneCountInString(altText) > maxAltTextLen {
		return nil, validationError("alt_text", fmt.Sprintf("alt text must be at most %d characters", maxAltTextLen))
	}

	image := &models.ProductImage{
		ProductID: productID,
		Image:     ref,
		AltText:   altText,
		IsMain:    input.IsMain,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindProductByID(ctx, productID); err != nil {
			return mapRepoError(err, "product", "load product")
		}
		if image.IsMain {
			if err := repo.ClearMainImages(ctx, productID); err != nil {
				return mapRepoError(err, "image", "clear main images")
			}
		}
		if err := repo.CreateImage(ctx, image); err != nil {
			return mapRepoError(err, "image", "create image")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := NewImageDTO(*image)
	return &dto, nil
}

// SetMainImage promotes imageID to the single main image of its product.
func (s *adminService) SetMainImage(ctx context.Context, imageID uuid.UUID) (*ImageDTO, error) {
	var promoted *models.ProductImage
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		image, err := repo.FindImageByID(ctx, imageID)
		if err != nil {
			return mapRepoError(err, "image", "load image")
		}
		if err := repo.ClearMainImages(ctx, image.ProductID); err != nil {
			return mapRepoError(err, "image", "clear main images")
		}
		if err := repo.MarkMainImage(ctx, image.ID); err != nil {
			return mapRepoError(err, "image", "mark main image")
		}
		image.IsMain = true
		promoted = image
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := NewImageDTO(*promoted)
	return &dto, nil
}

func (s *adminService) DeleteImage(ctx context.Context, imageID uuid.UUID) error {
	affected, err := s.repo.DeleteImage(ctx, imageID)
	if err != nil {
		return mapRepoError(err, "image", "delete image")
	}
	if affected == 0 {
		return pkgerrors.NotFound("image")
	}
	return nil
}

func (s *adminService) ensureCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.repo.FindCategoryByID(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationError("category_id", "category does not exist")
		}
		return mapRepoError(err, "category", "load category")
	}
	return nil
}

func slugFor(name string) (string, error) {
	slug := Slugify(name)
	if slug == "" {
		return "", validationError("slug", "name must contain at least one letter or digit")
	}
	return slug, nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return validationError("price", "price cannot be negative")
	}
	if !price.Equal(price.Round(2)) {
		return validationError("price", "price supports at most two decimal places")
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return validationError("price", "price exceeds the supported range")
	}
	return nil
}

func validationError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]string{field: message})
}
