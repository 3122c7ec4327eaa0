package catalog

import (
	"time"

	"github.com/Nishantvt5/merch-app/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartProduct is the slice of a product the cart engine needs.
type CartProduct struct {
	ID          uuid.UUID
	Name        string
	Price       decimal.Decimal
	IsAvailable bool
}

// CategoryDTO is the public category payload.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
}

// CategoryRefDTO is the category reference embedded in product payloads.
type CategoryRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type ImageDTO struct {
	ID        uuid.UUID `json:"id"`
	Image     string    `json:"image"`
	AltText   string    `json:"alt_text"`
	IsMain    bool      `json:"is_main"`
	CreatedAt time.Time `json:"created_at"`
}

type AttributeDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type AttributeValueDTO struct {
	AttributeID uuid.UUID `json:"attribute_id"`
	Attribute   string    `json:"attribute"`
	Value       string    `json:"value"`
}

// ProductSummaryDTO is one row in the product listing.
type ProductSummaryDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Price       string          `json:"price"`
	Stock       int             `json:"stock"`
	IsAvailable bool            `json:"is_available"`
	Category    *CategoryRefDTO `json:"category,omitempty"`
	MainImage   *ImageDTO       `json:"main_image"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductDetailDTO is the full product page payload.
type ProductDetailDTO struct {
	ProductSummaryDTO
	Description string              `json:"description"`
	Attributes  []AttributeValueDTO `json:"attributes"`
	Gallery     []ImageDTO          `json:"gallery"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ProductListResult is one page of the product listing.
type ProductListResult struct {
	Products   []ProductSummaryDTO `json:"products"`
	Category   *CategoryDTO        `json:"category,omitempty"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

func NewCategoryDTO(category *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		IsActive:    category.IsActive,
	}
}

func NewImageDTO(image models.ProductImage) ImageDTO {
	return ImageDTO{
		ID:        image.ID,
		Image:     image.Image,
		AltText:   image.AltText,
		IsMain:    image.IsMain,
		CreatedAt: image.CreatedAt,
	}
}

func NewAttributeValueDTO(value models.ProductAttributeValue) AttributeValueDTO {
	dto := AttributeValueDTO{
		AttributeID: value.AttributeID,
		Value:       value.Value,
	}
	if value.Attribute != nil {
		dto.Attribute = value.Attribute.Name
	}
	return dto
}

// splitImages separates the main image from the gallery. Images are expected in
// display order (main first, then creation order).
func splitImages(images []models.ProductImage) (*ImageDTO, []ImageDTO) {
	var main *ImageDTO
	gallery := make([]ImageDTO, 0, len(images))
	for _, image := range images {
		if image.IsMain && main == nil {
			dto := NewImageDTO(image)
			main = &dto
			continue
		}
		gallery = append(gallery, NewImageDTO(image))
	}
	return main, gallery
}

func NewProductSummaryDTO(product *models.Product) ProductSummaryDTO {
	dto := ProductSummaryDTO{
		ID:          product.ID,
		Name:        product.Name,
		Slug:        product.Slug,
		Price:       product.Price.StringFixed(2),
		Stock:       product.Stock,
		IsAvailable: product.IsAvailable,
		CreatedAt:   product.CreatedAt,
	}
	if product.Category != nil {
		dto.Category = &CategoryRefDTO{
			ID:   product.Category.ID,
			Name: product.Category.Name,
			Slug: product.Category.Slug,
		}
	}
	dto.MainImage, _ = splitImages(product.Images)
	return dto
}

func NewProductDetailDTO(product *models.Product) *ProductDetailDTO {
	dto := &ProductDetailDTO{
		ProductSummaryDTO: NewProductSummaryDTO(product),
		Description:       product.Description,
		Attributes:        make([]AttributeValueDTO, 0, len(product.AttributeValues)),
		UpdatedAt:         product.UpdatedAt,
	}
	for _, value := range product.AttributeValues {
		dto.Attributes = append(dto.Attributes, NewAttributeValueDTO(value))
	}
	_, dto.Gallery = splitImages(product.Images)
	return dto
}
