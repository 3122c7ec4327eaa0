package cart

import (
	"time"

	"github.com/Nishantvt5/merch-app/pkg/db/models"
	"github.com/Nishantvt5/merch-app/pkg/enums"
	"github.com/google/uuid"
)

// ProductRefDTO is the product summary embedded in a cart line.
type ProductRefDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Price       string    `json:"price"`
	IsAvailable bool      `json:"is_available"`
}

// ItemDTO is one cart line with its live total.
type ItemDTO struct {
	ID         uuid.UUID      `json:"id"`
	ProductID  uuid.UUID      `json:"product_id"`
	Product    *ProductRefDTO `json:"product,omitempty"`
	Quantity   int            `json:"quantity"`
	TotalPrice string         `json:"total_price"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CartDTO is the cart page payload. CartID is nil when the user has no cart yet.
type CartDTO struct {
	CartID        *uuid.UUID `json:"cart_id"`
	Items         []ItemDTO  `json:"items"`
	TotalQuantity int        `json:"total_quantity"`
	TotalPrice    string     `json:"total_price"`
}

// MutationResult reports what a cart mutation did.
type MutationResult struct {
	Outcome     enums.CartOutcome `json:"outcome"`
	Item        *ItemDTO          `json:"item,omitempty"`
	ProductName string            `json:"product_name"`
	Message     string            `json:"message"`
}

func NewItemDTO(item models.CartItem) ItemDTO {
	dto := ItemDTO{
		ID:         item.ID,
		ProductID:  item.ProductID,
		Quantity:   item.Quantity,
		TotalPrice: LineTotal(item).StringFixed(2),
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
	if item.Product != nil {
		dto.Product = &ProductRefDTO{
			ID:          item.Product.ID,
			Name:        item.Product.Name,
			Slug:        item.Product.Slug,
			Price:       item.Product.Price.StringFixed(2),
			IsAvailable: item.Product.IsAvailable,
		}
	}
	return dto
}

// NewCartDTO builds the view with totals derived from items.
func NewCartDTO(cart *models.Cart, items []models.CartItem) *CartDTO {
	totals := Totals(items)
	dto := &CartDTO{
		Items:         make([]ItemDTO, 0, len(items)),
		TotalQuantity: totals.Quantity,
		TotalPrice:    totals.Price.StringFixed(2),
	}
	if cart != nil {
		id := cart.ID
		dto.CartID = &id
	}
	for _, item := range items {
		dto.Items = append(dto.Items, NewItemDTO(item))
	}
	return dto
}
