package cart

import (
	"context"

	"github.com/Nishantvt5/merch-app/internal/catalog"
	"github.com/Nishantvt5/merch-app/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*models.CartItem, error)
	FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ListItemsWithProduct(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
}

// productLookup resolves an available product inside the add transaction.
type productLookup interface {
	ProductForCartTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*catalog.CartProduct, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type operationRecorder interface {
	Observe(op, outcome string)
}
