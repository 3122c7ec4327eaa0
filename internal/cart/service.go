package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nishantvt5/merch-app/internal/catalog"
	"github.com/Nishantvt5/merch-app/pkg/db/models"
	"github.com/Nishantvt5/merch-app/pkg/enums"
	pkgerrors "github.com/Nishantvt5/merch-app/pkg/errors"
	"github.com/Nishantvt5/merch-app/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxAddQuantity bounds a single add or set when no override is configured.
const MaxAddQuantity = 100

// Service exposes the per-user cart operations.
type Service interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*MutationResult, error)
	SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*MutationResult, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*MutationResult, error)
	View(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

// ServiceParams wires the cart service dependencies.
type ServiceParams struct {
	Repo        CartRepository
	Tx          txRunner
	Products    productLookup
	MaxQuantity int
	Logger      *logger.Logger
	Metrics     operationRecorder
}

type service struct {
	repo        CartRepository
	tx          txRunner
	products    productLookup
	maxQuantity int
	logg        *logger.Logger
	metrics     operationRecorder
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	maxQuantity := params.MaxQuantity
	if maxQuantity <= 0 {
		maxQuantity = MaxAddQuantity
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		products:    params.Products,
		maxQuantity: maxQuantity,
		logg:        logg,
		metrics:     params.Metrics,
	}, nil
}

func (s *service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err, "cart", "get or create cart")
	}
	return cart, nil
}

// AddItem merges quantity into the user's line for productID.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*MutationResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if err := s.validateQuantity(quantity); err != nil {
		return nil, err
	}

	var (
		product *catalog.CartProduct
		line    *models.CartItem
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		product, err = s.products.ProductForCartTx(ctx, tx, productID)
		if err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		cart, err := repo.GetOrCreate(ctx, userID)
		if err != nil {
			return mapRepoError(err, "cart", "get or create cart")
		}
		stored, err := repo.UpsertItem(ctx, cart.ID, product.ID, quantity)
		if err != nil {
			return mapRepoError(err, "cart item", "add cart item")
		}
		line, err = repo.FindItemForUser(ctx, stored.ID, userID)
		if err != nil {
			return mapRepoError(err, "cart item", "load cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome := enums.CartOutcomeAdded
	message := fmt.Sprintf("%s added to your cart.", product.Name)
	if line.Quantity > quantity {
		outcome = enums.CartOutcomeUpdated
		message = fmt.Sprintf("Updated quantity of %s.", product.Name)
	}

	s.observe(ctx, "add", outcome, map[string]any{
		"user_id":    userID.String(),
		"product_id": product.ID.String(),
		"quantity":   line.Quantity,
	})

	dto := NewItemDTO(*line)
	return &MutationResult{
		Outcome:     outcome,
		Item:        &dto,
		ProductName: product.Name,
		Message:     message,
	}, nil
}

// SetQuantity overwrites the line quantity. A non-positive quantity removes the line.
func (s *service) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*MutationResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if quantity > 0 {
		if err := s.validateQuantity(quantity); err != nil {
			return nil, err
		}
	}

	var line *models.CartItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindItemForUser(ctx, itemID, userID)
		if err != nil {
			return mapRepoError(err, "cart item", "load cart item")
		}
		if quantity <= 0 {
			if err := repo.DeleteItem(ctx, item.ID); err != nil {
				return mapRepoError(err, "cart item", "remove cart item")
			}
		} else {
			if err := repo.UpdateQuantity(ctx, item.ID, quantity); err != nil {
				return mapRepoError(err, "cart item", "update cart item")
			}
			item.Quantity = quantity
		}
		line = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	name := productName(line)
	fields := map[string]any{
		"user_id":    userID.String(),
		"product_id": line.ProductID.String(),
		"item_id":    line.ID.String(),
	}
	if quantity <= 0 {
		s.observe(ctx, "set", enums.CartOutcomeRemoved, fields)
		return &MutationResult{
			Outcome:     enums.CartOutcomeRemoved,
			ProductName: name,
			Message:     fmt.Sprintf("%s removed from your cart.", name),
		}, nil
	}

	fields["quantity"] = quantity
	s.observe(ctx, "set", enums.CartOutcomeUpdated, fields)
	dto := NewItemDTO(*line)
	return &MutationResult{
		Outcome:     enums.CartOutcomeUpdated,
		Item:        &dto,
		ProductName: name,
		Message:     fmt.Sprintf("Updated quantity of %s.", name),
	}, nil
}

// RemoveItem deletes the line and reports the product that was removed.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*MutationResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}

	var line *models.CartItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindItemForUser(ctx, itemID, userID)
		if err != nil {
			return mapRepoError(err, "cart item", "load cart item")
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return mapRepoError(err, "cart item", "remove cart item")
		}
		line = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	name := productName(line)
	s.observe(ctx, "remove", enums.CartOutcomeRemoved, map[string]any{
		"user_id":    userID.String(),
		"product_id": line.ProductID.String(),
		"item_id":    line.ID.String(),
	})
	return &MutationResult{
		Outcome:     enums.CartOutcomeRemoved,
		ProductName: name,
		Message:     fmt.Sprintf("%s removed from your cart.", name),
	}, nil
}

// View returns the cart with live totals. A user without a cart gets an empty view
// and no cart is created.
func (s *service) View(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewCartDTO(nil, nil), nil
		}
		return nil, mapRepoError(err, "cart", "load cart")
	}
	items, err := s.repo.ListItemsWithProduct(ctx, cart.ID)
	if err != nil {
		return nil, mapRepoError(err, "cart", "list cart items")
	}
	return NewCartDTO(cart, items), nil
}

func (s *service) validateQuantity(quantity int) error {
	if quantity < 1 || quantity > s.maxQuantity {
		msg := fmt.Sprintf("quantity must be between 1 and %d", s.maxQuantity)
		return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]string{"quantity": msg})
	}
	return nil
}

func (s *service) observe(ctx context.Context, op string, outcome enums.CartOutcome, fields map[string]any) {
	if s.metrics != nil {
		s.metrics.Observe(op, outcome.String())
	}
	fields["op"] = op
	ctx = s.logg.WithFields(ctx, fields)
	switch outcome {
	case enums.CartOutcomeAdded:
		s.logg.Info(ctx, "cart.item.added")
	case enums.CartOutcomeUpdated:
		s.logg.Info(ctx, "cart.item.updated")
	case enums.CartOutcomeRemoved:
		s.logg.Info(ctx, "cart.item.removed")
	}
}

func productName(item *models.CartItem) string {
	if item == nil || item.Product == nil {
		return "Item"
	}
	return item.Product.Name
}

func mapRepoError(err error, resource, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.NotFound(resource)
	case pkgerrors.As(err) != nil:
		return err
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}
