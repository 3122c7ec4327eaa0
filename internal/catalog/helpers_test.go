package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/Nishantvt5/merch-app/pkg/db/dbtest"
	"github.com/Nishantvt5/merch-app/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	conn  *gorm.DB
	repo  *Repository
	svc   Service
	admin AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	admin, err := NewAdminService(repo, dbtest.Client(conn))
	require.NoError(t, err)
	return &fixture{conn: conn, repo: repo, svc: svc, admin: admin}
}

func (f *fixture) category(t *testing.T, name string, active bool) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: Slugify(name), IsActive: active}
	require.NoError(t, f.conn.Create(category).Error)
	return category
}

func (f *fixture) product(t *testing.T, category *models.Category, name, price string, available bool, createdAt time.Time) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        name,
		Slug:        Slugify(name),
		Price:       decimal.RequireFromString(price),
		Stock:       5,
		IsAvailable: available,
		CreatedAt:   createdAt,
	}
	if category != nil {
		product.CategoryID = &category.ID
	}
	require.NoError(t, f.conn.Create(product).Error)
	return product
}

func (f *fixture) image(t *testing.T, productID uuid.UUID, ref string, main bool, createdAt time.Time) *models.ProductImage {
	t.Helper()
	image := &models.ProductImage{ProductID: productID, Image: ref, IsMain: main, CreatedAt: createdAt}
	require.NoError(t, f.conn.Create(image).Error)
	return image
}

var testCtx = context.Background()

func boolPtr(v bool) *bool { return &v }
