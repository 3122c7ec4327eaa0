package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/Nishantvt5/merch-app/pkg/db/models"
	pkgerrors "github.com/Nishantvt5/merch-app/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategoryDerivesSlugOnce(t *testing.T) {
	f := newFixture(t)

	created, err := f.admin.CreateCategory(testCtx, CategoryInput{Name: "Café Mugs"})
	require.NoError(t, err)
	assert.Equal(t, "cafe-mugs", created.Slug)
	assert.True(t, created.IsActive)

	renamed := "Coffee Mugs"
	updated, err := f.admin.UpdateCategory(testCtx, created.ID, CategoryUpdate{Name: &renamed, IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Coffee Mugs", updated.Name)
	assert.Equal(t, "cafe-mugs", updated.Slug)
	assert.False(t, updated.IsActive)

	var stored models.Category
	require.NoError(t, f.conn.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, "cafe-mugs", stored.Slug)
	assert.False(t, stored.IsActive)
}

func TestCreateCategoryRejectsDuplicatesAndBlankNames(t *testing.T) {
	f := newFixture(t)

	_, err := f.admin.CreateCategory(testCtx, CategoryInput{Name: "Posters"})
	require.NoError(t, err)

	_, err = f.admin.CreateCategory(testCtx, CategoryInput{Name: "Posters"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = f.admin.CreateCategory(testCtx, CategoryInput{Name: "   "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.admin.CreateCategory(testCtx, CategoryInput{Name: "!!!"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteCategoryDetachesProducts(t *testing.T) {
	f := newFixture(t)
	category := f.category(t, "Seasonal", true)
	product := f.product(t, category, "Holiday Pin", "3.00", true, time.Now().UTC())

	require.NoError(t, f.admin.DeleteCategory(testCtx, category.ID))

	var stored models.Product
	require.NoError(t, f.conn.First(&stored, "id = ?", product.ID).Error)
	assert.Nil(t, stored.CategoryID)

	err := f.admin.DeleteCategory(testCtx, category.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateProductValidatesInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		input ProductInput
		code  pkgerrors.Code
	}{
		{name: "negative price", input: ProductInput{Name: "A", Price: decimal.RequireFromString("-1")}, code: pkgerrors.CodeValidation},
		{name: "three decimals", input: ProductInput{Name: "B", Price: decimal.RequireFromString("1.005")}, code: pkgerrors.CodeValidation},
		{name: "too large", input: ProductInput{Name: "C", Price: decimal.RequireFromString("100000000")}, code: pkgerrors.CodeValidation},
		{name: "negative stock", input: ProductInput{Name: "D", Price: decimal.RequireFromString("1"), Stock: -1}, code: pkgerrors.CodeValidation},
		{name: "missing category", input: ProductInput{Name: "E", Price: decimal.RequireFromString("1"), CategoryID: ptrUUID(uuid.New())}, code: pkgerrors.CodeValidation},
		{name: "blank name", input: ProductInput{Price: decimal.RequireFromString("1")}, code: pkgerrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.admin.CreateProduct(testCtx, tt.input)
			assert.True(t, pkgerrors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestCreateAndUpdateProduct(t *testing.T) {
	f := newFixture(t)
	category := f.category(t, "Apparel", true)

	created, err := f.admin.CreateProduct(testCtx, ProductInput{
		CategoryID: &category.ID,
		Name:       "Logo Hoodie",
		Price:      decimal.RequireFromString("45.5"),
		Stock:      3,
	})
	require.NoError(t, err)
	assert.Equal(t, "logo-hoodie", created.Slug)
	assert.Equal(t, "45.50", created.Price)
	assert.True(t, created.IsAvailable)
	require.NotNil(t, created.Category)
	assert.Equal(t, "apparel", created.Category.Slug)

	_, err = f.admin.CreateProduct(testCtx, ProductInput{Name: "Logo Hoodie", Price: decimal.Zero})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	name := "Zip Hoodie"
	price := decimal.RequireFromString("50.00")
	updated, err := f.admin.UpdateProduct(testCtx, created.ID, ProductUpdate{
		Name:          &name,
		Price:         &price,
		IsAvailable:   boolPtr(false),
		ClearCategory: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Zip Hoodie", updated.Name)
	assert.Equal(t, "logo-hoodie", updated.Slug)
	assert.Equal(t, "50.00", updated.Price)
	assert.False(t, updated.IsAvailable)
	assert.Nil(t, updated.Category)

	_, err = f.svc.ProductForCart(testCtx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteProductRemovesChildren(t *testing.T) {
	f := newFixture(t)
	product := f.product(t, nil, "Keychain", "2.00", true, time.Now().UTC())
	f.image(t, product.ID, "keychain.jpg", true, time.Now().UTC())

	require.NoError(t, f.admin.DeleteProduct(testCtx, product.ID))

	var images int64
	require.NoError(t, f.conn.Model(&models.ProductImage{}).Where("product_id = ?", product.ID).Count(&images).Error)
	assert.Zero(t, images)

	err := f.admin.DeleteProduct(testCtx, product.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestMainImageStaysUnique(t *testing.T) {
	f := newFixture(t)
	product := f.product(t, nil, "Poster", "12.00", true, time.Now().UTC())

	first, err := f.admin.AddImage(testCtx, product.ID, ImageInput{Image: "poster-a.jpg", IsMain: true})
	require.NoError(t, err)
	second, err := f.admin.AddImage(testCtx, product.ID, ImageInput{Image: "poster-b.jpg", IsMain: true})
	require.NoError(t, err)
	third, err := f.admin.AddImage(testCtx, product.ID, ImageInput{Image: "poster-c.jpg"})
	require.NoError(t, err)

	assertMain := func(want uuid.UUID) {
		t.Helper()
		var mains []models.ProductImage
		require.NoError(t, f.conn.Where("product_id = ? AND is_main = ?", product.ID, true).Find(&mains).Error)
		require.Len(t, mains, 1)
		assert.Equal(t, want, mains[0].ID)
	}
	assertMain(second.ID)

	promoted, err := f.admin.SetMainImage(testCtx, third.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsMain)
	assertMain(third.ID)

	require.NoError(t, f.admin.DeleteImage(testCtx, first.ID))
	err = f.admin.DeleteImage(testCtx, first.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.admin.AddImage(testCtx, uuid.New(), ImageInput{Image: "orphan.jpg"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.admin.SetMainImage(testCtx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestAttributeValuesUpsert(t *testing.T) {
	f := newFixture(t)
	product := f.product(t, nil, "Tee", "15.00", true, time.Now().UTC())

	size, err := f.admin.CreateAttribute(testCtx, "Size")
	require.NoError(t, err)
	_, err = f.admin.CreateAttribute(testCtx, "Size")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = f.admin.SetAttributeValue(testCtx, product.ID, size.ID, "M")
	require.NoError(t, err)
	value, err := f.admin.SetAttributeValue(testCtx, product.ID, size.ID, "L")
	require.NoError(t, err)
	assert.Equal(t, "L", value.Value)
	assert.Equal(t, "Size", value.Attribute)

	var count int64
	require.NoError(t, f.conn.Model(&models.ProductAttributeValue{}).Where("product_id = ?", product.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	attributes, err := f.admin.ListAttributes(testCtx)
	require.NoError(t, err)
	require.Len(t, attributes, 1)

	require.NoError(t, f.admin.DeleteAttributeValue(testCtx, product.ID, size.ID))
	err = f.admin.DeleteAttributeValue(testCtx, product.ID, size.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.admin.SetAttributeValue(testCtx, product.ID, uuid.New(), "XL")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }

func TestAdminTextFieldsRespectColumnWidths(t *testing.T) {
	f := newFixture(t)
	product := f.product(t, nil, "Banner", "8.00", true, time.Now().UTC())
	caption, err := f.admin.CreateAttribute(testCtx, "Caption")
	require.NoError(t, err)

	stored, err := f.admin.SetAttributeValue(testCtx, product.ID, caption.ID, strings.Repeat("é", 255))
	require.NoError(t, err)
	assert.Len(t, []rune(stored.Value), 255)
	_, err = f.admin.SetAttributeValue(testCtx, product.ID, caption.ID, strings.Repeat("é", 256))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.admin.AddImage(testCtx, product.ID, ImageInput{Image: "banner-a.jpg", AltText: strings.Repeat("a", 200)})
	require.NoError(t, err)
	_, err = f.admin.AddImage(testCtx, product.ID, ImageInput{Image: "banner-b.jpg", AltText: strings.Repeat("a", 201)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var images int64
	require.NoError(t, f.conn.Model(&models.ProductImage{}).Where("product_id = ?", product.ID).Count(&images).Error)
	assert.EqualValues(t, 1, images)
}
