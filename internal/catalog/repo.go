package catalog

import (
	"context"

	"github.com/Nishantvt5/merch-app/pkg/db/models"
	"github.com/Nishantvt5/merch-app/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence operations for the catalog tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func imageOrder(db *gorm.DB) *gorm.DB {
	return db.Order("is_main DESC").Order("created_at ASC").Order("id ASC")
}

// ListActiveCategories returns active categories ordered by name.
func (r *Repository) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindCategoryBySlug loads a category regardless of its active flag.
func (r *Repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// SaveCategory persists mutable category fields. The slug column is never rewritten.
func (r *Repository) SaveCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).
		Model(category).
		Select("name", "description", "is_active", "updated_at").
		Updates(category).Error
}

// DeleteCategory removes the category and detaches its products.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx)
	// sqlite without foreign keys enabled would otherwise leave dangling references.
	if err := db.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
		return 0, err
	}
	res := db.Delete(&models.Category{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// FindAvailableProduct returns the product only when it is marked available.
// lock takes FOR SHARE on Postgres; sqlite already serializes writers.
func (r *Repository) FindAvailableProduct(ctx context.Context, id uuid.UUID, lock bool) (*models.Product, error) {
	var product models.Product
	q := r.db.WithContext(ctx)
	if lock && q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}
	if err := q.
		Where("id = ? AND is_available = ?", id, true).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductByID loads any product with its relations for the admin surface.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("AttributeValues.Attribute").
		Preload("Images", imageOrder).
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

type productListQuery struct {
	CategoryID *uuid.UUID
	Cursor     *pagination.Cursor
	Limit      int
}

// ListAvailableProducts returns up to query.Limit available products, newest first.
func (r *Repository) ListAvailableProducts(ctx context.Context, query productListQuery) ([]models.Product, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Category").
		Preload("Images", imageOrder).
		Where("is_available = ?", true)

	if query.CategoryID != nil {
		qb = qb.Where("category_id = ?", *query.CategoryID)
	}
	if query.Cursor != nil {
		qb = qb.Where("((created_at < ?) OR (created_at = ? AND id < ?))", query.Cursor.CreatedAt, query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.Product
	if err := qb.
		Order("created_at DESC").
		Order("id DESC").
		Limit(query.Limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindAvailableBySlugs loads an available product whose category matches categorySlug.
func (r *Repository) FindAvailableBySlugs(ctx context.Context, categorySlug, productSlug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("AttributeValues.Attribute").
		Preload("Images", imageOrder).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.slug = ? AND categories.slug = ? AND products.is_available = ?", productSlug, categorySlug, true).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

// SaveProduct persists mutable product fields. The slug column is never rewritten.
func (r *Repository) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Model(product).
		Omit(clause.Associations).
		Select("category_id", "name", "description", "price", "stock", "is_available", "updated_at").
		Updates(product).Error
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx)
	// Children go first so the delete behaves the same with or without FK enforcement.
	for _, child := range []any{&models.CartItem{}, &models.ProductAttributeValue{}, &models.ProductImage{}} {
		if err := db.Where("product_id = ?", id).Delete(child).Error; err != nil {
			return 0, err
		}
	}
	res := db.Delete(&models.Product{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *Repository) CreateAttribute(ctx context.Context, attribute *models.ProductAttribute) error {
	return r.db.WithContext(ctx).Create(attribute).Error
}

func (r *Repository) ListAttributes(ctx context.Context) ([]models.ProductAttribute, error) {
	var rows []models.ProductAttribute
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindAttributeByID(ctx context.Context, id uuid.UUID) (*models.ProductAttribute, error) {
	var attribute models.ProductAttribute
	if err := r.db.WithContext(ctx).First(&attribute, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attribute, nil
}

// UpsertAttributeValue writes the value for (product, attribute), replacing any previous one.
func (r *Repository) UpsertAttributeValue(ctx context.Context, value *models.ProductAttributeValue) (*models.ProductAttributeValue, error) {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "attribute_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(value).Error; err != nil {
		return nil, err
	}

	var stored models.ProductAttributeValue
	if err := db.Preload("Attribute").
		Where("product_id = ? AND attribute_id = ?", value.ProductID, value.AttributeID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *Repository) DeleteAttributeValue(ctx context.Context, productID, attributeID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("product_id = ? AND attribute_id = ?", productID, attributeID).
		Delete(&models.ProductAttributeValue{})
	return res.RowsAffected, res.Error
}

func (r *Repository) CreateImage(ctx context.Context, image *models.ProductImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *Repository) FindImageByID(ctx context.Context, id uuid.UUID) (*models.ProductImage, error) {
	var image models.ProductImage
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// ClearMainImages unsets the main flag on every image of the product.
func (r *Repository) ClearMainImages(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("product_id = ? AND is_main = ?", productID, true).
		Update("is_main", false).Error
}

func (r *Repository) MarkMainImage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("id = ?", id).
		Update("is_main", true).Error
}

func (r *Repository) DeleteImage(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.ProductImage{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
