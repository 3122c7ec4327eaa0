package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable catalog entry.
type Product struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID      *uuid.UUID              `gorm:"column:category_id;type:uuid;index:products_category_id_idx"`
	Category        *Category               `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Name            string                  `gorm:"column:name;size:200;not null;uniqueIndex:products_name_key"`
	Slug            string                  `gorm:"column:slug;size:220;not null;uniqueIndex:products_slug_key"`
	Description     string                  `gorm:"column:description;not null"`
	Price           decimal.Decimal         `gorm:"column:price;type:numeric(10,2);not null"`
	Stock           int                     `gorm:"column:stock;not null;check:products_stock_check,stock >= 0"`
	IsAvailable     bool                    `gorm:"column:is_available;not null"`
	AttributeValues []ProductAttributeValue `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images          []ProductImage          `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime;index:products_created_at_idx"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
