package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductAttribute names an attribute kind such as "Color".
type ProductAttribute struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;size:100;not null;uniqueIndex:product_attributes_name_key"`
}

func (a *ProductAttribute) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// ProductAttributeValue holds the single value of one attribute for one product.
type ProductAttributeValue struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ProductID   uuid.UUID         `gorm:"column:product_id;type:uuid;not null;uniqueIndex:product_attribute_values_product_attribute_key"`
	AttributeID uuid.UUID         `gorm:"column:attribute_id;type:uuid;not null;uniqueIndex:product_attribute_values_product_attribute_key"`
	Attribute   *ProductAttribute `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
	Value       string            `gorm:"column:value;size:255;not null"`
}

func (v *ProductAttributeValue) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
