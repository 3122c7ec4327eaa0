package models

// All lists the persisted models in dependency order for schema bootstrapping.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&ProductAttribute{},
		&ProductAttributeValue{},
		&ProductImage{},
		&Cart{},
		&CartItem{},
	}
}
