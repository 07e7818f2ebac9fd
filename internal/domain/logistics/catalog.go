// Package logistics holds the entities served under /logistics/api/v1:
// catalog, parties, facilities, orders, shipments and inventory.
package logistics

import (
	"strings"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products; categories may nest
type Category struct {
	shared.BaseEntity
	Name        string     `json:"name" gorm:"type:varchar(100);not null"`
	Description string     `json:"description" gorm:"type:text"`
	ParentID    *uuid.UUID `json:"parentId" gorm:"index"`
}

func (Category) TableName() string { return "categories" }

// NewCategory creates a category
func NewCategory(name, description string, parentID *uuid.UUID) (*Category, error) {
	if err := shared.RequireString("name", name, 100); err != nil {
		return nil, err
	}
	return &Category{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        strings.TrimSpace(name),
		Description: description,
		ParentID:    parentID,
	}, nil
}

// CategoryPatch carries a partial update; nil fields are left unchanged
type CategoryPatch struct {
	Name        *string
	Description *string
	ParentID    *uuid.UUID
}

// Apply validates and applies a partial update
func (c *Category) Apply(p CategoryPatch) error {
	if p.Name != nil {
		if err := shared.RequireString("name", *p.Name, 100); err != nil {
			return err
		}
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.ParentID != nil {
		if *p.ParentID == c.ID {
			return shared.NewDomainError("INVALID_PARENT", "Category cannot be its own parent")
		}
		id := *p.ParentID
		c.ParentID = &id
	}
	set(&c.Description, p.Description)
	c.Touch()
	return nil
}

// ProductStatus is the sales status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// IsValid reports whether s is a known status
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDiscontinued:
		return true
	}
	return false
}

// Product is a stock keeping unit
type Product struct {
	shared.BaseEntity
	SKU           string          `json:"sku" gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	Name          string          `json:"name" gorm:"type:varchar(200);not null"`
	Description   string          `json:"description" gorm:"type:text"`
	CategoryID    *uuid.UUID      `json:"categoryId" gorm:"index"`
	UnitPrice     decimal.Decimal `json:"unitPrice" gorm:"type:decimal(18,4);not null;default:0"`
	Weight        decimal.Decimal `json:"weight" gorm:"type:decimal(18,4);not null;default:0"`
	UnitOfMeasure string          `json:"unitOfMeasure" gorm:"type:varchar(20);not null;default:'each'"`
	Status        ProductStatus   `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
}

func (Product) TableName() string { return "products" }

// NewProduct creates an active product. The SKU is stored upper-cased.
func NewProduct(sku, name string, unitPrice decimal.Decimal) (*Product, error) {
	if err := shared.RequireString("sku", sku, 50); err != nil {
		return nil, err
	}
	if err := shared.RequireString("name", name, 200); err != nil {
		return nil, err
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return &Product{
		BaseEntity:    shared.NewBaseEntity(),
		SKU:           normalizeCode(sku),
		Name:          strings.TrimSpace(name),
		UnitPrice:     unitPrice,
		Weight:        decimal.Zero,
		UnitOfMeasure: "each",
		Status:        ProductStatusActive,
	}, nil
}

// ProductPatch carries a partial update; nil fields are left unchanged
type ProductPatch struct {
	SKU           *string
	Name          *string
	Description   *string
	CategoryID    *uuid.UUID
	UnitPrice     *decimal.Decimal
	Weight        *decimal.Decimal
	UnitOfMeasure *string
	Status        *ProductStatus
}

// Apply validates and applies a partial update
func (p *Product) Apply(patch ProductPatch) error {
	if patch.SKU != nil {
		if err := shared.RequireString("sku", *patch.SKU, 50); err != nil {
			return err
		}
	}
	if patch.Name != nil {
		if err := shared.RequireString("name", *patch.Name, 200); err != nil {
			return err
		}
	}
	if patch.UnitPrice != nil && patch.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if patch.Weight != nil && patch.Weight.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid product status")
	}

	if patch.SKU != nil {
		p.SKU = normalizeCode(*patch.SKU)
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	set(&p.Description, patch.Description)
	set(&p.UnitOfMeasure, patch.UnitOfMeasure)
	if patch.CategoryID != nil {
		id := *patch.CategoryID
		p.CategoryID = &id
	}
	if patch.UnitPrice != nil {
		p.UnitPrice = *patch.UnitPrice
	}
	if patch.Weight != nil {
		p.Weight = *patch.Weight
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	p.Touch()
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func set(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}
