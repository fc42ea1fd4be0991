package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an item available for purchasing.
//
// Deletion is two-phased: a soft delete flags the row (reversible,
// hidden from active listings) and a hard delete removes it entirely,
// but only after every historical order line has been given a frozen
// copy of the product data it needs for display.
type Product struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"not null"`
	ShortDescription string `gorm:"not null"`
	LongDescription  string
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Rating           float64         `gorm:"not null;default:0"`
	Image            string          `gorm:"not null"`
	Deleted          bool            `gorm:"not null;default:false"`
	DeletedAt        *time.Time
	DeletedReason    string
	Description      *Description `gorm:"foreignKey:ProductID"`
	Inventory        *Inventory   `gorm:"foreignKey:ProductID"`
}

func (p *Product) TableName() string {
	return "products"
}

// SoftDelete flags the product without touching the row's data.
func (p *Product) SoftDelete(reason string, now time.Time) {
	p.Deleted = true
	p.DeletedAt = &now
	p.DeletedReason = reason
}

// Restore reverses a soft delete.
func (p *Product) Restore() {
	p.Deleted = false
	p.DeletedAt = nil
	p.DeletedReason = ""
}

// SKU returns the article number from the technical description, if any.
func (p *Product) SKU() string {
	if p.Description == nil {
		return ""
	}
	return p.Description.ArticleSKU
}

// Description holds the technical specification of a product.
// Dimensions and weight are free text ("178×60×63 см", "68 кг") and are
// parsed leniently by the delivery integration.
type Description struct {
	ID               uint   `gorm:"primaryKey"`
	ProductID        uint   `gorm:"uniqueIndex;not null"`
	Model            string
	ArticleSKU       string `gorm:"column:article_sku"`
	Dimensions       string
	Weight           string
	ColorFinish      string
	PowerConsumption string
	Capacity         string
	Materials        string `gorm:"size:1000"`
	Warranty         string
	CountryOfOrigin  string
}

func (d *Description) TableName() string {
	return "product_descriptions"
}

// Inventory tracks the quantity on hand for a product.
type Inventory struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"uniqueIndex;not null"`
	Quantity  int  `gorm:"not null;default:0"`
}

func (i *Inventory) TableName() string {
	return "inventories"
}
