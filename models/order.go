package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an order placed through the shop. It references the buyer's
// address rather than copying it and owns its lines; the whole
// aggregate is written in one transaction.
type Order struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"not null"`
	User      User    `gorm:"foreignKey:UserID"`
	AddressID uint    `gorm:"not null"`
	Address   Address `gorm:"foreignKey:AddressID"`
	CreatedAt time.Time
	Lines     []OrderLine `gorm:"foreignKey:OrderID"`
}

func (o *Order) TableName() string {
	return "orders"
}

// OrderLine is the quantity ordered of a single product.
//
// ProductID is nullable: when a product is hard-deleted, the deletion
// workflow copies its name, price, image and SKU into the frozen
// columns and clears the reference. A line is never deleted once its
// order exists.
type OrderLine struct {
	ID        uint     `gorm:"primaryKey"`
	OrderID   uint     `gorm:"not null"`
	Quantity  int      `gorm:"not null"`
	ProductID *uint
	Product   *Product `gorm:"foreignKey:ProductID"`

	// Frozen product data, populated at hard-delete time.
	FrozenName  *string
	FrozenPrice *decimal.Decimal `gorm:"type:decimal(10,2)"`
	FrozenImage *string
	FrozenSKU   *string `gorm:"column:frozen_sku"`
}

func (l *OrderLine) TableName() string {
	return "order_lines"
}

// FreezeProduct copies the product's display data onto the line and
// detaches the reference.
func (l *OrderLine) FreezeProduct(p *Product) {
	name := p.Name
	price := p.Price
	image := p.Image
	l.FrozenName = &name
	l.FrozenPrice = &price
	l.FrozenImage = &image
	if sku := p.SKU(); sku != "" {
		l.FrozenSKU = &sku
	}
	l.ProductID = nil
	l.Product = nil
}

// DisplayName returns the product name to show for this line, falling
// back to the frozen copy when the product row is gone.
func (l *OrderLine) DisplayName() string {
	if l.ProductID == nil {
		if l.FrozenName != nil {
			return *l.FrozenName + " (deleted)"
		}
		return "deleted product"
	}
	if l.Product != nil {
		return l.Product.Name
	}
	return ""
}

// DisplayPrice returns the unit price to show for this line.
func (l *OrderLine) DisplayPrice() decimal.Decimal {
	if l.ProductID == nil {
		if l.FrozenPrice != nil {
			return *l.FrozenPrice
		}
		return decimal.Zero
	}
	if l.Product != nil {
		return l.Product.Price
	}
	return decimal.Zero
}
