package orders

import (
	"fmt"

	"github.com/northmart/shop-backend/models"
)

// CreateOrderRequest is the raw order as submitted by the client. It
// carries references only; the builder re-resolves every one of them
// against the store, so a client can never smuggle a forged address or
// a tampered price into the persisted aggregate.
type CreateOrderRequest struct {
	AddressID uint          `json:"address_id"`
	Lines     []LineRequest `json:"lines"`
}

type LineRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// ValidationError reports a structurally incomplete order.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("order validation failed: %s", e.Field)
}

type AddressProvider interface {
	GetByID(id uint) (*models.Address, error)
}

type ProductProvider interface {
	GetByID(id uint) (*models.Product, error)
}

// Builder assembles a trusted Order aggregate from a raw request. It
// only constructs in memory; persistence is a separate step.
type Builder struct {
	addresses AddressProvider
	products  ProductProvider
}

func NewBuilder(addresses AddressProvider, products ProductProvider) *Builder {
	return &Builder{
		addresses: addresses,
		products:  products,
	}
}

// Build re-resolves the referenced address and products and constructs
// a fresh order with new line identities.
func (b *Builder) Build(req CreateOrderRequest, user *models.User) (*models.Order, error) {
	if user == nil {
		return nil, &ValidationError{Field: "user"}
	}

	address, err := b.addresses.GetByID(req.AddressID)
	if err != nil {
		return nil, err
	}
	// An address belonging to someone else is indistinguishable from a
	// missing one, so the response does not leak foreign address ids.
	if address.UserID != user.ID {
		return nil, models.ErrAddressNotFound
	}

	lines := make([]models.OrderLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		if l.Quantity <= 0 {
			return nil, &ValidationError{Field: "quantity"}
		}
		product, err := b.products.GetByID(l.ProductID)
		if err != nil {
			return nil, err
		}
		productID := product.ID
		lines = append(lines, models.OrderLine{
			Quantity:  l.Quantity,
			ProductID: &productID,
			Product:   product,
		})
	}

	order := &models.Order{
		UserID:    user.ID,
		User:      *user,
		AddressID: address.ID,
		Address:   *address,
		Lines:     lines,
	}
	if err := validate(order); err != nil {
		return nil, err
	}
	return order, nil
}

func validate(order *models.Order) error {
	if order.UserID == 0 {
		return &ValidationError{Field: "user"}
	}
	if order.AddressID == 0 {
		return &ValidationError{Field: "address"}
	}
	if len(order.Lines) == 0 {
		return &ValidationError{Field: "lines"}
	}
	return nil
}
