package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/northmart/shop-backend/models"
)

// --- Mocks ---

type MockAddressRepo struct {
	Addresses map[uint]*models.Address
	Err       error
}

func (m *MockAddressRepo) GetByID(id uint) (*models.Address, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if a, ok := m.Addresses[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, models.ErrAddressNotFound
}

type MockProductRepo struct {
	Products map[uint]*models.Product
	Err      error
}

func (m *MockProductRepo) GetByID(id uint) (*models.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if p, ok := m.Products[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, models.ErrProductNotFound
}

// --- Helpers ---

func newTestUser(id uint) *models.User {
	return &models.User{ID: id, Email: "user@example.com", Role: models.RoleUser}
}

func fixtureBuilder() (*Builder, *MockAddressRepo, *MockProductRepo) {
	addresses := &MockAddressRepo{Addresses: map[uint]*models.Address{
		10: {ID: 10, AddressLine: "Lenina 1", City: "Kazan", Country: "Russia", UserID: 1},
		20: {ID: 20, AddressLine: "Other st. 2", City: "Moscow", Country: "Russia", UserID: 2},
	}}
	products := &MockProductRepo{Products: map[uint]*models.Product{
		100: {ID: 100, Name: "Fridge", Price: decimal.NewFromFloat(499.99)},
		200: {ID: 200, Name: "Kettle", Price: decimal.NewFromFloat(25.00)},
	}}
	return NewBuilder(addresses, products), addresses, products
}

// --- Tests ---

func TestBuild(t *testing.T) {
	t.Run("success builds fresh aggregate", func(t *testing.T) {
		builder, _, _ := fixtureBuilder()

		order, err := builder.Build(CreateOrderRequest{
			AddressID: 10,
			Lines: []LineRequest{
				{ProductID: 100, Quantity: 2},
				{ProductID: 200, Quantity: 1},
			},
		}, newTestUser(1))

		assert.NoError(t, err)
		assert.Equal(t, uint(1), order.UserID)
		assert.Equal(t, uint(10), order.AddressID)
		assert.Len(t, order.Lines, 2, "one persisted line per requested line")

		for _, line := range order.Lines {
			assert.Zero(t, line.ID, "line identities must be new, never client-supplied")
			assert.NotNil(t, line.ProductID)
		}
		assert.Equal(t, uint(100), *order.Lines[0].ProductID)
		assert.Equal(t, 2, order.Lines[0].Quantity)
		assert.Equal(t, "Fridge", order.Lines[0].Product.Name)
	})

	t.Run("unknown address", func(t *testing.T) {
		builder, _, _ := fixtureBuilder()

		_, err := builder.Build(CreateOrderRequest{
			AddressID: 999,
			Lines:     []LineRequest{{ProductID: 100, Quantity: 1}},
		}, newTestUser(1))

		assert.ErrorIs(t, err, models.ErrAddressNotFound)
	})

	t.Run("another user's address reads as not found", func(t *testing.T) {
		builder, _, _ := fixtureBuilder()

		_, err := builder.Build(CreateOrderRequest{
			AddressID: 20, // owned by user 2
			Lines:     []LineRequest{{ProductID: 100, Quantity: 1}},
		}, newTestUser(1))

		assert.ErrorIs(t, err, models.ErrAddressNotFound)
	})

	t.Run("unknown product", func(t *testing.T) {
		builder, _, _ := fixtureBuilder()

		_, err := builder.Build(CreateOrderRequest{
			AddressID: 10,
			Lines:     []LineRequest{{ProductID: 100, Quantity: 1}, {ProductID: 999, Quantity: 1}},
		}, newTestUser(1))

		assert.ErrorIs(t, err, models.ErrProductNotFound)
	})

	t.Run("empty line list", func(t *testing.T) {
		builder, _, _ := fixtureBuilder()

		_, err := builder.Build(CreateOrderRequest{AddressID: 10}, newTestUser(1))

		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Equal(t, "lines", vErr.Field)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		builder, _, _ := fixtureBuilder()

		_, err := builder.Build(CreateOrderRequest{
			AddressID: 10,
			Lines:     []LineRequest{{ProductID: 100, Quantity: 0}},
		}, newTestUser(1))

		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Equal(t, "quantity", vErr.Field)
	})

	t.Run("nil user", func(t *testing.T) {
		builder, _, _ := fixtureBuilder()

		_, err := builder.Build(CreateOrderRequest{
			AddressID: 10,
			Lines:     []LineRequest{{ProductID: 100, Quantity: 1}},
		}, nil)

		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Equal(t, "user", vErr.Field)
	})
}
