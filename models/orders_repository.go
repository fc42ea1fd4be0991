package models

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrOrderNotFound is returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

type OrdersRepository struct {
	db *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		db: db,
	}
}

// Create persists the order together with all of its lines in a single
// transaction. On any failure nothing is written; a partially visible
// order must never exist.
func (r *OrdersRepository) Create(order *Order) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// The user, address and line products were re-resolved from the
		// store; only the order and its lines are new rows.
		return tx.Omit("User", "Address", "Lines.Product").Create(order).Error
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("order references a missing row: %w", err)
		}
		return err
	}
	return nil
}

// GetByUser returns all orders placed by the user, newest first, with
// lines, line products and the delivery address loaded.
func (r *OrdersRepository) GetByUser(userID uint) ([]Order, error) {
	var orders []Order
	if err := r.db.
		Preload("Lines").
		Preload("Lines.Product").
		Preload("Address").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrdersRepository) GetByID(id uint) (*Order, error) {
	var order Order
	if err := r.db.
		Preload("Lines").
		Preload("Lines.Product").
		Preload("Address").
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
