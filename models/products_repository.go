package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

// ErrDuplicateProductName is returned when an active product with the
// same name already exists. A soft-deleted product may share a name
// with a live one.
var ErrDuplicateProductName = errors.New("active product with this name already exists")

type ProductsRepository struct {
	db *gorm.DB
}

type ProductFilters struct {
	NameContains  string
	PriceLessThan *float64
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func (r *ProductsRepository) GetFilteredProducts(offset, limit int, filters ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.Model(&Product{}).
		Where("deleted = ?", false)

	// Filter
	if filters.NameContains != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filters.NameContains+"%")
	}
	if filters.PriceLessThan != nil {
		query = query.Where("price < ?", *filters.PriceLessThan)
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination
	if err := query.Offset(offset).Limit(limit).Order("id").Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// GetByID returns an active product with its description and inventory.
func (r *ProductsRepository) GetByID(id uint) (*Product, error) {
	var product Product
	if err := r.db.
		Preload("Description").
		Preload("Inventory").
		Where("id = ? AND deleted = ?", id, false).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// GetByIDIncludingDeleted looks the product up regardless of the soft
// delete flag. Used by the deletion workflow, which must reach products
// that are already hidden from listings.
func (r *ProductsRepository) GetByIDIncludingDeleted(id uint) (*Product, error) {
	var product Product
	if err := r.db.
		Preload("Description").
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductsRepository) ExistsActiveName(name string) (bool, error) {
	var count int64
	if err := r.db.Model(&Product{}).
		Where("name = ? AND deleted = ?", name, false).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the product with its description and inventory. The
// name must be unique among active products only; a soft-deleted
// product may keep its name while a replacement goes live, so the
// check runs against non-deleted rows inside the insert transaction.
func (r *ProductsRepository) Create(product *Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Product{}).
			Where("name = ? AND deleted = ?", product.Name, false).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateProductName
		}
		if err := tx.Create(product).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateProductName
			}
			return err
		}
		return nil
	})
}

func (r *ProductsRepository) Save(product *Product) error {
	return r.db.Save(product).Error
}

// ListSoftDeletedBefore returns products soft-deleted strictly before
// the cutoff, oldest first. Feeds the batch purge.
func (r *ProductsRepository) ListSoftDeletedBefore(cutoff time.Time) ([]Product, error) {
	var products []Product
	if err := r.db.
		Where("deleted = ? AND deleted_at IS NOT NULL AND deleted_at < ?", true, cutoff).
		Order("deleted_at").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// HardDeleteWithHistory removes the product row for good. Every order
// line still referencing the product first gets a frozen copy of the
// name, price, image and SKU and its product reference nulled, so the
// line stays displayable. The freeze and the row removal commit
// together or not at all.
//
// Returns the number of order lines frozen.
func (r *ProductsRepository) HardDeleteWithHistory(id uint) (int, error) {
	frozen := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var product Product
		if err := tx.Preload("Description").First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		var lines []OrderLine
		if err := tx.Where("product_id = ?", id).Find(&lines).Error; err != nil {
			return err
		}

		for i := range lines {
			line := &lines[i]
			line.FreezeProduct(&product)
			if err := tx.Save(line).Error; err != nil {
				return fmt.Errorf("freezing order line %d: %w", line.ID, err)
			}
		}
		frozen = len(lines)

		// Owned rows go first so the FK does not dangle.
		if err := tx.Where("product_id = ?", id).Delete(&Description{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&Inventory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Product{}, id).Error
	})
	if err != nil {
		return 0, err
	}
	return frozen, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
