package catalog

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/northmart/shop-backend/models"
)

// --- Mocks ---

// MockLifecycleStore keeps products and order lines in memory and
// mimics the transactional freeze-then-delete of the real repository.
type MockLifecycleStore struct {
	Products map[uint]*models.Product
	Lines    []*models.OrderLine

	HardDeleteErrs map[uint]error

	SavedProducts []uint
	HardDeleted   []uint
}

func (m *MockLifecycleStore) GetByIDIncludingDeleted(id uint) (*models.Product, error) {
	if p, ok := m.Products[id]; ok {
		return p, nil
	}
	return nil, models.ErrProductNotFound
}

func (m *MockLifecycleStore) Save(product *models.Product) error {
	m.SavedProducts = append(m.SavedProducts, product.ID)
	return nil
}

func (m *MockLifecycleStore) ListSoftDeletedBefore(cutoff time.Time) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.Products {
		if p.Deleted && p.DeletedAt != nil && p.DeletedAt.Before(cutoff) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *MockLifecycleStore) HardDeleteWithHistory(id uint) (int, error) {
	if err := m.HardDeleteErrs[id]; err != nil {
		return 0, err
	}
	product, ok := m.Products[id]
	if !ok {
		return 0, models.ErrProductNotFound
	}
	frozen := 0
	for _, line := range m.Lines {
		if line.ProductID != nil && *line.ProductID == id {
			line.FreezeProduct(product)
			frozen++
		}
	}
	delete(m.Products, id)
	m.HardDeleted = append(m.HardDeleted, id)
	return frozen, nil
}

type MockImageDeleter struct {
	Err     error
	Deleted []string
}

func (m *MockImageDeleter) Delete(key string) error {
	m.Deleted = append(m.Deleted, key)
	return m.Err
}

// --- Helpers ---

func lineFor(productID uint, quantity int) *models.OrderLine {
	id := productID
	return &models.OrderLine{Quantity: quantity, ProductID: &id}
}

func newService(store *MockLifecycleStore, images *MockImageDeleter, now time.Time) *DeletionService {
	s := NewDeletionService(store, images, slog.Default())
	s.now = func() time.Time { return now }
	return s
}

// --- Tests ---

func TestSoftDeleteAndRestore(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("soft delete sets flag, timestamp and reason", func(t *testing.T) {
		store := &MockLifecycleStore{Products: map[uint]*models.Product{
			1: {ID: 1, Name: "Fridge"},
		}}
		s := newService(store, nil, now)

		assert.NoError(t, s.SoftDelete(1, "discontinued"))

		p := store.Products[1]
		assert.True(t, p.Deleted)
		assert.Equal(t, now, *p.DeletedAt)
		assert.Equal(t, "discontinued", p.DeletedReason)
		assert.Equal(t, []uint{1}, store.SavedProducts)
	})

	t.Run("soft delete of unknown product", func(t *testing.T) {
		s := newService(&MockLifecycleStore{Products: map[uint]*models.Product{}}, nil, now)

		assert.ErrorIs(t, s.SoftDelete(99, "x"), models.ErrProductNotFound)
	})

	t.Run("restore clears all deletion fields", func(t *testing.T) {
		deletedAt := now.Add(-time.Hour)
		store := &MockLifecycleStore{Products: map[uint]*models.Product{
			1: {ID: 1, Name: "Fridge", Deleted: true, DeletedAt: &deletedAt, DeletedReason: "oops"},
		}}
		s := newService(store, nil, now)

		assert.NoError(t, s.Restore(1))

		p := store.Products[1]
		assert.False(t, p.Deleted)
		assert.Nil(t, p.DeletedAt)
		assert.Empty(t, p.DeletedReason)
	})

	t.Run("restore of a never-deleted product fails", func(t *testing.T) {
		store := &MockLifecycleStore{Products: map[uint]*models.Product{
			1: {ID: 1, Name: "Fridge"},
		}}
		s := newService(store, nil, now)

		assert.ErrorIs(t, s.Restore(1), ErrNotDeleted)
		assert.Empty(t, store.SavedProducts, "nothing may be written")
	})

	t.Run("restore of a hard-deleted product fails", func(t *testing.T) {
		s := newService(&MockLifecycleStore{Products: map[uint]*models.Product{}}, nil, now)

		assert.ErrorIs(t, s.Restore(1), models.ErrProductNotFound)
	})
}

func TestHardDelete(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("freezes every referencing line before removal", func(t *testing.T) {
		product := &models.Product{
			ID:    1,
			Name:  "Fridge",
			Price: decimal.NewFromFloat(499.99),
			Image: "/images/fridge.png",
			Description: &models.Description{
				ArticleSKU: "FR-001",
			},
		}
		lines := []*models.OrderLine{lineFor(1, 2), lineFor(1, 1), lineFor(7, 3)}
		store := &MockLifecycleStore{
			Products: map[uint]*models.Product{1: product, 7: {ID: 7, Name: "Kettle"}},
			Lines:    lines,
		}
		images := &MockImageDeleter{}
		s := newService(store, images, now)

		assert.NoError(t, s.HardDelete(1))

		assert.NotContains(t, store.Products, uint(1), "product row must be gone")
		for _, line := range lines[:2] {
			assert.Nil(t, line.ProductID, "reference must be detached")
			assert.Equal(t, "Fridge", *line.FrozenName)
			assert.True(t, decimal.NewFromFloat(499.99).Equal(*line.FrozenPrice))
			assert.Equal(t, "/images/fridge.png", *line.FrozenImage)
			assert.Equal(t, "FR-001", *line.FrozenSKU)
			assert.Equal(t, "Fridge (deleted)", line.DisplayName())
		}
		assert.NotNil(t, lines[2].ProductID, "other products' lines are untouched")
		assert.Equal(t, []string{"/images/fridge.png"}, images.Deleted)
	})

	t.Run("image cleanup failure does not fail the deletion", func(t *testing.T) {
		store := &MockLifecycleStore{
			Products: map[uint]*models.Product{1: {ID: 1, Name: "Fridge", Image: "/images/x.png"}},
		}
		images := &MockImageDeleter{Err: errors.New("storage down")}
		s := newService(store, images, now)

		assert.NoError(t, s.HardDelete(1))
		assert.NotContains(t, store.Products, uint(1))
	})

	t.Run("unknown product", func(t *testing.T) {
		s := newService(&MockLifecycleStore{Products: map[uint]*models.Product{}}, nil, now)

		assert.ErrorIs(t, s.HardDelete(1), models.ErrProductNotFound)
	})
}

func TestPurgeExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	threshold := 30 * 24 * time.Hour

	longGone := now.Add(-2 * threshold)
	recent := now.Add(-threshold / 2)

	t.Run("only products past the threshold are purged", func(t *testing.T) {
		store := &MockLifecycleStore{Products: map[uint]*models.Product{
			1: {ID: 1, Name: "Old", Deleted: true, DeletedAt: &longGone},
			2: {ID: 2, Name: "Fresh", Deleted: true, DeletedAt: &recent},
			3: {ID: 3, Name: "Active"},
		}}
		s := newService(store, nil, now)

		deleted, err := s.PurgeExpired(threshold)

		assert.NoError(t, err)
		assert.Equal(t, 1, deleted)
		assert.NotContains(t, store.Products, uint(1))
		assert.Contains(t, store.Products, uint(2), "recently soft-deleted product must stay")
		assert.Contains(t, store.Products, uint(3))
	})

	t.Run("one failure does not abort the batch", func(t *testing.T) {
		gone2 := longGone.Add(time.Hour)
		gone3 := longGone.Add(2 * time.Hour)
		store := &MockLifecycleStore{
			Products: map[uint]*models.Product{
				1: {ID: 1, Name: "A", Deleted: true, DeletedAt: &longGone},
				2: {ID: 2, Name: "B", Deleted: true, DeletedAt: &gone2},
				3: {ID: 3, Name: "C", Deleted: true, DeletedAt: &gone3},
			},
			HardDeleteErrs: map[uint]error{2: errors.New("row locked")},
		}
		s := newService(store, nil, now)

		deleted, err := s.PurgeExpired(threshold)

		assert.NoError(t, err)
		assert.Equal(t, 2, deleted)
		assert.NotContains(t, store.Products, uint(1))
		assert.Contains(t, store.Products, uint(2), "failed product is skipped, not retried here")
		assert.NotContains(t, store.Products, uint(3))
	})
}
