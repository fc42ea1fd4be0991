package catalog

import (
	"errors"
	"log/slog"
	"time"

	"github.com/northmart/shop-backend/models"
)

// ErrNotDeleted is returned when restoring a product that was never
// soft-deleted.
var ErrNotDeleted = errors.New("product is not deleted")

// LifecycleStore is the persistence surface of the deletion workflow.
type LifecycleStore interface {
	GetByIDIncludingDeleted(id uint) (*models.Product, error)
	Save(product *models.Product) error
	ListSoftDeletedBefore(cutoff time.Time) ([]models.Product, error)
	// HardDeleteWithHistory freezes product data onto every
	// referencing order line and removes the product row, atomically.
	// It returns the number of lines frozen.
	HardDeleteWithHistory(id uint) (int, error)
}

// ImageDeleter removes a stored product image by key.
type ImageDeleter interface {
	Delete(key string) error
}

// DeletionService drives the product lifecycle:
//
//	ACTIVE -> SOFT_DELETED -> HARD_DELETED
//
// with restore as the only backward transition. Hard deletion is
// terminal; order history survives it through frozen line snapshots.
type DeletionService struct {
	store  LifecycleStore
	images ImageDeleter
	logger *slog.Logger
	now    func() time.Time
}

func NewDeletionService(store LifecycleStore, images ImageDeleter, logger *slog.Logger) *DeletionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeletionService{
		store:  store,
		images: images,
		logger: logger,
		now:    time.Now,
	}
}

// SoftDelete flags the product as deleted with a timestamp and reason.
// The row stays in place and the operation is reversible via Restore.
func (s *DeletionService) SoftDelete(id uint, reason string) error {
	product, err := s.store.GetByIDIncludingDeleted(id)
	if err != nil {
		return err
	}
	product.SoftDelete(reason, s.now())
	if err := s.store.Save(product); err != nil {
		return err
	}
	s.logger.Info("product soft-deleted", "product_id", id, "reason", reason)
	return nil
}

// Restore clears the soft-delete flag, timestamp and reason. Restoring
// a product that is not soft-deleted fails; a hard-deleted product no
// longer has a row to restore.
func (s *DeletionService) Restore(id uint) error {
	product, err := s.store.GetByIDIncludingDeleted(id)
	if err != nil {
		return err
	}
	if !product.Deleted {
		return ErrNotDeleted
	}
	product.Restore()
	if err := s.store.Save(product); err != nil {
		return err
	}
	s.logger.Info("product restored", "product_id", id)
	return nil
}

// HardDelete permanently removes the product. Order lines referencing
// it are frozen and detached first, inside the same transaction, so
// there is never a moment where a line has neither a live reference
// nor frozen data. The stored image is cleaned up afterwards on a
// best-effort basis.
func (s *DeletionService) HardDelete(id uint) error {
	product, err := s.store.GetByIDIncludingDeleted(id)
	if err != nil {
		return err
	}

	frozen, err := s.store.HardDeleteWithHistory(id)
	if err != nil {
		return err
	}
	s.logger.Info("product hard-deleted", "product_id", id, "frozen_lines", frozen)

	if s.images != nil && product.Image != "" {
		if err := s.images.Delete(product.Image); err != nil {
			s.logger.Warn("failed to delete product image", "product_id", id, "key", product.Image, "err", err)
		}
	}
	return nil
}

// PurgeExpired hard-deletes every product that has been soft-deleted
// for longer than olderThan. One product failing does not stop the
// batch; the count of successful deletions is returned.
func (s *DeletionService) PurgeExpired(olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)
	expired, err := s.store.ListSoftDeletedBefore(cutoff)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, product := range expired {
		if err := s.HardDelete(product.ID); err != nil {
			s.logger.Error("purge: failed to delete product", "product_id", product.ID, "err", err)
			continue
		}
		deleted++
	}
	s.logger.Info("purge finished", "deleted", deleted, "candidates", len(expired))
	return deleted, nil
}
