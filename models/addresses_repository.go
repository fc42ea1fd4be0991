package models

import (
	"errors"

	"gorm.io/gorm"
)

// ErrAddressNotFound is returned when an address is not found.
var ErrAddressNotFound = errors.New("address not found")

type AddressesRepository struct {
	db *gorm.DB
}

func NewAddressesRepository(db *gorm.DB) *AddressesRepository {
	return &AddressesRepository{
		db: db,
	}
}

func (r *AddressesRepository) GetByID(id uint) (*Address, error) {
	var address Address
	if err := r.db.First(&address, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return &address, nil
}

func (r *AddressesRepository) GetByUserID(userID uint) ([]Address, error) {
	var addresses []Address
	if err := r.db.
		Where("user_id = ?", userID).
		Order("id").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *AddressesRepository) Create(address *Address) error {
	return r.db.Create(address).Error
}
