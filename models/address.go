package models

// Address is a delivery/billing destination owned by a single user.
// Orders reference an address row; they never embed a copy, so an
// address must not be mutated once an order points at it.
type Address struct {
	ID          uint   `gorm:"primaryKey"`
	AddressLine string `gorm:"size:512;not null"`
	City        string `gorm:"not null"`
	Country     string `gorm:"size:75;not null"`
	UserID      uint   `gorm:"not null"`
	User        User   `gorm:"foreignKey:UserID"`
}

func (a *Address) TableName() string {
	return "addresses"
}
