package models

// Role values assigned to users. Only admins may manage the catalog.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is an account able to place orders. Credential issuance lives
// outside this service; we only carry the resolved principal and the
// contact data the delivery integration needs.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;not null"`
	FirstName string
	LastName  string
	Phone     string
	Role      string `gorm:"not null;default:USER"`
	TokenHash string `gorm:"column:token_hash"`
}

func (u *User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FullName returns the display name for contact blocks, falling back
// to the email when no name is set.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}
