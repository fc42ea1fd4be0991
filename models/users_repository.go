package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = errors.New("user not found")

type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{
		db: db,
	}
}

// ResolveToken maps an opaque API token to its user. Tokens are stored
// as hex SHA-256 digests, never in the clear.
func (r *UsersRepository) ResolveToken(token string) (*User, error) {
	sum := sha256.Sum256([]byte(token))
	digest := hex.EncodeToString(sum[:])

	var user User
	if err := r.db.Where("token_hash = ?", digest).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
