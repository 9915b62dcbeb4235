package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// User is the local profile for an externally issued identity. Signup lives
// with the auth provider: the bearer token is the source of the id, and a
// profile row is created lazily the first time the authenticated user touches
// it. Carts and orders reference the id as an opaque string and carry no
// foreign key to this table, so they work before a profile row exists.
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"index" json:"email"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Address   Address   `gorm:"embedded" json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// Address model embedded in User and in the cart's shipping info
type Address struct {
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
}

// EnsureUser returns the profile row for an authenticated id, creating an
// empty one on first use.
func EnsureUser(db *gorm.DB, id string) (*User, error) {
	var user User
	err := db.First(&user, "id = ?", id).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	user = User{ID: id}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
