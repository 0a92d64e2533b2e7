package models

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	BaseModel
	Username  string `gorm:"type:text;not null;uniqueIndex" json:"username"`
	Password  string `gorm:"type:text;not null"             json:"-"`
	Email     string `gorm:"type:text;not null;uniqueIndex" json:"email"`
	FirstName string `gorm:"type:text;not null"             json:"first_name"`
	LastName  string `gorm:"type:text;not null"             json:"last_name"`
}

type UserCreate struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

func (u UserCreate) NewRecord() *User {
	return &User{
		Username:  u.Username,
		Password:  u.Password,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func (u UserCreate) References() []Reference {
	return nil
}

// BeforeCreate replaces the plain password with its bcrypt hash.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword(passwordDigest(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), passwordDigest(password)) == nil
}

// bcrypt only reads the first 72 bytes, and passwords have no length limit.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
