package models

import (
	"time"
)

// Record is implemented by every stored entity.
type Record interface {
	RecordID() int
}

type BaseModel struct {
	ID        int       `gorm:"type:integer;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime"                       json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"                       json:"updated_at"`
}

func (b BaseModel) RecordID() int {
	return b.ID
}

// Reference is a foreign-key value carried by a creation record that must
// point at an existing user.
type Reference struct {
	Field string
	ID    int
}

// Creation is a validated, fully typed creation request that knows how to
// build its stored record and which users it refers to.
type Creation[R any] interface {
	NewRecord() *R
	References() []Reference
}
