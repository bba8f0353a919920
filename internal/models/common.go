// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeReader    UserType = "reader"
	UserTypeLibrarian UserType = "librarian"
	UserTypeAdmin     UserType = "admin"
)

// IsPrivileged reports whether this user type may reclaim a copy that is
// already handed out to a reader.
func (t UserType) IsPrivileged() bool {
	return t == UserTypeLibrarian || t == UserTypeAdmin
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

// CirculationType is the channel through which a book is distributed. A book
// may support several types at once; an order is always for exactly one.
type CirculationType string

const (
	CirculationTypePaper      CirculationType = "paper"
	CirculationTypeElectronic CirculationType = "electronic"
	CirculationTypeAudio      CirculationType = "audio"
)

func (t CirculationType) IsValid() bool {
	switch t {
	case CirculationTypePaper, CirculationTypeElectronic, CirculationTypeAudio:
		return true
	}
	return false
}

type OrderStatus string

const (
	// OrderStatusNoPaper is the terminal state of electronic and audio
	// orders; no physical copy is involved.
	OrderStatusNoPaper OrderStatus = "no_paper"
	// OrderStatusAwaiting means a copy is reserved but not yet picked up.
	OrderStatusAwaiting OrderStatus = "awaiting"
	// OrderStatusWithUser means the copy has been handed to the reader.
	OrderStatusWithUser OrderStatus = "with_user"
)
