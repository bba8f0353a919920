// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is one transaction of a user obtaining access to a book via one
// circulation type. BookCopyID is set exactly for paper orders.
type Order struct {
	BaseModel
	UserID     uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	BookID     uuid.UUID       `json:"book_id" gorm:"type:uuid;not null;index"`
	OrderType  CirculationType `json:"order_type" gorm:"type:varchar(20);not null"`
	BookCopyID *uuid.UUID      `json:"book_copy_id" gorm:"type:uuid;index"`
	OrderDate  time.Time       `json:"order_date" gorm:"not null"`
	Status     OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`

	// Relationships
	User     User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Book     Book      `json:"book,omitempty" gorm:"foreignKey:BookID"`
	BookCopy *BookCopy `json:"book_copy,omitempty" gorm:"foreignKey:BookCopyID"`
}

// Advance moves a paper order from awaiting to with_user. Every other
// starting state is rejected, including advancing twice.
func (o *Order) Advance() error {
	if o.Status != OrderStatusAwaiting {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusWithUser
	return nil
}

// DeletableBy checks the delete guard: once the copy is with the reader only
// a privileged actor may remove the order. Readers may still cancel their own
// awaiting or no_paper orders.
func (o *Order) DeletableBy(privileged bool) error {
	if o.Status == OrderStatusWithUser && !privileged {
		return ErrForbidden
	}
	return nil
}

// HoldsCopy reports whether deleting this order must release a copy.
func (o *Order) HoldsCopy() bool {
	return o.BookCopyID != nil
}

// IsOwnedBy checks that the order belongs to the given user.
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}
