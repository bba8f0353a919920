// internal/models/order_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderAdvance(t *testing.T) {
	order := &Order{Status: OrderStatusAwaiting}

	assert.NoError(t, order.Advance())
	assert.Equal(t, OrderStatusWithUser, order.Status)

	// Advancing twice is not a transition.
	assert.ErrorIs(t, order.Advance(), ErrInvalidTransition)
}

func TestOrderAdvanceFromNoPaper(t *testing.T) {
	order := &Order{Status: OrderStatusNoPaper}

	err := order.Advance()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, OrderStatusNoPaper, order.Status)
}

func TestOrderDeletableBy(t *testing.T) {
	awaiting := &Order{Status: OrderStatusAwaiting}
	assert.NoError(t, awaiting.DeletableBy(false))
	assert.NoError(t, awaiting.DeletableBy(true))

	noPaper := &Order{Status: OrderStatusNoPaper}
	assert.NoError(t, noPaper.DeletableBy(false))

	// A copy with the reader can only be reclaimed by staff.
	withUser := &Order{Status: OrderStatusWithUser}
	assert.ErrorIs(t, withUser.DeletableBy(false), ErrForbidden)
	assert.NoError(t, withUser.DeletableBy(true))
}

func TestOrderHoldsCopy(t *testing.T) {
	copyID := uuid.New()

	paper := &Order{OrderType: CirculationTypePaper, BookCopyID: &copyID}
	assert.True(t, paper.HoldsCopy())

	electronic := &Order{OrderType: CirculationTypeElectronic}
	assert.False(t, electronic.HoldsCopy())
}

func TestOrderIsOwnedBy(t *testing.T) {
	userID := uuid.New()
	order := &Order{UserID: userID}

	assert.True(t, order.IsOwnedBy(userID))
	assert.False(t, order.IsOwnedBy(uuid.New()))
}
