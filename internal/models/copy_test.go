// internal/models/copy_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func makeCopies(bookID uuid.UUID, available ...bool) []BookCopy {
	copies := make([]BookCopy, len(available))
	for i, avail := range available {
		copies[i] = BookCopy{
			BaseModel:   BaseModel{ID: uuid.New()},
			BookID:      bookID,
			CopyNumber:  i + 1,
			IsAvailable: avail,
		}
	}
	return copies
}

func TestAllocateCopyPicksLowestNumber(t *testing.T) {
	bookID := uuid.New()
	copies := makeCopies(bookID, false, true, true)

	picked, err := AllocateCopy(copies)
	assert.NoError(t, err)
	assert.Equal(t, 2, picked.CopyNumber)
	assert.False(t, picked.IsAvailable)

	// The slice element itself must be mutated, not a detached value.
	assert.False(t, copies[1].IsAvailable)
}

func TestAllocateCopyIgnoresOrdering(t *testing.T) {
	// Copies loaded out of order still yield the lowest free number.
	bookID := uuid.New()
	copies := []BookCopy{
		{BaseModel: BaseModel{ID: uuid.New()}, BookID: bookID, CopyNumber: 3, IsAvailable: true},
		{BaseModel: BaseModel{ID: uuid.New()}, BookID: bookID, CopyNumber: 1, IsAvailable: true},
		{BaseModel: BaseModel{ID: uuid.New()}, BookID: bookID, CopyNumber: 2, IsAvailable: false},
	}

	picked, err := AllocateCopy(copies)
	assert.NoError(t, err)
	assert.Equal(t, 1, picked.CopyNumber)
}

func TestAllocateCopyNoneFree(t *testing.T) {
	copies := makeCopies(uuid.New(), false, false)

	picked, err := AllocateCopy(copies)
	assert.Nil(t, picked)
	assert.ErrorIs(t, err, ErrNoCopyAvailable)
}

func TestAllocateCopyEmpty(t *testing.T) {
	picked, err := AllocateCopy(nil)
	assert.Nil(t, picked)
	assert.ErrorIs(t, err, ErrNoCopyAvailable)
}

func TestReleaseCopy(t *testing.T) {
	copy := &BookCopy{CopyNumber: 1, IsAvailable: false}

	assert.NoError(t, ReleaseCopy(copy))
	assert.True(t, copy.IsAvailable)

	// Releasing twice is a caller bug and must fail.
	assert.ErrorIs(t, ReleaseCopy(copy), ErrCopyAlreadyAvailable)
}
