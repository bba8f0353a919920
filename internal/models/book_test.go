// internal/models/book_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func makePaperBook(initialCopies int) *Book {
	book := &Book{
		BaseModel:       BaseModel{ID: uuid.New()},
		Title:           "The Go Programming Language",
		Author:          "Donovan",
		AvailableTypes:  pq.StringArray{string(CirculationTypePaper), string(CirculationTypeElectronic)},
		InitialCopies:   initialCopies,
		AvailableCopies: initialCopies,
	}
	avail := make([]bool, initialCopies)
	for i := range avail {
		avail[i] = true
	}
	book.Copies = makeCopies(book.ID, avail...)
	return book
}

func TestBookSupportsType(t *testing.T) {
	book := makePaperBook(1)

	assert.True(t, book.SupportsType(CirculationTypePaper))
	assert.True(t, book.SupportsType(CirculationTypeElectronic))
	assert.False(t, book.SupportsType(CirculationTypeAudio))
}

func TestReservePaperCopyDecrementsCounter(t *testing.T) {
	book := makePaperBook(3)

	copy, err := book.ReservePaperCopy()
	assert.NoError(t, err)
	assert.Equal(t, 1, copy.CopyNumber)
	assert.Equal(t, 2, book.AvailableCopies)

	copy, err = book.ReservePaperCopy()
	assert.NoError(t, err)
	assert.Equal(t, 2, copy.CopyNumber)
	assert.Equal(t, 1, book.AvailableCopies)
}

func TestReservePaperCopyExhausted(t *testing.T) {
	book := makePaperBook(1)

	_, err := book.ReservePaperCopy()
	assert.NoError(t, err)
	assert.Equal(t, 0, book.AvailableCopies)

	_, err = book.ReservePaperCopy()
	assert.ErrorIs(t, err, ErrNoCopyAvailable)

	// A failed reservation must not touch the counter.
	assert.Equal(t, 0, book.AvailableCopies)
}

func TestReservePaperCopyNotPaperEnabled(t *testing.T) {
	book := &Book{
		BaseModel:      BaseModel{ID: uuid.New()},
		AvailableTypes: pq.StringArray{string(CirculationTypeElectronic)},
	}

	_, err := book.ReservePaperCopy()
	assert.ErrorIs(t, err, ErrNotPaperEnabled)
}

func TestReleasePaperCopyRestoresCounter(t *testing.T) {
	book := makePaperBook(2)

	copy, err := book.ReservePaperCopy()
	assert.NoError(t, err)
	assert.Equal(t, 1, book.AvailableCopies)

	assert.NoError(t, book.ReleasePaperCopy(copy))
	assert.Equal(t, 2, book.AvailableCopies)
	assert.True(t, copy.IsAvailable)
}

func TestReleasePaperCopyDoubleRelease(t *testing.T) {
	book := makePaperBook(1)

	copy, err := book.ReservePaperCopy()
	assert.NoError(t, err)
	assert.NoError(t, book.ReleasePaperCopy(copy))

	err = book.ReleasePaperCopy(copy)
	assert.ErrorIs(t, err, ErrCopyAlreadyAvailable)

	// The counter must not drift past the number of physical copies.
	assert.Equal(t, 1, book.AvailableCopies)
}

func TestReserveReleaseCycleKeepsInvariant(t *testing.T) {
	book := makePaperBook(3)

	// available copies + reserved copies = initial copies, at every step.
	first, _ := book.ReservePaperCopy()
	second, _ := book.ReservePaperCopy()
	assert.Equal(t, 1, book.AvailableCopies)

	assert.NoError(t, book.ReleasePaperCopy(first))
	assert.Equal(t, 2, book.AvailableCopies)

	// The freed copy is the lowest-numbered free one again.
	third, err := book.ReservePaperCopy()
	assert.NoError(t, err)
	assert.Equal(t, first.CopyNumber, third.CopyNumber)

	assert.NoError(t, book.ReleasePaperCopy(second))
	assert.NoError(t, book.ReleasePaperCopy(third))
	assert.Equal(t, book.InitialCopies, book.AvailableCopies)
}

func TestRecordAccessCounters(t *testing.T) {
	book := makePaperBook(0)

	book.RecordElectronicAccess()
	book.RecordElectronicAccess()
	book.RecordAudioAccess()

	assert.Equal(t, int64(2), book.DownloadCount)
	assert.Equal(t, int64(1), book.ListenCount)
}

func TestCopyByID(t *testing.T) {
	book := makePaperBook(2)

	found := book.CopyByID(book.Copies[1].ID)
	assert.NotNil(t, found)
	assert.Equal(t, 2, found.CopyNumber)

	assert.Nil(t, book.CopyByID(uuid.New()))
}

func TestHasOutstandingCopies(t *testing.T) {
	book := makePaperBook(2)
	assert.False(t, book.HasOutstandingCopies())

	copy, _ := book.ReservePaperCopy()
	assert.True(t, book.HasOutstandingCopies())

	assert.NoError(t, book.ReleasePaperCopy(copy))
	assert.False(t, book.HasOutstandingCopies())
}
