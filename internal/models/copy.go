// internal/models/copy.go
package models

import (
	"github.com/google/uuid"
)

// BookCopy is one physical unit of a paper-circulation book. Copies are
// created together with their book, numbered 1..N, and are never renumbered
// or created individually afterwards.
type BookCopy struct {
	BaseModel
	BookID      uuid.UUID `json:"book_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_book_copy_number"`
	CopyNumber  int       `json:"copy_number" gorm:"not null;uniqueIndex:idx_book_copy_number"`
	IsAvailable bool      `json:"is_available" gorm:"not null;default:true"`
}

// AllocateCopy picks the free copy with the lowest copy number and marks it
// unavailable. The caller must decrement the book's available counter in the
// same commit.
func AllocateCopy(copies []BookCopy) (*BookCopy, error) {
	var picked *BookCopy
	for i := range copies {
		if !copies[i].IsAvailable {
			continue
		}
		if picked == nil || copies[i].CopyNumber < picked.CopyNumber {
			picked = &copies[i]
		}
	}
	if picked == nil {
		return nil, ErrNoCopyAvailable
	}

	picked.IsAvailable = false
	return picked, nil
}

// ReleaseCopy marks a copy available again. Releasing a copy that is already
// free indicates a bug in the caller, so it fails instead of being ignored.
func ReleaseCopy(copy *BookCopy) error {
	if copy.IsAvailable {
		return ErrCopyAlreadyAvailable
	}
	copy.IsAvailable = true
	return nil
}
