// internal/models/book.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Book is the aggregate root for circulation state. InitialCopies is fixed at
// creation; AvailableCopies always equals the number of copies with
// IsAvailable = true. DownloadCount and ListenCount only ever grow.
type Book struct {
	BaseModel
	Title           string         `json:"title" gorm:"size:255;not null"`
	Author          string         `json:"author" gorm:"size:255;not null;index"`
	Publisher       string         `json:"publisher" gorm:"size:255"`
	PublicationYear int            `json:"publication_year"`
	Description     string         `json:"description" gorm:"type:text"`
	CoverURL        string         `json:"cover_url" gorm:"size:512"`
	GenreID         uuid.UUID      `json:"genre_id" gorm:"type:uuid;not null;index"`
	AvailableTypes  pq.StringArray `json:"available_types" gorm:"type:text[];not null"`
	InitialCopies   int            `json:"initial_copies" gorm:"not null;default:0"`
	AvailableCopies int            `json:"available_copies" gorm:"not null;default:0"`
	DownloadCount   int64          `json:"download_count" gorm:"not null;default:0"`
	ListenCount     int64          `json:"listen_count" gorm:"not null;default:0"`

	// Relationships
	Genre  Genre      `json:"genre,omitempty" gorm:"foreignKey:GenreID"`
	Copies []BookCopy `json:"copies,omitempty" gorm:"foreignKey:BookID"`
	Orders []Order    `json:"orders,omitempty" gorm:"foreignKey:BookID"`
}

func (b *Book) SupportsType(t CirculationType) bool {
	for _, s := range b.AvailableTypes {
		if CirculationType(s) == t {
			return true
		}
	}
	return false
}

// RecordElectronicAccess counts an electronic access. Electronic circulation
// is unmetered: there is no availability check and no upper bound.
func (b *Book) RecordElectronicAccess() {
	b.DownloadCount++
}

// RecordAudioAccess counts an audio access, with the same unmetered policy as
// electronic.
func (b *Book) RecordAudioAccess() {
	b.ListenCount++
}

// ReservePaperCopy allocates the first free copy and decrements the available
// counter. Both mutations must be persisted in the same commit as the order
// that triggered them.
func (b *Book) ReservePaperCopy() (*BookCopy, error) {
	if !b.SupportsType(CirculationTypePaper) {
		return nil, ErrNotPaperEnabled
	}

	copy, err := AllocateCopy(b.Copies)
	if err != nil {
		return nil, err
	}

	b.AvailableCopies--
	return copy, nil
}

// ReleasePaperCopy returns a copy to circulation and increments the available
// counter.
func (b *Book) ReleasePaperCopy(copy *BookCopy) error {
	if err := ReleaseCopy(copy); err != nil {
		return err
	}
	b.AvailableCopies++
	return nil
}

// CopyByID finds a copy in the loaded collection.
func (b *Book) CopyByID(id uuid.UUID) *BookCopy {
	for i := range b.Copies {
		if b.Copies[i].ID == id {
			return &b.Copies[i]
		}
	}
	return nil
}

// HasOutstandingCopies reports whether any copy is currently reserved or with
// a reader. Books in that state cannot be deleted.
func (b *Book) HasOutstandingCopies() bool {
	return b.AvailableCopies < b.InitialCopies
}
