// internal/models/genre.go
package models

type Genre struct {
	BaseModel
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description" gorm:"type:text"`

	// Relationships
	Books []Book `json:"books,omitempty" gorm:"foreignKey:GenreID"`
}
