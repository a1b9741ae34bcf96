package content

import (
	"time"

	"github.com/google/uuid"
)

// Category groups rules under a single-letter code such as "C".
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LetterCode  string    `gorm:"column:letter_code;size:1;not null;uniqueIndex" json:"letter_code"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	OrderIndex  int       `gorm:"column:order_index;not null;index" json:"order_index"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Category) TableName() string { return "categories" }
