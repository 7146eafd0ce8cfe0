package entities

import (
	"time"

	"gorm.io/gorm"
)

type Book struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"index" json:"user_id"`
	Title       string `gorm:"index;size:512" json:"title"`
	Author      string `gorm:"index;size:256" json:"author,omitempty"`
	Category    string `gorm:"index;size:100" json:"category,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Where the PDF lives. Either a stored object served by this app or an
	// external URL the user linked.
	PDFURL string `gorm:"size:2048" json:"pdf_url,omitempty"`

	// TotalPages is 0 when unknown. Filled from the PDF itself on upload
	// when the uploader leaves it blank.
	TotalPages int `json:"total_pages,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Book) TableName() string {
	return "books"
}
