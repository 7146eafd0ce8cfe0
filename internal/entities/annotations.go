package entities

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ResourceType classifies supplementary study material attached to a book.
type ResourceType string

const (
	ResourceTypeLink    ResourceType = "link"
	ResourceTypeVideo   ResourceType = "video"
	ResourceTypeArticle ResourceType = "article"
)

// NoteFormatting captures the simple text styling toggles a note can carry.
type NoteFormatting struct {
	Bold      bool `json:"bold,omitempty"`
	Italic    bool `json:"italic,omitempty"`
	Underline bool `json:"underline,omitempty"`
}

func (f NoteFormatting) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *NoteFormatting) Scan(value any) error {
	if value == nil {
		*f = NoteFormatting{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return errors.New("unsupported type for NoteFormatting")
	}
}

// StringList is stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

type Note struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"index" json:"user_id"`
	BookID     uint           `gorm:"index" json:"book_id"`
	PageNumber int            `gorm:"index" json:"page_number"`
	Title      string         `gorm:"size:256" json:"title,omitempty"`
	Content    string         `gorm:"type:text" json:"content"`
	Formatting NoteFormatting `gorm:"type:text" json:"formatting"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Bookmark struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index" json:"user_id"`
	BookID     uint       `gorm:"index" json:"book_id"`
	PageNumber int        `gorm:"index" json:"page_number"`
	Tags       StringList `gorm:"type:text" json:"tags"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type GlossaryTerm struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"index" json:"user_id"`
	BookID     uint   `gorm:"index" json:"book_id"`
	Word       string `gorm:"index;size:256" json:"word"`
	Definition string `gorm:"type:text" json:"definition"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type Resource struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uint         `gorm:"index" json:"user_id"`
	BookID      uint         `gorm:"index" json:"book_id"`
	Type        ResourceType `gorm:"size:20;default:'link'" json:"type"`
	Title       string       `gorm:"size:256" json:"title"`
	URL         string       `gorm:"size:2048" json:"url"`
	Description string       `gorm:"type:text" json:"description,omitempty"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type VoiceRecording struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	UserID          uint   `gorm:"index" json:"user_id"`
	BookID          uint   `gorm:"index" json:"book_id"`
	Title           string `gorm:"size:256" json:"title"`
	AudioURL        string `gorm:"size:2048" json:"audio_url"`
	DurationSeconds int    `json:"duration_seconds"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (Note) TableName() string           { return "notes" }
func (Bookmark) TableName() string       { return "bookmarks" }
func (GlossaryTerm) TableName() string   { return "glossary" }
func (Resource) TableName() string       { return "resources" }
func (VoiceRecording) TableName() string { return "voice_recordings" }
