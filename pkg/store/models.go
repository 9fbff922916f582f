package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type TranscriptModel struct {
	ID         int64  `gorm:"primaryKey"`
	Title      string `gorm:"not null"`
	Preacher   string `gorm:"not null"`
	VideoID    string `gorm:"uniqueIndex;not null"`
	Transcript string `gorm:"type:text;not null"`
}

// TableName keeps the table the schema has always used.
func (TranscriptModel) TableName() string { return "sermon_youtube_id" }

type UserModel struct {
	ID        string `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;not null"`
	FirstName string `gorm:"not null"`
	LastName  string
	Picture   string
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

type AccessTokenModel struct {
	UserID      string    `gorm:"primaryKey"`
	AccessToken string    `gorm:"type:text;not null"`
	TokenType   string    `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

type ConversationModel struct {
	Seq          int64          `gorm:"primaryKey;autoIncrement"`
	ID           string         `gorm:"uniqueIndex;not null"`
	UserID       string         `gorm:"not null;index"`
	Name         string         `gorm:"not null"`
	Prompts      datatypes.JSON `gorm:"type:jsonb"`
	DateModified time.Time      `gorm:"not null"`
}

type SermonModel struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null;index"`
	CoverURL    string
	DocumentURL string
	Minister    string `gorm:"index"`
	Description string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time
}

// CollectionModel maps a vector collection name to the video ID it serves.
type CollectionModel struct {
	Name    string `gorm:"primaryKey"`
	VideoID string `gorm:"uniqueIndex;not null"`
}
