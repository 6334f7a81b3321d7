package models

import (
	"time"
)

// PostImage is the metadata row for one stored image object. The binary lives
// in the object storage bucket; ImageURL is its public URL.
type PostImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}
