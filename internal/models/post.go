package models

import (
	"time"
)

// Post is a diary entry in the Dakku application.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AuthorName is not persisted; joined from profiles at query time.
	AuthorName string `gorm:"->" json:"author_name"`
	// ImageURL is not persisted; the first attached image, empty when none.
	ImageURL string `gorm:"->" json:"image_url"`
	// LikesCount is not persisted; computed at query time.
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time.
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked is not persisted; whether the requesting account liked the post.
	Liked bool `gorm:"->" json:"liked"`

	Images   []PostImage `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Comments []Comment   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Likes    []Like      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}
