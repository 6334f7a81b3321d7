// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"

	"dakku/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with demo accounts, posts, images, comments
// and likes.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding database with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("warning: could not clear all existing data, continuing anyway")
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("created %d users", len(users))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[rand.Intn(len(users))]
		post, err := f.CreatePost(author)
		if err != nil {
			return fmt.Errorf("failed to create posts: %w", err)
		}
		posts = append(posts, post)

		for n := rand.Intn(3); n > 0; n-- {
			if _, err := f.CreatePostImage(post); err != nil {
				return fmt.Errorf("failed to create post images: %w", err)
			}
		}
	}
	log.Printf("created %d posts", len(posts))

	comments := 0
	likes := 0
	for _, post := range posts {
		for n := rand.Intn(4); n > 0; n-- {
			commenter := users[rand.Intn(len(users))]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("failed to create comments: %w", err)
			}
			comments++
		}

		// A random subset of users likes each post; the unique index keeps
		// duplicates out.
		for _, user := range users {
			if gofakeit.Bool() {
				continue
			}
			if err := f.CreateLike(user, post); err != nil {
				return fmt.Errorf("failed to create likes: %w", err)
			}
			likes++
		}
	}
	log.Printf("created %d comments and %d likes", comments, likes)

	return nil
}

// clearData removes seeded rows child-first so foreign keys never dangle.
func clearData(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.Like{}, &models.Comment{}, &models.PostImage{},
		&models.Post{}, &models.Profile{}, &models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
