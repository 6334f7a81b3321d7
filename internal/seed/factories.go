package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"dakku/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// defaultSeedPassword is the login password for every seeded account.
const defaultSeedPassword = "password123"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db *gorm.DB
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db}
}

// CreateUser persists a user with a bcrypt-hashed default password and its
// profile.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(defaultSeedPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	username := strings.ToLower(gofakeit.Username())
	user := &models.User{
		Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
		Password: string(hash),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	if err := f.db.Create(&models.Profile{UserID: user.ID, Username: username}).Error; err != nil {
		return nil, err
	}

	user.Profile = &models.Profile{UserID: user.ID, Username: username}
	return user, nil
}

// CreatePost persists a post with a created_at spread over the last 90 days
// so the feed looks lived-in.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		UserID:  user.ID,
		Title:   gofakeit.Sentence(4),
		Content: gofakeit.Paragraph(1, 3, 6, "\n"),
	}
	post.CreatedAt = time.Now().
		Add(-time.Duration(rand.Intn(90*24)) * time.Hour).
		Add(-time.Duration(rand.Intn(60)) * time.Minute)
	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostImage persists an image row pointing at a deterministic placeholder.
func (f *Factory) CreatePostImage(post *models.Post) (*models.PostImage, error) {
	image := &models.PostImage{
		PostID:   post.ID,
		ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
	}
	if err := f.db.Create(image).Error; err != nil {
		return nil, err
	}
	return image, nil
}

// CreateComment persists a short comment by the given user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  user.ID,
		Content: gofakeit.Sentence(6),
	}
	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like; duplicates are absorbed by the unique index.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	return f.db.Where(models.Like{PostID: post.ID, UserID: user.ID}).
		FirstOrCreate(&models.Like{}).Error
}
