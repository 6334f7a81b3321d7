package repository

import (
	"context"

	"dakku/internal/models"

	"gorm.io/gorm"
)

// PostImageRepository defines the interface for post image rows.
type PostImageRepository interface {
	Create(ctx context.Context, image *models.PostImage) error
	GetByID(ctx context.Context, id uint) (*models.PostImage, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.PostImage, error)
	ListByPosts(ctx context.Context, postIDs []uint) (map[uint][]*models.PostImage, error)
	Delete(ctx context.Context, id uint) error
}

type postImageRepository struct {
	db *gorm.DB
}

// NewPostImageRepository creates a new post image repository.
func NewPostImageRepository(db *gorm.DB) PostImageRepository {
	return &postImageRepository{db: db}
}

func (r *postImageRepository) Create(ctx context.Context, image *models.PostImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *postImageRepository) GetByID(ctx context.Context, id uint) (*models.PostImage, error) {
	var image models.PostImage
	if err := r.db.WithContext(ctx).First(&image, id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *postImageRepository) ListByPost(ctx context.Context, postID uint) ([]*models.PostImage, error) {
	var images []*models.PostImage
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&images).Error
	return images, err
}

// ListByPosts groups images for a set of posts in a single query.
func (r *postImageRepository) ListByPosts(ctx context.Context, postIDs []uint) (map[uint][]*models.PostImage, error) {
	result := make(map[uint][]*models.PostImage, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	var images []*models.PostImage
	if err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("created_at ASC, id ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	for _, img := range images {
		result[img.PostID] = append(result[img.PostID], img)
	}
	return result, nil
}

func (r *postImageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PostImage{}, id).Error
}
