package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"dakku/internal/middleware"
	"dakku/internal/models"
	"dakku/internal/observability"
	"dakku/internal/repository"
	"dakku/internal/storage"

	"gorm.io/gorm"
)

// AuthoringService handles post creation, editing and image management.
type AuthoringService struct {
	postRepo  repository.PostRepository
	imageRepo repository.PostImageRepository
	store     storage.ObjectStore
	now       func() time.Time
}

// StagedImage is an image file held in memory until the post row exists.
type StagedImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SavePostInput carries the fields for creating or editing a post. A zero
// PostID means create; otherwise the existing post is updated.
type SavePostInput struct {
	UserID  uint
	PostID  uint
	Title   string
	Content string
	Images  []StagedImage
}

// RemoveImageInput identifies the user and image row for a removal.
type RemoveImageInput struct {
	UserID  uint
	ImageID uint
}

const (
	maxTitleLen   = 255
	maxContentLen = 50000
)

// NewAuthoringService creates a new AuthoringService.
func NewAuthoringService(
	postRepo repository.PostRepository,
	imageRepo repository.PostImageRepository,
	store storage.ObjectStore,
) *AuthoringService {
	return &AuthoringService{
		postRepo:  postRepo,
		imageRepo: imageRepo,
		store:     store,
		now:       time.Now,
	}
}

// SavePost validates the trimmed title and content, inserts or updates the
// post row, then uploads staged images one at a time. A failed upload is
// logged and skipped; the remaining images still go through, so the post
// ends up with exactly the images that uploaded successfully.
func (s *AuthoringService) SavePost(ctx context.Context, in SavePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)

	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 255 characters)")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	var post *models.Post
	if in.PostID == 0 {
		post = &models.Post{
			UserID:  in.UserID,
			Title:   title,
			Content: content,
		}
		if err := s.postRepo.Create(ctx, post); err != nil {
			return nil, err
		}
		observability.PostsCreatedTotal.Inc()
	} else {
		existing, err := s.postRepo.GetByID(ctx, in.PostID, 0)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Post not found")
			}
			return nil, err
		}
		if existing.UserID != in.UserID {
			return nil, models.NewUnauthorizedError("You can only edit your own posts")
		}

		existing.Title = title
		existing.Content = content
		if err := s.postRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		post = existing
	}

	s.uploadImages(ctx, in.UserID, post.ID, in.Images)

	return post, nil
}

// uploadImages pushes each staged image to the bucket and records a row per
// successful upload. Uploads are sequential; one failure never aborts the
// rest.
func (s *AuthoringService) uploadImages(ctx context.Context, userID, postID uint, images []StagedImage) {
	for _, img := range images {
		key := storage.BuildImageKey(userID, postID, img.Filename, s.now())

		url, err := s.store.Upload(ctx, key, img.ContentType, img.Data)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "image upload failed, skipping",
				slog.String("filename", img.Filename),
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}

		row := &models.PostImage{PostID: postID, ImageURL: url}
		if err := s.imageRepo.Create(ctx, row); err != nil {
			middleware.Logger.ErrorContext(ctx, "failed to record uploaded image",
				slog.String("url", url),
				slog.String("error", err.Error()),
			)
		}
	}
}

// RemoveImage deletes an existing image of a post the user owns. The bucket
// object is deleted first; if that fails the row is kept and the error is
// returned.
func (s *AuthoringService) RemoveImage(ctx context.Context, in RemoveImageInput) error {
	image, err := s.imageRepo.GetByID(ctx, in.ImageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Image not found")
		}
		return err
	}

	post, err := s.postRepo.GetByID(ctx, image.PostID, 0)
	if err != nil {
		return err
	}
	if post.UserID != in.UserID {
		return models.NewUnauthorizedError("You can only modify your own posts")
	}

	key, err := s.store.KeyFromURL(image.ImageURL)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.store.Remove(ctx, key); err != nil {
		return err
	}

	return s.imageRepo.Delete(ctx, in.ImageID)
}
