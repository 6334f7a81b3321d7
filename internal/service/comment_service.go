package service

import (
	"context"
	"errors"
	"strings"

	"dakku/internal/models"
	"dakku/internal/observability"
	"dakku/internal/repository"

	"gorm.io/gorm"
)

// CommentService handles comment creation and deletion.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
}

// CreateCommentInput carries the fields for a new comment.
type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

// DeleteCommentInput identifies the user and comment for a delete.
type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

const maxCommentLen = 2000

// NewCommentService creates a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	profileRepo repository.ProfileRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		profileRepo: profileRepo,
	}
}

// CreateComment trims the content and stores the comment. Whitespace-only
// content is rejected before anything is written. The author's username is
// resolved fresh so the response reflects the current profile.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.CommentView, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentsCreatedTotal.Inc()

	view := &models.CommentView{Comment: *comment}
	profile, err := s.profileRepo.GetByUserID(ctx, in.UserID)
	if err == nil {
		view.AuthorName = profile.Username
	}
	return view, nil
}

// DeleteComment removes the comment. Only its author may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment not found")
		}
		return err
	}

	if comment.UserID != in.UserID {
		return models.NewUnauthorizedError("You can only delete your own comments")
	}

	return s.commentRepo.Delete(ctx, in.CommentID)
}
