// Package service implements the application's business logic on top of the
// repository and storage layers.
package service

import (
	"context"
	"errors"
	"log/slog"

	"dakku/internal/middleware"
	"dakku/internal/models"
	"dakku/internal/observability"
	"dakku/internal/repository"
	"dakku/internal/storage"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// PostService handles reading, liking and deleting posts.
type PostService struct {
	postRepo    repository.PostRepository
	imageRepo   repository.PostImageRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	profileRepo repository.ProfileRepository
	store       storage.ObjectStore
}

// ToggleLikeInput identifies the user and post for a like toggle.
type ToggleLikeInput struct {
	UserID uint
	PostID uint
}

// DeletePostInput identifies the user and post for a delete.
type DeletePostInput struct {
	UserID uint
	PostID uint
}

// NewPostService creates a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	imageRepo repository.PostImageRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	profileRepo repository.ProfileRepository,
	store storage.ObjectStore,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		imageRepo:   imageRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		profileRepo: profileRepo,
		store:       store,
	}
}

// ListPosts returns all posts newest first with author name, cover image and
// counts expanded.
func (s *PostService) ListPosts(ctx context.Context, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.List(ctx, currentUserID)
}

// GetPostDetail loads the post and, when it exists, its images, comments and
// likes in parallel. A missing post stops the whole operation with a
// not-found error; none of the secondary queries run in that case.
func (s *PostService) GetPostDetail(ctx context.Context, postID, currentUserID uint) (*models.PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, postID, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		return nil, err
	}

	detail := &models.PostDetail{
		Post:       *post,
		AuthorName: post.AuthorName,
		Liked:      post.Liked,
	}

	var (
		images   []*models.PostImage
		comments []*models.Comment
		likes    []models.Like
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		images, err = s.imageRepo.ListByPost(gctx, postID)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.commentRepo.ListByPost(gctx, postID)
		return err
	})
	g.Go(func() error {
		var err error
		likes, err = s.likeRepo.ListByPost(gctx, postID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail.Images = make([]models.PostImage, 0, len(images))
	for _, img := range images {
		detail.Images = append(detail.Images, *img)
	}
	detail.Likes = likes

	views, err := s.resolveCommentAuthors(ctx, comments)
	if err != nil {
		return nil, err
	}
	detail.Comments = views

	return detail, nil
}

// resolveCommentAuthors batches the username lookup for a set of comments
// over their distinct author IDs.
func (s *PostService) resolveCommentAuthors(ctx context.Context, comments []*models.Comment) ([]models.CommentView, error) {
	views := make([]models.CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}

	seen := map[uint]struct{}{}
	userIDs := make([]uint, 0, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		userIDs = append(userIDs, c.UserID)
	}

	profiles, err := s.profileRepo.GetByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for _, c := range comments {
		view := models.CommentView{Comment: *c}
		if p, ok := profiles[c.UserID]; ok {
			view.AuthorName = p.Username
		}
		views = append(views, view)
	}
	return views, nil
}

// ToggleLike flips the user's like membership on the post and returns the new
// state together with the fresh like count.
func (s *PostService) ToggleLike(ctx context.Context, in ToggleLikeInput) (liked bool, likes int64, err error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, models.NewNotFoundError("Post not found")
		}
		return false, 0, err
	}

	wasLiked, err := s.likeRepo.IsLiked(ctx, in.UserID, in.PostID)
	if err != nil {
		return false, 0, err
	}

	if wasLiked {
		err = s.likeRepo.Unlike(ctx, in.UserID, in.PostID)
	} else {
		err = s.likeRepo.Like(ctx, in.UserID, in.PostID)
	}
	if err != nil {
		return false, 0, err
	}

	liked = !wasLiked
	state := "liked"
	if !liked {
		state = "unliked"
	}
	observability.LikeTogglesTotal.WithLabelValues(state).Inc()

	likes, err = s.likeRepo.CountByPost(ctx, in.PostID)
	if err != nil {
		return false, 0, err
	}
	return liked, likes, nil
}

// DeletePost removes the post, its dependent rows and its stored images.
// Only the author may delete. Storage removals are best effort; a failed
// object delete is logged and does not block the row delete.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, 0)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post not found")
		}
		return err
	}
	if post.UserID != in.UserID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}

	images, err := s.imageRepo.ListByPost(ctx, in.PostID)
	if err != nil {
		return err
	}
	for _, img := range images {
		key, keyErr := s.store.KeyFromURL(img.ImageURL)
		if keyErr != nil {
			middleware.Logger.WarnContext(ctx, "skipping storage delete for unrecognized image url",
				slog.String("url", img.ImageURL), slog.String("error", keyErr.Error()))
			continue
		}
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete stored image",
				slog.String("key", key), slog.String("error", rmErr.Error()))
		}
	}

	return s.postRepo.Delete(ctx, in.PostID)
}
