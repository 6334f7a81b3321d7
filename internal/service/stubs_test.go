package service

import (
	"context"
	"testing"

	"dakku/internal/models"
	"dakku/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type postRepoStub struct {
	createFn  func(ctx context.Context, post *models.Post) error
	getByIDFn func(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	listFn    func(ctx context.Context, currentUserID uint) ([]*models.Post, error)
	updateFn  func(ctx context.Context, post *models.Post) error
	deleteFn  func(ctx context.Context, id uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}

func (s *postRepoStub) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}

func (s *postRepoStub) List(ctx context.Context, currentUserID uint) ([]*models.Post, error) {
	return s.listFn(ctx, currentUserID)
}

func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}

func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(context.Context, *models.Post) error { return nil },
		getByIDFn: func(context.Context, uint, uint) (*models.Post, error) { return &models.Post{}, nil },
		listFn:    func(context.Context, uint) ([]*models.Post, error) { return nil, nil },
		updateFn:  func(context.Context, *models.Post) error { return nil },
		deleteFn:  func(context.Context, uint) error { return nil },
	}
}

type imageRepoStub struct {
	createFn      func(ctx context.Context, image *models.PostImage) error
	getByIDFn     func(ctx context.Context, id uint) (*models.PostImage, error)
	listByPostFn  func(ctx context.Context, postID uint) ([]*models.PostImage, error)
	listByPostsFn func(ctx context.Context, postIDs []uint) (map[uint][]*models.PostImage, error)
	deleteFn      func(ctx context.Context, id uint) error
}

func (s *imageRepoStub) Create(ctx context.Context, image *models.PostImage) error {
	return s.createFn(ctx, image)
}

func (s *imageRepoStub) GetByID(ctx context.Context, id uint) (*models.PostImage, error) {
	return s.getByIDFn(ctx, id)
}

func (s *imageRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.PostImage, error) {
	return s.listByPostFn(ctx, postID)
}

func (s *imageRepoStub) ListByPosts(ctx context.Context, postIDs []uint) (map[uint][]*models.PostImage, error) {
	return s.listByPostsFn(ctx, postIDs)
}

func (s *imageRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopImageRepo() *imageRepoStub {
	return &imageRepoStub{
		createFn:     func(context.Context, *models.PostImage) error { return nil },
		getByIDFn:    func(context.Context, uint) (*models.PostImage, error) { return &models.PostImage{}, nil },
		listByPostFn: func(context.Context, uint) ([]*models.PostImage, error) { return nil, nil },
		listByPostsFn: func(context.Context, []uint) (map[uint][]*models.PostImage, error) {
			return map[uint][]*models.PostImage{}, nil
		},
		deleteFn: func(context.Context, uint) error { return nil },
	}
}

type commentRepoStub struct {
	createFn     func(ctx context.Context, comment *models.Comment) error
	getByIDFn    func(ctx context.Context, id uint) (*models.Comment, error)
	listByPostFn func(ctx context.Context, postID uint) ([]*models.Comment, error)
	deleteFn     func(ctx context.Context, id uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}

func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}

func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(context.Context, *models.Comment) error { return nil },
		getByIDFn:    func(context.Context, uint) (*models.Comment, error) { return &models.Comment{}, nil },
		listByPostFn: func(context.Context, uint) ([]*models.Comment, error) { return nil, nil },
		deleteFn:     func(context.Context, uint) error { return nil },
	}
}

type likeRepoStub struct {
	isLikedFn     func(ctx context.Context, userID, postID uint) (bool, error)
	likeFn        func(ctx context.Context, userID, postID uint) error
	unlikeFn      func(ctx context.Context, userID, postID uint) error
	countByPostFn func(ctx context.Context, postID uint) (int64, error)
	listByPostFn  func(ctx context.Context, postID uint) ([]models.Like, error)
}

func (s *likeRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}

func (s *likeRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}

func (s *likeRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}

func (s *likeRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}

func (s *likeRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.Like, error) {
	return s.listByPostFn(ctx, postID)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		isLikedFn:     func(context.Context, uint, uint) (bool, error) { return false, nil },
		likeFn:        func(context.Context, uint, uint) error { return nil },
		unlikeFn:      func(context.Context, uint, uint) error { return nil },
		countByPostFn: func(context.Context, uint) (int64, error) { return 0, nil },
		listByPostFn:  func(context.Context, uint) ([]models.Like, error) { return nil, nil },
	}
}

type profileRepoStub struct {
	createFn       func(ctx context.Context, profile *models.Profile) error
	getByUserIDFn  func(ctx context.Context, userID uint) (*models.Profile, error)
	getByUserIDsFn func(ctx context.Context, userIDs []uint) (map[uint]*models.Profile, error)
	updateFn       func(ctx context.Context, profile *models.Profile) error
}

func (s *profileRepoStub) Create(ctx context.Context, profile *models.Profile) error {
	return s.createFn(ctx, profile)
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.getByUserIDFn(ctx, userID)
}

func (s *profileRepoStub) GetByUserIDs(ctx context.Context, userIDs []uint) (map[uint]*models.Profile, error) {
	return s.getByUserIDsFn(ctx, userIDs)
}

func (s *profileRepoStub) Update(ctx context.Context, profile *models.Profile) error {
	return s.updateFn(ctx, profile)
}

func (s *profileRepoStub) WithTx(tx *gorm.DB) repository.ProfileRepository {
	return s
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		createFn: func(context.Context, *models.Profile) error { return nil },
		getByUserIDFn: func(ctx context.Context, userID uint) (*models.Profile, error) {
			return &models.Profile{UserID: userID, Username: "someone"}, nil
		},
		getByUserIDsFn: func(context.Context, []uint) (map[uint]*models.Profile, error) {
			return map[uint]*models.Profile{}, nil
		},
		updateFn: func(context.Context, *models.Profile) error { return nil },
	}
}

type storeStub struct {
	uploadFn     func(ctx context.Context, key, contentType string, data []byte) (string, error)
	removeFn     func(ctx context.Context, key string) error
	publicURLFn  func(key string) string
	keyFromURLFn func(rawURL string) (string, error)
}

func (s *storeStub) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	return s.uploadFn(ctx, key, contentType, data)
}

func (s *storeStub) Remove(ctx context.Context, key string) error {
	return s.removeFn(ctx, key)
}

func (s *storeStub) PublicURL(key string) string {
	return s.publicURLFn(key)
}

func (s *storeStub) KeyFromURL(rawURL string) (string, error) {
	return s.keyFromURLFn(rawURL)
}

func noopStore() *storeStub {
	return &storeStub{
		uploadFn: func(_ context.Context, key, _ string, _ []byte) (string, error) {
			return "http://localhost:9000/post-images/" + key, nil
		},
		removeFn:     func(context.Context, string) error { return nil },
		publicURLFn:  func(key string) string { return "http://localhost:9000/post-images/" + key },
		keyFromURLFn: func(rawURL string) (string, error) { return "some/key", nil },
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
