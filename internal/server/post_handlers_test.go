package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"dakku/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPosts(t *testing.T) {
	env := setupTestServer(t)

	t.Run("empty feed returns an empty list", func(t *testing.T) {
		resp := doJSON(t, env, http.MethodGet, "/api/posts", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var posts []models.Post
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
		assert.Empty(t, posts)
	})

	t.Run("posts come back newest first with author and cover image", func(t *testing.T) {
		author := createTestAccount(t, env.db, "list@example.com", "lister", "secret123")
		first := &models.Post{UserID: author.ID, Title: "first", Content: "one"}
		require.NoError(t, env.db.Create(first).Error)
		require.NoError(t, env.db.Model(first).
			Update("created_at", time.Now().Add(-time.Hour)).Error)
		second := &models.Post{UserID: author.ID, Title: "second", Content: "two"}
		require.NoError(t, env.db.Create(second).Error)
		require.NoError(t, env.db.Create(&models.PostImage{
			PostID:   first.ID,
			ImageURL: "https://cdn.test/post-images/1/1/cover.png",
		}).Error)

		resp := doJSON(t, env, http.MethodGet, "/api/posts", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var posts []models.Post
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
		require.Len(t, posts, 2)
		assert.Equal(t, "second", posts[0].Title)
		assert.Equal(t, "first", posts[1].Title)
		assert.Equal(t, "lister", posts[0].AuthorName)
		assert.Empty(t, posts[0].ImageURL)
		assert.Equal(t, "https://cdn.test/post-images/1/1/cover.png", posts[1].ImageURL)
	})
}

func TestGetPost(t *testing.T) {
	env := setupTestServer(t)
	author := createTestAccount(t, env.db, "detail@example.com", "writer", "secret123")
	visitor := createTestAccount(t, env.db, "visitor@example.com", "visitor", "secret123")

	post := &models.Post{UserID: author.ID, Title: "diary", Content: "today"}
	require.NoError(t, env.db.Create(post).Error)
	require.NoError(t, env.db.Create(&models.Comment{
		PostID: post.ID, UserID: visitor.ID, Content: "nice spread",
	}).Error)
	require.NoError(t, env.db.Create(&models.Like{PostID: post.ID, UserID: visitor.ID}).Error)

	t.Run("anonymous detail has liked false", func(t *testing.T) {
		resp := doJSON(t, env, http.MethodGet, "/api/posts/1", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["liked"])
		assert.Equal(t, "writer", body["author_name"])

		comments, ok := body["comments"].([]interface{})
		require.True(t, ok)
		require.Len(t, comments, 1)
		comment := comments[0].(map[string]interface{})
		assert.Equal(t, "nice spread", comment["content"])
		assert.Equal(t, "visitor", comment["author_name"])

		likes, ok := body["likes"].([]interface{})
		require.True(t, ok)
		assert.Len(t, likes, 1)
	})

	t.Run("liker sees liked true", func(t *testing.T) {
		resp := doJSON(t, env, http.MethodGet, "/api/posts/1", bearerFor(t, env, visitor), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["liked"])
	})

	t.Run("missing post is a 404", func(t *testing.T) {
		resp := doJSON(t, env, http.MethodGet, "/api/posts/9999", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("non-numeric id is a 400", func(t *testing.T) {
		resp := doJSON(t, env, http.MethodGet, "/api/posts/abc", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreatePost(t *testing.T) {
	env := setupTestServer(t)
	author := createTestAccount(t, env.db, "create@example.com", "maker", "secret123")
	auth := bearerFor(t, env, author)

	t.Run("multipart post with an image", func(t *testing.T) {
		req := multipartPost(t, http.MethodPost, "/api/posts", auth,
			"My spread", "Washi tape everywhere",
			map[string][]byte{"page.png": tinyPNG(t)})

		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "My spread", body["title"])
		postID := uint(body["id"].(float64))

		var images []models.PostImage
		require.NoError(t, env.db.Where("post_id = ?", postID).Find(&images).Error)
		require.Len(t, images, 1)
		assert.Contains(t, images[0].ImageURL, "https://cdn.test/post-images/")

		// The object landed in the bucket under {user}/{post}/.
		env.store.mu.Lock()
		defer env.store.mu.Unlock()
		require.Len(t, env.store.uploads, 1)
		for key := range env.store.uploads {
			assert.True(t, strings.HasPrefix(key, "1/1/"), "unexpected object key %q", key)
		}
	})

	t.Run("blank title rejected before any write", func(t *testing.T) {
		var before int64
		require.NoError(t, env.db.Model(&models.Post{}).Count(&before).Error)

		req := multipartPost(t, http.MethodPost, "/api/posts", auth, "   ", "content", nil)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var after int64
		require.NoError(t, env.db.Model(&models.Post{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})

	t.Run("non-image file rejected", func(t *testing.T) {
		req := multipartPost(t, http.MethodPost, "/api/posts", auth,
			"Title", "Content",
			map[string][]byte{"notes.txt": []byte("just some text, definitely not pixels")})

		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Contains(t, body["error"], "notes.txt")
	})

	t.Run("anonymous create rejected", func(t *testing.T) {
		req := multipartPost(t, http.MethodPost, "/api/posts", "", "Title", "Content", nil)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestUpdatePost(t *testing.T) {
	env := setupTestServer(t)
	owner := createTestAccount(t, env.db, "owner@example.com", "owner", "secret123")
	other := createTestAccount(t, env.db, "other@example.com", "other", "secret123")

	post := &models.Post{UserID: owner.ID, Title: "before", Content: "old"}
	require.NoError(t, env.db.Create(post).Error)

	t.Run("owner updates title and content", func(t *testing.T) {
		req := multipartPost(t, http.MethodPut, "/api/posts/1", bearerFor(t, env, owner),
			"after", "new", nil)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var updated models.Post
		require.NoError(t, env.db.First(&updated, post.ID).Error)
		assert.Equal(t, "after", updated.Title)
		assert.Equal(t, "new", updated.Content)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		req := multipartPost(t, http.MethodPut, "/api/posts/1", bearerFor(t, env, other),
			"hijack", "nope", nil)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("missing post is a 404", func(t *testing.T) {
		req := multipartPost(t, http.MethodPut, "/api/posts/9999", bearerFor(t, env, owner),
			"title", "content", nil)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeletePost(t *testing.T) {
	env := setupTestServer(t)
	owner := createTestAccount(t, env.db, "del@example.com", "deleter", "secret123")
	other := createTestAccount(t, env.db, "keep@example.com", "keeper", "secret123")

	post := &models.Post{UserID: owner.ID, Title: "doomed", Content: "bye"}
	require.NoError(t, env.db.Create(post).Error)
	require.NoError(t, env.db.Create(&models.PostImage{
		PostID:   post.ID,
		ImageURL: env.store.PublicURL("1/1/a.png"),
	}).Error)
	require.NoError(t, env.db.Create(&models.Comment{
		PostID: post.ID, UserID: other.ID, Content: "so long",
	}).Error)

	t.Run("non-owner is forbidden", func(t *testing.T) {
		resp := doJSON(t, env, http.MethodDelete, "/api/posts/1", bearerFor(t, env, other), nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("owner delete removes rows and stored objects", func(t *testing.T) {
		resp := doJSON(t, env, http.MethodDelete, "/api/posts/1", bearerFor(t, env, owner), nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var count int64
		require.NoError(t, env.db.Model(&models.Post{}).Count(&count).Error)
		assert.EqualValues(t, 0, count)
		require.NoError(t, env.db.Model(&models.Comment{}).Count(&count).Error)
		assert.EqualValues(t, 0, count)

		assert.Equal(t, []string{"1/1/a.png"}, env.store.removedKeys())
	})
}

func TestToggleLike(t *testing.T) {
	env := setupTestServer(t)
	author := createTestAccount(t, env.db, "liked@example.com", "liked", "secret123")
	fan := createTestAccount(t, env.db, "fan@example.com", "fan", "secret123")

	post := &models.Post{UserID: author.ID, Title: "likeable", Content: "heart"}
	require.NoError(t, env.db.Create(post).Error)
	auth := bearerFor(t, env, fan)

	t.Run("first toggle likes", func(t *testing.T) {
		resp := doJSON(t, env, http.MethodPost, "/api/posts/1/like", auth, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["liked"])
		assert.Equal(t, float64(1), body["likes"])
	})

	t.Run("second toggle unlikes", func(t *testing.T) {
		resp := doJSON(t, env, http.MethodPost, "/api/posts/1/like", auth, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["liked"])
		assert.Equal(t, float64(0), body["likes"])
	})

	t.Run("missing post is a 404", func(t *testing.T) {
		resp := doJSON(t, env, http.MethodPost, "/api/posts/9999/like", auth, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("anonymous like rejected", func(t *testing.T) {
		resp := doJSON(t, env, http.MethodPost, "/api/posts/1/like", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
