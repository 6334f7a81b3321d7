package server

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"dakku/internal/models"
	"dakku/internal/service"

	"github.com/gofiber/fiber/v2"

	// webp registers itself with image.Decode.
	_ "golang.org/x/image/webp"
)

const defaultMaxUploadSizeMB = 10

// stagedImagesFromForm reads the "images" files out of the multipart form and
// validates each one: size limit, image/* content type by sniffing, and the
// bytes must actually decode as jpeg, png, gif or webp. On a validation
// failure a 400 response naming the offending file is written and
// errResponseWritten is returned; callers should return nil.
func (s *Server) stagedImagesFromForm(c *fiber.Ctx) ([]service.StagedImage, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		// No multipart body at all is fine; title/content arrive via
		// FormValue for urlencoded bodies too.
		return nil, nil
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil, nil
	}

	maxBytes := int64(s.config.MaxUploadSizeMB)
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadSizeMB
	}
	maxBytes *= 1024 * 1024

	staged := make([]service.StagedImage, 0, len(files))
	for _, fh := range files {
		img, err := s.stageImage(fh, maxBytes)
		if err != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
			return nil, errResponseWritten
		}
		staged = append(staged, *img)
	}

	return staged, nil
}

func (s *Server) stageImage(fh *multipart.FileHeader, maxBytes int64) (*service.StagedImage, error) {
	if fh.Size > maxBytes {
		return nil, fmt.Errorf("File %q exceeds the %dMB upload limit", fh.Filename, maxBytes/(1024*1024))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("File %q could not be read", fh.Filename)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("File %q could not be read", fh.Filename)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("File %q exceeds the %dMB upload limit", fh.Filename, maxBytes/(1024*1024))
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("File %q is not an image", fh.Filename)
	}

	// Sniffing only inspects the header; make sure the whole payload is a
	// decodable image before it reaches the bucket.
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("File %q is not a supported image format", fh.Filename)
	}

	return &service.StagedImage{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// DeleteImage handles DELETE /api/posts/:id/images/:imageId
// @Summary Remove a post image
// @Description Delete the stored object first, then the image row
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param imageId path int true "Image ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/images/{imageId} [delete]
func (s *Server) DeleteImage(c *fiber.Ctx) error {
	if _, err := s.parseID(c, "id", "post ID"); err != nil {
		return nil
	}
	imageID, err := s.parseID(c, "imageId", "image ID")
	if err != nil {
		return nil
	}

	if err := s.authoringService.RemoveImage(c.UserContext(), service.RemoveImageInput{
		UserID:  s.currentUserID(c),
		ImageID: imageID,
	}); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Image removed"})
}
