package file

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/lostfound-api/internal/domain"
	"github.com/lostfound-api/internal/pkg/id"
)

// Allowed image uploads. Item photos only, capped well below the S3
// multipart threshold.
const MaxImageSize = 5 << 20 // 5 MiB

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	UploaderID  string
}

type Service interface {
	// Upload stores an item photo and returns its public URL record.
	Upload(ctx context.Context, input UploadInput) (*domain.Image, error)
	Delete(ctx context.Context, imageID, requesterID string, isAdmin bool) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type imageStore interface {
	Put(ctx context.Context, img *domain.Image) error
	Get(ctx context.Context, imageID string) (*domain.Image, error)
	HardDelete(ctx context.Context, imageID string) error
}

type service struct {
	objects objectStore
	repo    imageStore
}

func NewService(objects objectStore, repo imageStore) Service {
	return &service{objects: objects, repo: repo}
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*domain.Image, error) {
	if !allowedImageTypes[input.ContentType] {
		return nil, fmt.Errorf("only JPEG, PNG and WebP images are accepted: %w", domain.ErrBadRequest)
	}
	if input.Size > MaxImageSize {
		return nil, fmt.Errorf("image exceeds the 5 MB limit: %w", domain.ErrBadRequest)
	}

	imageID := id.New()
	key := fmt.Sprintf("items/%s/%s-%s", input.UploaderID, imageID, sanitizeFilename(input.Filename))
	url, err := s.objects.Upload(ctx, key, io.LimitReader(input.Reader, MaxImageSize), input.ContentType)
	if err != nil {
		return nil, err
	}

	img := &domain.Image{
		ImageID:          imageID,
		Object:           key,
		URL:              url,
		Size:             input.Size,
		ContentType:      input.ContentType,
		UploadedByUserID: input.UploaderID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *service) Delete(ctx context.Context, imageID, requesterID string, isAdmin bool) error {
	img, err := s.repo.Get(ctx, imageID)
	if err != nil {
		return err
	}
	if img.UploadedByUserID != requesterID && !isAdmin {
		return fmt.Errorf("access denied: %w", domain.ErrForbidden)
	}
	if err := s.objects.Delete(ctx, img.Object); err != nil {
		return err
	}
	return s.repo.HardDelete(ctx, imageID)
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." {
		return result
	}
	return "_"
}
