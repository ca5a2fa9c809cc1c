package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/examspark/examspark-backend/internal/config"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrMediaUpstream       = errors.New("media host rejected upload")
)

// Allowed image MIME types.
var allowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// MediaService relays image uploads to the external media host. Files
// are never written to local disk; only the hosted URL is kept.
type MediaService struct {
	cfg    *config.Config
	client *resty.Client
	log    zerolog.Logger
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config, log zerolog.Logger) *MediaService {
	client := resty.New().
		SetTimeout(cfg.MediaTimeout).
		SetRetryCount(2)

	return &MediaService{
		cfg:    cfg,
		client: client,
		log:    log.With().Str("component", "media_service").Logger(),
	}
}

// mediaHostResponse is the upload response of the external media host.
type mediaHostResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Upload validates and relays one image to the media host, returning
// the hosted URL.
func (s *MediaService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedMIMETypes[contentType]; !ok {
		return "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(), ", "))
	}

	if header.Size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	var result mediaHostResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.cfg.MediaAPIKey).
		SetFileReader("file", header.Filename, file).
		SetResult(&result).
		SetError(&result).
		Post(s.cfg.MediaUploadURL)
	if err != nil {
		return "", fmt.Errorf("relay upload: %w", err)
	}

	if resp.IsError() || result.URL == "" {
		s.log.Warn().
			Int("status", resp.StatusCode()).
			Str("upstream_error", result.Error).
			Msg("Media host rejected upload")
		return "", ErrMediaUpstream
	}

	s.log.Debug().
		Str("filename", header.Filename).
		Int64("size", header.Size).
		Str("url", result.URL).
		Msg("Upload relayed")
	return result.URL, nil
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	return types
}
