// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/threedframe/threedframe-backend/internal/config"
)

// FileStorage is the asset-storage collaborator consumed by the model upload
// path. Kept as an interface so upload atomicity can be tested against an
// injected failing store.
type FileStorage interface {
	UploadFile(file multipart.File, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error)
	DeleteFile(key string) error
}

type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
	IsPublic     bool
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return &StorageService{config: config}, nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

func (s *StorageService) UploadFile(file multipart.File, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	// Validate file size
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, fmt.Errorf("%w: file size %d bytes exceeds maximum allowed size %d bytes", ErrValidation, header.Size, options.MaxSize)
	}

	// Validate file type
	if len(options.AllowedTypes) > 0 {
		fileExt := strings.ToLower(filepath.Ext(header.Filename))
		allowed := false
		for _, allowedType := range options.AllowedTypes {
			if fileExt == allowedType {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("%w: file type %s is not allowed", ErrValidation, fileExt)
		}
	}

	// Generate unique filename
	filename := s.generateFileName(header.Filename, options.Folder)

	// Read file content
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read file: %v", ErrStorage, err)
	}

	// Upload to S3 or local storage
	if s.s3Client != nil {
		return s.uploadToS3(fileBytes, filename, header.Header.Get("Content-Type"), options.IsPublic)
	}

	return s.uploadToLocal(fileBytes, filename, header.Header.Get("Content-Type"))
}

func (s *StorageService) uploadToS3(fileBytes []byte, key, contentType string, isPublic bool) (*UploadResult, error) {
	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
	}

	if isPublic {
		params.ACL = aws.String("public-read")
	}

	_, err := s.s3Client.PutObject(params)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to upload to S3: %v", ErrStorage, err)
	}

	url := s.getS3URL(key)

	return &UploadResult{
		URL:      url,
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(fileBytes []byte, filename, contentType string) (*UploadResult, error) {
	// For local development, we'll simulate file storage
	url := fmt.Sprintf("http://%s:%s/uploads/%s", s.config.Server.Host, s.config.Server.Port, filename)

	return &UploadResult{
		URL:      url,
		Key:      filename,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) DeleteFile(key string) error {
	if s.s3Client == nil {
		return nil
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return fmt.Errorf("%w: failed to delete file from S3: %v", ErrStorage, err)
	}

	return nil
}

// Model bundles are served cross-origin by embedded viewers, so every asset
// kind is public.
func GetModelUploadOptions(kind string) UploadOptions {
	switch kind {
	case "glb":
		return UploadOptions{
			Folder:       "models/glb",
			MaxSize:      100 * 1024 * 1024, // 100MB
			AllowedTypes: []string{".glb"},
			IsPublic:     true,
		}
	case "usdz":
		return UploadOptions{
			Folder:       "models/usdz",
			MaxSize:      100 * 1024 * 1024, // 100MB
			AllowedTypes: []string{".usdz"},
			IsPublic:     true,
		}
	case "poster":
		return UploadOptions{
			Folder:       "models/posters",
			MaxSize:      5 * 1024 * 1024, // 5MB
			AllowedTypes: []string{".jpg", ".jpeg", ".png", ".webp"},
			IsPublic:     true,
		}
	default:
		return UploadOptions{
			Folder:       "general",
			MaxSize:      5 * 1024 * 1024, // 5MB
			AllowedTypes: []string{".jpg", ".jpeg", ".png"},
			IsPublic:     false,
		}
	}
}

func (s *StorageService) generateFileName(originalName, folder string) string {
	id := uuid.New()
	ext := filepath.Ext(originalName)

	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, id.String()[:8], ext)

	if folder != "" {
		return fmt.Sprintf("%s/%s", folder, filename)
	}

	return filename
}

func (s *StorageService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}
