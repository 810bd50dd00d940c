package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodgram/backend/config"
)

// ImageService stores recipe images in S3-compatible object storage.
// Write payloads carry images as base64 data URIs; the stored object's URL
// becomes the recipe's image field.
type ImageService struct {
	s3Config *config.S3Config
}

func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

var extensionByMIME = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// UploadBase64 decodes a "data:image/...;base64," payload, stores it under
// a fresh key and returns the object URL.
func (s *ImageService) UploadBase64(ctx context.Context, dataURI string) (string, error) {
	mimeType, payload, err := splitDataURI(dataURI)
	if err != nil {
		return "", err
	}
	ext, ok := extensionByMIME[mimeType]
	if !ok {
		return "", newValidationError("image", "unsupported image type %q", mimeType)
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", newValidationError("image", "invalid base64 image payload")
	}

	key := fmt.Sprintf("recipes/%s.%s", uuid.New().String(), ext)
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(decoded),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	if s.s3Config.PublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.s3Config.PublicURL, "/"), key), nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}

func splitDataURI(dataURI string) (mimeType, payload string, err error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return "", "", newValidationError("image", "expected a data URI")
	}
	rest := strings.TrimPrefix(dataURI, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return "", "", newValidationError("image", "expected a base64 data URI")
	}
	return strings.TrimSuffix(meta, ";base64"), payload, nil
}
