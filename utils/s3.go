package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ImageStore archives analyzed meal photos in S3.
type ImageStore struct {
	client *s3.Client
	bucket string
	cfURL  string
}

func NewImageStore(client *s3.Client) *ImageStore {
	return &ImageStore{
		client: client,
		bucket: os.Getenv("S3_BUCKET"),
		cfURL:  os.Getenv("CLOUDFRONT_URL"),
	}
}

// DecodeDataURI strips an optional "data:<mime>;base64," prefix and decodes
// the remainder. Content type defaults to image/jpeg when no prefix is given.
func DecodeDataURI(base64Data string) ([]byte, string, error) {
	contentType := "image/jpeg"
	data := base64Data
	if strings.HasPrefix(base64Data, "data:") {
		parts := strings.SplitN(base64Data, ",", 2)
		if len(parts) != 2 {
			return nil, "", fmt.Errorf("invalid base64 image")
		}
		mediaType := strings.TrimPrefix(parts[0], "data:")
		contentType = strings.SplitN(mediaType, ";", 2)[0]
		data = parts[1]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return raw, contentType, nil
}

// UploadMealImage stores the image under meal-photos/ and returns its
// public URL.
func (s *ImageStore) UploadMealImage(ctx context.Context, imageData []byte, contentType string, userID uint) (string, error) {
	ext := ".jpg"
	if p := strings.SplitN(contentType, "/", 2); len(p) == 2 && p[1] != "jpeg" {
		ext = "." + p[1]
	}
	key := fmt.Sprintf("meal-photos/%d-%d%s", userID, time.Now().UnixNano(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.cfURL, key), nil
}
