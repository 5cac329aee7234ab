package services

import (
	"context"
	"log"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Sticker is one entry of the sticker catalog.
type Sticker struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// StickerService serves the sticker catalog from an S3 bucket with
// presigned read URLs.
type StickerService struct {
	Client *s3.Client
	Bucket string
	Prefix string
}

// InitializeS3Client initializes the S3 client
func InitializeS3Client(region string) *s3.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return s3.NewFromConfig(cfg)
}

// ListStickers lists the bucket prefix and returns presigned GET URLs
// valid for five minutes.
func (s *StickerService) ListStickers(ctx context.Context) ([]Sticker, error) {
	output, err := s.Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(s.Prefix),
	})
	if err != nil {
		return nil, err
	}

	presigner := s3.NewPresignClient(s.Client)
	stickers := make([]Sticker, 0, len(output.Contents))
	for _, object := range output.Contents {
		key := aws.ToString(object.Key)
		if key == s.Prefix {
			continue
		}
		presigned, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(5*time.Minute))
		if err != nil {
			return nil, err
		}
		stickers = append(stickers, Sticker{
			ID:  stickerID(key, s.Prefix),
			URL: presigned.URL,
		})
	}
	return stickers, nil
}

// stickerID derives the catalog id from the object key: prefix and
// extension stripped.
func stickerID(key, prefix string) string {
	name := strings.TrimPrefix(key, prefix)
	return strings.TrimSuffix(name, path.Ext(name))
}
