package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

var imageTypes = map[string]string{
	".gif":  "image/gif",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// S3Options conveys the upload destination.
type S3Options struct {
	Bucket    string
	KeyPrefix string
	Region    string
	// Endpoint is set for S3-compatible services addressed path-style.
	Endpoint string
	// PublicBaseURL overrides the URL prefix handed back for uploaded objects,
	// e.g. a CDN in front of the bucket.
	PublicBaseURL string
	// ACL is a canned object ACL such as "public-read". Leave empty for
	// buckets with ACLs disabled and public reads granted by bucket policy.
	ACL string
}

// S3Service uploads header images to Amazon S3 (or compatible APIs).
type S3Service struct {
	uploader *manager.Uploader
	opts     S3Options
	now      func() time.Time
}

func NewS3Service(client *s3.Client, opts S3Options) *S3Service {
	return &S3Service{
		uploader: manager.NewUploader(client),
		opts:     opts,
		now:      time.Now,
	}
}

func (s *S3Service) UploadImage(ctx context.Context, img Image) (string, error) {
	if s.opts.Bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}
	ext := strings.ToLower(path.Ext(img.Filename))
	contentType, ok := imageTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, img.Filename)
	}

	key := objectKey(s.opts.KeyPrefix, s.now(), uuid.NewString(), ext)
	_, err := s.uploader.Upload(ctx, putObjectInput(s.opts, key, contentType, img))
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", img.Filename, err)
	}

	return publicURL(s.opts, key), nil
}

func putObjectInput(opts S3Options, key, contentType string, img Image) *s3.PutObjectInput {
	in := &s3.PutObjectInput{
		Bucket:       aws.String(opts.Bucket),
		Key:          aws.String(key),
		Body:         img.Body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}
	if opts.ACL != "" {
		in.ACL = types.ObjectCannedACL(opts.ACL)
	}
	return in
}

func objectKey(prefix string, t time.Time, id, ext string) string {
	name := fmt.Sprintf("%s/%s%s", t.UTC().Format("2006/01"), id, ext)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func publicURL(opts S3Options, key string) string {
	switch {
	case opts.PublicBaseURL != "":
		return strings.TrimRight(opts.PublicBaseURL, "/") + "/" + key
	case opts.Endpoint != "":
		return strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket + "/" + key
	default:
		region := opts.Region
		if region == "" {
			region = "us-east-1"
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", opts.Bucket, region, key)
	}
}

var _ Service = (*S3Service)(nil)
