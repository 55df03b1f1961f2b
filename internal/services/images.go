package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"thrift-swap-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const s3Scheme = "s3://"

// ImageOptions configures where item images live
type ImageOptions struct {
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	PresignTTL time.Duration
}

// ImageResolver turns s3://bucket/key image references into presigned GET
// URLs. Other references are plain URLs and pass through unchanged.
type ImageResolver struct {
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

// NewImageResolver creates a resolver. Without a bucket it only passes
// references through.
func NewImageResolver(ctx context.Context, opts ImageOptions) (*ImageResolver, error) {
	if opts.Bucket == "" {
		return &ImageResolver{}, nil
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := opts.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ImageResolver{
		presign: s3.NewPresignClient(client),
		bucket:  opts.Bucket,
		ttl:     ttl,
	}, nil
}

func splitS3Ref(ref string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(ref, s3Scheme)
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// ValidateImageRef accepts absolute http(s) URLs and s3://bucket/key references
func ValidateImageRef(ref string) error {
	if strings.HasPrefix(ref, s3Scheme) {
		if _, _, ok := splitS3Ref(ref); !ok {
			return invalid("image reference must look like s3://bucket/key")
		}
		return nil
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("image URL must be an absolute http(s) URL")
	}
	return nil
}

// Resolve returns a URL a client can load for the reference
func (r *ImageResolver) Resolve(ctx context.Context, ref *string) *string {
	if r == nil || r.presign == nil || ref == nil {
		return ref
	}
	bucket, key, ok := splitS3Ref(*ref)
	if !ok || bucket != r.bucket {
		return ref
	}

	request, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = r.ttl
	})
	if err != nil {
		log.Error().Err(err).Str("image_ref", *ref).Msg("Failed to presign image URL")
		return ref
	}
	return &request.URL
}

// ResolveItems rewrites the image URLs of items in place
func (r *ImageResolver) ResolveItems(ctx context.Context, items []*models.ClothingItem) {
	for _, item := range items {
		item.ImageURL = r.Resolve(ctx, item.ImageURL)
	}
}
