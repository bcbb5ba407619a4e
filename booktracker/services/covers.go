package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// CoverService mirrors scraped cover images into an S3-compatible Spaces
// bucket so embeds can use a stable CDN URL instead of hotlinking the
// source site. Mirroring is best-effort; callers treat failures as
// missing covers, never as refresh failures.
type CoverService struct {
	client    *s3.Client
	bucket    string
	region    string
	coverRoot string
	http      *http.Client
}

func NewCoverService(spacesKey, spacesSecret, region, bucket, coverRoot string) *CoverService {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		panic(fmt.Sprintf("Unable to load Spaces config: %v", err))
	}

	return &CoverService{
		client:    s3.NewFromConfig(cfg),
		bucket:    bucket,
		region:    region,
		coverRoot: strings.Trim(coverRoot, "/"),
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// MirrorCover downloads the source image and uploads it under the cover
// root, returning the public CDN URL.
func (s *CoverService) MirrorCover(ctx context.Context, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build cover request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("cover download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cover download returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read cover body: %w", err)
	}

	key := s.coverKey(sourceURL)
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("cover upload failed: %w", err)
	}

	return s.PublicURL(key), nil
}

func (s *CoverService) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.%s.cdn.digitaloceanspaces.com/%s", s.bucket, s.region, key)
}

func (s *CoverService) coverKey(sourceURL string) string {
	name := path.Base(sourceURL)
	if name == "." || name == "/" || name == "" {
		name = "cover.jpg"
	}
	if s.coverRoot == "" {
		return name
	}
	return s.coverRoot + "/" + name
}
