// Package storage provides object storage implementations for shipping label archival.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appshipping "github.com/erp/shipping/internal/application/shipping"
	infraconfig "github.com/erp/shipping/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure S3LabelArchiver implements LabelArchiver
var _ appshipping.LabelArchiver = (*S3LabelArchiver)(nil)

// maxLabelSize caps the label download at 20MB
const maxLabelSize = 20 * 1024 * 1024

// S3LabelArchiver stores carrier shipping labels in S3-compatible object storage.
// The carrier hosts label files on its own CDN with no retention guarantee, so
// booked labels are copied into a bucket the ERP controls.
type S3LabelArchiver struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	httpClient        *http.Client
	bucket            string
	keyPrefix         string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3LabelArchiverOption is a functional option for configuring S3LabelArchiver
type S3LabelArchiverOption func(*S3LabelArchiver)

// WithLogger sets a custom logger for S3LabelArchiver
func WithLogger(logger *zap.Logger) S3LabelArchiverOption {
	return func(s *S3LabelArchiver) {
		s.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3LabelArchiverOption {
	return func(s *S3LabelArchiver) {
		s.presignExpiration = d
	}
}

// WithHTTPClient sets the HTTP client used to download labels
func WithHTTPClient(client *http.Client) S3LabelArchiverOption {
	return func(s *S3LabelArchiver) {
		s.httpClient = client
	}
}

// NewS3LabelArchiver creates a new S3LabelArchiver from configuration.
// It supports any S3-compatible storage backend (AWS S3, MinIO, etc.)
func NewS3LabelArchiver(cfg *infraconfig.StorageConfig, opts ...S3LabelArchiverOption) (*S3LabelArchiver, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}

	// Validate required configuration
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	// Build endpoint URL
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000" // MinIO default
	}

	// Ensure endpoint has protocol
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}

	// Validate endpoint URL
	_, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	// Create AWS SDK config with custom credentials and endpoint
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"", // session token (not used for static credentials)
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	// Create S3 client with path-style addressing and custom endpoint
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	archiver := &S3LabelArchiver{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		bucket:        cfg.Bucket,
		keyPrefix:     cfg.KeyPrefix,
		logger:        zap.NewNop(),
	}

	// Apply options
	for _, opt := range opts {
		opt(archiver)
	}

	// Set default presign expiration if not set
	if archiver.presignExpiration == 0 {
		archiver.presignExpiration = 15 * time.Minute
	}

	return archiver, nil
}

// Archive downloads the label from the carrier URL and stores it in the
// bucket. It returns the object key the label was stored under.
func (s *S3LabelArchiver) Archive(ctx context.Context, shipmentCode, labelURL string) (string, error) {
	if shipmentCode == "" {
		return "", errors.New("shipment code is required")
	}
	if labelURL == "" {
		return "", errors.New("label URL is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, labelURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build label request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download label: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download label: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLabelSize))
	if err != nil {
		return "", fmt.Errorf("failed to read label body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	key := s.labelKey(shipmentCode, labelURL)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(string(data)),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store label: %w", err)
	}

	s.logger.Info("label archived",
		zap.String("shipment", shipmentCode),
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return key, nil
}

// labelKey builds the object key for a shipment label. The file name comes
// from the carrier URL when it carries one, with a PDF fallback.
func (s *S3LabelArchiver) labelKey(shipmentCode, labelURL string) string {
	name := shipmentCode + ".pdf"
	if u, err := url.Parse(labelURL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" && path.Ext(base) != "" {
			name = base
		}
	}

	key := shipmentCode + "/" + name
	if s.keyPrefix != "" {
		key = strings.TrimSuffix(s.keyPrefix, "/") + "/" + key
	}
	return key
}

// DownloadURL generates a presigned URL for retrieving an archived label.
// The URL is valid for the configured presignExpiration duration.
func (s *S3LabelArchiver) DownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	// Use provided expiration or default
	if expiresIn <= 0 {
		expiresIn = s.presignExpiration
	}

	presignReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}

	expiresAt := time.Now().Add(expiresIn)
	return presignReq.URL, expiresAt, nil
}

// DeleteObject deletes an archived label from storage.
func (s *S3LabelArchiver) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// ObjectExists checks if an archived label exists in storage.
func (s *S3LabelArchiver) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return false, nil
		}
		// Some S3-compatible services report the code differently
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3LabelArchiver) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		// Bucket exists
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Ignore "BucketAlreadyOwnedByYou" error (race condition)
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// GetBucket returns the bucket name
func (s *S3LabelArchiver) GetBucket() string {
	return s.bucket
}
