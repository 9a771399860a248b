package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// S3Config holds object storage settings. Endpoint is optional and only set
// for S3-compatible services.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func NewS3Config(logger *zap.Logger) *S3Config {
	cfg := &S3Config{
		Bucket:    os.Getenv("S3_BUCKET"),
		Region:    os.Getenv("S3_REGION"),
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
	}
	if cfg.Bucket == "" || cfg.Region == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		logger.Fatal("S3 configuration incomplete, need S3_BUCKET, S3_REGION, S3_ACCESS_KEY, S3_SECRET_KEY")
	}
	return cfg
}

// ObjectStore uploads document and photo blobs and hands back their public
// URLs. Uploaded objects are never deleted by the application.
type ObjectStore struct {
	client *s3.Client
	bucket string
	region string
	url    string
	logger *zap.Logger
}

func NewObjectStore(lc fx.Lifecycle, cfg *S3Config, logger *zap.Logger) *ObjectStore {
	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	var optFns []func(*s3.Options)
	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		optFns = append(optFns, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
		baseURL = fmt.Sprintf("%s/%s", endpoint, cfg.Bucket)
	}

	store := &ObjectStore{
		client: s3.NewFromConfig(awsCfg, optFns...),
		bucket: cfg.Bucket,
		region: cfg.Region,
		url:    baseURL,
		logger: logger,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Object store initialized", zap.String("bucket", cfg.Bucket))
			return nil
		},
	})
	return store
}

// Upload stores a blob under key and returns its public URL.
func (s *ObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

// PublicURL derives the object's URL from bucket, region and key.
func (s *ObjectStore) PublicURL(key string) string {
	return s.url + "/" + key
}

// GenerateKey builds an object key namespaced by purpose prefix, then a
// timestamp and random suffix so repeated uploads of the same filename never
// collide.
func GenerateKey(prefix, filename string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s/%d-%s-%s", prefix, time.Now().UnixNano(), suffix, filename)
}
