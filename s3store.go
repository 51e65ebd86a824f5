package resumepdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures an S3Store. Works with AWS S3 and S3-compatible
// services such as Cloudflare R2 or MinIO through Endpoint.
type S3Config struct {
	Bucket       string
	Region       string // "auto" for R2
	Endpoint     string // custom endpoint, empty for AWS
	AccessKey    string // static credentials; empty uses the default AWS chain
	SecretKey    string
	PublicURL    string // base URL objects are served from
	Prefix       string // key prefix, e.g. "pdfs"
	UsePathStyle bool
}

// s3API is the subset of the S3 client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads artifacts with PutObject.
type S3Store struct {
	client s3API
	cfg    S3Config
}

// NewS3Store builds an S3 client from cfg.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 store: bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 store: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3StoreWithClient(client, cfg), nil
}

func newS3StoreWithClient(client s3API, cfg S3Config) *S3Store {
	return &S3Store{client: client, cfg: cfg}
}

func (s *S3Store) Name() string { return "s3" }

// Active is true once a bucket is configured; S3 does not use per-call tokens.
func (s *S3Store) Active(string) bool {
	return s.cfg.Bucket != ""
}

// Put uploads obj under the configured prefix.
func (s *S3Store) Put(ctx context.Context, obj Object) (string, error) {
	key := s.key(obj.Name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(obj.Data),
		ContentLength: aws.Int64(int64(len(obj.Data))),
		ContentType:   aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("putting object %s/%s: %w", s.cfg.Bucket, key, err)
	}
	return s.objectURL(key), nil
}

func (s *S3Store) key(name string) string {
	prefix := strings.Trim(s.cfg.Prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// objectURL derives the public URL of key: PublicURL when set, then the
// custom endpoint in path style, then the virtual-hosted AWS form.
func (s *S3Store) objectURL(key string) string {
	escaped := escapeKey(key)
	switch {
	case s.cfg.PublicURL != "":
		return strings.TrimRight(s.cfg.PublicURL, "/") + "/" + escaped
	case s.cfg.Endpoint != "":
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + url.PathEscape(s.cfg.Bucket) + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, escaped)
	}
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
