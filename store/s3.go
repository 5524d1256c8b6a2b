package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/justapithecus/seam/types"
)

// S3Config holds configuration for the S3-backed store.
type S3Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. Cloudflare R2, MinIO). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// s3API is the subset of the S3 client the store uses. Narrowed for testing.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store persists run records as msgpack objects, one per asset-partition
// at <prefix>/runs/<asset>/<key-hash>.msgpack.
type S3Store struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Store creates an S3-backed store using the AWS SDK default
// credential chain (env vars, shared config, IAM role).
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// NewS3StoreWithClient wraps an existing client (for testing).
func NewS3StoreWithClient(client s3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Get fetches and decodes the record, or returns nil when the object is absent.
func (s *S3Store) Get(ctx context.Context, asset string, key types.PartitionKey) (*types.RunRecord, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.recordKey(asset, key)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("s3 store: get %s/%s: %w", asset, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 store: read %s/%s: %w", asset, key, err)
	}
	return DecodeRecord(data)
}

// Put encodes and uploads the record. S3 PUT is atomic per object, which is
// all the store contract requires given the scheduler's per-key lock.
func (s *S3Store) Put(ctx context.Context, record *types.RunRecord) error {
	data, err := EncodeRecord(record)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.recordKey(record.Asset, record.Key)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3 store: put %s/%s: %w", record.Asset, record.Key, err)
	}
	return nil
}

// ListByAsset pages through the asset's object prefix, decoding each record.
func (s *S3Store) ListByAsset(ctx context.Context, asset string) ([]*types.RunRecord, error) {
	return s.listPrefix(ctx, s.join("runs", asset)+"/")
}

// ListPending pages through every record, filtering for pending state.
func (s *S3Store) ListPending(ctx context.Context) ([]*types.RunRecord, error) {
	records, err := s.listPrefix(ctx, s.join("runs")+"/")
	if err != nil {
		return nil, err
	}

	pending := records[:0]
	for _, rec := range records {
		if rec.State == types.StatePending {
			pending = append(pending, rec)
		}
	}
	return pending, nil
}

// Close is a no-op; the underlying HTTP client is shared.
func (s *S3Store) Close() error {
	return nil
}

func (s *S3Store) listPrefix(ctx context.Context, prefix string) ([]*types.RunRecord, error) {
	var records []*types.RunRecord
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 store: list %q: %w", prefix, err)
		}

		for _, obj := range out.Contents {
			if obj.Key == nil || !strings.HasSuffix(*obj.Key, ".msgpack") {
				continue
			}
			rec, err := s.getObject(ctx, *obj.Key)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}

	sortRecords(records)
	return records, nil
}

func (s *S3Store) getObject(ctx context.Context, key string) (*types.RunRecord, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 store: get object %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 store: read object %q: %w", key, err)
	}
	return DecodeRecord(data)
}

func (s *S3Store) recordKey(asset string, key types.PartitionKey) string {
	return s.join("runs", asset, keyFilename(key))
}

func (s *S3Store) join(parts ...string) string {
	if s.prefix != "" {
		parts = append([]string{s.prefix}, parts...)
	}
	return strings.Join(parts, "/")
}

var _ Store = (*S3Store)(nil)
