package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/seam/adapter"
	redisadapter "github.com/justapithecus/seam/adapter/redis"
	"github.com/justapithecus/seam/adapter/webhook"
	"github.com/justapithecus/seam/store"
)

// buildStore constructs the run store selected by the store flags.
func buildStore(ctx context.Context, c *cli.Context) (store.Store, error) {
	backend := c.String("store-backend")
	switch backend {
	case "memory":
		return store.NewMemStore(), nil

	case "file", "":
		return store.NewFileStore(c.String("store-path"))

	case "redis":
		url := c.String("store-redis-url")
		if url == "" {
			return nil, fmt.Errorf("--store-redis-url required for redis backend")
		}
		return store.NewRedisStore(store.RedisConfig{
			URL:    url,
			Prefix: c.String("store-redis-prefix"),
		})

	case "s3":
		bucket, prefix := parseS3Path(c.String("store-path"))
		return store.NewS3Store(ctx, store.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       c.String("store-s3-region"),
			Endpoint:     c.String("store-s3-endpoint"),
			UsePathStyle: c.Bool("store-s3-path-style"),
		})

	default:
		return nil, fmt.Errorf("unknown store-backend: %s (must be memory, file, redis, or s3)", backend)
	}
}

// parseS3Path splits "bucket/prefix" into bucket and prefix.
func parseS3Path(path string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(path, "/")
	return bucket, prefix
}

// buildAdapter constructs the completion-event adapter selected by the
// adapter flags. Returns nil when no adapter is configured.
func buildAdapter(c *cli.Context) (adapter.Adapter, error) {
	webhookURL := c.String("webhook-url")
	redisURL := c.String("publish-redis-url")

	if webhookURL != "" && redisURL != "" {
		return nil, fmt.Errorf("--webhook-url and --publish-redis-url are mutually exclusive")
	}

	switch {
	case webhookURL != "":
		return webhook.New(webhook.Config{URL: webhookURL})
	case redisURL != "":
		return redisadapter.New(redisadapter.Config{
			URL:     redisURL,
			Channel: c.String("publish-redis-channel"),
		})
	default:
		return nil, nil
	}
}
