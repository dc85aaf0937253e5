package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/pkg/adapters/catalog"
	"github.com/aretw0/patchbay/pkg/adapters/file"
	"github.com/aretw0/patchbay/pkg/adapters/redis"
	"github.com/aretw0/patchbay/pkg/ingest"
	"github.com/aretw0/patchbay/pkg/observability"
	"github.com/aretw0/patchbay/pkg/ports"
)

// Environment variables consulted when the matching flag is empty.
const (
	EnvRedisAddr  = "PATCHBAY_REDIS_ADDR"
	EnvCatalogURL = "PATCHBAY_CATALOG_URL"
)

// EditorOptions contains the configuration shared by every command building an Editor.
type EditorOptions struct {
	Dir         string // Project directory; diagrams live under Dir/.patchbay/diagrams
	Format      string // "yaml" or "json" for the file store
	RedisAddr   string
	RedisPrefix string
	Channel     string // Redis pub/sub channel for ingestion messages
	TTL         time.Duration
	CatalogURL  string
	Load        string // Diagram to open at start (created if missing)
	Metrics     bool
}

// Env fills empty fields from the environment.
func (o EditorOptions) Env() EditorOptions {
	if o.RedisAddr == "" {
		o.RedisAddr = os.Getenv(EnvRedisAddr)
	}
	if o.CatalogURL == "" {
		o.CatalogURL = os.Getenv(EnvCatalogURL)
	}
	return o
}

// Components is an Editor with the adapters built around it.
type Components struct {
	Editor  *patchbay.Editor
	Metrics *observability.Metrics
	Source  ports.MessageSource // nil without Redis

	redis *redis.Store
}

// Close releases the backing connections.
func (c *Components) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// Subscribe feeds remote ingestion messages into the editor until ctx ends.
// It is a no-op without a message source.
func (c *Components) Subscribe(ctx context.Context) (*ingest.Subscription, error) {
	if c.Source == nil {
		return nil, nil
	}
	return c.Editor.Ingestion().Subscribe(ctx, c.Source)
}

// BuildEditor initializes an Editor with standard CLI conventions:
// Redis persistence and locking when an address is configured, the file store otherwise.
func BuildEditor(ctx context.Context, opts EditorOptions, logger *slog.Logger, extra ...patchbay.Option) (*Components, error) {
	c := &Components{}
	editorOpts := []patchbay.Option{
		patchbay.WithLogger(logger),
		patchbay.WithHooks(observability.LogHooks(logger)),
	}

	// 1. Persistence
	if opts.RedisAddr != "" {
		var redisOpts []redis.Option
		if opts.RedisPrefix != "" {
			redisOpts = append(redisOpts, redis.WithPrefix(opts.RedisPrefix))
		}
		if opts.TTL > 0 {
			redisOpts = append(redisOpts, redis.WithTTL(opts.TTL))
		}
		c.redis = redis.New(opts.RedisAddr, "", 0, redisOpts...)
		if err := c.redis.Client().Ping(ctx).Err(); err != nil {
			c.redis.Close()
			return nil, fmt.Errorf("redis unavailable at %s: %w", opts.RedisAddr, err)
		}

		prefix := opts.RedisPrefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		channel := opts.Channel
		if channel == "" {
			channel = redis.DefaultChannel
		}
		c.Source = redis.NewSource(c.redis.Client(), channel)
		editorOpts = append(editorOpts,
			patchbay.WithSnapshotStore(c.redis),
			patchbay.WithLocker(redis.NewLocker(c.redis.Client(), prefix)),
		)
		logger.Info("Using Redis persistence", "addr", opts.RedisAddr, "prefix", prefix, "channel", channel)
	} else {
		format, err := parseFormat(opts.Format)
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(opts.Dir, file.DefaultDir)
		editorOpts = append(editorOpts, patchbay.WithSnapshotStore(file.New(dir, format)))
		logger.Debug("Using file persistence", "dir", dir)
	}

	// 2. Device catalog
	if opts.CatalogURL != "" {
		editorOpts = append(editorOpts, patchbay.WithCatalog(catalog.New(opts.CatalogURL, catalog.WithLogger(logger))))
	}

	// 3. Metrics
	if opts.Metrics {
		c.Metrics = observability.NewMetrics()
		editorOpts = append(editorOpts, patchbay.WithHooks(c.Metrics.Hooks()))
	}

	editor, err := patchbay.New(append(editorOpts, extra...)...)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("error initializing editor: %w", err)
	}
	c.Editor = editor
	if c.Metrics != nil {
		c.Metrics.TrackSize(editor.Store())
	}

	// 4. Initial diagram
	if opts.Load != "" {
		if err := editor.OpenDiagram(ctx, opts.Load); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func parseFormat(s string) (file.Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml":
		return file.FormatYAML, nil
	case "json":
		return file.FormatJSON, nil
	}
	return "", fmt.Errorf("unknown diagram format %q (want yaml or json)", s)
}
