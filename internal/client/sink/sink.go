// Package sink stores downloaded transfer content.
package sink

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/ulak/internal/client/config"
)

// Sink receives a downloaded file and reports where it was stored.
type Sink interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// NewFromConfig builds the sink selected by cfg.Type.
func NewFromConfig(ctx context.Context, cfg config.SinkConfig) (Sink, error) {
	switch cfg.Type {
	case "", config.SinkDir:
		return NewDirSink(cfg.Dir), nil
	case config.SinkS3:
		s, err := NewS3Sink(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown sink type %q", cfg.Type)
	}
}
