package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StreamForwarder publishes events to a Redis stream.
type StreamForwarder struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamForwarder forwards onto stream, trimming it to roughly MaxEvents entries.
func NewStreamForwarder(client *redis.Client, stream string) *StreamForwarder {
	return &StreamForwarder{client: client, stream: stream, maxLen: MaxEvents}
}

// Forward adds e to the stream.
func (f *StreamForwarder) Forward(ctx context.Context, e Event) error {
	meta, _ := json.Marshal(e.Metadata)
	err := f.client.XAdd(ctx, &redis.XAddArgs{
		Stream: f.stream,
		MaxLen: f.maxLen,
		Approx: true,
		Values: map[string]any{
			"name":      e.Name,
			"timestamp": e.Timestamp.UnixMilli(),
			"metadata":  string(meta),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("forward %s: %w", e.Name, err)
	}
	return nil
}
