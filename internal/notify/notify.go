// Package notify broadcasts roster-changed events so other team tools
// (schedulers, attendance sheets) can refresh. Events are fire and
// forget; a failed publish is logged by the caller and never blocks an
// apply.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/pedalworks/rosterd/internal/roster"
)

// Event describes one roster mutation.
type Event struct {
	Entity    roster.EntityType `json:"entityType"`
	Action    string            `json:"action"`
	Updated   int               `json:"updated"`
	Added     int               `json:"added"`
	Archived  int               `json:"archived"`
	Timestamp time.Time         `json:"timestamp"`
}

// Notifier publishes roster events.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// Noop discards every event. Used when Redis is not configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Redis publishes events on a pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
}

var _ Notifier = (*Redis)(nil)

// NewRedis builds a notifier on an existing client. The channel
// defaults to "rosterd:events" when empty.
func NewRedis(client *redis.Client, channel string) *Redis {
	if channel == "" {
		channel = "rosterd:events"
	}
	return &Redis{client: client, channel: channel}
}

func (r *Redis) Publish(ctx context.Context, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", r.channel, err)
	}
	return nil
}
