package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

const publishTimeout = 2 * time.Second

// RedisRelay fans events out across service instances. Publish writes to a Redis
// channel; Run reads the channel back and hands every event to the local broadcaster,
// so each instance's websocket clients see events raised anywhere.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	local   *Broadcaster
}

func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func NewRedisRelay(rdb *redis.Client, channel string, local *Broadcaster) *RedisRelay {
	return &RedisRelay{
		rdb:     rdb,
		channel: channel,
		local:   local,
	}
}

// Publish falls back to local delivery when Redis is unreachable.
func (r *RedisRelay) Publish(e *models.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("failed to encode event", "type", e.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := r.rdb.Publish(ctx, r.channel, data).Err(); err != nil {
		slog.Warn("redis publish failed, delivering locally", "type", e.Type, "error", err)
		r.local.Publish(e)
	}
}

// Run blocks relaying Redis messages into the local broadcaster until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	ps := r.rdb.Subscribe(ctx, r.channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("error subscribing to %s: %w", r.channel, err)
	}
	slog.Info("relaying events from redis", "channel", r.channel)

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			e, err := decodeEvent(msg.Payload)
			if err != nil {
				slog.Warn("dropping malformed event", "error", err)
				continue
			}
			r.local.Publish(e)
		}
	}
}

func decodeEvent(payload string) (*models.Event, error) {
	var e models.Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return nil, fmt.Errorf("error decoding event: %w", err)
	}
	if e.Type == "" {
		return nil, fmt.Errorf("event has no type")
	}
	return &e, nil
}
