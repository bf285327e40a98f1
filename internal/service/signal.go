package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/gaushala-net/gaushala"
)

const channelPrefix = "gaushala:"

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event gaushala.Event) error {
	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.rdb.Publish(ctx, channelPrefix+channel, jsonstr).Err()
}

// Realtime relays events of the resources most recently sent on input to
// output. Each value on input replaces the previous subscription.
func (s *SignalService) Realtime(ctx context.Context, input <-chan []string, output chan<- gaushala.Event) {
	pubsub := s.rdb.Subscribe(ctx)
	defer pubsub.Close()

	var current []string
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case resources, ok := <-input:
			if !ok {
				return
			}
			if len(current) > 0 {
				if err := pubsub.Unsubscribe(ctx, current...); err != nil {
					slog.WarnContext(
						ctx, "unsubscribe failed",
						slog.String("error", err.Error()),
						slog.String("module", "signal"),
					)
				}
			}
			current = current[:0]
			for _, r := range resources {
				current = append(current, channelPrefix+r)
			}
			if len(current) == 0 {
				continue
			}
			if err := pubsub.Subscribe(ctx, current...); err != nil {
				slog.ErrorContext(
					ctx, "subscribe failed",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
			}
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event gaushala.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.WarnContext(
					ctx, "dropping malformed event",
					slog.String("channel", msg.Channel),
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
