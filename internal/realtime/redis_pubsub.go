package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/promogame/backend/internal/models"
)

const (
	channelPrefix = "campaign:"
	eventTTL      = 5 * time.Second
)

// redisPayload is the message published to Redis for cross-instance broadcast.
type redisPayload struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	At    int64           `json:"at"`
}

// RedisPubSub implements RedisPublisher and RedisSubscriber using Redis pub/sub.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPubSub creates a Redis pub/sub bridge for campaign events.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPubSub{client: client, logger: logger}
}

// Channel returns the Redis channel of a campaign.
func Channel(campaignID uuid.UUID) string {
	return channelPrefix + campaignID.String()
}

// PublishCampaignEvent publishes an event to the campaign's Redis channel.
func (r *RedisPubSub) PublishCampaignEvent(campaignID uuid.UUID, event string, payload []byte) error {
	body, err := json.Marshal(redisPayload{Event: event, Data: payload, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTTL)
	defer cancel()
	return r.client.Publish(ctx, Channel(campaignID), body).Err()
}

// Notify publishes a stats_changed event. The worker process uses it in place of a Hub,
// which lives only in the API server.
func (r *RedisPubSub) Notify(campaignID uuid.UUID, eventType models.EventType) {
	body, err := json.Marshal(StatsChanged{CampaignID: campaignID, EventType: eventType, At: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := r.PublishCampaignEvent(campaignID, EventStatsChanged, body); err != nil {
		r.logger.Warn("publish stats_changed failed", zap.String("campaign_id", campaignID.String()), zap.Error(err))
	}
}

// SubscribeCampaign subscribes to a campaign's Redis channel and calls handler for each message.
// Returns a cancel function to stop the subscription.
func (r *RedisPubSub) SubscribeCampaign(campaignID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, Channel(campaignID))
	if _, err = pubsub.Receive(ctx); err != nil {
		cancelCtx()
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var p redisPayload
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					r.logger.Debug("dropping malformed pubsub message", zap.Error(err))
					continue
				}
				handler(p.Event, p.Data)
			}
		}
	}()
	return cancelCtx, nil
}
