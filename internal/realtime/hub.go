package realtime

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promogame/backend/internal/models"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60

	// EventStatsChanged tells dashboards that campaign counters moved.
	EventStatsChanged = "stats_changed"
	// EventViewers carries the number of dashboards watching a campaign.
	EventViewers = "viewers"
)

// StatsChanged is the payload of EventStatsChanged.
type StatsChanged struct {
	CampaignID uuid.UUID        `json:"campaign_id"`
	EventType  models.EventType `json:"event_type"`
	At         time.Time        `json:"at"`
}

// Hub maintains campaign_id -> set of dashboard connections and broadcasts messages.
// Uses Redis pub/sub for horizontal scaling: local broadcast + publish to Redis.
type Hub struct {
	campaigns map[uuid.UUID]map[string]*Client
	subs      map[uuid.UUID]func()
	mu        sync.RWMutex
	logger    *zap.Logger
	redis     RedisPublisher
	redisSub  RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishCampaignEvent(campaignID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to campaign channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeCampaign(campaignID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. Both Redis sides may be nil for a single instance.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		campaigns: make(map[uuid.UUID]map[string]*Client),
		subs:      make(map[uuid.UUID]func()),
		logger:    logger,
		redis:     redisPub,
		redisSub:  redisSub,
	}
}

// Register adds a client to a campaign room. Starts Redis subscription for this campaign if first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.campaigns[c.CampaignID] == nil {
		h.campaigns[c.CampaignID] = make(map[string]*Client)
		if h.redisSub != nil {
			campaignID := c.CampaignID
			cancel, err := h.redisSub.SubscribeCampaign(campaignID, func(event string, payload []byte) {
				h.Broadcast(campaignID, event, payload)
			})
			if err != nil {
				h.logger.Warn("redis subscribe failed", zap.String("campaign_id", campaignID.String()), zap.Error(err))
			} else {
				h.subs[campaignID] = cancel
			}
		}
	}
	h.campaigns[c.CampaignID][c.ID] = c
	count := len(h.campaigns[c.CampaignID])
	h.mu.Unlock()

	h.Broadcast(c.CampaignID, EventViewers, map[string]int{"count": count})
	h.logger.Debug("dashboard joined campaign", zap.String("client_id", c.ID), zap.String("campaign_id", c.CampaignID.String()))
}

// Unregister removes a client from a campaign room. Cancels Redis subscription when last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	var count int
	if m, ok := h.campaigns[c.CampaignID]; ok {
		if _, present := m[c.ID]; present {
			delete(m, c.ID)
			close(c.send)
		}
		count = len(m)
		if count == 0 {
			delete(h.campaigns, c.CampaignID)
			if cancel, ok := h.subs[c.CampaignID]; ok {
				cancel()
				delete(h.subs, c.CampaignID)
			}
		}
	}
	h.mu.Unlock()
	if count > 0 {
		h.Broadcast(c.CampaignID, EventViewers, map[string]int{"count": count})
	}
	h.logger.Debug("dashboard left campaign", zap.String("client_id", c.ID), zap.String("campaign_id", c.CampaignID.String()))
}

// Broadcast sends a message to all clients of a campaign (local only).
func (h *Hub) Broadcast(campaignID uuid.UUID, event string, payload any) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("broadcast marshal failed", zap.String("event", event), zap.Error(err))
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.campaigns[campaignID] {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Publish hands the event to Redis so that the subscriber callback performs the broadcast once
// for every instance (including this one). Without Redis it broadcasts locally.
func (h *Hub) Publish(campaignID uuid.UUID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.redis != nil {
		if err := h.redis.PublishCampaignEvent(campaignID, event, data); err != nil {
			h.logger.Warn("redis publish failed", zap.String("campaign_id", campaignID.String()), zap.Error(err))
			h.Broadcast(campaignID, event, data)
		}
		return
	}
	h.Broadcast(campaignID, event, data)
}

// Notify announces that an analytics event was stored for the campaign.
func (h *Hub) Notify(campaignID uuid.UUID, eventType models.EventType) {
	h.Publish(campaignID, EventStatsChanged, StatsChanged{
		CampaignID: campaignID,
		EventType:  eventType,
		At:         time.Now().UTC(),
	})
}

// Viewers returns the number of dashboards connected to a campaign.
func (h *Hub) Viewers(campaignID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.campaigns[campaignID])
}
