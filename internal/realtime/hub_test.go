package realtime

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promogame/backend/internal/models"
)

type fakePublisher struct {
	events []string
}

func (f *fakePublisher) PublishCampaignEvent(_ uuid.UUID, event string, _ []byte) error {
	f.events = append(f.events, event)
	return nil
}

func newClient(campaignID uuid.UUID) *Client {
	return &Client{ID: uuid.NewString(), CampaignID: campaignID, send: make(chan WSMessage, 8)}
}

func drain(c *Client) []WSMessage {
	var out []WSMessage
	for {
		select {
		case m, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, m)
		default:
			return out
		}
	}
}

func TestHubNotifyReachesOnlyItsCampaign(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	a, b := uuid.New(), uuid.New()
	ca, cb := newClient(a), newClient(b)
	hub.Register(ca)
	hub.Register(cb)
	drain(ca)
	drain(cb)

	hub.Notify(a, models.EventParticipation)

	msgs := drain(ca)
	require.Len(t, msgs, 1)
	assert.Equal(t, EventStatsChanged, msgs[0].Event)
	var payload StatsChanged
	require.NoError(t, json.Unmarshal(msgs[0].Data, &payload))
	assert.Equal(t, a, payload.CampaignID)
	assert.Equal(t, models.EventParticipation, payload.EventType)
	assert.Empty(t, drain(cb))
}

func TestHubViewersCount(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	id := uuid.New()
	c1, c2 := newClient(id), newClient(id)
	hub.Register(c1)
	hub.Register(c2)
	assert.Equal(t, 2, hub.Viewers(id))

	hub.Unregister(c1)
	assert.Equal(t, 1, hub.Viewers(id))
	msgs := drain(c2)
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.Equal(t, EventViewers, last.Event)
	assert.JSONEq(t, `{"count":1}`, string(last.Data))

	hub.Unregister(c2)
	assert.Equal(t, 0, hub.Viewers(id))
}

func TestHubPublishGoesThroughRedisWhenConfigured(t *testing.T) {
	pub := &fakePublisher{}
	hub := NewHub(nil, pub, nil)
	id := uuid.New()
	c := newClient(id)
	hub.Register(c)
	drain(c)

	hub.Notify(id, models.EventView)

	assert.Equal(t, []string{EventStatsChanged}, pub.events)
	assert.Empty(t, drain(c), "local delivery happens through the subscriber callback")
}
