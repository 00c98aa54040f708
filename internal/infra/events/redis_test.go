package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship_admin/internal/domain/notification"
)

type recordingClient struct {
	channel string
	payload []byte
	err     error
}

func (c *recordingClient) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	c.channel = channel
	c.payload, _ = message.([]byte)
	return redis.NewIntResult(1, c.err)
}

func TestRedisPublisherSendsJSON(t *testing.T) {
	client := &recordingClient{}
	p := NewRedisPublisher(client, "")

	evt := notification.Event{
		Type:              notification.EventApplicationSubmitted,
		CycleID:           3,
		ApplicationID:     12,
		ApplicationNumber: "APP-20260301100000-0A1B2C3D",
		From:              "DRAFT",
		To:                "SUBMITTED",
		At:                time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), evt))
	assert.Equal(t, DefaultChannel, client.channel)

	var got notification.Event
	require.NoError(t, json.Unmarshal(client.payload, &got))
	assert.Equal(t, evt.Type, got.Type)
	assert.Equal(t, evt.ApplicationID, got.ApplicationID)
	assert.Equal(t, "SUBMITTED", got.To)
}

func TestRedisPublisherWrapsFailure(t *testing.T) {
	down := errors.New("connection refused")
	p := NewRedisPublisher(&recordingClient{err: down}, "custom")

	err := p.Publish(context.Background(), notification.Event{Type: notification.EventCycleCreated})
	assert.ErrorIs(t, err, down)
}
