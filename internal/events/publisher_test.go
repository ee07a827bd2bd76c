package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	payload, err := Encode(AccountCreated, AccountCreatedEvent{ID: 7, Name: "Alice"}, at)
	require.NoError(t, err)

	var decoded struct {
		Type      string          `json:"type"`
		Timestamp time.Time       `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "account.created", decoded.Type)
	assert.True(t, at.Equal(decoded.Timestamp))
	assert.JSONEq(t, `{"id":7,"name":"Alice","email":""}`, string(decoded.Data))
}

func TestEncodeRejectsUnmarshalableData(t *testing.T) {
	_, err := Encode(AccountUpdated, make(chan int), time.Now())
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), AccountEventsStream, AccountDeleted, AccountDeletedEvent{ID: 1}))
}
