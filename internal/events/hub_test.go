package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_EmitReachesSubscribers(t *testing.T) {
	t.Parallel()

	h := NewHub()
	ch := h.Subscribe()
	assert.Equal(t, 1, h.Subscribers())

	h.Emit("req-1", TypeLeadCreated, map[string]string{"domain": "https://shop.de"})

	var e Event
	require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
	assert.Equal(t, TypeLeadCreated, e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "req-1", e.RequestID)
	assert.JSONEq(t, `{"domain":"https://shop.de"}`, string(e.Data))

	h.Unsubscribe(ch)
	h.Unsubscribe(ch)
	assert.Equal(t, 0, h.Subscribers())

	_, open := <-ch
	assert.False(t, open)
}

func TestHub_DropsWhenSubscriberFull(t *testing.T) {
	t.Parallel()

	h := NewHub()
	ch := h.Subscribe()
	for i := 0; i < 25; i++ {
		h.Emit("", TypeLeadUpdated, i)
	}
	assert.Len(t, ch, cap(ch))

	var nilHub *Hub
	assert.NotPanics(t, func() { nilHub.Emit("", TypeLeadUpdated, nil) })
}

func TestNew_DropsUnmarshalablePayload(t *testing.T) {
	t.Parallel()

	e := New("", TypeLeadUpdated, map[string]any{"bad": make(chan int)})
	assert.Nil(t, e.Data)

	var back Event
	require.NoError(t, json.Unmarshal([]byte(e.Encode()), &back))
	assert.Equal(t, TypeLeadUpdated, back.Type)
	assert.Equal(t, Version, back.Version)
}
