package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToTypeSubscriber(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var got []*Event
	bus.Subscribe(CacheHit, func(e *Event) { got = append(got, e) })

	bus.Publish(&CacheLookupData{AccountID: "bnk-1", Outcome: "hit"})
	bus.Publish(&AdapterCallData{Backend: "core-banking", AccountID: "bnk-1", Success: true})

	require.Len(t, got, 1)
	assert.Equal(t, CacheHit, got[0].Type)
	data, ok := got[0].Data.(*CacheLookupData)
	require.True(t, ok)
	assert.Equal(t, "bnk-1", data.AccountID)
}

func TestBusFirehoseSubscription(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	count := 0
	bus.SubscribeAll(func(e *Event) { count++ })

	bus.Publish(&CacheLookupData{AccountID: "a", Outcome: "miss"})
	bus.Publish(&BreakerStateData{Backend: "loan-book", From: "closed", To: "open"})
	bus.Publish(&BackendHealthData{Backend: "wallet-gw", Healthy: false})

	assert.Equal(t, 3, count)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	typed := 0
	firehose := 0
	unsubTyped := bus.Subscribe(CacheHit, func(e *Event) { typed++ })
	unsubAll := bus.SubscribeAll(func(e *Event) { firehose++ })

	survivor := 0
	bus.SubscribeAll(func(e *Event) { survivor++ })

	bus.Publish(&CacheLookupData{AccountID: "bnk-1", Outcome: "hit"})
	assert.Equal(t, 1, typed)
	assert.Equal(t, 1, firehose)

	unsubTyped()
	unsubAll()

	bus.Publish(&CacheLookupData{AccountID: "bnk-1", Outcome: "hit"})
	assert.Equal(t, 1, typed)
	assert.Equal(t, 1, firehose)
	assert.Equal(t, 2, survivor)
}

func TestBusPanickingHandlerIsIsolated(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	bus.Subscribe(AdapterCall, func(e *Event) { panic("broken subscriber") })

	delivered := false
	bus.Subscribe(AdapterCall, func(e *Event) { delivered = true })

	assert.NotPanics(t, func() {
		bus.Publish(&AdapterCallData{Backend: "core-banking", AccountID: "bnk-1", Success: false})
	})
	assert.True(t, delivered)
}

func TestCacheLookupDataEventType(t *testing.T) {
	assert.Equal(t, CacheHit, (&CacheLookupData{Outcome: "hit"}).EventType())
	assert.Equal(t, CacheStale, (&CacheLookupData{Outcome: "stale"}).EventType())
	assert.Equal(t, CacheMiss, (&CacheLookupData{Outcome: "miss"}).EventType())
}
