package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHubSubscribeReceivesPublishedGameUpdate(t *testing.T) {
	h := NewHub(testLog())
	sub := h.Subscribe("t1", "alice")

	h.PublishGameUpdate("t1", func(callerID string) interface{} {
		return map[string]string{"for": callerID}
	})

	select {
	case msg := <-sub.outbound:
		require.Equal(t, EventGameUpdate, msg.Type)
		require.Equal(t, map[string]string{"for": "alice"}, msg.Data)
	default:
		t.Fatal("expected a queued message")
	}
}

func TestHubPublishGameUpdateRendersPerSubscriber(t *testing.T) {
	h := NewHub(testLog())
	alice := h.Subscribe("t1", "alice")
	bob := h.Subscribe("t1", "bob")

	h.PublishGameUpdate("t1", func(callerID string) interface{} { return callerID })

	aliceMsg := <-alice.outbound
	bobMsg := <-bob.outbound
	require.Equal(t, "alice", aliceMsg.Data)
	require.Equal(t, "bob", bobMsg.Data)
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub(testLog())
	sub := h.Subscribe("t1", "alice")
	h.Unsubscribe("t1", sub)

	h.PublishGameUpdate("t1", func(callerID string) interface{} { return nil })

	select {
	case <-sub.outbound:
		t.Fatal("unsubscribed connection should not receive messages")
	default:
	}
}

func TestHubUnsubscribeLastSubscriberDropsTableEntry(t *testing.T) {
	h := NewHub(testLog())
	sub := h.Subscribe("t1", "alice")
	h.Unsubscribe("t1", sub)

	h.mu.RLock()
	_, ok := h.subs["t1"]
	h.mu.RUnlock()
	require.False(t, ok)
}

func TestHubPublishGameUpdateDropsWhenOutboundFull(t *testing.T) {
	h := NewHub(testLog())
	sub := h.Subscribe("t1", "alice")

	for i := 0; i < cap(sub.outbound)+5; i++ {
		h.PublishGameUpdate("t1", func(callerID string) interface{} { return i })
	}

	require.Len(t, sub.outbound, cap(sub.outbound))
}

func TestHubPublishGameSummaryBroadcastsSamePayloadToAll(t *testing.T) {
	h := NewHub(testLog())
	alice := h.Subscribe("t1", "alice")
	bob := h.Subscribe("t1", "bob")

	summary := GameSummaryNotification{
		TableID: "t1",
		Seats: []SeatSummaryDTO{
			{SeatIndex: 0, PlayerID: "alice", StartingStack: 100, FinalStack: 150, WinLoss: 50},
		},
	}
	h.PublishGameSummary("t1", summary)

	aliceMsg := <-alice.outbound
	bobMsg := <-bob.outbound
	require.Equal(t, EventGameSummary, aliceMsg.Type)
	require.Equal(t, summary, aliceMsg.Data)
	require.Equal(t, aliceMsg.Data, bobMsg.Data)
}

func TestHubPublishToUnknownTableIsANoOp(t *testing.T) {
	h := NewHub(testLog())
	require.NotPanics(t, func() {
		h.PublishGameUpdate("missing", func(callerID string) interface{} { return nil })
	})
}
