package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"quizlive/internal/model"
)

// Snapshot is one encoded live as sent to stream clients
type Snapshot struct {
	Version   int64
	Completed bool
	Data      []byte
}

// Subscription receives the snapshots of one live. Send holds at most one
// pending snapshot: a newer one replaces an unread older one. The hub closes
// Send when the live completes or the subscription is cancelled.
type Subscription struct {
	Key  string
	Send chan Snapshot
}

type broadcast struct {
	key      string
	snapshot Snapshot
}

// Hub fans live snapshots out to stream subscriptions
type Hub struct {
	// live key -> subscriptions
	subs map[string]map[*Subscription]struct{}

	register   chan *Subscription
	unregister chan *Subscription
	broadcast  chan broadcast
	done       <-chan struct{}
	logger     *slog.Logger
}

// NewHub creates a hub whose loop runs until ctx is cancelled
func NewHub(ctx context.Context, logger *slog.Logger) *Hub {
	h := &Hub{
		subs:       make(map[string]map[*Subscription]struct{}),
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		broadcast:  make(chan broadcast, 256),
		done:       ctx.Done(),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			for key, subs := range h.subs {
				for sub := range subs {
					close(sub.Send)
				}
				delete(h.subs, key)
			}
			return

		case sub := <-h.register:
			if h.subs[sub.Key] == nil {
				h.subs[sub.Key] = make(map[*Subscription]struct{})
			}
			h.subs[sub.Key][sub] = struct{}{}
			h.logger.Debug("stream subscribed", "live_key", sub.Key, "subscribers", len(h.subs[sub.Key]))

		case sub := <-h.unregister:
			if subs, ok := h.subs[sub.Key]; ok {
				if _, ok := subs[sub]; ok {
					delete(subs, sub)
					close(sub.Send)
					if len(subs) == 0 {
						delete(h.subs, sub.Key)
					}
				}
			}

		case msg := <-h.broadcast:
			subs := h.subs[msg.key]
			for sub := range subs {
				deliver(sub, msg.snapshot)
			}
			if msg.snapshot.Completed {
				// final snapshot delivered; the stream ends here
				for sub := range subs {
					close(sub.Send)
				}
				delete(h.subs, msg.key)
				h.logger.Debug("stream closed on completion", "live_key", msg.key, "subscribers", len(subs))
			}
		}
	}
}

// deliver replaces any unread snapshot with s. Only the hub loop sends on
// Send, so the second send cannot block.
func deliver(sub *Subscription, s Snapshot) {
	select {
	case sub.Send <- s:
		return
	default:
	}
	select {
	case <-sub.Send:
	default:
	}
	select {
	case sub.Send <- s:
	default:
	}
}

// Subscribe registers a subscription for key
func (h *Hub) Subscribe(key string) *Subscription {
	sub := &Subscription{Key: key, Send: make(chan Snapshot, 1)}
	select {
	case h.register <- sub:
	case <-h.done:
		close(sub.Send)
	}
	return sub
}

// Unsubscribe cancels sub; its Send channel is closed by the hub
func (h *Hub) Unsubscribe(sub *Subscription) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Publish queues live for every subscriber of its key (implements service.LivePublisher)
func (h *Hub) Publish(live *model.Live) {
	snapshot, err := Encode(live)
	if err != nil {
		h.logger.Error("failed to encode live snapshot", "live_key", live.Key, "error", err)
		return
	}
	select {
	case h.broadcast <- broadcast{key: live.Key, snapshot: snapshot}:
	case <-h.done:
	}
}

// Encode renders live the way point queries do
func Encode(live *model.Live) (Snapshot, error) {
	data, err := json.Marshal(live)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Version: live.Version, Completed: live.IsCompleted(), Data: data}, nil
}
