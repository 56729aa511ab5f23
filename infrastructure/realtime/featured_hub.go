package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"token-platform/domain/model"
	"token-platform/domain/repository"

	"github.com/gin-gonic/gin"
)

// FeaturedHub streams featured slot events to every connected browser.
type FeaturedHub struct {
	mu   sync.RWMutex
	subs map[chan model.Event]struct{}
}

func NewFeaturedHub() *FeaturedHub {
	return &FeaturedHub{subs: make(map[chan model.Event]struct{})}
}

var _ repository.IEventPublisher = (*FeaturedHub)(nil)

// Serve holds an SSE stream open until the client goes away.
func (h *FeaturedHub) Serve(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan model.Event, 8)
	h.addSubscriber(ch)
	defer h.removeSubscriber(ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: " + evt.Type + "\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

// Publish broadcasts featured.* events; everything else is ignored.
func (h *FeaturedHub) Publish(_ context.Context, evt model.Event) error {
	if !strings.HasPrefix(evt.Type, "featured.") {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select { // non-blocking
		case ch <- evt:
		default:
		}
	}
	return nil
}

func (h *FeaturedHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *FeaturedHub) addSubscriber(ch chan model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[ch] = struct{}{}
}

func (h *FeaturedHub) removeSubscriber(ch chan model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, ch)
	close(ch)
}
