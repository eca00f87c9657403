package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Handler consumes activity events and keeps running counters.
type Handler struct {
	mu       sync.Mutex
	byType   map[EventType]int
	addsByID map[string]int
	logger   *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		byType:   make(map[EventType]int),
		addsByID: make(map[string]int),
		logger:   logger.With("component", "activity"),
	}
}

// HandleMessage decodes a raw message. Its signature matches
// kafka.MessageHandler.
func (h *Handler) HandleMessage(ctx context.Context, key, value []byte) error {
	var e Event
	if err := json.Unmarshal(value, &e); err != nil {
		return fmt.Errorf("decode activity event: %w", err)
	}
	return h.Handle(ctx, e)
}

func (h *Handler) Handle(ctx context.Context, e Event) error {
	if !e.Type.Valid() {
		return fmt.Errorf("unknown activity event type %q", e.Type)
	}

	h.mu.Lock()
	h.byType[e.Type]++
	if e.Type == CartItemAdded && e.ProductID != "" {
		h.addsByID[e.ProductID] += e.Quantity
	}
	h.mu.Unlock()

	h.logger.Info("activity",
		"type", e.Type,
		"user_id", e.UserID,
		"product_id", e.ProductID,
		"quantity", e.Quantity,
	)
	return nil
}

// Count returns how many events of type t were handled.
func (h *Handler) Count(t EventType) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.byType[t]
}

// ProductAdds is the total quantity added to carts for one product.
type ProductAdds struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// TopAdded returns up to n products ordered by added quantity, highest first.
func (h *Handler) TopAdded(n int) []ProductAdds {
	h.mu.Lock()
	out := make([]ProductAdds, 0, len(h.addsByID))
	for id, q := range h.addsByID {
		out = append(out, ProductAdds{ProductID: id, Quantity: q})
	}
	h.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].ProductID < out[j].ProductID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
