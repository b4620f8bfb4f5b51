package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/store"
)

const publishTimeout = 3 * time.Second

type CartUpdated struct {
	Op        string          `json:"op"`
	UserEmail string          `json:"userEmail,omitempty"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}

var cartOps = map[string]bool{
	store.OpAddToCart:      true,
	store.OpRemoveFromCart: true,
	store.OpUpdateQuantity: true,
	store.OpClearCart:      true,
}

// CartListener publishes cart_updated for every committed cart mutation.
func CartListener(pub Publisher, log *slog.Logger) store.Listener {
	return func(c store.Change) {
		if !cartOps[c.Op] {
			return
		}
		payload := CartUpdated{
			Op:        c.Op,
			ItemCount: c.Next.CartItemCount(),
			Total:     c.Next.CartTotal(),
		}
		key := "anonymous"
		if c.Next.User != nil {
			payload.UserEmail = c.Next.User.Email
			key = c.Next.User.Email
		}

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := pub.Publish(ctx, New(TypeCartUpdated, key, payload)); err != nil {
			log.Warn("cart_event_publish_failed", "op", c.Op, "error", err)
		}
	}
}
