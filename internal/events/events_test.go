package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/store"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := &KafkaPublisher{w: w, log: logging.Discard()}

	e := New(TypeOrderPlaced, "1700000000000", map[string]any{"orderId": "1700000000000"})
	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "1700000000000", string(msg.Key))
	assert.Equal(t, TypeOrderPlaced, string(msg.Headers[0].Value))

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, e.ID, got["id"])
	assert.Equal(t, TypeOrderPlaced, got["type"])
	assert.NotContains(t, got, "Key")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	p := &KafkaPublisher{w: &fakeWriter{err: boom}, log: logging.Discard()}

	err := p.Publish(context.Background(), New(TypeCartUpdated, "k", nil))
	assert.ErrorIs(t, err, boom)
}

func TestNew_UniqueIDs(t *testing.T) {
	t.Parallel()

	a := New(TypeUserLoggedIn, "a@b.c", nil)
	b := New(TypeUserLoggedIn, "a@b.c", nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.OccurredAt.IsZero())
}

func TestCartListener(t *testing.T) {
	t.Parallel()

	pub := &MemoryPublisher{}
	st := store.New(nil)
	st.Subscribe(CartListener(pub, logging.Discard()))

	p := models.Product{ID: 1, Title: "Serum", Price: decimal.NewFromInt(250)}
	st.AddToCart(p)
	st.SetUser(&models.User{Email: "demo@glowcart.com", Name: "Demo User"})
	st.UpdateQuantity(1, 3)
	st.AddToWishlist(p)
	st.ClearCart()

	evs := pub.OfType(TypeCartUpdated)
	require.Len(t, evs, 3)
	assert.Len(t, pub.Events(), 3, "non-cart changes are not published")

	first := evs[0].Payload.(CartUpdated)
	assert.Equal(t, store.OpAddToCart, first.Op)
	assert.Equal(t, "anonymous", evs[0].Key)
	assert.Equal(t, 1, first.ItemCount)

	second := evs[1].Payload.(CartUpdated)
	assert.Equal(t, "demo@glowcart.com", evs[1].Key)
	assert.Equal(t, 3, second.ItemCount)
	assert.True(t, decimal.NewFromInt(750).Equal(second.Total))

	assert.Zero(t, evs[2].Payload.(CartUpdated).ItemCount)
}

func TestNopPublisher(t *testing.T) {
	t.Parallel()

	var p Publisher = NopPublisher{}
	require.NoError(t, p.Publish(context.Background(), New(TypeUserLoggedOut, "", nil)))
	require.NoError(t, p.Close())
}
