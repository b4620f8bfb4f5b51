package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/store"
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrValidation = errors.New("validation error")
	ErrPayment    = errors.New("payment failed")
)

var (
	ShippingFee = decimal.NewFromInt(49)
	TaxRate     = decimal.NewFromFloat(0.18)
)

const (
	MethodCard       = "card"
	MethodUPI        = "upi"
	MethodNetBanking = "netbanking"
	MethodCOD        = "cod"
)

type PaymentDetails struct {
	CardNumber string `json:"cardNumber,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
	CVV        string `json:"cvv,omitempty"`
	NameOnCard string `json:"nameOnCard,omitempty"`
	UPIID      string `json:"upiId,omitempty"`
}

type Request struct {
	ShippingInfo  models.ShippingInfo `json:"shippingInfo"`
	PaymentMethod string              `json:"paymentMethod"`
	Payment       PaymentDetails      `json:"payment"`
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Quote prices a cart: flat shipping plus tax rounded to whole units.
func Quote(cart []models.CartItem) Totals {
	subtotal := decimal.Zero
	for _, it := range cart {
		subtotal = subtotal.Add(it.LineTotal())
	}
	tax := subtotal.Mul(TaxRate).Round(0)
	return Totals{
		Subtotal: subtotal,
		Shipping: ShippingFee,
		Tax:      tax,
		Total:    subtotal.Add(ShippingFee).Add(tax),
	}
}

// ValidationError names the rule that rejected a checkout request.
type ValidationError struct {
	Title  string
	Detail string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Title, strings.Join(e.Fields, ", "))
	}
	return e.Title
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Validate(req Request) error {
	if missing := req.ShippingInfo.Missing(); len(missing) > 0 {
		return &ValidationError{
			Title:  "Missing shipping details",
			Detail: "Please fill in all shipping details",
			Fields: missing,
		}
	}

	switch req.PaymentMethod {
	case "":
		return &ValidationError{Title: "Payment method required", Detail: "Please select a payment method"}
	case MethodCard:
		p := req.Payment
		var missing []string
		for _, f := range []struct{ name, v string }{
			{"cardNumber", p.CardNumber},
			{"expiryDate", p.ExpiryDate},
			{"cvv", p.CVV},
			{"nameOnCard", p.NameOnCard},
		} {
			if strings.TrimSpace(f.v) == "" {
				missing = append(missing, f.name)
			}
		}
		if len(missing) > 0 {
			return &ValidationError{
				Title:  "Card details required",
				Detail: "Please fill in all card details",
				Fields: missing,
			}
		}
	case MethodUPI:
		if strings.TrimSpace(req.Payment.UPIID) == "" {
			return &ValidationError{Title: "UPI ID required", Detail: "Please enter UPI ID", Fields: []string{"upiId"}}
		}
	case MethodNetBanking, MethodCOD:
	default:
		return &ValidationError{
			Title:  "Unsupported payment method",
			Detail: fmt.Sprintf("Payment method %q is not available", req.PaymentMethod),
		}
	}
	return nil
}

type Payer interface {
	Pay(ctx context.Context, method string, amount decimal.Decimal) error
}

// SimulatedPayer approves every payment after Delay.
type SimulatedPayer struct {
	Delay time.Duration
}

func (p SimulatedPayer) Pay(ctx context.Context, _ string, _ decimal.Decimal) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type Service struct {
	Store     *store.Store
	Notify    *notify.Queue
	Payer     Payer
	Publisher events.Publisher
	Log       *slog.Logger
	Now       func() time.Time

	mu     sync.Mutex
	lastID int64
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// nextID is the placement time in unix millis, bumped when two orders land
// in the same millisecond.
func (s *Service) nextID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := t.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Service) notifyError(title, detail string) {
	if s.Notify != nil {
		s.Notify.Error(title, detail)
	}
}

// Place validates the request, charges the cart total and records the order.
// The cart is cleared only after the order is stored; on any failure it is
// left as it was.
func (s *Service) Place(ctx context.Context, req Request) (models.Order, error) {
	l := s.Log.With("op", "checkout.place", "payment_method", req.PaymentMethod)

	cart := s.Store.Snapshot().Cart
	if len(cart) == 0 {
		l.Warn("checkout_rejected", "reason", "empty_cart")
		return models.Order{}, ErrEmptyCart
	}

	if err := Validate(req); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			s.notifyError(ve.Title, ve.Detail)
		}
		l.Warn("checkout_rejected", "error", err)
		return models.Order{}, err
	}

	totals := Quote(cart)
	if err := s.Payer.Pay(ctx, req.PaymentMethod, totals.Total); err != nil {
		if ctx.Err() != nil {
			l.Info("checkout_cancelled", "error", err)
			return models.Order{}, err
		}
		if s.Notify != nil {
			s.Notify.Add(notify.PaymentFailed())
		}
		l.Error("payment_failed", "error", err)
		return models.Order{}, fmt.Errorf("%w: %v", ErrPayment, err)
	}

	placed := s.now()
	order := models.Order{
		ID:            s.nextID(placed),
		Items:         cart,
		Total:         totals.Total,
		Subtotal:      totals.Subtotal,
		Shipping:      totals.Shipping,
		Tax:           totals.Tax,
		ShippingInfo:  req.ShippingInfo,
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderStatusConfirmed,
		Date:          placed.UTC().Format(time.RFC3339Nano),
	}

	s.Store.AddOrder(order)
	s.Store.ClearCart()

	if s.Notify != nil {
		s.Notify.Add(notify.OrderPlaced(order.ID))
	}
	if s.Publisher != nil {
		ev := events.New(events.TypeOrderPlaced, order.ID, map[string]any{
			"orderId":       order.ID,
			"total":         order.Total,
			"itemCount":     order.ItemCount(),
			"paymentMethod": order.PaymentMethod,
		})
		if err := s.Publisher.Publish(ctx, ev); err != nil {
			l.Warn("order_event_publish_failed", "order_id", order.ID, "error", err)
		}
	}

	l.Info("order_placed", "order_id", order.ID, "total", order.Total.String(), "items", order.ItemCount())
	return order, nil
}
