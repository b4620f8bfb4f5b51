// Package notify keeps the user-facing notification list. Each transient
// notification owns a timer that removes it after its duration; manual
// removal and ClearAll stop the timer, and a timer firing after the entry is
// gone is a no-op.
package notify

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultDuration = 5 * time.Second

type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

type Action struct {
	Label string `json:"label"`
	Do    func() `json:"-"`
}

type Notification struct {
	ID         string
	Type       Type
	Title      string
	Message    string
	Duration   time.Duration
	Persistent bool
	Actions    []Action
	CreatedAt  time.Time
}

func (n Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID         string    `json:"id"`
		Type       Type      `json:"type"`
		Title      string    `json:"title"`
		Message    string    `json:"message,omitempty"`
		Duration   int64     `json:"duration"`
		Persistent bool      `json:"persistent,omitempty"`
		Actions    []Action  `json:"actions,omitempty"`
		CreatedAt  time.Time `json:"createdAt"`
	}{n.ID, n.Type, n.Title, n.Message, n.Duration.Milliseconds(), n.Persistent, n.Actions, n.CreatedAt})
}

type entry struct {
	n     Notification
	timer *time.Timer
}

type Queue struct {
	log             *slog.Logger
	defaultDuration time.Duration

	// emu is held from snapshot to dispatch so listeners see lists in order.
	emu     sync.Mutex
	mu      sync.Mutex
	entries []*entry

	lmu       sync.RWMutex
	listeners []func([]Notification)
}

func NewQueue(log *slog.Logger, defaultDuration time.Duration) *Queue {
	if log == nil {
		log = slog.Default()
	}
	if defaultDuration <= 0 {
		defaultDuration = DefaultDuration
	}
	return &Queue{
		log:             log.With("component", "notify"),
		defaultDuration: defaultDuration,
	}
}

func newID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return strconv.FormatInt(now.UnixMilli(), 10) + suffix
}

// Add assigns an id, fills the default duration and schedules expiry unless
// the notification is persistent. The caller's ID, if any, is replaced.
func (q *Queue) Add(n Notification) string {
	now := time.Now()
	n.ID = newID(now)
	n.CreatedAt = now
	if n.Duration <= 0 {
		n.Duration = q.defaultDuration
	}

	e := &entry{n: n}
	q.emu.Lock()
	defer q.emu.Unlock()
	q.mu.Lock()
	q.entries = append(q.entries, e)
	if !n.Persistent {
		id := n.ID
		e.timer = time.AfterFunc(n.Duration, func() { q.expire(id) })
	}
	list := q.listLocked()
	q.mu.Unlock()

	q.log.Debug("notification_added", "id", n.ID, "type", n.Type, "persistent", n.Persistent)
	q.emit(list)
	return n.ID
}

// Remove deletes id and stops its timer. Unknown ids are ignored.
func (q *Queue) Remove(id string) {
	q.emu.Lock()
	defer q.emu.Unlock()
	q.mu.Lock()
	removed := q.removeLocked(id, true)
	list := q.listLocked()
	q.mu.Unlock()

	if removed {
		q.emit(list)
	}
}

func (q *Queue) expire(id string) {
	q.emu.Lock()
	defer q.emu.Unlock()
	q.mu.Lock()
	removed := q.removeLocked(id, false)
	list := q.listLocked()
	q.mu.Unlock()

	if removed {
		q.log.Debug("notification_expired", "id", id)
		q.emit(list)
	}
}

func (q *Queue) removeLocked(id string, stop bool) bool {
	for i, e := range q.entries {
		if e.n.ID != id {
			continue
		}
		if stop && e.timer != nil {
			e.timer.Stop()
		}
		q.entries = append(q.entries[:i:i], q.entries[i+1:]...)
		return true
	}
	return false
}

func (q *Queue) ClearAll() {
	q.emu.Lock()
	defer q.emu.Unlock()
	q.mu.Lock()
	had := len(q.entries) > 0
	for _, e := range q.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	q.entries = nil
	q.mu.Unlock()

	if had {
		q.emit(nil)
	}
}

// List returns the notifications oldest first.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.listLocked()
}

func (q *Queue) Get(id string) (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if e.n.ID == id {
			return e.n, true
		}
	}
	return Notification{}, false
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Trigger runs the action labelled label on notification id and dismisses
// the notification. It reports whether an action ran.
func (q *Queue) Trigger(id, label string) bool {
	n, ok := q.Get(id)
	if !ok {
		return false
	}
	for _, a := range n.Actions {
		if a.Label != label {
			continue
		}
		if a.Do != nil {
			a.Do()
		}
		q.Remove(id)
		return true
	}
	return false
}

// Subscribe registers fn to receive the list after every change. fn runs on
// the goroutine that made the change, which may be a timer goroutine. Lists
// arrive in the order the changes were made; fn may read the queue but must
// not add or remove notifications.
func (q *Queue) Subscribe(fn func([]Notification)) {
	q.lmu.Lock()
	q.listeners = append(q.listeners, fn)
	q.lmu.Unlock()
}

func (q *Queue) listLocked() []Notification {
	out := make([]Notification, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.n
	}
	return out
}

func (q *Queue) emit(list []Notification) {
	q.lmu.RLock()
	ls := q.listeners
	q.lmu.RUnlock()
	for _, fn := range ls {
		fn(list)
	}
}
