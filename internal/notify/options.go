package notify

import "time"

type Option func(*Notification)

func WithDuration(d time.Duration) Option {
	return func(n *Notification) { n.Duration = d }
}

func WithPersistent(p bool) Option {
	return func(n *Notification) { n.Persistent = p }
}

func WithActions(actions ...Action) Option {
	return func(n *Notification) { n.Actions = append(n.Actions, actions...) }
}

func build(t Type, title, message string, defaults []Option, opts []Option) Notification {
	n := Notification{Type: t, Title: title, Message: message}
	for _, o := range defaults {
		o(&n)
	}
	for _, o := range opts {
		o(&n)
	}
	return n
}

func (q *Queue) Success(title, message string, opts ...Option) string {
	return q.Add(build(TypeSuccess, title, message, nil, opts))
}

// Error notifications are persistent unless opts say otherwise.
func (q *Queue) Error(title, message string, opts ...Option) string {
	return q.Add(build(TypeError, title, message, []Option{WithPersistent(true)}, opts))
}

func (q *Queue) Warning(title, message string, opts ...Option) string {
	return q.Add(build(TypeWarning, title, message, nil, opts))
}

func (q *Queue) Info(title, message string, opts ...Option) string {
	return q.Add(build(TypeInfo, title, message, nil, opts))
}
