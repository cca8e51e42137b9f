// Package lifecycle tracks whether the gateway is draining ahead of
// shutdown. New voice sessions are refused while draining; in-flight work
// finishes.
package lifecycle

import "sync/atomic"

type Lifecycle struct {
	draining atomic.Bool
}

func New() *Lifecycle {
	return &Lifecycle{}
}

func (l *Lifecycle) SetDraining(v bool) {
	l.draining.Store(v)
}

func (l *Lifecycle) Draining() bool {
	return l.draining.Load()
}
