// Package notify is a synchronous observer registry keyed by hierarchical
// resource paths such as "products" and "products/7".
package notify

import (
	"strings"
	"sync"
	"time"
)

// Op names the kind of write that produced a change.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes data that changed at Path.
type Change struct {
	Path string
	Op   Op
	Rows int64
	At   time.Time
}

// Observer is called once for every change it is subscribed to.
type Observer func(Change)

type subscription struct {
	path     string
	observer Observer
}

// Registry holds observers by path. The zero value is not usable; use
// NewRegistry.
type Registry struct {
	mu   sync.RWMutex
	subs []*subscription
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe registers observer for changes at path. A change at path reaches
// it, as does a change at any ancestor or descendant of path. The returned
// function removes the subscription and is safe to call more than once.
func (r *Registry) Subscribe(path string, observer Observer) func() {
	sub := &subscription{path: clean(path), observer: observer}

	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(sub) })
	}
}

func (r *Registry) remove(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s == sub {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return
		}
	}
}

// Notify delivers change to every matching observer in subscription order
// and returns once all of them have run. Observers may subscribe or
// unsubscribe from inside the callback.
func (r *Registry) Notify(change Change) {
	change.Path = clean(change.Path)
	if change.At.IsZero() {
		change.At = time.Now()
	}

	r.mu.RLock()
	matched := make([]Observer, 0, len(r.subs))
	for _, s := range r.subs {
		if related(s.path, change.Path) {
			matched = append(matched, s.observer)
		}
	}
	r.mu.RUnlock()

	for _, observe := range matched {
		observe(change)
	}
}

// Len returns the number of live subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

func clean(path string) string {
	return strings.Trim(path, "/")
}

// related reports whether a and b are equal or one is an ancestor of the other.
func related(a, b string) bool {
	if a == b {
		return true
	}
	return strings.HasPrefix(b, a+"/") || strings.HasPrefix(a, b+"/")
}
