package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification is one entry in the in-memory feed.
type Notification struct {
	ID        string
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// Feed is an in-memory Notifier that retains the most recent notifications
// per user for the UI feed endpoint. Entries are transient: they survive only
// as long as the process and are capped at a fixed count per user.
//
// Feed also deduplicates repeated messages within the same calendar day, so
// reloading the bills view inside the 3-day due window does not re-toast the
// same "due soon" warning.
type Feed struct {
	mu      sync.Mutex
	maxSize int
	entries map[string][]Notification // user ID -> newest last
	seen    map[string]string         // user ID + message -> day it was emitted
}

// NewFeed creates a feed retaining up to maxSize notifications per user.
func NewFeed(maxSize int) *Feed {
	if maxSize <= 0 {
		maxSize = 50
	}
	return &Feed{
		maxSize: maxSize,
		entries: make(map[string][]Notification),
		seen:    make(map[string]string),
	}
}

// ForUser returns a Notifier that records notifications under the given user.
func (f *Feed) ForUser(userID string) Notifier {
	return Func(func(message string, severity Severity) {
		f.add(userID, message, severity)
	})
}

func (f *Feed) add(userID, message string, severity Severity) {
	now := time.Now()
	day := now.UTC().Format(time.DateOnly)
	key := userID + "\x00" + message

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen[key] == day {
		return
	}
	f.seen[key] = day

	list := append(f.entries[userID], Notification{
		ID:        uuid.New().String(),
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
	})
	if len(list) > f.maxSize {
		list = list[len(list)-f.maxSize:]
	}
	f.entries[userID] = list
}

// List returns the retained notifications for the user, newest last.
func (f *Feed) List(userID string) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.entries[userID]
	out := make([]Notification, len(list))
	copy(out, list)
	return out
}

// Dismiss removes one notification from the user's feed.
func (f *Feed) Dismiss(userID, notificationID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.entries[userID]
	for i, n := range list {
		if n.ID == notificationID {
			f.entries[userID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Tee fans a notification out to multiple sinks.
func Tee(sinks ...Notifier) Notifier {
	return Func(func(message string, severity Severity) {
		for _, s := range sinks {
			s.Notify(message, severity)
		}
	})
}
