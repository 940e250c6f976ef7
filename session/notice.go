package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultNoticeTTL is how long a notice stays visible when not dismissed.
const DefaultNoticeTTL = 5 * time.Second

// Notice is a transient user-facing message keyed by error kind.
type Notice struct {
	ID        string
	Kind      string
	Message   string
	CreatedAt time.Time
}

type noticeEntry struct {
	notice Notice
	timer  *time.Timer
}

// NoticeCenter holds the active transient notices. Each notice carries its
// own expiry task; dismissing a notice cancels the task, so an early
// dismissal never leaks a timer.
type NoticeCenter struct {
	ttl     time.Duration
	nowTime func() time.Time

	mu      sync.Mutex
	entries map[string]*noticeEntry
}

// NewNoticeCenter creates a center with the given auto-dismiss TTL;
// non-positive means DefaultNoticeTTL.
func NewNoticeCenter(ttl time.Duration) *NoticeCenter {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &NoticeCenter{
		ttl:     ttl,
		nowTime: time.Now,
		entries: make(map[string]*noticeEntry),
	}
}

// Publish adds a notice and schedules its auto-dismissal. The returned ID
// can be used to dismiss it early.
func (c *NoticeCenter) Publish(kind, message string) string {
	id := uuid.New().String()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = &noticeEntry{
		notice: Notice{ID: id, Kind: kind, Message: message, CreatedAt: c.nowTime()},
		timer:  time.AfterFunc(c.ttl, func() { c.Dismiss(id) }),
	}
	return id
}

// Notify implements client.Notifier.
func (c *NoticeCenter) Notify(kind, message string) {
	c.Publish(kind, message)
}

// Dismiss removes a notice and cancels its expiry task. Dismissing an
// unknown or already-expired ID is a no-op.
func (c *NoticeCenter) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[id]
	if !ok {
		return
	}
	entry.timer.Stop()
	delete(c.entries, id)
}

// Active returns the visible notices, oldest first.
func (c *NoticeCenter) Active() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	notices := make([]Notice, 0, len(c.entries))
	for _, entry := range c.entries {
		notices = append(notices, entry.notice)
	}
	sort.Slice(notices, func(i, j int) bool {
		return notices[i].CreatedAt.Before(notices[j].CreatedAt)
	})
	return notices
}

// Close cancels every pending expiry task.
func (c *NoticeCenter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, entry := range c.entries {
		entry.timer.Stop()
		delete(c.entries, id)
	}
}
