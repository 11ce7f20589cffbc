package evaluator

import (
	"database/sql"
	"sync"
	"time"
)

// connCache caches live connections keyed by connection string. Entries
// expire after a TTL and are health-checked on every hit, so a server that
// went away shows up as a cache miss rather than a broken handle.
type connCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]*connEntry[T]
	limit   int
	ttl     time.Duration
	check   func(T) error
	drop    func(T) error

	sweepOnce sync.Once
	stop      chan struct{}
}

type connEntry[T any] struct {
	conn     T
	created  time.Time
	lastUsed time.Time
}

func newConnCache[T any](limit int, ttl time.Duration, check, drop func(T) error) *connCache[T] {
	return &connCache[T]{
		entries: make(map[string]*connEntry[T]),
		limit:   limit,
		ttl:     ttl,
		check:   check,
		drop:    drop,
		stop:    make(chan struct{}),
	}
}

// get returns the cached connection for key when it is fresh and healthy.
// Stale or unhealthy entries are closed and evicted on the way out.
func (c *connCache[T]) get(key string) (T, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	var zero T
	if !ok {
		return zero, false
	}

	if time.Since(entry.created) > c.ttl || (c.check != nil && c.check(entry.conn) != nil) {
		c.evict(key)
		return zero, false
	}

	c.mu.Lock()
	entry.lastUsed = time.Now()
	c.mu.Unlock()
	return entry.conn, true
}

// put stores a connection, evicting the least recently used entry when the
// cache is at capacity. The first put starts the background sweeper.
func (c *connCache[T]) put(key string, conn T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.limit {
		c.evictOldestLocked()
	}

	now := time.Now()
	c.entries[key] = &connEntry[T]{conn: conn, created: now, lastUsed: now}

	c.sweepOnce.Do(func() { go c.sweep() })
}

func (c *connCache[T]) evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		c.drop(entry.conn)
		delete(c.entries, key)
	}
}

// evictOldestLocked removes the least recently used entry. Caller holds mu.
func (c *connCache[T]) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.lastUsed.Before(oldest) {
			oldestKey = key
			oldest = entry.lastUsed
		}
	}
	if oldestKey != "" {
		c.drop(c.entries[oldestKey].conn)
		delete(c.entries, oldestKey)
	}
}

// sweep drops entries past their TTL every few minutes, closing connections
// that would otherwise idle forever.
func (c *connCache[T]) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.entries {
				if time.Since(entry.created) > c.ttl {
					c.drop(entry.conn)
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

// close drops every cached connection and stops the sweeper.
func (c *connCache[T]) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		c.drop(entry.conn)
		delete(c.entries, key)
	}

	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

// size reports how many connections are currently cached.
func (c *connCache[T]) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var dbCache = newConnCache[*sql.DB](
	100,
	30*time.Minute,
	func(db *sql.DB) error { return db.Ping() },
	func(db *sql.DB) error { return db.Close() },
)

var sftpCache = newConnCache[*SFTPConnection](
	50,
	15*time.Minute,
	func(conn *SFTPConnection) error {
		_, err := conn.Client.Getwd()
		return err
	},
	func(conn *SFTPConnection) error {
		if conn.Client != nil {
			conn.Client.Close()
		}
		if conn.SSHClient != nil {
			return conn.SSHClient.Close()
		}
		return nil
	},
)
