package stubserver

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/plantquery/plantquery/internal/graphml"
)

const (
	defaultSessionTTL = 24 * time.Hour
	janitorInterval   = 10 * time.Minute
)

// serverSession is the backend-side record for one uploaded diagram.
// History appends happen under the session's own mutex; the store only
// hands out pointers.
type serverSession struct {
	ID       string
	Filename string
	Doc      *graphml.Document

	mu           sync.Mutex
	history      []historyEntry
	lastActivity time.Time
}

type historyEntry struct {
	Role    string
	Content string
	At      time.Time
}

// touch records one exchange and bumps the activity timestamp.
func (s *serverSession) touch(question, answer string) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		historyEntry{Role: "user", Content: question, At: now},
		historyEntry{Role: "assistant", Content: answer, At: now},
	)
	s.lastActivity = now
}

func (s *serverSession) historyLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// store keeps sessions in a TTL cache so abandoned uploads age out on
// their own.
type store struct {
	c *cache.Cache
}

func newStore(ttl time.Duration) *store {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &store{c: cache.New(ttl, janitorInterval)}
}

func (s *store) put(sess *serverSession) {
	s.c.Set(sess.ID, sess, cache.DefaultExpiration)
}

func (s *store) get(id string) (*serverSession, bool) {
	if x, found := s.c.Get(id); found {
		return x.(*serverSession), true
	}
	return nil, false
}

func (s *store) delete(id string) {
	s.c.Delete(id)
}

func (s *store) count() int {
	return s.c.ItemCount()
}
