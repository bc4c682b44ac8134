package dashboard

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const cookieName = "farmdash_session"

type session struct {
	board *Board
	seen  time.Time
}

// Sessions maps a browser cookie to its Board. Sessions idle longer than
// the TTL are dropped on the next lookup.
type Sessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	newBoard func() *Board
	byID     map[string]*session
	log      *zap.Logger
}

func NewSessions(ttl time.Duration, newBoard func() *Board, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{
		ttl:      ttl,
		now:      time.Now,
		newBoard: newBoard,
		byID:     make(map[string]*session),
		log:      log,
	}
}

// Board returns the caller's board, starting a session and setting the
// cookie when the request has none or an expired one.
func (s *Sessions) Board(w http.ResponseWriter, r *http.Request) *Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	if c, err := r.Cookie(cookieName); err == nil {
		if sess, ok := s.byID[c.Value]; ok {
			sess.seen = now
			return sess.board
		}
	}

	id := uuid.NewString()
	sess := &session{board: s.newBoard(), seen: now}
	s.byID[id] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Debug("session started", zap.String("session", id))
	return sess.board
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Prune drops idle sessions and reports how many went.
func (s *Sessions) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(s.now())
}

func (s *Sessions) pruneLocked(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	n := 0
	for id, sess := range s.byID {
		if now.Sub(sess.seen) > s.ttl {
			delete(s.byID, id)
			n++
		}
	}
	if n > 0 {
		s.log.Debug("sessions pruned", zap.Int("count", n))
	}
	return n
}
