package client

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"stormwatch.io/internal/store"
)

// refreshSlack is how long before access-token expiry the session refreshes.
// Sessions whose token is already within the slack refresh immediately.
const refreshSlack = 30 * time.Second

// Session is an authenticated session that silently refreshes its access
// token. The refresh timer is a single self-rescheduling delayed task scoped
// to the session: Close cancels it and it never re-fires after teardown. Any
// refresh failure tears the session down, mirroring the logged-out state.
type Session struct {
	c *Client

	mu          sync.Mutex
	accessToken string
	user        store.User
	timer       *time.Timer
	closed      bool

	done     chan struct{}
	doneOnce sync.Once
}

func (c *Client) newSession(payload *authPayload) *Session {
	s := &Session{
		c:           c,
		accessToken: payload.AccessToken,
		user:        payload.User,
		done:        make(chan struct{}),
	}
	s.schedule(payload.TokenExpiration)
	return s
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// User returns the authenticated user.
func (s *Session) User() store.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Done is closed when the session ends, whether by Close or by a failed
// refresh.
func (s *Session) Done() <-chan struct{} { return s.done }

// schedule arms the refresh timer for expiration (ms epoch) minus the slack.
func (s *Session) schedule(expirationMilli int64) {
	delay := time.Until(time.UnixMilli(expirationMilli)) - refreshSlack
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.timer = time.AfterFunc(delay, s.refresh)
}

func (s *Session) refresh() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload, err := s.c.refresh(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("session refresh failed, logging out")
		s.teardown()
		return
	}

	s.mu.Lock()
	s.accessToken = payload.AccessToken
	s.user = payload.User
	s.mu.Unlock()

	s.schedule(payload.TokenExpiration)
}

// Close logs the session out and cancels the refresh timer. Safe to call more
// than once.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	token := s.accessToken
	s.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.c.baseURL+"/api/auth/logout", nil)
	if err == nil {
		req.Header.Set("Authorization", "Bearer "+token)
		if resp, doErr := s.c.http.Do(req); doErr == nil {
			resp.Body.Close()
		} else {
			err = doErr
		}
	}

	s.teardown()
	return err
}

func (s *Session) teardown() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.doneOnce.Do(func() { close(s.done) })
}
