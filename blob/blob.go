// Package blob serves in-memory content under short-lived loopback URLs,
// giving the media sink a URL for data that only exists in this process.
package blob

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/reel-cli/reel/log"
)

const (
	routePrefix     = "/blob/"
	shutdownTimeout = 2 * time.Second
)

var (
	// ErrUnknown is returned when revoking a URL that is not live.
	ErrUnknown = errors.New("unknown object URL")

	// ErrClosed is returned by Create after Close.
	ErrClosed = errors.New("blob server closed")
)

type object struct {
	content []byte
	mime    string
	created time.Time
}

// Server hands out object URLs. Content stays reachable until revoked.
type Server struct {
	mu      sync.RWMutex
	objects map[string]object
	closed  bool

	base string
	srv  *http.Server
	done chan struct{}
}

// Start listens on an ephemeral loopback port.
func Start() (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	s := &Server{
		objects: make(map[string]object),
		base:    "http://" + ln.Addr().String(),
		done:    make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Get(routePrefix+"{id}", s.serve)
	s.srv = &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("blob server: %v", err)
		}
	}()

	return s, nil
}

// Create stores content and returns the URL it is served under.
func (s *Server) Create(content []byte, mime string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}

	id := uuid.NewString()
	s.objects[id] = object{
		content: append([]byte(nil), content...),
		mime:    mime,
		created: time.Now(),
	}
	return s.base + routePrefix + id, nil
}

// Revoke releases a URL returned by Create.
func (s *Server) Revoke(url string) error {
	id, ok := strings.CutPrefix(url, s.base+routePrefix)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknown, url)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, live := s.objects[id]; !live {
		return fmt.Errorf("%w: %s", ErrUnknown, url)
	}
	delete(s.objects, id)
	return nil
}

// Live reports the number of outstanding object URLs.
func (s *Server) Live() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Close revokes everything and stops the listener.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.objects = make(map[string]object)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	<-s.done
	return err
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	obj, ok := s.objects[id]
	s.mu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", obj.mime)
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, "", obj.created, strings.NewReader(string(obj.content)))
}
