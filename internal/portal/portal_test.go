package portal

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

// fakePortal emulates the portal: routes are keyed by URL path, every hit is
// counted, and unknown paths answer 404. Login sets the auth cookie unless a
// test replaces the route.
type fakePortal struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]int
	server *httptest.Server
}

func newFakePortal(t *testing.T) *fakePortal {
	t.Helper()
	p := &fakePortal{
		routes: map[string]http.HandlerFunc{},
		hits:   map[string]int{},
	}
	p.routes[loginPath] = func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: authCookieName, Value: "tok-1", Path: "/"})
		writeJSON(w, `{"Success":true}`)
	}
	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.hits[r.URL.Path]++
		h := p.routes[r.URL.Path]
		p.mu.Unlock()
		if h == nil {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePortal) handle(path string, h http.HandlerFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[path] = h
}

func (p *fakePortal) json(path, body string) {
	p.handle(path, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, body)
	})
}

func (p *fakePortal) status(path string, code int) {
	p.handle(path, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(code), code)
	})
}

func (p *fakePortal) count(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

func (p *fakePortal) client(t *testing.T, opts Options) *Client {
	t.Helper()
	opts.BaseURL = p.server.URL
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	if opts.Credentials == (Credentials{}) {
		opts.Credentials = Credentials{Email: "sam@example.com", Password: "hunter2"}
	}
	c, err := NewClient(opts)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
