package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

const (
	requestTimeout  = 20 * time.Second
	maxBodyBytes    = 8 << 20
	logBodySnippet  = 300
	authCookieName  = "CpAuthToken"
	headerHash      = "X-Hash"
	browserUA       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"
	portalAppPrefix = "/clientportal2/"
)

// Session owns one authenticated HTTP session with the portal: the cookie
// jar, the fixed browser-like headers and the bearer token lifted from the
// auth cookie. It is safe for concurrent use; the token is re-derived from
// the jar before each privileged call and stored atomically, so concurrent
// calls at worst race to write the same value.
type Session struct {
	base    *url.URL
	http    *http.Client
	jar     http.CookieJar
	headers http.Header
	token   atomic.Pointer[string]
}

// Request is one call to a portal path. Path may include a query string.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Response is a fully read portal response.
type Response struct {
	Status int
	Body   []byte
}

// JSON decodes the body.
func (r *Response) JSON() (any, error) {
	return decodeJSON(r.Body)
}

// Snippet returns the start of the body for diagnostics.
func (r *Response) Snippet() string {
	return snippet(r.Body, logBodySnippet)
}

// NewSession creates a session for the portal at baseURL. A nil httpClient
// gets a default one with the fixed request timeout; either way the session
// installs its own cookie jar on a copy of the client.
func NewSession(baseURL string, httpClient *http.Client) (*Session, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	hc := &http.Client{Timeout: requestTimeout}
	if httpClient != nil {
		copied := *httpClient
		hc = &copied
		if hc.Timeout == 0 {
			hc.Timeout = requestTimeout
		}
	}
	hc.Jar = jar

	origin := base.String()
	s := &Session{
		base: base,
		http: hc,
		jar:  jar,
		headers: http.Header{
			"Accept":           {"application/json, text/plain, */*"},
			"Cp-Lang":          {"en"},
			"Cp-Mode":          {"desktop"},
			"Content-Type":     {"application/json;charset=UTF-8"},
			"Origin":           {origin},
			"Referer":          {origin + portalAppPrefix},
			"X-Requested-With": {"XMLHttpRequest"},
			"User-Agent":       {browserUA},
		},
	}
	jar.SetCookies(base, []*http.Cookie{
		{Name: "websiteAnalyticsConsent", Value: "true", Path: "/"},
		{Name: "customTrackingKey", Value: "true", Path: "/"},
	})
	return s, nil
}

// Login posts the credentials with remember-me set. Any 200 counts as
// success because the portal may establish the session purely via cookies.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	body, err := json.Marshal(map[string]any{
		"RememberMe": true,
		"Login":      creds.Email,
		"Password":   creds.Password,
	})
	if err != nil {
		return wrapError(CodeAuthenticationFailure, "encode login request", err)
	}
	resp, err := s.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   loginPath,
		Header: http.Header{headerHash: {"#/Login"}},
		Body:   body,
	})
	if err != nil {
		return wrapError(CodeAuthenticationFailure, "login request failed", err).at(loginPath, 0)
	}
	if resp.Status != http.StatusOK {
		return newError(CodeAuthenticationFailure, "login rejected: "+resp.Snippet()).at(loginPath, resp.Status)
	}
	zerolog.Ctx(ctx).Debug().Str("body", resp.Snippet()).Msg("login accepted")
	s.EnsureAuthRefreshed()
	return nil
}

// EnsureAuthRefreshed copies the current auth cookie into the bearer token.
// The portal rotates the cookie without notice, so this runs before every
// privileged request. When no cookie is present the last token is kept.
func (s *Session) EnsureAuthRefreshed() {
	if token := s.authCookie(); token != "" {
		s.token.Store(&token)
	}
}

// Token returns the bearer token currently attached to requests.
func (s *Session) Token() string {
	if t := s.token.Load(); t != nil {
		return *t
	}
	return ""
}

func (s *Session) authCookie() string {
	// The cookie may be scoped to the portal app path rather than the origin.
	app := *s.base
	app.Path = portalAppPrefix
	for _, u := range []*url.URL{s.base, &app} {
		for _, c := range s.jar.Cookies(u) {
			if c.Name == authCookieName && c.Value != "" {
				return c.Value
			}
		}
	}
	return ""
}

// Do sends req with the session headers, per-request headers on top, and the
// bearer token when one is known. Non-200 statuses are returned, not errors;
// only transport and read failures are errors.
func (s *Session) Do(ctx context.Context, req Request) (*Response, error) {
	rel, err := url.Parse(req.Path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", req.Path, err)
	}
	reqURL := s.base.ResolveReference(rel)

	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range s.headers {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	if token := s.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range req.Header {
		httpReq.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{Status: resp.StatusCode, Body: data}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func snippet(body []byte, n int) string {
	s := strings.TrimSpace(string(body))
	if len(s) > n {
		return s[:n]
	}
	return s
}
