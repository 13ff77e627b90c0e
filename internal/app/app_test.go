package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KRoperUK/nrg-gyms/internal/config"
	"github.com/KRoperUK/nrg-gyms/internal/prefs"
)

const upcomingPath = "/clientportal2/Booking/GetUpcomingBookings"

func newPortalServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/clientportal2/Auth/Login":
			http.SetCookie(w, &http.Cookie{Name: "CpAuthToken", Value: "tok", Path: "/"})
			_, _ = w.Write([]byte(`{}`))
		case upcomingPath:
			_, _ = w.Write([]byte(`[{"Title":"Yoga","StartTime":"2099-06-01T09:00:00Z"}]`))
		case "/clientportal2/Clubs/Clubs/GetMembersInClubs":
			_, _ = w.Write([]byte(`{"UsersInClubList":[{"ClubName":"Manchester","UsersCountCurrentlyInClub":41}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_OnceRendersReportAndRemembersEndpoint(t *testing.T) {
	srv := newPortalServer(t)
	statePath := filepath.Join(t.TempDir(), "state.toml")
	nop := zerolog.Nop()

	var out bytes.Buffer
	err := Run(context.Background(), Options{
		Once:   true,
		Out:    &out,
		Logger: &nop,
		Config: &config.Config{
			Email:          "sam@example.com",
			Password:       "hunter2",
			BaseURL:        srv.URL,
			StatePath:      statePath,
			UpdateInterval: time.Hour,
		},
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Portal: OK")
	assert.Contains(t, out.String(), "Bookings: 1")
	assert.Contains(t, out.String(), "- Yoga on ")
	assert.Contains(t, out.String(), "Occupancy total: 41")

	saved, err := prefs.Load(statePath)
	require.NoError(t, err)
	assert.Equal(t, upcomingPath, saved.BookingsPath)
}

func TestRun_MissingCredentials(t *testing.T) {
	err := Run(context.Background(), Options{Once: true, Config: &config.Config{BaseURL: "https://example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing credentials")
}

func TestRun_InvalidBaseURL(t *testing.T) {
	nop := zerolog.Nop()
	err := Run(context.Background(), Options{
		Once:   true,
		Logger: &nop,
		Config: &config.Config{Email: "a", Password: "b", BaseURL: "https://", StatePath: filepath.Join(t.TempDir(), "s.toml")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init portal client")
}

func TestRun_PollsUntilCancelled(t *testing.T) {
	srv := newPortalServer(t)
	nop := zerolog.Nop()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := Run(ctx, Options{
		Logger: &nop,
		Config: &config.Config{
			Email:          "sam@example.com",
			Password:       "hunter2",
			BaseURL:        srv.URL,
			StatePath:      filepath.Join(t.TempDir(), "state.toml"),
			UpdateInterval: time.Hour,
		},
	})
	assert.NoError(t, err)
}

func TestPollInterval_NeverBelowMinimum(t *testing.T) {
	cfg := config.Config{UpdateInterval: time.Hour}

	assert.Equal(t, time.Hour, pollInterval(cfg, Options{}))
	assert.Equal(t, config.MinUpdateInterval, pollInterval(cfg, Options{PollEvery: 1}))
	assert.Equal(t, 10*time.Minute, pollInterval(cfg, Options{PollEvery: 600}))
	assert.Equal(t, config.MinUpdateInterval, pollInterval(config.Config{UpdateInterval: time.Second}, Options{}))
}

func TestRun_PollEveryIsClamped(t *testing.T) {
	srv := newPortalServer(t)

	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := Run(ctx, Options{
		PollEvery: 1,
		Logger:    &logger,
		Config: &config.Config{
			Email:          "sam@example.com",
			Password:       "hunter2",
			BaseURL:        srv.URL,
			StatePath:      filepath.Join(t.TempDir(), "state.toml"),
			UpdateInterval: time.Hour,
		},
	})
	require.NoError(t, err)

	assert.Contains(t, logs.String(), `"interval":300000`)
	assert.Equal(t, 1, strings.Count(logs.String(), "refresh complete"), "a single cycle before the context ends")
}
