package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/KRoperUK/nrg-gyms/internal/portal"
	"github.com/KRoperUK/nrg-gyms/internal/state"
)

const defaultPollInterval = time.Hour

// ErrLoginFailed is recorded in the store when a cycle could not log in.
var ErrLoginFailed = errors.New("login failed, will retry next cycle")

// Source is what the poller needs from the portal client.
type Source interface {
	portal.Fetcher
	UseHomeClub(ctx context.Context) bool
	LastBookingsPath() string
}

// Poller refreshes a store from the portal. Its zero value is not usable;
// build it with NewPoller.
type Poller struct {
	source Source
	store  *state.Store
	log    zerolog.Logger

	// OnBookingsPath is called after a cycle whose bookings came from a
	// discovered endpoint.
	OnBookingsPath func(path string)

	mu        sync.Mutex
	loggedIn  bool
	clubKnown bool
}

// NewPoller returns a poller that writes to store.
func NewPoller(source Source, store *state.Store, logger zerolog.Logger) *Poller {
	return &Poller{
		source: source,
		store:  store,
		log:    logger.With().Str("component", "poller").Logger(),
	}
}

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence, starting immediately. It returns a channel closed when the
// goroutine exits after ctx is cancelled.
func StartPoller(ctx context.Context, p *Poller, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			p.Refresh(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return done
}

// Refresh runs one cycle: log in when needed, then fetch every capability
// concurrently and store the result. A failed login or a panic while
// fetching keeps the previous data and records the error instead.
func (p *Poller) Refresh(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loggedIn {
		if err := safely(func() { p.loggedIn = p.source.Login(ctx) }); err != nil {
			p.fail(err)
			return
		}
		if !p.loggedIn {
			p.log.Warn().Err(ErrLoginFailed).Msg("portal login failed")
			p.store.Update(state.Refresh{}, ErrLoginFailed)
			return
		}
	}
	if !p.clubKnown {
		if err := safely(func() { p.source.UseHomeClub(ctx) }); err != nil {
			p.fail(err)
			return
		}
		p.clubKnown = true
	}

	r, err := p.fetch(ctx)
	if err != nil {
		p.fail(err)
		return
	}
	p.store.Update(r, nil)

	if r.BookingsPath != "" && p.OnBookingsPath != nil {
		p.OnBookingsPath(r.BookingsPath)
	}
	p.log.Info().
		Int("bookings", len(r.Bookings)).
		Int("clubs", len(r.Occupancy.Clubs)).
		Int("members_in_clubs", r.Occupancy.Total).
		Int("contracts", len(r.Contracts.Contracts)).
		Msg("refresh complete")
}

func (p *Poller) fail(err error) {
	p.log.Error().Err(err).Msg("refresh aborted")
	p.store.Update(state.Refresh{}, err)
}

func (p *Poller) fetch(ctx context.Context) (state.Refresh, error) {
	var (
		r state.Refresh
		g group
	)
	g.Go(func() {
		r.Bookings = p.source.FetchUpcomingBookings(ctx)
		r.BookingsPath = p.source.LastBookingsPath()
	})
	g.Go(func() {
		r.Occupancy = p.source.FetchOccupancy(ctx)
	})
	g.Go(func() {
		r.Identity = p.source.FetchIdentity(ctx)
		if r.Identity.UserID == 0 {
			p.log.Warn().Msg("no user id in identity response, skipping profile and contracts")
			r.Contracts = portal.ContractsReport{Contracts: []portal.Contract{}}
			return
		}
		var member group
		member.Go(func() {
			r.Profile = p.source.FetchProfile(ctx, r.Identity.UserID)
		})
		member.Go(func() {
			r.Contracts = p.source.FetchContracts(ctx, r.Identity.UserID)
		})
		if err := member.Wait(); err != nil {
			panic(err)
		}
	})
	return r, g.Wait()
}

// group runs functions concurrently and turns their panics into errors.
type group struct {
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

func (g *group) Go(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := safely(fn); err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
	}()
}

func (g *group) Wait() error {
	g.wg.Wait()
	return errors.Join(g.errs...)
}

func safely(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh panicked: %v", r)
		}
	}()
	fn()
	return nil
}
