package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/KRoperUK/nrg-gyms/internal/portal"
)

// Refresh is the result of one poll cycle.
type Refresh struct {
	Bookings     []portal.Booking
	Occupancy    portal.OccupancyReport
	Identity     portal.Identity
	Profile      portal.Profile
	Contracts    portal.ContractsReport
	BookingsPath string
}

// Snapshot represents the latest portal data available to readers.
type Snapshot struct {
	Refresh
	HasData             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed cycles
}

// IsOffline returns true when the portal has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// NextBooking returns the upcoming booking of the snapshot, see NextBooking.
func (s Snapshot) NextBooking(now time.Time) (portal.Booking, bool) {
	return NextBooking(s.Bookings, now)
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// NewStore returns a Store whose timestamps come from now.
func NewStore(now func() time.Time) *Store {
	return &Store{now: now}
}

// Update replaces the stored data. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(r Refresh, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = s.clock()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Refresh = cloneRefresh(r)
	s.snapshot.HasData = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Refresh = cloneRefresh(s.snapshot.Refresh)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// NextBooking returns the booking with the earliest start at or after now.
func NextBooking(bookings []portal.Booking, now time.Time) (portal.Booking, bool) {
	var (
		next  portal.Booking
		found bool
	)
	for _, b := range bookings {
		if b.Start.Before(now) {
			continue
		}
		if !found || b.Start.Before(next.Start) {
			next, found = b, true
		}
	}
	return next, found
}

func cloneRefresh(r Refresh) Refresh {
	dup := r
	dup.Bookings = cloneSlice(r.Bookings)
	dup.Occupancy.Clubs = cloneSlice(r.Occupancy.Clubs)
	dup.Contracts = cloneContracts(r.Contracts)
	return dup
}

func cloneContracts(r portal.ContractsReport) portal.ContractsReport {
	if r.Contracts == nil {
		return portal.ContractsReport{}
	}
	dup := portal.ContractsReport{Contracts: make([]portal.Contract, len(r.Contracts))}
	for i, c := range r.Contracts {
		c.Addons = cloneSlice(c.Addons)
		c.CostGross = cloneFloat(c.CostGross)
		c.CostNet = cloneFloat(c.CostNet)
		c.CostTax = cloneFloat(c.CostTax)
		dup.Contracts[i] = c
	}
	if r.Active != nil && len(dup.Contracts) > 0 {
		active := dup.Contracts[0]
		dup.Active = &active
	}
	return dup
}

func cloneSlice[T any](items []T) []T {
	if items == nil {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
