// Package state provides thread-safe storage for the latest portal data.
//
// # Overview
//
// The poller writes one Refresh per cycle and readers (the CLI report, tests)
// take Snapshots. The Store sits between the two goroutines.
//
// # Update Semantics
//
//	// Success case: replace all portal data
//	store.Update(refresh, nil)
//	→ snapshot.Refresh = refresh
//	→ snapshot.LastError = nil
//	→ snapshot.ConsecutiveFailures = 0
//
//	// Error case: keep old data, record error
//	store.Update(state.Refresh{}, err)
//	→ snapshot.Refresh = <unchanged>
//	→ snapshot.LastError = err
//	→ snapshot.ConsecutiveFailures++
//
// A cycle whose login failed is the only error case: individual portal
// operations degrade to empty results and are stored as such.
//
// # Defensive Copying
//
// Update and Snapshot copy every slice and pointer in a Refresh (bookings,
// clubs, contracts, addon lists, costs) so readers never share memory with
// the poller. Errors are wrapped on the way out.
//
// # Next Booking
//
// NextBooking picks the booking with the earliest start at or after a given
// instant; a booking without an end is treated as ending when it starts.
//
// # Testing Considerations
//
// The zero Store is ready to use and timestamps with time.Now. NewStore
// accepts a clock for deterministic LastUpdated values.
package state
