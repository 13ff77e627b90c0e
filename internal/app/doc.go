// Package app wires configuration, the portal client, the state store and the
// poller together. It is the composition root of the nrggyms CLI.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read config file + NRG_* environment
//	       ├─────> prefs.Load()         Last bookings endpoint that worked
//	       ├─────> portal.NewClient()   Session, prober, facade
//	       ├─────> state.NewStore()     Shared state container
//	       └─────> StartPoller()        Refresh until ctx is cancelled
//	               (or Refresh + report.Render once with -once)
//
//	Poll cycle:
//	┌──────────────────────────────────────────────┐
//	│ Login()          only until one succeeds     │
//	│ UseHomeClub()    once, after the first login │
//	│  ├─> FetchUpcomingBookings()  ┐              │
//	│  ├─> FetchOccupancy()         ├ concurrent   │
//	│  └─> FetchIdentity()          ┘              │
//	│        ├─> FetchProfile(id)   ┐ concurrent   │
//	│        └─> FetchContracts(id) ┘              │
//	│ store.Update()                               │
//	│ prefs.RememberBookingsPath()                 │
//	└──────────────────────────────────────────────┘
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file unreadable or invalid
//   - Missing credentials
//   - Unusable portal base URL
//
// Recoverable errors (recorded in the store, polling continues):
//   - Login failure: ErrLoginFailed, previous data kept, retried next cycle
//   - A panic in any fetch: previous data kept
//
// Portal operations never fail outright; they return empty results and log.
package app
