// Package portal is a client for the NRG Gyms PerfectGym client portal.
//
// # Overview
//
// The portal API is undocumented and unversioned, and the routes and JSON
// envelopes it exposes differ between deployments. This package hides that
// behind a small facade that logs in, finds whichever endpoint is live for a
// capability, and maps the responses into stable records.
//
// # Architecture
//
//   - session.go: cookie jar, fixed browser-like headers, login, and the
//     bearer token lifted from the CpAuthToken cookie
//   - probe.go: tries candidate endpoints in order, first usable answer wins
//   - normalize.go: finds the item list inside an unknown JSON envelope
//   - timeparse.go: ISO-8601 and epoch seconds/milliseconds to UTC instants
//   - mappers.go: raw records to Booking, ClubOccupancy, Identity, Profile, Contract
//   - client.go: the Client facade and the Fetcher interface
//
// # Client Usage
//
//	client, err := portal.NewClient(portal.Options{
//		Credentials: portal.Credentials{Email: email, Password: password},
//	})
//	if err != nil {
//		return err
//	}
//	if !client.Login(ctx) {
//		// retry later; the portal rejected us or was unreachable
//	}
//	bookings := client.FetchUpcomingBookings(ctx)
//	occupancy := client.FetchOccupancy(ctx)
//	contracts := client.FetchContracts(ctx, 0) // looks up the user id itself
//
// # Error Handling
//
// Public operations never return errors. Transport failures, non-200
// statuses and undecodable bodies become an empty or zero result and a log
// line. Internally failures carry an ErrorCode:
//
//   - AUTHENTICATION_FAILURE: login non-200 or transport error
//   - ENDPOINT_UNAVAILABLE: one candidate failed, the next is tried (debug)
//   - NO_ENDPOINT_FOUND: every candidate failed (warn)
//   - MALFORMED_RECORD: one item dropped, the rest kept (debug)
//   - MISSING_PREREQUISITE: no user id for profile/contracts (warn)
//
// # Concurrency
//
// A Client may be shared between goroutines. Each call re-derives the
// Authorization header from the current cookie, so the worst outcome of
// concurrent calls is a transient 401 on one of them. Requests time out
// after 20 seconds and are never retried; only a different candidate is.
package portal
