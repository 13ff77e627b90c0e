package portal

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the portal origin.
const DefaultBaseURL = "https://nrggym.perfectgym.com"

const (
	loginPath     = "/clientportal2/Auth/Login"
	identityPath  = "/clientportal2/Auth/Login/Identity"
	occupancyPath = "/clientportal2/Clubs/Clubs/GetMembersInClubs"
	productsPath  = "/clientportal2/Products/ChooseProducts/GetProductsForUser"
	contractsPath = "/clientportal2/Profile/Contracts/ContractList"
	profilePath   = "/clientportal2/Profile/Profile/GetProfileForEdit"
	calendarPath  = "/clientportal2/MyCalendar/MyCalendar/GetCalendar"
)

// BookingPaths is the built-in list of routes believed to serve upcoming
// bookings, in the order they are tried.
var BookingPaths = []string{
	calendarPath,
	"/clientportal2/Booking/GetUpcomingBookings",
	"/clientportal2/Booking/GetFutureBookings",
	"/clientportal2/Bookings/GetUpcoming",
	"/clientportal2/ClassBooking/GetUpcoming",
	"/clientportal2/Calendar/GetMyBookings",
}

const (
	// DefaultClubID is used for the calendar view hash when no club is known.
	DefaultClubID  int64 = 5
	bookingHorizon       = 30 * 24 * time.Hour
)

// bookingCandidates expands paths into the requests to try: duplicates are
// dropped, calendar-like paths get a date-ranged variant first, and the
// MyCalendar route carries the view hash it needs.
func bookingCandidates(paths []string, clubID int64, now time.Time) []Candidate {
	now = now.UTC()
	if clubID == 0 {
		clubID = DefaultClubID
	}
	seen := make(map[string]bool, len(paths))
	var out []Candidate
	for _, p := range paths {
		path := normalizePath(p)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true

		header := http.Header{}
		if strings.Contains(path, calendarPath) {
			header.Set(headerHash, "#/Classes/"+strconv.FormatInt(clubID, 10)+"/Calendar?date="+now.Format(time.DateOnly))
		}
		if isRangeable(path) {
			out = append(out, Candidate{Method: http.MethodGet, Path: withRange(path, now), Header: header})
		}
		out = append(out, Candidate{Method: http.MethodGet, Path: path, Header: header})
	}
	return out
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func isRangeable(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, "calendar") || strings.Contains(lower, "schedule")
}

func withRange(path string, now time.Time) string {
	values := url.Values{}
	values.Set("start", now.Format(time.RFC3339))
	values.Set("end", now.Add(bookingHorizon).Format(time.RFC3339))
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + values.Encode()
}
