// Package report renders a state snapshot as text for the terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KRoperUK/nrg-gyms/internal/portal"
	"github.com/KRoperUK/nrg-gyms/internal/state"
)

const timeLayout = "2006-01-02 15:04"

// Render writes a human-readable summary of snap to w. Times are shown in loc.
func Render(w io.Writer, snap state.Snapshot, now time.Time, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	st := NewStyles(w)
	var b strings.Builder

	switch {
	case snap.LastError != nil && !snap.HasData:
		fmt.Fprintf(&b, "%s %v\n", st.Danger.Render("Portal:"), snap.LastError)
		_, err := io.WriteString(w, b.String())
		return err
	case snap.LastError != nil:
		fmt.Fprintf(&b, "%s %v (showing data from %s)\n",
			st.Warning.Render("Portal:"), snap.LastError, snap.LastUpdated.In(loc).Format(timeLayout))
	default:
		fmt.Fprintf(&b, "%s OK\n", st.Success.Render("Portal:"))
	}

	writeBookings(&b, st, snap, now, loc)
	writeOccupancy(&b, st, snap.Occupancy)
	writeMember(&b, st, snap)
	writeContract(&b, st, snap.Contracts.Active, loc)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeBookings(b *strings.Builder, st Styles, snap state.Snapshot, now time.Time, loc *time.Location) {
	bookings := make([]portal.Booking, len(snap.Bookings))
	copy(bookings, snap.Bookings)
	sort.SliceStable(bookings, func(i, j int) bool { return bookings[i].Start.Before(bookings[j].Start) })

	fmt.Fprintf(b, "\n%s %d\n", st.Heading.Render("Bookings:"), len(bookings))
	for _, bk := range bookings {
		line := "- " + bk.Summary
		if bk.Location != "" {
			line += " @ " + bk.Location
		}
		line += " on " + bk.Start.In(loc).Format(timeLayout)
		if bk.HasEnd() {
			line += "-" + bk.End.In(loc).Format("15:04")
		}
		b.WriteString(line + "\n")
	}
	if next, ok := snap.NextBooking(now); ok {
		fmt.Fprintf(b, "%s %s in %s\n", st.Label.Render("Next:"), next.Summary, next.Start.Sub(now).Round(time.Minute))
	}
	if snap.BookingsPath != "" {
		b.WriteString(st.Muted.Render("source: "+snap.BookingsPath) + "\n")
	}
}

func writeOccupancy(b *strings.Builder, st Styles, occ portal.OccupancyReport) {
	fmt.Fprintf(b, "\n%s %d\n", st.Heading.Render("Occupancy total:"), occ.Total)
	for _, c := range occ.Clubs {
		fmt.Fprintf(b, "- %s: %d members\n", c.Name, c.Members)
	}
}

func writeMember(b *strings.Builder, st Styles, snap state.Snapshot) {
	ident, prof := snap.Identity, snap.Profile
	if ident.IsEmpty() && prof.IsEmpty() {
		return
	}
	b.WriteString("\n")
	if !ident.IsEmpty() {
		fmt.Fprintf(b, "%s home club id: %d default: %d\n",
			st.Label.Render("Identity:"), ident.HomeClubID, ident.DefaultClubID)
	}
	if !prof.IsEmpty() {
		fmt.Fprintf(b, "%s %s (ID: %d)\n", st.Label.Render("Profile:"), prof.FullName, prof.UserID)
		fmt.Fprintf(b, "Email: %s Phone: %s Referral: %s\n", prof.Email, prof.Phone, prof.ReferralCode)
		if prof.ClubName != "" {
			fmt.Fprintf(b, "Club name: %s\n", prof.ClubName)
		}
	}
}

func writeContract(b *strings.Builder, st Styles, active *portal.Contract, loc *time.Location) {
	if active == nil {
		return
	}
	cost := "n/a"
	if active.CostGross != nil {
		cost = strconv.FormatFloat(*active.CostGross, 'f', 2, 64)
	}
	next := "n/a"
	if !active.NextPaymentDate.IsZero() {
		next = active.NextPaymentDate.In(loc).Format(time.DateOnly)
	}
	fmt.Fprintf(b, "\n%s %s @ %s cost=%s next_payment=%s\n",
		st.Label.Render("Active contract:"), active.Name, active.ClubName, cost, next)
	if len(active.Addons) > 0 {
		fmt.Fprintf(b, "Addons: %s\n", strings.Join(active.Addons, ", "))
	}
}
