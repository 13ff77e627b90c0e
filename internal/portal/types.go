package portal

import "time"

// Credentials are the account email and password used to log in.
type Credentials struct {
	Email    string
	Password string
}

// Booking is one upcoming class or appointment. Start is always set on
// bookings returned by the client; End is zero when the portal did not send one.
type Booking struct {
	Summary     string    `json:"summary"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end,omitzero"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
}

// HasEnd reports whether the portal supplied an end instant.
func (b Booking) HasEnd() bool {
	return !b.End.IsZero()
}

// EffectiveEnd returns End, or Start when no end instant is known.
func (b Booking) EffectiveEnd() time.Time {
	if b.End.IsZero() {
		return b.Start
	}
	return b.End
}

// ClubOccupancy is the number of members currently checked in at one club.
type ClubOccupancy struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
	ID      int64  `json:"id,omitempty"`
}

// OccupancyReport lists per-club occupancy. Total is the sum of Members.
type OccupancyReport struct {
	Clubs []ClubOccupancy `json:"clubs"`
	Total int             `json:"total"`
}

// Club returns the entry with the given id.
func (r OccupancyReport) Club(id int64) (ClubOccupancy, bool) {
	for _, c := range r.Clubs {
		if id != 0 && c.ID == id {
			return c, true
		}
	}
	return ClubOccupancy{}, false
}

func newOccupancyReport(clubs []ClubOccupancy) OccupancyReport {
	report := OccupancyReport{Clubs: clubs}
	for _, c := range clubs {
		report.Total += c.Members
	}
	return report
}

// Identity describes the logged-in member. Every field is optional; a zero
// UserID means the portal did not identify the member.
type Identity struct {
	UserID        int64  `json:"user_id,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Email         string `json:"email,omitempty"`
	HomeClubID    int64  `json:"home_club_id,omitempty"`
	DefaultClubID int64  `json:"default_club_id,omitempty"`
	Type          string `json:"type,omitempty"`
	PhotoURL      string `json:"photo_url,omitempty"`
}

// IsEmpty reports whether nothing was learned about the member.
func (i Identity) IsEmpty() bool {
	return i == Identity{}
}

// Profile is the member's editable profile, enriched with their club name.
type Profile struct {
	UserID       int64  `json:"user_id,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	ClubName     string `json:"club_name,omitempty"`
}

// IsEmpty reports whether the profile fetch produced nothing.
func (p Profile) IsEmpty() bool {
	return p == Profile{}
}

// Contract is one membership contract. Zero dates and nil costs are absent.
type Contract struct {
	ID               int64     `json:"id,omitempty"`
	Name             string    `json:"name,omitempty"`
	Addons           []string  `json:"addons"`
	ClubID           int64     `json:"club_id,omitempty"`
	ClubName         string    `json:"club_name,omitempty"`
	StartDate        time.Time `json:"start_date,omitzero"`
	EndDate          time.Time `json:"end_date,omitzero"`
	CommitmentDate   time.Time `json:"commitment_date,omitzero"`
	NextPaymentDate  time.Time `json:"next_payment_date,omitzero"`
	PaymentInterval  string    `json:"payment_interval,omitempty"`
	CommitmentPeriod string    `json:"commitment_period,omitempty"`
	CostGross        *float64  `json:"cost_gross,omitempty"`
	CostNet          *float64  `json:"cost_net,omitempty"`
	CostTax          *float64  `json:"cost_tax,omitempty"`
	ShortDescription string    `json:"short_description,omitempty"`
}

// ContractsReport holds every contract in portal order. Active is the first
// contract, or nil when there are none.
type ContractsReport struct {
	Contracts []Contract `json:"contracts"`
	Active    *Contract  `json:"active"`
}

func newContractsReport(contracts []Contract) ContractsReport {
	report := ContractsReport{Contracts: contracts}
	if len(contracts) > 0 {
		active := contracts[0]
		report.Active = &active
	}
	return report
}

// Products carries what the client uses from the products lookup.
type Products struct {
	ClubName string `json:"club_name,omitempty"`
}
