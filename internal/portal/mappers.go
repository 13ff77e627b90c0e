package portal

import (
	"strings"
)

const (
	defaultBookingSummary = "Booking"
	defaultClubName       = "Club"
)

// Source keys per target field, most specific first.
var (
	bookingTitleKeys    = []string{"Title", "ClassName", "Name"}
	bookingStartKeys    = []string{"StartTimeUtc", "StartTime", "Start", "StartDate"}
	bookingEndKeys      = []string{"EndTime", "End", "EndDate"}
	bookingLocationKeys = []string{"Club", "Zone", "Location", "ClubName"}
	bookingCoachKeys    = []string{"TrainerDisplayName", "Coach", "Instructor"}

	clubNameKeys  = []string{"ClubName", "Name", "Club", "name"}
	clubCountKeys = []string{"UsersCountCurrentlyInClub", "MembersInClubCount", "Count", "members", "value"}
	clubIDKeys    = []string{"ClubId", "Id", "id"}
)

// MapBooking converts one raw booking. It fails with CodeMalformedRecord
// when no start instant can be resolved; every other field is optional.
func MapBooking(raw Record) (Booking, error) {
	start, ok := ParseInstant(raw.First(bookingStartKeys...))
	if !ok {
		return Booking{}, newError(CodeMalformedRecord, "booking has no usable start time")
	}
	b := Booking{
		Summary:     raw.Text(bookingTitleKeys...),
		Start:       start,
		Location:    raw.Text(bookingLocationKeys...),
		Description: bookingDescription(raw),
	}
	if b.Summary == "" {
		b.Summary = defaultBookingSummary
	}
	if end, ok := ParseInstant(raw.First(bookingEndKeys...)); ok {
		b.End = end
	}
	return b, nil
}

func bookingDescription(raw Record) string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}
	add("Coach", raw.Text(bookingCoachKeys...))
	add("Status", raw.Text("Status"))
	add("Type", raw.Text("Type"))
	if id := raw.Text("ClassBookingId"); id != "" {
		add("ClassBookingId", id)
	} else {
		add("BookingId", raw.Text("BookingId"))
	}
	return strings.Join(parts, "; ")
}

// MapClubOccupancy converts one raw club entry. Counts that are missing or
// not integers become zero, and negative counts are clamped to zero.
func MapClubOccupancy(raw Record) ClubOccupancy {
	c := ClubOccupancy{
		Name: raw.Text(clubNameKeys...),
		ID:   raw.Int(clubIDKeys...),
	}
	if c.Name == "" {
		c.Name = defaultClubName
	}
	if n, ok := toInt64(raw.First(clubCountKeys...)); ok && n > 0 {
		c.Members = int(n)
	}
	return c
}

// MapIdentity reads the Member object of an identity response.
func MapIdentity(payload Record) Identity {
	m := payload.Object("Member")
	return Identity{
		UserID:        m.Int("Id"),
		FirstName:     m.Text("FirstName"),
		LastName:      m.Text("LastName"),
		Email:         m.Text("Email"),
		HomeClubID:    m.Int("HomeClubId"),
		DefaultClubID: m.Int("DefaultClubId"),
		Type:          m.Text("Type"),
		PhotoURL:      m.Text("PhotoUrl"),
	}
}

// MapProfile reads Model.PersonalData of a profile response. userID is used
// when the response does not carry Model.UserId.
func MapProfile(payload Record, userID int64) Profile {
	model := payload.Object("Model")
	pd := model.Object("PersonalData")
	p := Profile{
		UserID:       model.Int("UserId"),
		FirstName:    pd.Text("FirstName"),
		LastName:     pd.Text("LastName"),
		Email:        pd.Text("Email"),
		Phone:        pd.Object("Phone").Text("PhoneNumber"),
		ReferralCode: pd.Text("ReferralCode"),
		PhotoURL:     pd.Object("Photo").Text("Url"),
	}
	if p.UserID == 0 {
		p.UserID = userID
	}
	p.FullName = fullName(p.FirstName, p.LastName)
	return p
}

func fullName(first, last string) string {
	var parts []string
	for _, s := range []string{first, last} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// MapContract converts one entry of a contract list response.
func MapContract(raw Record) Contract {
	club := raw.Object("Club")
	cost := raw.Object("Cost")
	c := Contract{
		ID:               raw.Int("Id"),
		Name:             raw.Text("Name"),
		Addons:           raw.Strings("AddonsNames"),
		ClubID:           club.Int("Id"),
		ClubName:         club.Text("Name"),
		PaymentInterval:  raw.Text("PaymentInterval"),
		CommitmentPeriod: raw.Text("CommitmentPeriod"),
		CostGross:        cost.Float("Gross"),
		CostNet:          cost.Float("Net"),
		CostTax:          cost.Float("Tax"),
		ShortDescription: raw.Text("ShortDescription"),
	}
	c.StartDate, _ = ParseInstant(raw.First("StartDate"))
	c.EndDate, _ = ParseInstant(raw.First("EndDate"))
	c.CommitmentDate, _ = ParseInstant(raw.First("CommitmentDate"))
	c.NextPaymentDate, _ = ParseInstant(raw.First("NextPaymentDate"))
	return c
}

// MapContracts converts the Contracts list of a contract list response,
// keeping portal order.
func MapContracts(payload Record) []Contract {
	list, _ := payload["Contracts"].([]any)
	contracts := make([]Contract, 0, len(list))
	for _, rec := range records(list) {
		contracts = append(contracts, MapContract(rec))
	}
	return contracts
}

// MapProducts reads the club name from a products response.
func MapProducts(payload Record) Products {
	return Products{ClubName: payload.Text("ClubName")}
}
