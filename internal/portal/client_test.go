package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_EndToEndBookings(t *testing.T) {
	p := newFakePortal(t)

	var auth, hash string
	var query map[string][]string
	p.handle(calendarPath, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		hash = r.Header.Get("X-Hash")
		query = r.URL.Query()
		writeJSON(w, `{"Items":[{"StartTime":"2024-06-01T09:00:00Z","Title":"Yoga"}]}`)
	})

	c := p.client(t, Options{})
	require.True(t, c.Login(context.Background()))

	bookings := c.FetchUpcomingBookings(context.Background())
	require.Len(t, bookings, 1)

	b := bookings[0]
	assert.Equal(t, "Yoga", b.Summary)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), b.Start)
	assert.False(t, b.HasEnd())
	assert.Equal(t, b.Start, b.EffectiveEnd())

	assert.Equal(t, "Bearer tok-1", auth)
	assert.Equal(t, "#/Classes/5/Calendar?date=2024-06-01", hash)
	assert.Contains(t, query, "start")
	assert.Equal(t, 1, p.count(calendarPath), "ranged variant should have answered")
	assert.Equal(t, calendarPath, c.LastBookingsPath())
}

func TestClient_BookingsFallBackAndDropUnusable(t *testing.T) {
	p := newFakePortal(t)
	p.status(calendarPath, http.StatusInternalServerError)
	p.json("/clientportal2/Booking/GetUpcomingBookings", `{
		"RecentItems":{"Items":[{"Title":"no start"}]},
		"FutureItems":{"Items":[
			{"Title":"Spin","StartTime":"2024-06-02T18:00:00Z","EndTime":"2024-06-02T18:45:00Z"},
			{"Name":"Swim","StartDate":1717351200}
		]}
	}`)
	p.json("/clientportal2/Booking/GetFutureBookings", `[{"Title":"never","Start":"2024-06-03"}]`)

	c := p.client(t, Options{})
	bookings := c.FetchUpcomingBookings(context.Background())

	require.Len(t, bookings, 2)
	assert.Equal(t, "Spin", bookings[0].Summary)
	assert.Equal(t, "Swim", bookings[1].Summary)
	for _, b := range bookings {
		assert.False(t, b.Start.IsZero())
	}

	assert.Equal(t, 2, p.count(calendarPath), "ranged and plain calendar variants")
	assert.Equal(t, 1, p.count("/clientportal2/Booking/GetUpcomingBookings"))
	assert.Zero(t, p.count("/clientportal2/Booking/GetFutureBookings"))
	assert.Equal(t, "/clientportal2/Booking/GetUpcomingBookings", c.LastBookingsPath())
}

func TestClient_BookingsNoEndpointFound(t *testing.T) {
	p := newFakePortal(t)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	c := p.client(t, Options{Logger: &logger})

	bookings := c.FetchUpcomingBookings(context.Background())
	assert.NotNil(t, bookings)
	assert.Empty(t, bookings)
	assert.Empty(t, c.LastBookingsPath())

	for _, path := range BookingPaths {
		assert.LessOrEqual(t, p.count(path), 2, path)
		assert.GreaterOrEqual(t, p.count(path), 1, path)
	}
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "report the portal's bookings API path")
	assert.Contains(t, buf.String(), string(CodeNoEndpointFound))
}

func TestClient_BookingsOverrideAndPreferredTriedFirst(t *testing.T) {
	p := newFakePortal(t)
	p.status("/custom/override", http.StatusNotFound)
	p.json("/custom/remembered", `[{"Title":"Box","StartTime":"2024-06-05T07:00:00Z"}]`)
	p.json(calendarPath, `[{"Title":"calendar","StartTime":"2024-06-05T07:00:00Z"}]`)

	c := p.client(t, Options{
		BookingsPath:          "/custom/override",
		PreferredBookingsPath: "/custom/remembered",
	})
	bookings := c.FetchUpcomingBookings(context.Background())

	require.Len(t, bookings, 1)
	assert.Equal(t, "Box", bookings[0].Summary)
	assert.Equal(t, 1, p.count("/custom/override"))
	assert.Zero(t, p.count(calendarPath))
	assert.Equal(t, "/custom/remembered", c.LastBookingsPath())
}

func TestClient_FetchOccupancy(t *testing.T) {
	p := newFakePortal(t)
	p.handle(occupancyPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("X-Hash") != "#/Clubs/MembersInClubs" {
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		writeJSON(w, `{"UsersInClubList":[
			{"ClubName":"Manchester","UsersCountCurrentlyInClub":41,"ClubId":5},
			{"ClubName":"Leeds","UsersCountCurrentlyInClub":"n/a","ClubId":8},
			{"ClubName":"York","UsersCountCurrentlyInClub":"9","ClubId":2}
		]}`)
	})

	c := p.client(t, Options{})
	report := c.FetchOccupancy(context.Background())

	require.Len(t, report.Clubs, 3)
	assert.Equal(t, 50, report.Total)
	assert.Equal(t, ClubOccupancy{Name: "Leeds", Members: 0, ID: 8}, report.Clubs[1])

	york, ok := report.Club(2)
	require.True(t, ok)
	assert.Equal(t, 9, york.Members)
}

func TestClient_FetchOccupancyFailureIsZero(t *testing.T) {
	p := newFakePortal(t)
	p.status(occupancyPath, http.StatusInternalServerError)

	report := p.client(t, Options{}).FetchOccupancy(context.Background())
	assert.NotNil(t, report.Clubs)
	assert.Empty(t, report.Clubs)
	assert.Zero(t, report.Total)

	p.json(occupancyPath, `{"Unexpected":true}`)
	report = p.client(t, Options{}).FetchOccupancy(context.Background())
	assert.Empty(t, report.Clubs)
	assert.Zero(t, report.Total)
}

func TestClient_FetchIdentity(t *testing.T) {
	p := newFakePortal(t)
	p.json(identityPath, `{"Member":{"Id":123,"FirstName":"Sam","HomeClubId":9,"DefaultClubId":9}}`)

	c := p.client(t, Options{})
	ident := c.FetchIdentity(context.Background())
	assert.Equal(t, int64(123), ident.UserID)
	assert.Equal(t, "Sam", ident.FirstName)
	assert.Equal(t, int64(9), ident.HomeClubID)

	p.status(identityPath, http.StatusForbidden)
	assert.True(t, c.FetchIdentity(context.Background()).IsEmpty())
}

func TestClient_FetchProfileEnrichedWithClubName(t *testing.T) {
	p := newFakePortal(t)

	var hash string
	var body map[string]any
	p.handle(profilePath, func(w http.ResponseWriter, r *http.Request) {
		hash = r.Header.Get("X-Hash")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		writeJSON(w, `{"Model":{"PersonalData":{"FirstName":"Sam","LastName":"Lee","Phone":{"PhoneNumber":"0777"}}}}`)
	})
	p.handle(productsPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "bad", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, `{"ClubName":"Manchester"}`)
	})

	c := p.client(t, Options{})
	profile := c.FetchProfile(context.Background(), 123)

	assert.Equal(t, "#/Profile/Edit?userId=123", hash)
	assert.Equal(t, map[string]any{"userId": float64(123)}, body)
	assert.Equal(t, Profile{
		UserID: 123, FirstName: "Sam", LastName: "Lee", Phone: "0777",
		FullName: "Sam Lee", ClubName: "Manchester",
	}, profile)
}

func TestClient_FetchProfileWithoutProducts(t *testing.T) {
	p := newFakePortal(t)
	p.json(profilePath, `{"Model":{"UserId":7,"PersonalData":{"Email":"x@example.com"}}}`)

	profile := p.client(t, Options{}).FetchProfile(context.Background(), 7)
	assert.Equal(t, "x@example.com", profile.Email)
	assert.Empty(t, profile.ClubName)

	p.status(profilePath, http.StatusUnauthorized)
	assert.True(t, p.client(t, Options{}).FetchProfile(context.Background(), 7).IsEmpty())
}

func TestClient_FetchContractsWithoutUserIDSkipsRequest(t *testing.T) {
	p := newFakePortal(t)
	p.json(identityPath, `{"Member":{}}`)
	p.json(contractsPath, `{"Contracts":[{"Id":1}]}`)

	report := p.client(t, Options{}).FetchContracts(context.Background(), 0)
	assert.NotNil(t, report.Contracts)
	assert.Empty(t, report.Contracts)
	assert.Nil(t, report.Active)
	assert.Equal(t, 1, p.count(identityPath))
	assert.Zero(t, p.count(contractsPath))
}

func TestClient_FetchContractsLooksUpUserID(t *testing.T) {
	p := newFakePortal(t)
	p.json(identityPath, `{"Member":{"Id":55}}`)

	var hash string
	var body map[string]any
	p.handle(contractsPath, func(w http.ResponseWriter, r *http.Request) {
		hash = r.Header.Get("X-Hash")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		writeJSON(w, `{"Contracts":[
			{"Id":2,"Name":"Current","NextPaymentDate":"2024-07-01T00:00:00Z","Cost":{"Gross":"24.99"}},
			{"Id":1,"Name":"Old"}
		]}`)
	})

	report := p.client(t, Options{}).FetchContracts(context.Background(), 0)
	assert.Equal(t, "#/Profile/Contract", hash)
	assert.Equal(t, map[string]any{"userId": float64(55)}, body)

	require.Len(t, report.Contracts, 2)
	require.NotNil(t, report.Active)
	assert.Equal(t, "Current", report.Active.Name)
	require.NotNil(t, report.Active.CostGross)
	assert.InDelta(t, 24.99, *report.Active.CostGross, 1e-9)
}

func TestClient_FetchContractsExplicitUserIDSkipsIdentity(t *testing.T) {
	p := newFakePortal(t)
	p.status(contractsPath, http.StatusInternalServerError)

	report := p.client(t, Options{}).FetchContracts(context.Background(), 9)
	assert.Empty(t, report.Contracts)
	assert.Nil(t, report.Active)
	assert.Zero(t, p.count(identityPath))
	assert.Equal(t, 1, p.count(contractsPath))
}

func TestClient_FetchProductsForUser(t *testing.T) {
	p := newFakePortal(t)
	p.json(productsPath, `{"ClubName":"Leeds","Products":[]}`)
	assert.Equal(t, Products{ClubName: "Leeds"}, p.client(t, Options{}).FetchProductsForUser(context.Background()))

	p.json(productsPath, `not json`)
	assert.Equal(t, Products{}, p.client(t, Options{}).FetchProductsForUser(context.Background()))
}

func TestClient_LoginFailure(t *testing.T) {
	p := newFakePortal(t)
	p.status(loginPath, http.StatusBadRequest)

	c := p.client(t, Options{})
	assert.False(t, c.Login(context.Background()))
	assert.Empty(t, c.Session().Token())
}

func TestClient_UseHomeClub(t *testing.T) {
	p := newFakePortal(t)
	p.json(identityPath, `{"Member":{"Id":1,"HomeClubId":9}}`)

	var hash string
	p.handle(calendarPath, func(w http.ResponseWriter, r *http.Request) {
		hash = r.Header.Get("X-Hash")
		writeJSON(w, `[]`)
	})

	c := p.client(t, Options{})
	assert.Equal(t, DefaultClubID, c.ClubID())
	assert.True(t, c.UseHomeClub(context.Background()))
	assert.Equal(t, int64(9), c.ClubID())

	c.FetchUpcomingBookings(context.Background())
	assert.Equal(t, "#/Classes/9/Calendar?date=2024-06-01", hash)

	configured := p.client(t, Options{ClubID: 3})
	assert.False(t, configured.UseHomeClub(context.Background()))
	assert.Equal(t, int64(3), configured.ClubID())
}

func TestClient_ConcurrentCallsShareSession(t *testing.T) {
	p := newFakePortal(t)
	p.json(occupancyPath, `[{"Name":"A","Count":2},{"Name":"B","Count":3}]`)
	p.json(identityPath, `{"Member":{"Id":4}}`)

	c := p.client(t, Options{})
	require.True(t, c.Login(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.Equal(t, 5, c.FetchOccupancy(context.Background()).Total)
		}()
		go func() {
			defer wg.Done()
			assert.Equal(t, int64(4), c.FetchIdentity(context.Background()).UserID)
		}()
	}
	wg.Wait()
	assert.Equal(t, "tok-1", c.Session().Token())
}
