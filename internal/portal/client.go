package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fetcher defines the portal operations a host polls.
// This interface is implemented by *Client and can be used for testing.
type Fetcher interface {
	Login(ctx context.Context) bool
	FetchUpcomingBookings(ctx context.Context) []Booking
	FetchOccupancy(ctx context.Context) OccupancyReport
	FetchIdentity(ctx context.Context) Identity
	FetchProfile(ctx context.Context, userID int64) Profile
	FetchContracts(ctx context.Context, userID int64) ContractsReport
	FetchProductsForUser(ctx context.Context) Products
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Options configure a Client.
type Options struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL     string
	Credentials Credentials
	// BookingsPath is tried before every other bookings candidate.
	BookingsPath string
	// PreferredBookingsPath is a previously discovered working path, tried
	// right after BookingsPath.
	PreferredBookingsPath string
	// ClubID selects the club for the calendar view. Zero means the home club
	// once UseHomeClub has run, else DefaultClubID.
	ClubID     int64
	HTTPClient *http.Client
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
	Now    func() time.Time
}

// Client is the portal facade. Every public operation authenticates and
// picks endpoints on its own, and none of them returns an error: remote
// failures degrade to an empty or zero result plus a log entry.
type Client struct {
	session    *Session
	bookings   *Prober
	creds      Credentials
	paths      []string
	clubID     int64
	homeClubID atomic.Int64
	lastPath   atomic.Pointer[string]
	log        zerolog.Logger
	now        func() time.Time
}

// NewClient builds a Client. It fails only on an unusable base URL.
func NewClient(opts Options) (*Client, error) {
	session, err := NewSession(opts.BaseURL, opts.HTTPClient)
	if err != nil {
		return nil, err
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	paths := make([]string, 0, len(BookingPaths)+2)
	for _, p := range []string{opts.BookingsPath, opts.PreferredBookingsPath} {
		if strings.TrimSpace(p) != "" {
			paths = append(paths, p)
		}
	}
	paths = append(paths, BookingPaths...)

	return &Client{
		session:  session,
		bookings: NewProber(session, BookingShape),
		creds:    opts.Credentials,
		paths:    paths,
		clubID:   opts.ClubID,
		log:      logger.With().Str("component", "portal").Logger(),
		now:      now,
	}, nil
}

// Session exposes the underlying session.
func (c *Client) Session() *Session {
	return c.session
}

// ClubID returns the club used for the calendar view hash.
func (c *Client) ClubID() int64 {
	if c.clubID != 0 {
		return c.clubID
	}
	if home := c.homeClubID.Load(); home != 0 {
		return home
	}
	return DefaultClubID
}

// LastBookingsPath returns the bookings path that last produced data, without
// its query string, or "" before the first successful fetch.
func (c *Client) LastBookingsPath() string {
	if p := c.lastPath.Load(); p != nil {
		return *p
	}
	return ""
}

// Login authenticates with the configured credentials.
func (c *Client) Login(ctx context.Context) bool {
	ctx, logger := c.begin(ctx, "login")
	if err := c.session.Login(ctx, c.creds); err != nil {
		logger.Error().Err(err).Msg("login failed")
		return false
	}
	logger.Debug().Bool("token", c.session.Token() != "").Msg("logged in")
	return true
}

// UseHomeClub adopts the member's home club for the calendar view when no
// club was configured. It reports whether a home club was found.
func (c *Client) UseHomeClub(ctx context.Context) bool {
	if c.clubID != 0 {
		return false
	}
	ident := c.FetchIdentity(ctx)
	if ident.HomeClubID == 0 {
		return false
	}
	c.homeClubID.Store(ident.HomeClubID)
	return true
}

// FetchUpcomingBookings returns upcoming bookings from the first candidate
// endpoint that serves any. Bookings without a start time are dropped. The
// result is empty, never nil, when no endpoint answers.
func (c *Client) FetchUpcomingBookings(ctx context.Context) []Booking {
	ctx, logger := c.begin(ctx, "bookings")
	c.session.EnsureAuthRefreshed()

	candidates := bookingCandidates(c.paths, c.ClubID(), c.now())
	res, err := c.bookings.Probe(ctx, candidates)
	if err != nil {
		logger.Warn().Err(err).Int("candidates", len(candidates)).
			Msg("no known bookings endpoint returned data; enable debug logs and report the portal's bookings API path")
		return []Booking{}
	}

	bookings := make([]Booking, 0, len(res.Items))
	for _, raw := range res.Items {
		b, err := MapBooking(raw)
		if err != nil {
			logger.Debug().Err(err).Msg("dropping booking")
			continue
		}
		bookings = append(bookings, b)
	}
	path, _, _ := strings.Cut(res.Candidate.Path, "?")
	c.lastPath.Store(&path)
	logger.Debug().Str("path", res.Candidate.Path).Int("bookings", len(bookings)).Msg("fetched bookings")
	return bookings
}

// FetchOccupancy returns how many members are in each club. Any failure
// yields a report with no clubs and a zero total.
func (c *Client) FetchOccupancy(ctx context.Context) OccupancyReport {
	ctx, logger := c.begin(ctx, "occupancy")
	c.session.EnsureAuthRefreshed()

	payload, err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   occupancyPath,
		Header: http.Header{headerHash: {"#/Clubs/MembersInClubs"}},
	})
	if err != nil {
		logger.Error().Err(err).Msg("occupancy fetch failed")
		return newOccupancyReport([]ClubOccupancy{})
	}
	items, _ := OccupancyShape.ExtractItems(payload)
	clubs := make([]ClubOccupancy, 0, len(items))
	for _, raw := range items {
		clubs = append(clubs, MapClubOccupancy(raw))
	}
	report := newOccupancyReport(clubs)
	logger.Debug().Int("clubs", len(report.Clubs)).Int("total", report.Total).Msg("fetched occupancy")
	return report
}

// FetchIdentity returns the logged-in member, or an empty Identity.
func (c *Client) FetchIdentity(ctx context.Context) Identity {
	ctx, logger := c.begin(ctx, "identity")
	c.session.EnsureAuthRefreshed()

	payload, err := c.call(ctx, Request{Method: http.MethodPost, Path: identityPath})
	if err != nil {
		logger.Error().Err(err).Msg("identity fetch failed")
		return Identity{}
	}
	rec, _ := asRecord(payload)
	return MapIdentity(rec)
}

// FetchProfile returns the member's profile enriched with their club name,
// or an empty Profile. A zero userID sends the request without user context,
// which most deployments reject.
func (c *Client) FetchProfile(ctx context.Context, userID int64) Profile {
	ctx, logger := c.begin(ctx, "profile")
	c.session.EnsureAuthRefreshed()

	req := Request{Method: http.MethodPost, Path: profilePath}
	if userID != 0 {
		req.Header = http.Header{headerHash: {"#/Profile/Edit?userId=" + strconv.FormatInt(userID, 10)}}
		req.Body = userBody(userID)
	}
	payload, err := c.call(ctx, req)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Msg("profile fetch failed")
		return Profile{}
	}
	rec, _ := asRecord(payload)
	profile := MapProfile(rec, userID)
	if products := c.FetchProductsForUser(ctx); products.ClubName != "" {
		profile.ClubName = products.ClubName
	}
	return profile
}

// FetchContracts returns the member's contracts in portal order. When userID
// is zero it is looked up via FetchIdentity; if that yields nothing the
// report is empty and no contracts request is made.
func (c *Client) FetchContracts(ctx context.Context, userID int64) ContractsReport {
	if userID == 0 {
		userID = c.FetchIdentity(ctx).UserID
	}
	ctx, logger := c.begin(ctx, "contracts")
	if userID == 0 {
		err := newError(CodeMissingPrerequisite, "no user id available")
		logger.Warn().Err(err).Msg("contracts fetch skipped")
		return newContractsReport([]Contract{})
	}
	c.session.EnsureAuthRefreshed()

	payload, err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   contractsPath,
		Header: http.Header{headerHash: {"#/Profile/Contract"}},
		Body:   userBody(userID),
	})
	if err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Msg("contracts fetch failed")
		return newContractsReport([]Contract{})
	}
	rec, _ := asRecord(payload)
	return newContractsReport(MapContracts(rec))
}

// FetchProductsForUser returns the member's club name from the products
// lookup, or an empty Products.
func (c *Client) FetchProductsForUser(ctx context.Context) Products {
	ctx, logger := c.begin(ctx, "products")
	c.session.EnsureAuthRefreshed()

	payload, err := c.call(ctx, Request{Method: http.MethodGet, Path: productsPath})
	if err != nil {
		logger.Error().Err(err).Msg("products fetch failed")
		return Products{}
	}
	rec, _ := asRecord(payload)
	return MapProducts(rec)
}

// call performs a single-endpoint request and decodes its JSON body.
func (c *Client) call(ctx context.Context, req Request) (any, error) {
	resp, err := c.session.Do(ctx, req)
	if err != nil {
		return nil, wrapError(CodeEndpointUnavailable, "request failed", err).at(req.Path, 0)
	}
	if resp.Status != http.StatusOK {
		return nil, newError(CodeEndpointUnavailable, "unexpected status: "+resp.Snippet()).at(req.Path, resp.Status)
	}
	zerolog.Ctx(ctx).Debug().Str("path", req.Path).Str("body", resp.Snippet()).Msg("portal response")
	payload, err := resp.JSON()
	if err != nil {
		return nil, wrapError(CodeEndpointUnavailable, "invalid json", err).at(req.Path, resp.Status)
	}
	return payload, nil
}

func (c *Client) begin(ctx context.Context, op string) (context.Context, *zerolog.Logger) {
	logger := c.log.With().Str("op", op).Str("call_id", uuid.NewString()).Logger()
	return logger.WithContext(ctx), &logger
}

func userBody(userID int64) []byte {
	body, _ := json.Marshal(map[string]int64{"userId": userID})
	return body
}
