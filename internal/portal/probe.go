package portal

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// Candidate is one request that may serve a capability.
type Candidate struct {
	Method string
	Path   string
	Header http.Header
}

// FirstUsable calls try for each candidate in order and returns the first
// result try accepts, along with the index of the candidate that produced it.
// Later candidates are not tried. index is -1 when none was accepted.
func FirstUsable[C, R any](candidates []C, try func(C) (R, bool)) (result R, index int) {
	for i, c := range candidates {
		if r, ok := try(c); ok {
			return r, i
		}
	}
	var zero R
	return zero, -1
}

// Prober finds the first candidate endpoint that answers with usable items.
type Prober struct {
	session *Session
	shape   Shape
}

// NewProber returns a prober that extracts items with shape.
func NewProber(session *Session, shape Shape) *Prober {
	return &Prober{session: session, shape: shape}
}

// ProbeResult is the winning candidate and its extracted items.
type ProbeResult struct {
	Candidate Candidate
	Items     []Record
}

// Probe tries each candidate once, in order, and stops at the first 200
// response whose JSON body yields at least one item. Failed candidates are
// logged at debug level. Exhausting every candidate returns a
// CodeNoEndpointFound error.
func (p *Prober) Probe(ctx context.Context, candidates []Candidate) (ProbeResult, error) {
	logger := zerolog.Ctx(ctx)
	res, idx := FirstUsable(candidates, func(c Candidate) (ProbeResult, bool) {
		items, err := p.try(ctx, c)
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Path).Msg("candidate endpoint unusable")
			return ProbeResult{}, false
		}
		return ProbeResult{Candidate: c, Items: items}, true
	})
	if idx < 0 {
		return ProbeResult{}, newError(CodeNoEndpointFound, "no candidate endpoint returned items")
	}
	logger.Debug().Str("path", res.Candidate.Path).Int("items", len(res.Items)).Msg("candidate endpoint selected")
	return res, nil
}

func (p *Prober) try(ctx context.Context, c Candidate) ([]Record, error) {
	resp, err := p.session.Do(ctx, Request{Method: c.Method, Path: c.Path, Header: c.Header})
	if err != nil {
		return nil, wrapError(CodeEndpointUnavailable, "request failed", err).at(c.Path, 0)
	}
	if resp.Status != http.StatusOK {
		return nil, newError(CodeEndpointUnavailable, "unexpected status").at(c.Path, resp.Status)
	}
	payload, err := resp.JSON()
	if err != nil {
		return nil, wrapError(CodeEndpointUnavailable, "invalid json", err).at(c.Path, resp.Status)
	}
	items, _ := p.shape.ExtractItems(payload)
	if len(items) == 0 {
		return nil, newError(CodeEndpointUnavailable, "no items in response").at(c.Path, resp.Status)
	}
	return items, nil
}
