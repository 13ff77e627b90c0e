package portal

import (
	"sort"
	"strconv"
)

// Shape describes the envelopes one family of endpoints wraps its items in.
// ExtractItems checks them in field order: a bare list, then ListKeys, then
// Sections, then IndexedRecords, then RecordMarkers.
type Shape struct {
	// ListKeys are object keys whose list value is the item list, by priority.
	ListKeys []string
	// Sections are object keys whose value is itself an object holding a
	// list under SectionItemsKey. Their lists are concatenated in this order.
	Sections        []string
	SectionItemsKey string
	// IndexedRecords accepts an object keyed "0", "1", ... whose values are items.
	IndexedRecords bool
	// RecordMarkers identify an object that is a single item rather than an envelope.
	RecordMarkers []string
}

// BookingShape covers the envelopes seen across the bookings endpoints.
var BookingShape = Shape{
	ListKeys:        []string{"Bookings", "Items", "Data", "Result", "results"},
	Sections:        []string{"RecentItems", "FutureItems", "PastItems"},
	SectionItemsKey: "Items",
	RecordMarkers:   []string{"Start", "StartDate", "StartTime"},
}

// OccupancyShape covers the members-in-clubs endpoint.
var OccupancyShape = Shape{
	ListKeys:       []string{"Clubs", "Items", "Data", "Result", "results", "UsersInClubList"},
	IndexedRecords: true,
}

// ExtractItems locates the item list inside payload. ok is false when no
// known shape matched; a matched shape may still hold zero items. List
// elements that are not JSON objects are skipped.
func (s Shape) ExtractItems(payload any) (items []Record, ok bool) {
	switch v := payload.(type) {
	case []any:
		return records(v), true
	case map[string]any:
		return s.fromObject(Record(v))
	case Record:
		return s.fromObject(v)
	}
	return nil, false
}

func (s Shape) fromObject(obj Record) ([]Record, bool) {
	for _, key := range s.ListKeys {
		if list, isList := obj[key].([]any); isList {
			return records(list), true
		}
	}

	var sectioned []Record
	for _, section := range s.Sections {
		sec, isObj := asRecord(obj[section])
		if !isObj {
			continue
		}
		if list, isList := sec[s.SectionItemsKey].([]any); isList {
			sectioned = append(sectioned, records(list)...)
		}
	}
	if len(sectioned) > 0 {
		return sectioned, true
	}

	if s.IndexedRecords {
		if _, isObj := asRecord(obj["0"]); isObj {
			return indexed(obj), true
		}
	}

	for _, marker := range s.RecordMarkers {
		if _, has := obj[marker]; has {
			return []Record{obj}, true
		}
	}
	return nil, false
}

func records(list []any) []Record {
	out := make([]Record, 0, len(list))
	for _, v := range list {
		if rec, ok := asRecord(v); ok {
			out = append(out, rec)
		}
	}
	return out
}

// indexed returns the object values of an index-keyed object ordered by
// numeric key, with any non-numeric keys after them in lexical order.
func indexed(obj Record) []Record {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, errI := strconv.Atoi(keys[i])
		nj, errJ := strconv.Atoi(keys[j])
		switch {
		case errI == nil && errJ == nil:
			return ni < nj
		case errI == nil:
			return true
		case errJ == nil:
			return false
		}
		return keys[i] < keys[j]
	})
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		if rec, ok := asRecord(obj[k]); ok {
			out = append(out, rec)
		}
	}
	return out
}
