package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// FieldState classifies how a single request field was understood.
type FieldState int

const (
	// FieldAbsent means the field was missing or null.
	FieldAbsent FieldState = iota
	// FieldInvalid means the field was present but is not honored.
	FieldInvalid
	// FieldValid means the field was present and is honored.
	FieldValid
)

func (s FieldState) String() string {
	switch s {
	case FieldInvalid:
		return "invalid"
	case FieldValid:
		return "valid"
	default:
		return "absent"
	}
}

// SortKey names a sortable product attribute.
type SortKey string

const (
	SortID       SortKey = "id"
	SortPrice    SortKey = "price"
	SortName     SortKey = "name"
	SortRating   SortKey = "rating"
	SortDiscount SortKey = "discount"
)

// SortOrder is the direction applied on top of a key's base comparator.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortKey reports whether s is one of the sortable keys.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(s); k {
	case SortID, SortPrice, SortName, SortRating, SortDiscount:
		return k, true
	}
	return "", false
}

// Range bounds a numeric attribute. Nil bounds are not applied.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Active reports whether at least one bound is set.
func (r Range) Active() bool {
	return r.Min != nil || r.Max != nil
}

func (r Range) contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// FilterRequest is the validated form of a filter call.
//
// Zero values mean "not applied": an empty Categories list, inactive ranges,
// a non-positive Rating, an empty Search and an empty SortBy. Page and Limit
// keep the parsed integers; Query turns zero into the defaults and clamps.
type FilterRequest struct {
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Categories []int     `json:"categories,omitempty"`
	Price      Range     `json:"price"`
	Discount   Range     `json:"discount"`
	Rating     float64   `json:"rating,omitempty"`
	Search     string    `json:"search,omitempty"`
	SortBy     SortKey   `json:"sortBy,omitempty"`
	SortOrder  SortOrder `json:"sortOrder,omitempty"`

	State FieldStates `json:"-"`
}

// FieldStates records the classification of every request field.
type FieldStates struct {
	Page       FieldState
	Limit      FieldState
	Categories FieldState
	Price      FieldState
	Discount   FieldState
	Rating     FieldState
	Search     FieldState
	SortBy     FieldState
	SortOrder  FieldState
}

// RawFilterRequest is the loosely typed request body as sent by clients.
type RawFilterRequest struct {
	Page       json.RawMessage `json:"page"`
	Limit      json.RawMessage `json:"limit"`
	Categories json.RawMessage `json:"categories"`
	Price      json.RawMessage `json:"price"`
	Discount   json.RawMessage `json:"discount"`
	Rating     json.RawMessage `json:"rating"`
	Search     json.RawMessage `json:"search"`
	SortBy     json.RawMessage `json:"sortBy"`
	SortOrder  json.RawMessage `json:"sortOrder"`
}

// DecodeFilterRequest decodes a JSON request body. An empty body is an empty
// request. Only a body that is not a JSON object is an error; fields of the
// wrong type are classified as invalid instead.
func DecodeFilterRequest(body []byte) (FilterRequest, error) {
	var raw RawFilterRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return ParseFilterRequest(raw), nil
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return FilterRequest{}, fmt.Errorf("decode filter request: %w", err)
	}
	return ParseFilterRequest(raw), nil
}

// ParseFilterRequest classifies every raw field once.
func ParseFilterRequest(raw RawFilterRequest) FilterRequest {
	var req FilterRequest

	req.Page, req.State.Page = parseIntField(raw.Page)
	req.Limit, req.State.Limit = parseIntField(raw.Limit)
	req.Categories, req.State.Categories = parseCategories(raw.Categories)
	req.Price, req.State.Price = parseRange(raw.Price)
	req.Discount, req.State.Discount = parseRange(raw.Discount)

	if v, st := decodeField(raw.Rating); st != FieldAbsent {
		req.State.Rating = FieldInvalid
		if n, ok := toFloat(v); ok && n > 0 {
			req.Rating = n
			req.State.Rating = FieldValid
		}
	}

	if v, st := decodeField(raw.Search); st != FieldAbsent {
		req.State.Search = FieldInvalid
		if s, ok := v.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				req.Search = trimmed
				req.State.Search = FieldValid
			}
		}
	}

	if v, st := decodeField(raw.SortBy); st != FieldAbsent {
		req.State.SortBy = FieldInvalid
		if s, ok := v.(string); ok {
			if key, ok := ParseSortKey(s); ok {
				req.SortBy = key
				req.State.SortBy = FieldValid
			}
		}
	}

	if v, st := decodeField(raw.SortOrder); st != FieldAbsent {
		req.State.SortOrder = FieldInvalid
		if s, ok := v.(string); ok && (s == string(SortAsc) || s == string(SortDesc)) {
			req.SortOrder = SortOrder(s)
			req.State.SortOrder = FieldValid
		}
	}

	return req
}

// Fingerprint identifies the effective request, so two bodies that produce
// the same result share a fingerprint.
func (r FilterRequest) Fingerprint() string {
	n := r
	n.Page, n.Limit = normalizePage(r.Page, r.Limit, maxPageSize)
	n.SortOrder = effectiveOrder(r.SortOrder)
	b, _ := json.Marshal(n)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// decodeField returns the decoded JSON value of a raw field. Missing and null
// fields are absent. Numbers stay json.Number so one out-of-range entry does
// not invalidate the list around it.
func decodeField(raw json.RawMessage) (any, FieldState) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, FieldAbsent
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, FieldInvalid
	}
	return v, FieldValid
}

// toFloat accepts finite JSON numbers.
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseIntField(raw json.RawMessage) (int, FieldState) {
	v, st := decodeField(raw)
	if st != FieldValid {
		return 0, st
	}
	n, ok := ParseInt(v)
	if !ok {
		return 0, FieldInvalid
	}
	return n, FieldValid
}

func parseCategories(raw json.RawMessage) ([]int, FieldState) {
	v, st := decodeField(raw)
	if st != FieldValid {
		return nil, st
	}
	items, ok := v.([]any)
	if !ok {
		return nil, FieldInvalid
	}
	if len(items) == 0 {
		return nil, FieldAbsent
	}
	ids := make([]int, 0, len(items))
	for _, item := range items {
		if id, ok := ParseInt(item); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, FieldInvalid
	}
	return ids, FieldValid
}

func parseRange(raw json.RawMessage) (Range, FieldState) {
	v, st := decodeField(raw)
	if st != FieldValid {
		return Range{}, st
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Range{}, FieldInvalid
	}
	var r Range
	if n, ok := toFloat(obj["min"]); ok {
		r.Min = &n
	}
	if n, ok := toFloat(obj["max"]); ok {
		r.Max = &n
	}
	if !r.Active() {
		return Range{}, FieldInvalid
	}
	return r, FieldValid
}

// ParseInt coerces a decoded JSON value to an integer the way a browser's
// parseInt does for the values clients send: numbers are truncated, strings
// are read up to the first non-digit. Anything else is rejected.
//
// Numbers that print in exponent form (1e21 and up, or below 1e-6) are read
// from that form, so 1e300 is 1 and 5e-7 is 5.
func ParseInt(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		return parseLeadingInt(x)
	case float64, json.Number:
		f, ok := toFloat(x)
		if !ok {
			return 0, false
		}
		if abs := math.Abs(f); abs >= 1e21 || (abs != 0 && abs < 1e-6) {
			return parseLeadingInt(strconv.FormatFloat(f, 'g', -1, 64))
		}
		return clampInt(math.Trunc(f)), true
	}
	return 0, false
}

func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base := 10
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}
	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], base, 64)
	if err != nil {
		// Only a range error is possible here; saturate.
		n = math.MaxInt64
	}
	f := float64(n)
	if neg {
		f = -f
	}
	return clampInt(f), true
}

func isDigit(c byte, base int) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	if base == 16 {
		return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	}
	return false
}

// clampInt keeps parsed values inside int32 so page arithmetic cannot overflow.
func clampInt(f float64) int {
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}
