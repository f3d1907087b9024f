// Package filter models vector-store pre-filters as must/should/must_not groups.
package filter

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Expression is a structured filter with must/should/must_not boolean semantics.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// MarshalJSON renders the expression for debug output.
func (e Expression) MarshalJSON() ([]byte, error) {
	type group struct {
		Must    []Condition `json:"must,omitempty"`
		Should  []Condition `json:"should,omitempty"`
		MustNot []Condition `json:"must_not,omitempty"`
	}
	return json.Marshal(group{Must: e.must, Should: e.should, MustNot: e.mustNot})
}

// Condition is a single filter clause: a tag match, an any-of tag match or a numeric range.
type Condition struct {
	key       string
	match     string
	anyOf     []string
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewMatchAny creates a tag condition satisfied by any of the values.
func NewMatchAny(key string, values []string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for key %q", key)
	}
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("empty value in any-of match for key %q", key)
		}
	}
	return Condition{key: key, anyOf: append([]string(nil), values...)}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// AnyOf returns the values of an any-of match.
func (c Condition) AnyOf() []string { return c.anyOf }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsMatchAny reports whether this is an any-of match condition.
func (c Condition) IsMatchAny() bool { return len(c.anyOf) > 0 }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// MarshalJSON renders the condition as {"key", "match"|"range"}.
func (c Condition) MarshalJSON() ([]byte, error) {
	type match struct {
		Value string   `json:"value,omitempty"`
		Any   []string `json:"any,omitempty"`
	}
	type cond struct {
		Key   string `json:"key"`
		Match *match `json:"match,omitempty"`
		Range *Range `json:"range,omitempty"`
	}
	out := cond{Key: c.key, Range: c.rangeExpr}
	switch {
	case c.IsMatch():
		out.Match = &match{Value: c.match}
	case c.IsMatchAny():
		out.Match = &match{Any: c.anyOf}
	}
	return json.Marshal(out)
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// MarshalJSON renders only the set boundaries.
func (r Range) MarshalJSON() ([]byte, error) {
	type bounds struct {
		GT  *float64 `json:"gt,omitempty"`
		GTE *float64 `json:"gte,omitempty"`
		LT  *float64 `json:"lt,omitempty"`
		LTE *float64 `json:"lte,omitempty"`
	}
	return json.Marshal(bounds{GT: r.gt, GTE: r.gte, LT: r.lt, LTE: r.lte})
}
