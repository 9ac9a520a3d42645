package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	BadgeBronzeValidator = "Bronze Validator"
	BadgeSilverValidator = "Silver Validator"
	BadgeGoldValidator   = "Gold Validator"
)

// BadgeThreshold pairs a badge with the minimum cumulative score unlocking it.
type BadgeThreshold struct {
	Badge    string
	MinScore int
}

// BadgeThresholds is ordered by ascending score.
var BadgeThresholds = []BadgeThreshold{
	{Badge: BadgeBronzeValidator, MinScore: 100},
	{Badge: BadgeSilverValidator, MinScore: 500},
	{Badge: BadgeGoldValidator, MinScore: 1000},
}

// BadgesForScore returns the badges a score qualifies for.
func BadgesForScore(score int) BadgeSet {
	var set BadgeSet
	for _, t := range BadgeThresholds {
		if score >= t.MinScore {
			set = set.With(t.Badge)
		}
	}
	return set
}

// BadgeSet is a set of distinct badge labels. It is stored as comma-joined
// text; the slice is always kept sorted and duplicate free.
type BadgeSet []string

func NewBadgeSet(labels ...string) BadgeSet {
	var set BadgeSet
	for _, l := range labels {
		set = set.With(l)
	}
	return set
}

func (s BadgeSet) Has(label string) bool {
	i := sort.SearchStrings(s, label)
	return i < len(s) && s[i] == label
}

// With returns a set containing label in addition to the members of s.
func (s BadgeSet) With(label string) BadgeSet {
	label = strings.TrimSpace(label)
	if label == "" || s.Has(label) {
		return s
	}
	out := make(BadgeSet, 0, len(s)+1)
	out = append(out, s...)
	out = append(out, label)
	sort.Strings(out)
	return out
}

// Union never drops a member of s.
func (s BadgeSet) Union(other BadgeSet) BadgeSet {
	out := s
	for _, l := range other {
		out = out.With(l)
	}
	return out
}

// Added returns the members of s missing from before.
func (s BadgeSet) Added(before BadgeSet) []string {
	var added []string
	for _, l := range s {
		if !before.Has(l) {
			added = append(added, l)
		}
	}
	return added
}

func (s BadgeSet) Equal(other BadgeSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s BadgeSet) Labels() []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func (s BadgeSet) String() string {
	return strings.Join(s, ",")
}

// MarshalJSON renders the set as an array, never null.
func (s BadgeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Labels())
}

func (s *BadgeSet) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*s = NewBadgeSet(labels...)
	return nil
}

func (BadgeSet) GormDataType() string {
	return "text"
}

func (s BadgeSet) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *BadgeSet) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into BadgeSet", src)
	}
	*s = NewBadgeSet(strings.Split(raw, ",")...)
	return nil
}
