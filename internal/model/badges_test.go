package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeSetKeepsDistinctSortedLabels(t *testing.T) {
	set := NewBadgeSet(BadgeSilverValidator, BadgeBronzeValidator, " ", BadgeSilverValidator)

	assert.Equal(t, []string{BadgeBronzeValidator, BadgeSilverValidator}, set.Labels())
	assert.True(t, set.Has(BadgeBronzeValidator))
	assert.False(t, set.Has(BadgeGoldValidator))
	assert.True(t, set.Equal(NewBadgeSet(BadgeBronzeValidator, BadgeSilverValidator)))
}

func TestBadgeSetUnionIsMonotonic(t *testing.T) {
	earned := NewBadgeSet(BadgeSilverValidator, "Founder")
	merged := earned.Union(BadgesForScore(120))

	assert.True(t, merged.Has("Founder"))
	assert.True(t, merged.Has(BadgeSilverValidator))
	assert.True(t, merged.Has(BadgeBronzeValidator))
	assert.Equal(t, []string{BadgeBronzeValidator}, merged.Added(earned))
}

func TestBadgesForScoreThresholds(t *testing.T) {
	assert.Empty(t, BadgesForScore(99))
	assert.Equal(t, []string{BadgeBronzeValidator}, BadgesForScore(100).Labels())
	assert.Equal(t, []string{BadgeBronzeValidator, BadgeSilverValidator}, BadgesForScore(500).Labels())
	assert.Equal(t, []string{BadgeBronzeValidator, BadgeGoldValidator, BadgeSilverValidator}, BadgesForScore(1000).Labels())
}

func TestBadgeSetScanAndValue(t *testing.T) {
	var set BadgeSet
	require.NoError(t, set.Scan("Silver Validator, Bronze Validator,,"))
	assert.Equal(t, []string{BadgeBronzeValidator, BadgeSilverValidator}, set.Labels())

	v, err := set.Value()
	require.NoError(t, err)
	assert.Equal(t, "Bronze Validator,Silver Validator", v)

	require.NoError(t, set.Scan(nil))
	assert.Empty(t, set)

	assert.Error(t, set.Scan(42))
}

func TestBadgeSetJSONIsAlwaysAnArray(t *testing.T) {
	var empty BadgeSet
	raw, err := empty.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	var decoded BadgeSet
	require.NoError(t, decoded.UnmarshalJSON([]byte(`["Gold Validator","Bronze Validator","Gold Validator"]`)))
	assert.Equal(t, []string{BadgeBronzeValidator, BadgeGoldValidator}, decoded.Labels())
}
