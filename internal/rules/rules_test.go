package rules

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runesbridge/staking-pipeline/internal/models"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		instant  time.Time
		rule     int
		category models.Category
	}{
		{
			name:     "Long before June 17",
			instant:  time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC),
			rule:     1,
			category: models.CategorySoldBeforeJune17,
		},
		{
			name:     "Last nanosecond before June 17",
			instant:  June17.Add(-time.Nanosecond),
			rule:     1,
			category: models.CategorySoldBeforeJune17,
		},
		{
			name:     "Exactly June 17",
			instant:  June17,
			rule:     2,
			category: models.CategoryPurchasedBeforeAugust1AndSoldAfterJune17,
		},
		{
			name:     "Mid July",
			instant:  time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC),
			rule:     2,
			category: models.CategoryPurchasedBeforeAugust1AndSoldAfterJune17,
		},
		{
			name:     "Exactly August 1",
			instant:  August1,
			rule:     3,
			category: models.CategoryPurchasedAfterJuly22,
		},
		{
			name:     "June 17 in another zone is still compared as an instant",
			instant:  time.Date(2024, 6, 17, 1, 0, 0, 0, time.FixedZone("CET", 2*60*60)),
			rule:     1,
			category: models.CategorySoldBeforeJune17,
		},
		{
			name:     "Far future",
			instant:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			rule:     3,
			category: models.CategoryPurchasedAfterJuly22,
		},
	}

	classifier := NewClassifier()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := classifier.Classify(tt.instant)
			require.True(t, ok)
			assert.Equal(t, tt.rule, r.Number)
			assert.Equal(t, tt.category, r.Category)
		})
	}
}

func TestClassifyEarliestInstant(t *testing.T) {
	r, ok := NewClassifier().Classify(time.Time{})
	require.True(t, ok)
	assert.Equal(t, 1, r.Number)
}

func TestClassifyNoMatchingRule(t *testing.T) {
	only := Default()[1:2]
	_, ok := NewClassifierWithRules(only).Classify(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestApply(t *testing.T) {
	t.Parallel()

	amount := decimal.RequireFromString("100.10")

	tests := []struct {
		rule    int
		staking string
	}{
		{rule: 1, staking: "50.05"},
		{rule: 2, staking: "25.025"},
		{rule: 3, staking: "50.05"},
	}

	for _, tt := range tests {
		t.Run(Default()[tt.rule-1].Label(), func(t *testing.T) {
			staking, reward := Default()[tt.rule-1].Apply(amount)
			assert.True(t, decimal.RequireFromString(tt.staking).Equal(staking), "staking %s", staking)
			assert.True(t, amount.Equal(reward), "reward %s", reward)
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Rule 2: purchasedBeforeAugust1AndSoldAfterJune17", Default()[1].Label())
}
