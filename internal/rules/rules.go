package rules

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/runesbridge/staking-pipeline/internal/models"
)

// Window boundaries. Each lower bound is inclusive, each upper bound exclusive.
var (
	June17  = time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)
	August1 = time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
)

// Rule maps transactions dated inside [From, Until) to staking and reward
// fractions of their amount. A zero From or Until leaves that side open.
type Rule struct {
	Number          int
	Category        models.Category
	From            time.Time
	Until           time.Time
	StakingFraction decimal.Decimal
	RewardFraction  decimal.Decimal
}

// Contains reports whether t falls inside the rule's window.
func (r Rule) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.Until.IsZero() && !t.Before(r.Until) {
		return false
	}
	return true
}

// Apply splits amount into its staking and reward parts.
func (r Rule) Apply(amount decimal.Decimal) (staking, reward decimal.Decimal) {
	return amount.Mul(r.StakingFraction), amount.Mul(r.RewardFraction)
}

// Label is the human readable rule name, e.g. "Rule 1: soldBeforeJune17".
func (r Rule) Label() string {
	return fmt.Sprintf("Rule %d: %s", r.Number, r.Category)
}

// Default returns the three ordered rules in force.
func Default() []Rule {
	full := decimal.NewFromInt(1)
	return []Rule{
		{
			Number:          1,
			Category:        models.CategorySoldBeforeJune17,
			Until:           June17,
			StakingFraction: decimal.RequireFromString("0.5"),
			RewardFraction:  full,
		},
		{
			Number:          2,
			Category:        models.CategoryPurchasedBeforeAugust1AndSoldAfterJune17,
			From:            June17,
			Until:           August1,
			StakingFraction: decimal.RequireFromString("0.25"),
			RewardFraction:  full,
		},
		{
			Number:          3,
			Category:        models.CategoryPurchasedAfterJuly22,
			From:            August1,
			StakingFraction: decimal.RequireFromString("0.5"),
			RewardFraction:  full,
		},
	}
}

// Classifier picks the first rule whose window holds an instant.
type Classifier struct {
	rules []Rule
}

func NewClassifier() *Classifier {
	return NewClassifierWithRules(Default())
}

// NewClassifierWithRules builds a Classifier over rules, evaluated in order.
func NewClassifierWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// Classify returns the first rule whose window holds t.
func (c *Classifier) Classify(t time.Time) (Rule, bool) {
	for _, r := range c.rules {
		if r.Contains(t) {
			return r, true
		}
	}
	return Rule{}, false
}
