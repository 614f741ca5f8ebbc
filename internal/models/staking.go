package models

import (
	"encoding/json"
	"fmt"
)

// StakingKind discriminates the entries of Wallet.Staking.
type StakingKind string

const (
	StakingKindDerived StakingKind = "derived"
	StakingKindManual  StakingKind = "manual"
)

// StakingItem is one entry of a wallet's staking list. Exactly one of Derived
// or Manual is set, matching Kind.
type StakingItem struct {
	Kind    StakingKind
	Derived *Transaction
	Manual  *ManualStaking
}

// DerivedItem wraps a batch transaction.
func DerivedItem(tx Transaction) StakingItem {
	return StakingItem{Kind: StakingKindDerived, Derived: &tx}
}

// ManualItem wraps a manual staking submission.
func ManualItem(m ManualStaking) StakingItem {
	return StakingItem{Kind: StakingKindManual, Manual: &m}
}

func (s StakingItem) clone() StakingItem {
	out := StakingItem{Kind: s.Kind}
	if s.Derived != nil {
		tx := *s.Derived
		out.Derived = &tx
	}
	if s.Manual != nil {
		m := *s.Manual
		out.Manual = &m
	}
	return out
}

// MarshalJSON flattens the item into {"kind": ..., <fields>}.
func (s StakingItem) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StakingKindDerived:
		if s.Derived == nil {
			return nil, fmt.Errorf("staking item of kind %q has no transaction", s.Kind)
		}
		return json.Marshal(struct {
			Kind StakingKind `json:"kind"`
			Transaction
		}{s.Kind, *s.Derived})
	case StakingKindManual:
		if s.Manual == nil {
			return nil, fmt.Errorf("staking item of kind %q has no submission", s.Kind)
		}
		return json.Marshal(struct {
			Kind StakingKind `json:"kind"`
			ManualStaking
		}{s.Kind, *s.Manual})
	default:
		return nil, fmt.Errorf("unknown staking kind %q", s.Kind)
	}
}

// UnmarshalJSON accepts the flattened form. Entries written without a kind
// are told apart by the presence of "stakedAmount".
func (s *StakingItem) UnmarshalJSON(data []byte) error {
	var head struct {
		Kind         StakingKind     `json:"kind"`
		StakedAmount json.RawMessage `json:"stakedAmount"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	kind := head.Kind
	if kind == "" {
		kind = StakingKindDerived
		if head.StakedAmount != nil {
			kind = StakingKindManual
		}
	}

	switch kind {
	case StakingKindDerived:
		var tx Transaction
		if err := json.Unmarshal(data, &tx); err != nil {
			return fmt.Errorf("decoding derived staking item: %w", err)
		}
		*s = DerivedItem(tx)
	case StakingKindManual:
		var m ManualStaking
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decoding manual staking item: %w", err)
		}
		*s = ManualItem(m)
	default:
		return fmt.Errorf("unknown staking kind %q", kind)
	}
	return nil
}
