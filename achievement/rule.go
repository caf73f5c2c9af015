package achievement

import (
	"fmt"

	"github.com/kasuganosora/hunterlog/history"
	"github.com/kasuganosora/hunterlog/live"
)

// Input is what every predicate reads during one pass. Neither field may be
// modified by a predicate.
type Input struct {
	History *history.Snapshot
	Live    live.Snapshot
}

// Predicate decides whether an achievement is satisfied by in.
type Predicate func(in *Input) bool

// Rule pairs a catalog entry with its predicate.
type Rule struct {
	Achievement
	Check Predicate
}

// Build splits rules into a catalog and the ID to predicate table. A rule
// without a predicate is allowed and evaluates as unknown.
func Build(rules []Rule) (*Catalog, map[int]Predicate, error) {
	defs := make([]Achievement, 0, len(rules))
	preds := make(map[int]Predicate, len(rules))
	for _, r := range rules {
		defs = append(defs, r.Achievement)
		if r.Check != nil {
			preds[r.ID] = r.Check
		}
	}
	cat, err := NewCatalog(defs)
	if err != nil {
		return nil, nil, fmt.Errorf("build rules: %w", err)
	}
	return cat, preds, nil
}

// Default builds the shipped catalog and rule table.
func Default() (*Catalog, map[int]Predicate, error) {
	return Build(DefaultRules())
}

// DefaultRules lists every shipped rule family.
func DefaultRules() []Rule {
	var rules []Rule
	rules = append(rules, questRules()...)
	rules = append(rules, weaponRules()...)
	rules = append(rules, joinRules()...)
	rules = append(rules, aggregateRules()...)
	rules = append(rules, seriesRules()...)
	rules = append(rules, liveRules()...)
	rules = append(rules, reservedRules()...)
	return rules
}
