// Package achievement evaluates achievement rules against quest history and
// live counters and awards each achievement at most once.
package achievement

import (
	"fmt"
	"sort"
	"time"
)

// Rank is the display tier of an achievement.
type Rank int

const (
	RankNone Rank = iota
	RankBronze
	RankSilver
	RankGold
	RankPlatinum
)

// RankFromInt maps 1..4 to Bronze..Platinum and everything else to None.
func RankFromInt(n int) Rank {
	switch n {
	case 1:
		return RankBronze
	case 2:
		return RankSilver
	case 3:
		return RankGold
	case 4:
		return RankPlatinum
	default:
		return RankNone
	}
}

func (r Rank) String() string {
	switch r {
	case RankBronze:
		return "Bronze"
	case RankSilver:
		return "Silver"
	case RankGold:
		return "Gold"
	case RankPlatinum:
		return "Platinum"
	default:
		return "None"
	}
}

// Achievement is one immutable catalog entry.
type Achievement struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Objective string `json:"objective"`
	Rank      Rank   `json:"rank"`
	Image     string `json:"image,omitempty"`
	// Hidden entries keep their title and objective secret until awarded.
	Hidden bool `json:"hidden,omitempty"`
}

// Catalog is the immutable registry of achievements keyed by ID.
type Catalog struct {
	byID map[int]Achievement
	ids  []int
}

// NewCatalog indexes defs. Duplicate IDs are a build error.
func NewCatalog(defs []Achievement) (*Catalog, error) {
	c := &Catalog{byID: make(map[int]Achievement, len(defs)), ids: make([]int, 0, len(defs))}
	for _, a := range defs {
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate achievement id %d", a.ID)
		}
		c.byID[a.ID] = a
		c.ids = append(c.ids, a.ID)
	}
	sort.Ints(c.ids)
	return c, nil
}

// Get looks up an achievement.
func (c *Catalog) Get(id int) (Achievement, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// IDs returns every ID in ascending order. The slice must not be modified.
func (c *Catalog) IDs() []int { return c.ids }

func (c *Catalog) Len() int { return len(c.ids) }

// NeverCompleted is the completion date of an achievement that has not been
// awarded.
var NeverCompleted = time.Unix(0, 0).UTC()

// Entry is an achievement with its completion date.
type Entry struct {
	Achievement
	CompletionDate time.Time `json:"completion_date"`
}

// Completed reports whether the completion date is a real award time.
func (e Entry) Completed() bool { return !e.CompletionDate.Equal(NeverCompleted) }

// Progress joins the catalog with award times in ascending ID order. Hidden
// entries that are not yet completed have their text masked.
func (c *Catalog) Progress(awards map[int]time.Time) []Entry {
	out := make([]Entry, 0, len(c.ids))
	for _, id := range c.ids {
		e := Entry{Achievement: c.byID[id], CompletionDate: NeverCompleted}
		if at, ok := awards[id]; ok {
			e.CompletionDate = at.UTC()
		}
		if e.Hidden && !e.Completed() {
			e.Title, e.Objective = "???", "???"
		}
		out = append(out, e)
	}
	return out
}

// Completed filters progress down to entries that were awarded.
func Completed(progress []Entry) []Entry {
	var out []Entry
	for _, e := range progress {
		if e.Completed() {
			out = append(out, e)
		}
	}
	return out
}
