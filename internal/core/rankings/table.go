package rankings

import (
	"sort"
	"time"

	"github.com/dmarsh417/hoopcast/internal/core/history"
)

// TeamRow is one team's league-table entry: current defensive efficiency
// and tempo, as aggregated by the stats feed.
type TeamRow struct {
	TeamID    string  `json:"team_id"`
	DefRating float64 `json:"def_rating"`
	Pace      float64 `json:"pace"`
}

const (
	fastPaceFloor   = 101.0
	slowPaceCeiling = 96.0
)

// Table is an immutable snapshot of league-wide rankings. Built once per
// refresh; readers share it without locking.
type Table struct {
	rows    map[string]TeamRow
	defRank map[string]int // 1 = stingiest defense
	builtAt time.Time
}

func NewTable(rows []TeamRow, builtAt time.Time) *Table {
	t := &Table{
		rows:    make(map[string]TeamRow, len(rows)),
		defRank: make(map[string]int, len(rows)),
		builtAt: builtAt,
	}
	for _, r := range rows {
		t.rows[r.TeamID] = r
	}

	byDef := make([]TeamRow, len(rows))
	copy(byDef, rows)
	sort.Slice(byDef, func(i, j int) bool { return byDef[i].DefRating < byDef[j].DefRating })
	for i, r := range byDef {
		t.defRank[r.TeamID] = i + 1
	}
	return t
}

func (t *Table) BuiltAt() time.Time { return t.builtAt }
func (t *Table) Size() int          { return len(t.rows) }

// DefenseRank returns a team's defensive rank (1 = best) and the table
// size. ok is false for unknown teams.
func (t *Table) DefenseRank(teamID string) (rank, of int, ok bool) {
	if t == nil {
		return 0, 0, false
	}
	r, ok := t.defRank[teamID]
	return r, len(t.rows), ok
}

// Tiers implements history.TierLookup against the current table. The
// snapshot is season-to-date, so the `at` date is accepted but unused;
// per-date tables would need the feed to serve historical snapshots.
func (t *Table) Tiers(teamID string, _ time.Time) (history.PaceTier, history.DefenseTier, bool) {
	if t == nil {
		return "", "", false
	}
	row, ok := t.rows[teamID]
	if !ok {
		return "", "", false
	}

	paceTier := history.PaceNeutral
	switch {
	case row.Pace > fastPaceFloor:
		paceTier = history.PaceFast
	case row.Pace < slowPaceCeiling:
		paceTier = history.PaceSlow
	}

	rank := t.defRank[teamID]
	third := len(t.rows) / 3
	defTier := history.DefenseAverage
	switch {
	case third > 0 && rank <= third:
		defTier = history.DefenseElite
	case third > 0 && rank > len(t.rows)-third:
		defTier = history.DefenseWeak
	}

	return paceTier, defTier, true
}
