package adjust

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmarsh417/hoopcast/internal/core/history"
)

const (
	backToBackPenalty = -4.0
	outlierPenalty    = -7.0

	// A combined total at or above this within outlierWindowDays suggests
	// overtime or an outlier shootout the team has not recovered from.
	outlierTotalFloor = 270
	outlierWindowDays = 2
)

// FatigueAdjuster penalizes a team that played the previous calendar day
// (-4), or more heavily (-7) when its most recent game looks like an
// overtime/outlier scoring battle within the last two days. The larger
// penalty supersedes the smaller one — they never stack.
type FatigueAdjuster struct{}

func (FatigueAdjuster) Name() string { return StageFatigue }

func (FatigueAdjuster) Apply(_ State, ctx *Context) Delta {
	if ctx.GameDate.IsZero() {
		return Delta{Note: "no game date"}
	}

	home, homeNote := fatiguePenalty(ctx.Home.Profile, ctx.GameDate)
	away, awayNote := fatiguePenalty(ctx.Away.Profile, ctx.GameDate)

	var notes []string
	if homeNote != "" {
		notes = append(notes, "home "+homeNote)
	}
	if awayNote != "" {
		notes = append(notes, "away "+awayNote)
	}

	return Delta{Home: home, Away: away, Note: strings.Join(notes, ", ")}
}

func fatiguePenalty(p *history.TeamProfile, gameDate time.Time) (float64, string) {
	if p == nil || len(p.LastGames) == 0 {
		return 0, ""
	}
	last := p.LastGames[0]

	daysSince := calendarDaysBetween(last.Date, gameDate)

	if last.Total() >= outlierTotalFloor && daysSince <= outlierWindowDays && daysSince >= 0 {
		return outlierPenalty, fmt.Sprintf("outlier %d pts %dd ago", last.Total(), daysSince)
	}
	if daysSince == 1 {
		return backToBackPenalty, "back-to-back"
	}
	return 0, ""
}

// calendarDaysBetween counts whole calendar days from a to b, ignoring
// time of day (a late tip the night before is still a back-to-back).
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	at := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bt := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bt.Sub(at).Hours() / 24)
}
