package history

import (
	"fmt"
	"time"
)

const (
	// MinSample is the game count below which a profile (or split) is not
	// statistically usable on its own.
	MinSample = 5

	// RecentWindow is the number of most-recent games in the recent split.
	RecentWindow = 5
)

// Confidence tags how trustworthy a built profile is. The fallback policy
// lives in the type so downstream stages never have to infer it from
// sentinel zeros.
type Confidence int

const (
	ConfidenceMissing Confidence = iota
	ConfidenceDegraded
	ConfidenceOK
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceOK:
		return "ok"
	case ConfidenceDegraded:
		return "degraded"
	default:
		return "missing"
	}
}

// Aggregates are per-game rates over some window of contests.
type Aggregates struct {
	Games            int     `json:"games"`
	PointsPerGame    float64 `json:"points_per_game"`
	OppPointsPerGame float64 `json:"opp_points_per_game"`
	Pace             float64 `json:"pace"`
	OffRating        float64 `json:"off_rating"`
	DefRating        float64 `json:"def_rating"`
	ThreeRate        float64 `json:"three_rate"`      // 3PA / FGA
	ThreePct         float64 `json:"three_pct"`       // 3PM / 3PA
	FreeThrowRate    float64 `json:"free_throw_rate"` // FTA / FGA
	AssistRate       float64 `json:"assist_rate"`     // AST / FGA
	TurnoverRate     float64 `json:"turnover_rate"`   // TOV / FGA
}

// TeamProfile is a read-only statistical view of one team, rebuilt on
// demand from the historical record. It is never persisted.
type TeamProfile struct {
	TeamID   string
	SeasonID string

	Season Aggregates // full-season window
	Recent Aggregates // last RecentWindow games
	Home   Aggregates
	Away   Aggregates

	// LastGames holds the most recent games newest-first, up to
	// RecentWindow entries. The fatigue stage reads dates and totals here.
	LastGames []ContestRecord
}

// ProfileResult is the tagged outcome of a profile build:
// Ok(profile) | Degraded(profile, reason) | Missing.
type ProfileResult struct {
	Profile    *TeamProfile
	Confidence Confidence
	Reason     string
}

func (pr ProfileResult) Usable() bool { return pr.Confidence != ConfidenceMissing }

// BuildTeamProfile aggregates a team's contests strictly before asOf into
// season, recent, and home/away windows. A zero asOf means "all games".
// Thin data degrades the result; it never errors.
func BuildTeamProfile(teamID, season string, records []ContestRecord, asOf time.Time) ProfileResult {
	windowed := make([]ContestRecord, 0, len(records))
	for _, r := range records {
		if r.TeamID != teamID {
			continue
		}
		if !asOf.IsZero() && !r.Date.Before(asOf) {
			continue
		}
		windowed = append(windowed, r)
	}

	if len(windowed) == 0 {
		return ProfileResult{Confidence: ConfidenceMissing, Reason: "no contests before cutoff"}
	}

	ordered := sortByDateAsc(windowed)

	p := &TeamProfile{
		TeamID:   teamID,
		SeasonID: season,
		Season:   aggregate(ordered),
	}

	recentStart := len(ordered) - RecentWindow
	if recentStart < 0 {
		recentStart = 0
	}
	p.Recent = aggregate(ordered[recentStart:])

	var home, away []ContestRecord
	for _, r := range ordered {
		if r.Home {
			home = append(home, r)
		} else {
			away = append(away, r)
		}
	}
	p.Home = aggregate(home)
	p.Away = aggregate(away)

	for i := len(ordered) - 1; i >= 0 && len(p.LastGames) < RecentWindow; i-- {
		p.LastGames = append(p.LastGames, ordered[i])
	}

	if len(ordered) < MinSample {
		return ProfileResult{
			Profile:    p,
			Confidence: ConfidenceDegraded,
			Reason:     fmt.Sprintf("season sample %d below %d", len(ordered), MinSample),
		}
	}

	return ProfileResult{Profile: p, Confidence: ConfidenceOK}
}

func aggregate(records []ContestRecord) Aggregates {
	agg := Aggregates{Games: len(records)}
	if len(records) == 0 {
		return agg
	}

	var (
		pf, pa             int
		pace, off, def     float64
		threeA, threeM     int
		fga, fta, ast, tov int
	)
	for _, r := range records {
		pf += r.PointsFor
		pa += r.PointsAgainst
		pace += r.Pace
		off += r.OffRating
		def += r.DefRating
		threeA += r.ThreeAttempts
		threeM += r.ThreeMakes
		fga += r.FieldGoalAttempts
		fta += r.FreeThrowAttempts
		ast += r.Assists
		tov += r.Turnovers
	}

	n := float64(len(records))
	agg.PointsPerGame = float64(pf) / n
	agg.OppPointsPerGame = float64(pa) / n
	agg.Pace = pace / n
	agg.OffRating = off / n
	agg.DefRating = def / n

	if fga > 0 {
		agg.ThreeRate = float64(threeA) / float64(fga)
		agg.FreeThrowRate = float64(fta) / float64(fga)
		agg.AssistRate = float64(ast) / float64(fga)
		agg.TurnoverRate = float64(tov) / float64(fga)
	}
	if threeA > 0 {
		agg.ThreePct = float64(threeM) / float64(threeA)
	}

	return agg
}
