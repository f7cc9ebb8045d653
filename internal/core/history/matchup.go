package history

import "time"

// PaceTier and DefenseTier are the archetype buckets used for matchup
// splits. A team's tier is the opponent's classification at the time the
// game was played.
type PaceTier string

const (
	PaceFast    PaceTier = "fast"
	PaceSlow    PaceTier = "slow"
	PaceNeutral PaceTier = "neutral"
)

type DefenseTier string

const (
	DefenseElite   DefenseTier = "elite"
	DefenseAverage DefenseTier = "average"
	DefenseWeak    DefenseTier = "weak"
)

// TierLookup classifies an opponent into archetype buckets. Implemented by
// the rankings table; ok is false when the opponent is unknown.
type TierLookup interface {
	Tiers(opponentID string, at time.Time) (PaceTier, DefenseTier, bool)
}

// BucketStats are the scoring splits inside one archetype bucket.
// A nil *BucketStats means the bucket has zero observations — callers must
// treat that as "no signal", never as a zero average.
type BucketStats struct {
	Games            int     `json:"games"`
	PointsPerGame    float64 `json:"points_per_game"`
	OppPointsPerGame float64 `json:"opp_points_per_game"`
	OffRating        float64 `json:"off_rating"`
}

// Usable reports whether the bucket meets the sample-size threshold.
func (b *BucketStats) Usable() bool { return b != nil && b.Games >= MinSample }

// MatchupProfile is the head-to-head and archetype view of one pairing.
type MatchupProfile struct {
	TeamID     string
	OpponentID string

	// HeadToHead covers prior meetings of this exact pair; nil when the
	// teams have not met in the window.
	HeadToHead *BucketStats

	VsPace    map[PaceTier]*BucketStats
	VsDefense map[DefenseTier]*BucketStats
}

// BuildMatchupProfile buckets a team's prior games by the opponent's
// contemporaneous pace/defense tier and splits out head-to-head meetings
// with opponentID. Pure; unknown opponents simply land in no bucket.
func BuildMatchupProfile(teamID, opponentID string, records []ContestRecord, tiers TierLookup) *MatchupProfile {
	mp := &MatchupProfile{
		TeamID:     teamID,
		OpponentID: opponentID,
		VsPace:     make(map[PaceTier]*BucketStats),
		VsDefense:  make(map[DefenseTier]*BucketStats),
	}

	var h2h []ContestRecord
	paceBuckets := make(map[PaceTier][]ContestRecord)
	defBuckets := make(map[DefenseTier][]ContestRecord)

	for _, r := range records {
		if r.TeamID != teamID {
			continue
		}
		if r.OpponentID == opponentID {
			h2h = append(h2h, r)
		}
		if tiers == nil {
			continue
		}
		paceTier, defTier, ok := tiers.Tiers(r.OpponentID, r.Date)
		if !ok {
			continue
		}
		paceBuckets[paceTier] = append(paceBuckets[paceTier], r)
		defBuckets[defTier] = append(defBuckets[defTier], r)
	}

	if len(h2h) > 0 {
		mp.HeadToHead = bucketStats(h2h)
	}
	for tier, recs := range paceBuckets {
		mp.VsPace[tier] = bucketStats(recs)
	}
	for tier, recs := range defBuckets {
		mp.VsDefense[tier] = bucketStats(recs)
	}

	return mp
}

func bucketStats(records []ContestRecord) *BucketStats {
	if len(records) == 0 {
		return nil
	}
	var pf, pa int
	var off float64
	for _, r := range records {
		pf += r.PointsFor
		pa += r.PointsAgainst
		off += r.OffRating
	}
	n := float64(len(records))
	return &BucketStats{
		Games:            len(records),
		PointsPerGame:    float64(pf) / n,
		OppPointsPerGame: float64(pa) / n,
		OffRating:        off / n,
	}
}
