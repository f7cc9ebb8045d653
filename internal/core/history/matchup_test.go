package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTiers map[string]struct {
	pace PaceTier
	def  DefenseTier
}

func (s staticTiers) Tiers(opponentID string, _ time.Time) (PaceTier, DefenseTier, bool) {
	t, ok := s[opponentID]
	return t.pace, t.def, ok
}

func TestBuildMatchupProfileEmptyBucketsAreNil(t *testing.T) {
	records := []ContestRecord{
		testRecord("BOS", "LAL", 1, true, 110, 100),
	}
	mp := BuildMatchupProfile("BOS", "MIA", records, nil)

	assert.Nil(t, mp.HeadToHead, "never met: head-to-head must be nil, not zero")
	assert.Empty(t, mp.VsPace)
	assert.Empty(t, mp.VsDefense)
}

func TestBuildMatchupProfileHeadToHead(t *testing.T) {
	records := []ContestRecord{
		testRecord("BOS", "MIA", 1, true, 110, 100),
		testRecord("BOS", "MIA", 3, false, 120, 108),
		testRecord("BOS", "LAL", 5, true, 130, 99),
	}
	mp := BuildMatchupProfile("BOS", "MIA", records, nil)

	require.NotNil(t, mp.HeadToHead)
	assert.Equal(t, 2, mp.HeadToHead.Games)
	assert.InDelta(t, 115.0, mp.HeadToHead.PointsPerGame, 1e-9)
	assert.InDelta(t, 104.0, mp.HeadToHead.OppPointsPerGame, 1e-9)
}

func TestBuildMatchupProfileArchetypeBuckets(t *testing.T) {
	tiers := staticTiers{
		"LAL": {pace: PaceFast, def: DefenseWeak},
		"MIA": {pace: PaceSlow, def: DefenseElite},
	}
	records := []ContestRecord{
		testRecord("BOS", "LAL", 1, true, 130, 120),
		testRecord("BOS", "LAL", 3, false, 126, 118),
		testRecord("BOS", "MIA", 5, true, 98, 95),
		testRecord("BOS", "UNKNOWN", 7, true, 110, 100),
	}
	mp := BuildMatchupProfile("BOS", "MIA", records, tiers)

	require.NotNil(t, mp.VsPace[PaceFast])
	assert.Equal(t, 2, mp.VsPace[PaceFast].Games)
	assert.InDelta(t, 128.0, mp.VsPace[PaceFast].PointsPerGame, 1e-9)

	require.NotNil(t, mp.VsDefense[DefenseElite])
	assert.Equal(t, 1, mp.VsDefense[DefenseElite].Games)

	// Unknown opponents land in no bucket.
	assert.Nil(t, mp.VsPace[PaceNeutral])
}

func TestBucketStatsUsable(t *testing.T) {
	var nilBucket *BucketStats
	assert.False(t, nilBucket.Usable())
	assert.False(t, (&BucketStats{Games: MinSample - 1}).Usable())
	assert.True(t, (&BucketStats{Games: MinSample}).Usable())
}
