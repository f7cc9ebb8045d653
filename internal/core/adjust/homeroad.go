package adjust

import (
	"fmt"

	"github.com/dmarsh417/hoopcast/internal/core/history"
)

type venueClass int

const (
	venueNormal venueClass = iota
	venueStrong
	venueWeak
)

func (v venueClass) String() string {
	switch v {
	case venueStrong:
		return "strong"
	case venueWeak:
		return "weak"
	default:
		return "normal"
	}
}

const (
	venueClassThreshold = 4.0
	venueDamping        = 0.80

	homeEdgeShare = 0.60
)

// venueEdgeTable maps (home-class, away-road-class) to a raw total-points
// edge. Every combination not listed is exactly zero: the stage only acts
// on clear patterns, ambiguity is not a small signal.
var venueEdgeTable = map[[2]venueClass]float64{
	{venueStrong, venueWeak}:   +2.5,
	{venueStrong, venueNormal}: +1.25,
	{venueNormal, venueWeak}:   +1.25,
	{venueWeak, venueStrong}:   -2.5,
	{venueWeak, venueNormal}:   -1.25,
	{venueNormal, venueStrong}: -1.25,
}

// HomeRoadAdjuster classifies each team's venue form and applies a small
// fixed edge for clear strong/weak pairings, damped into [-2, +2] and
// split 60/40 toward whichever side the edge favors.
type HomeRoadAdjuster struct{}

func (HomeRoadAdjuster) Name() string { return StageHomeRoad }

func (HomeRoadAdjuster) Apply(_ State, ctx *Context) Delta {
	homeClass := classifyVenue(ctx.Home.Profile, true)
	awayClass := classifyVenue(ctx.Away.Profile, false)

	edge := venueEdgeTable[[2]venueClass{homeClass, awayClass}] * venueDamping
	if edge == 0 {
		return Delta{Note: fmt.Sprintf("home=%s away=%s no clear edge", homeClass, awayClass)}
	}

	homeShare := homeEdgeShare
	if edge < 0 {
		homeShare = 1 - homeEdgeShare
	}

	return Delta{
		Home: edge * homeShare,
		Away: edge * (1 - homeShare),
		Note: fmt.Sprintf("home=%s away=%s edge %+.2f", homeClass, awayClass, edge),
	}
}

// classifyVenue compares the relevant split scoring rate to the season
// rate. Thin splits classify as normal — a clear pattern needs sample.
func classifyVenue(p *history.TeamProfile, home bool) venueClass {
	if p == nil {
		return venueNormal
	}
	split := p.Away
	if home {
		split = p.Home
	}
	if split.Games < history.MinSample {
		return venueNormal
	}

	delta := split.PointsPerGame - p.Season.PointsPerGame
	switch {
	case delta >= venueClassThreshold:
		return venueStrong
	case delta <= -venueClassThreshold:
		return venueWeak
	default:
		return venueNormal
	}
}
