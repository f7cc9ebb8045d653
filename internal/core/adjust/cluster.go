package adjust

import "fmt"

// ClusterAdjuster applies the clustering service's opaque additive signal:
// per-team scoring deltas plus a shared pace delta split evenly. A nil
// signal (service down or disabled) contributes nothing.
type ClusterAdjuster struct{}

func (ClusterAdjuster) Name() string { return StageCluster }

func (ClusterAdjuster) Apply(_ State, ctx *Context) Delta {
	sig := ctx.Cluster
	if sig == nil {
		return Delta{Note: "no cluster signal"}
	}

	return Delta{
		Home: sig.ScoringDeltaHome + sig.PaceDelta/2,
		Away: sig.ScoringDeltaAway + sig.PaceDelta/2,
		Note: fmt.Sprintf("pace %+.2f home %+.2f away %+.2f", sig.PaceDelta, sig.ScoringDeltaHome, sig.ScoringDeltaAway),
	}
}
