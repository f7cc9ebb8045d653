package adjust

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed stage_caps.yaml
var stageCapsData []byte

// Per-team, per-stage absolute caps. The chain clamps with these after
// every stage, so editing the yaml retunes the whole pipeline.
var stageCaps = map[string]float64{
	StageDefense:  5.0,
	StageHomeRoad: 2.0,
	StageTrend:    4.0,
	StageShootout: 4.0,
	StageFatigue:  7.0,
	StageCluster:  3.0,
}

func init() {
	var cfg struct {
		Caps map[string]float64 `yaml:"stage_caps"`
	}
	if err := yaml.Unmarshal(stageCapsData, &cfg); err != nil {
		return
	}
	for name, limit := range cfg.Caps {
		if limit > 0 {
			stageCaps[name] = limit
		}
	}
}

// StageCap returns the per-team absolute cap for a stage. Unknown stages
// get a conservative default.
func StageCap(name string) float64 {
	if limit, ok := stageCaps[name]; ok {
		return limit
	}
	return 2.0
}
