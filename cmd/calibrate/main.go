package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/dmarsh417/hoopcast/internal/adapters/outbound/modelstore"
	"github.com/dmarsh417/hoopcast/internal/config"
	"github.com/dmarsh417/hoopcast/internal/core/model"
	"github.com/dmarsh417/hoopcast/internal/store"
)

// calibrate replays every resolved prediction record and reports how the
// pipeline, the pure rating model, and the market line each did against
// the actual totals. Buckets expose where the pipeline runs hot or cold.

type calBucket struct {
	label string
	lo    float64
	hi    float64

	count     int
	absErrSum float64
	errSum    float64
}

func main() {
	var storePath string
	flag.StringVar(&storePath, "store", "", "prediction store path (default from env)")
	flag.Parse()

	cfg := config.Load()
	if storePath == "" {
		storePath = cfg.RecordStorePath
	}

	records, err := store.OpenPredictionStore(storePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer records.Close()

	resolved, err := records.Resolved()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load resolved: %v\n", err)
		os.Exit(1)
	}
	if len(resolved) == 0 {
		fmt.Println("no resolved predictions to calibrate against")
		return
	}

	repo, err := modelstore.NewFileRepo(cfg.ModelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open model: %v\n", err)
		os.Exit(1)
	}
	m, err := model.LoadOrInit(context.Background(), repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load model: %v\n", err)
		os.Exit(1)
	}

	buckets := []calBucket{
		{label: "   < 210", lo: math.Inf(-1), hi: 210},
		{label: "210..220", lo: 210, hi: 220},
		{label: "220..230", lo: 220, hi: 230},
		{label: "230..240", lo: 230, hi: 240},
		{label: "  >= 240", lo: 240, hi: math.Inf(1)},
	}

	var (
		pipelineAbs, pipelineSigned float64
		modelAbs                    float64
		marketAbs                   float64
		marketGames                 int
		pipelineBeatsMarket         int
	)

	for _, rec := range resolved {
		actual := float64(*rec.ActualHome + *rec.ActualAway)

		pipelineErr := actual - rec.PredictedTotal
		pipelineAbs += math.Abs(pipelineErr)
		pipelineSigned += pipelineErr

		_, _, modelTotal := m.Predict(rec.HomeTeam, rec.AwayTeam)
		modelAbs += math.Abs(actual - modelTotal)

		if rec.MarketLine != nil {
			marketGames++
			marketErr := actual - *rec.MarketLine
			marketAbs += math.Abs(marketErr)
			if math.Abs(pipelineErr) < math.Abs(marketErr) {
				pipelineBeatsMarket++
			}
		}

		for i := range buckets {
			b := &buckets[i]
			if rec.PredictedTotal >= b.lo && rec.PredictedTotal < b.hi {
				b.count++
				b.absErrSum += math.Abs(pipelineErr)
				b.errSum += pipelineErr
				break
			}
		}
	}

	n := float64(len(resolved))
	fmt.Printf("calibration over %d resolved games (model version %s)\n\n", len(resolved), m.Version)
	fmt.Printf("pipeline MAE:   %6.2f  (signed bias %+.2f)\n", pipelineAbs/n, pipelineSigned/n)
	fmt.Printf("rating-only MAE: %5.2f  (current model replayed, no adjusters)\n", modelAbs/n)
	if marketGames > 0 {
		fmt.Printf("market MAE:     %6.2f  over %d lined games\n", marketAbs/float64(marketGames), marketGames)
		fmt.Printf("pipeline closer than market: %d/%d (%.0f%%)\n",
			pipelineBeatsMarket, marketGames, 100*float64(pipelineBeatsMarket)/float64(marketGames))
	} else {
		fmt.Println("no market lines recorded; skipping market comparison")
	}

	fmt.Println("\nby predicted total:")
	fmt.Println("  bucket     games   MAE    bias")
	for _, b := range buckets {
		if b.count == 0 {
			fmt.Printf("  %s     0      -       -\n", b.label)
			continue
		}
		c := float64(b.count)
		fmt.Printf("  %s  %5d  %5.2f  %+6.2f\n", b.label, b.count, b.absErrSum/c, b.errSum/c)
	}
}
