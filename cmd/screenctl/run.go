package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/paul-heyse/submarket-screen/internal/cache"
	"github.com/paul-heyse/submarket-screen/internal/domain"
	"github.com/paul-heyse/submarket-screen/internal/engine"
	"github.com/paul-heyse/submarket-screen/internal/metrics"
	"github.com/paul-heyse/submarket-screen/internal/runtime"
	"github.com/paul-heyse/submarket-screen/internal/scoring"
)

// runOutput is the file screenctl writes: the scored, ranked submarkets
// plus the manifest spec.md §6 names as the run's audit record.
type runOutput struct {
	Manifest domain.RunManifest    `json:"manifest"`
	Results  []domain.ScoredMarket `json:"results"`
}

func runCmd(ctx context.Context) *cobra.Command {
	var (
		configPath     string
		submarketsPath string
		outputPath     string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Screen a submarket list and write scored results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if submarketsPath == "" {
				return fmt.Errorf("--submarkets is required")
			}
			cfg, fc, err := loadRunConfig(configPath)
			if err != nil {
				return err
			}
			lvl, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				lvl = zerolog.InfoLevel
			}
			logger := log.Logger.Level(lvl)

			submarkets, err := loadSubmarkets(submarketsPath)
			if err != nil {
				return err
			}

			store, err := cache.Open(cfg.Cache, cfg.ModelVersion)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			limiter := buildLimiter(fc)
			rt := runtime.New(store, limiter, cfg, logger)

			reg, err := buildRegistry(rt, fc)
			if err != nil {
				return err
			}

			met := metrics.New()
			alreadyScored := priorResultSet(outputPath)

			score := func(ctx context.Context, sm domain.Submarket) (domain.ScoredMarket, error) {
				return engine.ScoreSubmarket(ctx, rt, reg, sm)
			}
			progress := func(submarketID string, status domain.RunStatus) {
				rt.Sub("batch").Info().Str("submarket", submarketID).Str("status", string(status)).Msg("scored")
				met.RecordSubmarketOutcome(string(status))
			}

			results, manifest := scoring.Batch(cmd.Context(), rt, submarkets, score, progress, alreadyScored)
			met.SetCacheHitRatio(manifest.CacheStats.HitRatio)

			return writeOutput(outputPath, runOutput{Manifest: manifest, Results: results})
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML RunConfig (optional, defaults apply)")
	cmd.Flags().StringVar(&submarketsPath, "submarkets", "", "path to a JSON submarket list (required)")
	cmd.Flags().StringVar(&outputPath, "output", "results.json", "path to write the scored results and run manifest")
	return cmd
}

// priorResultSet reads a previous run's output file, if present, and
// returns an AlreadyScored predicate honoring the resumability rule from
// spec.md §7 ("already-scored submarkets... are skipped if the sink
// reports them present"). The output file is the only manifest sink this
// CLI maintains; a missing or unreadable file means nothing is skipped.
func priorResultSet(outputPath string) scoring.AlreadyScored {
	raw, err := os.ReadFile(outputPath)
	if err != nil {
		return nil
	}
	var prior runOutput
	if err := json.Unmarshal(raw, &prior); err != nil {
		return nil
	}
	seen := make(map[string]bool, len(prior.Results))
	for _, r := range prior.Results {
		seen[r.Submarket.ID+"\x00"+r.ModelVersion] = true
	}
	return func(submarketID, modelVersion string) bool {
		return seen[submarketID+"\x00"+modelVersion]
	}
}

func writeOutput(path string, out runOutput) error {
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
