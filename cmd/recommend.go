package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/adaptik3d/adaptik/internal/utils"
	"github.com/adaptik3d/adaptik/pkg/scoring"
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Pick the best asset variant for this device",
	Long: `Probes the device (or reuses a fresh snapshot), filters the catalog by
hard requirements and ranks the survivors by the weighted factor scores.
Prints the winner with its rationale, warnings and up to three
alternatives.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		descriptors, err := loadDescriptors(cmd)
		if err != nil {
			return err
		}
		if len(descriptors) == 0 {
			return fmt.Errorf("catalog is empty")
		}

		snap, err := getSnapshot(context.Background(), cmd, noCache)
		if err != nil {
			return err
		}

		prefs := loadPreferences(cmd)
		engine := scoring.NewEngine(loadWeights())

		rec, err := engine.Recommend(snap, descriptors, prefs)
		if errors.Is(err, scoring.ErrNoEligibleAssets) {
			return fmt.Errorf("no version of this asset is suitable for this device")
		}
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rec); err != nil {
				return err
			}
		} else {
			printRecommendation(rec)
		}

		if prefs.AutoApplyBest {
			winner := findDescriptor(descriptors, rec.AssetID)
			if winner == nil {
				return fmt.Errorf("recommended asset %s not in catalog", rec.AssetID)
			}
			utils.Log.Infof("auto-applying recommendation %s", rec.AssetID)
			return downloadAsset(cmd, *winner, "", 0)
		}
		return nil
	},
}

func printRecommendation(rec *scoring.Recommendation) {
	fmt.Printf("recommended: %s (confidence %.0f%%)\n", rec.AssetID, rec.Confidence*100)

	if math.IsInf(rec.EstimatedLoadSeconds, 1) {
		fmt.Println("estimated load: unknown (no usable throughput estimate)")
	} else {
		fmt.Printf("estimated load: %.1fs, ~%d MB memory, %s performance impact\n",
			rec.EstimatedLoadSeconds, rec.EstimatedMemoryMB, rec.PerformanceImpact)
	}

	for _, r := range rec.Reasoning {
		fmt.Println("  +", r)
	}
	for _, b := range rec.Benefits {
		fmt.Println("  *", b)
	}
	for _, w := range rec.Warnings {
		fmt.Println("  !", w)
	}

	if len(rec.Alternatives) > 0 {
		fmt.Println("alternatives:")
		for _, alt := range rec.Alternatives {
			fmt.Printf("  %s (%s, %.1f MB)\n", alt.ID, alt.Quality, alt.FileSizeMB())
		}
	}
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().String("catalog", "", "Read descriptors from a JSON file instead of the registry")
	recommendCmd.Flags().String("db", "", "Path to the sqlite asset registry")
	recommendCmd.Flags().Bool("json", false, "Print the recommendation as JSON")
	recommendCmd.Flags().Bool("no-cache", false, "Ignore the cached snapshot and re-probe")
	recommendCmd.Flags().Bool("prefer-quality", false, "Prioritize visual quality")
	recommendCmd.Flags().Bool("prefer-performance", false, "Prioritize smooth performance")
	recommendCmd.Flags().Bool("datasaver", false, "Minimize data usage")
	recommendCmd.Flags().Float64("max-load-time", 0, "Warn when the estimated load exceeds this many seconds")
	recommendCmd.Flags().String("quality", "", "Preferred quality tier (low, medium, high, ultra)")
	recommendCmd.Flags().StringSlice("exclude", nil, "Asset ids to rank last")
	recommendCmd.Flags().Bool("apply", false, "Fetch the recommended asset immediately")
}
