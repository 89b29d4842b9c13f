package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/adaptik3d/adaptik/internal/utils"
	"github.com/adaptik3d/adaptik/pkg/catalog"
	"github.com/adaptik3d/adaptik/pkg/device"
	"github.com/adaptik3d/adaptik/pkg/loader"
	"github.com/adaptik3d/adaptik/pkg/quality"
	"github.com/adaptik3d/adaptik/pkg/scoring"
)

// snapCache is owned by the CLI host and shared by commands that probe more
// than once within an invocation.
var snapCache = device.NewSnapshotCache()

const snapCacheKey = "device"

func newProber(cmd *cobra.Command) (*device.Prober, error) {
	proxy, _ := cmd.Flags().GetString("proxy")

	timeout, err := time.ParseDuration(viper.GetString("probe.timeout"))
	if err != nil {
		return nil, fmt.Errorf("bad probe.timeout: %w", err)
	}

	return device.NewProber(device.ProberConfig{
		ProbeURLs: viper.GetStringSlice("probe.urls"),
		Proxy:     proxy,
		Timeout:   timeout,
		UserAgent: viper.GetString("probe.useragent"),
		Log:       utils.Log,
	})
}

// getSnapshot returns a cached snapshot when allowed, probing otherwise.
func getSnapshot(ctx context.Context, cmd *cobra.Command, noCache bool) (device.Snapshot, error) {
	if !noCache {
		if snap, ok := snapCache.Get(snapCacheKey); ok {
			utils.Log.Debug("using cached capability snapshot")
			return snap, nil
		}
	}

	prober, err := newProber(cmd)
	if err != nil {
		return device.Snapshot{}, err
	}

	snap := prober.Probe(ctx)
	snapCache.Put(snapCacheKey, snap)
	return snap, nil
}

// loadDescriptors reads the catalog from a JSON file when --catalog is set,
// or from the sqlite registry otherwise.
func loadDescriptors(cmd *cobra.Command) ([]catalog.Descriptor, error) {
	if file, _ := cmd.Flags().GetString("catalog"); file != "" {
		return catalog.LoadFile(file)
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = viper.GetString("catalog.db")
	}

	db, err := catalog.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return db.List(context.Background())
}

// findDescriptor returns the catalog entry with the given id, nil if absent.
func findDescriptor(descriptors []catalog.Descriptor, id string) *catalog.Descriptor {
	for i := range descriptors {
		if descriptors[i].ID == id {
			return &descriptors[i]
		}
	}
	return nil
}

// downloadAsset retrieves desc through the loading controller, streaming
// progress to stdout and writing the payload to out (default <id>.bin).
// retries is the number of extra attempts after a failed download.
func downloadAsset(cmd *cobra.Command, desc catalog.Descriptor, out string, retries int) error {
	proxy, _ := cmd.Flags().GetString("proxy")

	timeout, err := time.ParseDuration(viper.GetString("probe.timeout"))
	if err != nil {
		return fmt.Errorf("bad probe.timeout: %w", err)
	}

	if out == "" {
		out = desc.ID + ".bin"
	}

	var saveErr error
	ctrl, err := loader.NewController(loader.Config{
		Proxy:     proxy,
		Timeout:   10 * timeout,
		UserAgent: viper.GetString("probe.useragent"),
		Log:       utils.Log,
		Callbacks: loader.Callbacks{
			OnLoadStart: func(d catalog.Descriptor) {
				utils.Log.Infof("fetching %s (%s)", d.ID, utils.HumanBytes(d.FileSizeBytes))
			},
			OnProgress: func(p loader.Progress) {
				fmt.Printf("\r%s / %s (%.0f%%)",
					utils.HumanBytes(p.BytesLoaded), utils.HumanBytes(p.BytesTotal), p.Percent)
			},
			OnError: func(err error) {
				fmt.Println()
				utils.Log.Warnf("fetch failed: %v", err)
			},
			OnLoadComplete: func(d catalog.Descriptor, data []byte) {
				fmt.Println()
				saveErr = os.WriteFile(out, data, 0o644)
			},
		},
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	err = ctrl.Load(ctx, desc)
	for attempt := 0; err != nil && attempt < retries; attempt++ {
		utils.Log.Infof("retrying (%d/%d)", attempt+1, retries)
		err = ctrl.Retry(ctx)
	}
	if err != nil {
		return err
	}
	if saveErr != nil {
		return saveErr
	}

	utils.Log.Infof("saved %s", out)
	return nil
}

// loadPreferences merges config-file preferences with command flags; a flag
// that was explicitly set wins.
func loadPreferences(cmd *cobra.Command) scoring.Preferences {
	prefs := scoring.Preferences{
		PrioritizeQuality:     viper.GetBool("preferences.prioritize_quality"),
		PrioritizePerformance: viper.GetBool("preferences.prioritize_performance"),
		DataSaver:             viper.GetBool("preferences.datasaver"),
		MaxLoadTimeSeconds:    viper.GetFloat64("preferences.max_load_time"),
		ExcludedAssetIDs:      viper.GetStringSlice("preferences.excluded"),
		AutoApplyBest:         viper.GetBool("preferences.auto_apply"),
	}
	if t, ok := quality.ParseTier(viper.GetString("preferences.quality")); ok {
		prefs.PreferredQuality = t
	}

	if cmd.Flags().Changed("prefer-quality") {
		prefs.PrioritizeQuality, _ = cmd.Flags().GetBool("prefer-quality")
	}
	if cmd.Flags().Changed("prefer-performance") {
		prefs.PrioritizePerformance, _ = cmd.Flags().GetBool("prefer-performance")
	}
	if cmd.Flags().Changed("datasaver") {
		prefs.DataSaver, _ = cmd.Flags().GetBool("datasaver")
	}
	if cmd.Flags().Changed("max-load-time") {
		prefs.MaxLoadTimeSeconds, _ = cmd.Flags().GetFloat64("max-load-time")
	}
	if cmd.Flags().Changed("quality") {
		raw, _ := cmd.Flags().GetString("quality")
		if t, ok := quality.ParseTier(raw); ok {
			prefs.PreferredQuality = t
		} else {
			utils.Log.Warnf("ignoring unknown quality %q", raw)
		}
	}
	if cmd.Flags().Changed("exclude") {
		prefs.ExcludedAssetIDs, _ = cmd.Flags().GetStringSlice("exclude")
	}
	if cmd.Flags().Changed("apply") {
		prefs.AutoApplyBest, _ = cmd.Flags().GetBool("apply")
	}

	return prefs
}

// loadWeights builds scoring weight overrides from config. Nil means "all
// defaults".
func loadWeights() *scoring.Weights {
	w := scoring.Weights{
		Network:    viper.GetFloat64("weights.network"),
		Memory:     viper.GetFloat64("weights.memory"),
		Graphics:   viper.GetFloat64("weights.graphics"),
		Battery:    viper.GetFloat64("weights.battery"),
		DataSaver:  viper.GetFloat64("weights.datasaver"),
		Preference: viper.GetFloat64("weights.preference"),
	}
	if w == (scoring.Weights{}) {
		return nil
	}
	return &w
}
