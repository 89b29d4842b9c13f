package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adaptik3d/adaptik/pkg/device"
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Measure this device's capabilities and print the snapshot",
	Long: `Runs the capability probes (network throughput, memory, CPU, graphics,
display, battery) and prints the resulting snapshot with its overall score
and recommended quality tier. Individual probes that fail fall back to
documented defaults; probing never fails as a whole.

Host-reported hints can be supplied via ` + device.HintsEnvVar + ` (inline
JSON, or @path to a JSON file).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		snap, err := getSnapshot(context.Background(), cmd, noCache)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		printSnapshot(snap)
		return nil
	},
}

func printSnapshot(snap device.Snapshot) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "network\t%.2f Mbps, %.0f ms RTT (%s)", snap.Network.DownlinkMbps, snap.Network.RTTMillis, snap.Network.Class)
	if !snap.Network.Measured {
		fmt.Fprint(w, " [estimated]")
	}
	if snap.Network.SaveData {
		fmt.Fprint(w, " [data saver]")
	}
	fmt.Fprintln(w, "\t")

	fmt.Fprintf(w, "hardware\t%.1f GB memory, %d cores\t\n", snap.Hardware.MemoryGB, snap.Hardware.Cores)

	fmt.Fprintf(w, "graphics\ttier %s, API v%d", snap.Graphics.Tier, snap.Graphics.APIVersion)
	if snap.Graphics.Renderer != "" {
		fmt.Fprintf(w, " (%s)", snap.Graphics.Renderer)
	}
	fmt.Fprintln(w, "\t")

	fmt.Fprintf(w, "display\t%dx%d @%.1fx, %d-bit\t\n", snap.Display.Width, snap.Display.Height, snap.Display.PixelRatio, snap.Display.ColorDepth)

	if snap.Battery != nil {
		state := "discharging"
		if snap.Battery.Charging {
			state = "charging"
		}
		fmt.Fprintf(w, "battery\t%.0f%% (%s)\t\n", snap.Battery.Level*100, state)
	} else {
		fmt.Fprintln(w, "battery\tnone detected\t")
	}

	if snap.Mobile {
		fmt.Fprintln(w, "device\tmobile\t")
	}

	fmt.Fprintf(w, "score\t%d/100 -> %s tier recommended\t\n", snap.Score, snap.RecommendedTier)
	w.Flush()
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().Bool("json", false, "Print the snapshot as JSON")
	probeCmd.Flags().Bool("no-cache", false, "Ignore the cached snapshot and re-probe")
}
