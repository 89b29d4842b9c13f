package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/adaptik3d/adaptik/pkg/catalog"
	"github.com/adaptik3d/adaptik/pkg/device"
	"github.com/adaptik3d/adaptik/pkg/loader"
	"github.com/adaptik3d/adaptik/pkg/scoring"
)

func main() {
	// Usage: go run *.go -catalog "assets.json" -hints "hints.json" [-fetch]

	catalogFlag := flag.String("catalog", "", "Path to a JSON asset catalog")
	hintsFlag := flag.String("hints", "", "Path to a host-reported hints document (optional)")
	fetchFlag := flag.Bool("fetch", false, "Download the recommended asset")

	// Parse the command-line flags
	flag.Parse()

	if *catalogFlag == "" {
		fmt.Println("Catalog is required. Please provide the file using -catalog flag.")
		return
	}

	var hints *device.Hints
	if *hintsFlag != "" {
		data, err := os.ReadFile(*hintsFlag)
		if err != nil {
			fmt.Println("Failed to read hints:", err)
			return
		}
		hints = device.HintsFromJSON(string(data))
	}

	descriptors, err := catalog.LoadFile(*catalogFlag)
	if err != nil {
		fmt.Println("Failed to load catalog:", err)
		return
	}

	// Probe never fails: sub-probes fall back to documented defaults
	prober, err := device.NewProber(device.ProberConfig{Hints: hints})
	if err != nil {
		fmt.Println(err)
		return
	}
	snap := prober.Probe(context.Background())
	fmt.Printf("device score %d, recommended tier %s\n", snap.Score, snap.RecommendedTier)

	engine := scoring.NewEngine(nil)
	rec, err := engine.Recommend(snap, descriptors, scoring.Preferences{})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("recommended %s (confidence %.2f)\n", rec.AssetID, rec.Confidence)
	for _, r := range rec.Reasoning {
		fmt.Println(" ", r)
	}
	for _, alt := range rec.Alternatives {
		fmt.Println("alternative:", alt.ID, alt.Quality)
	}

	if !*fetchFlag {
		return
	}

	var winner *catalog.Descriptor
	for i := range descriptors {
		if descriptors[i].ID == rec.AssetID {
			winner = &descriptors[i]
		}
	}

	// The callbacks are where a rendering host would hand the bytes to its
	// model parser; here they just report lifecycle events.
	ctrl, err := loader.NewController(loader.Config{
		Callbacks: loader.Callbacks{
			OnProgress: func(p loader.Progress) {
				fmt.Printf("\rloading %.0f%%", p.Percent)
			},
			OnLoadComplete: func(d catalog.Descriptor, data []byte) {
				fmt.Printf("\nloaded %s: %d bytes\n", d.ID, len(data))
			},
			OnError: func(err error) {
				fmt.Println("\nload failed:", err)
			},
		},
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	if err := ctrl.Load(context.Background(), *winner); err != nil {
		return
	}
	fmt.Println("final state:", ctrl.State())
}
