package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <asset-id>",
	Short: "Download an asset through the loading controller",
	Long: `Looks the asset up in the catalog and retrieves it through the loading
lifecycle (pending -> loading -> processing -> ready), printing progress as
it streams. A failed download can be retried with --retries.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		retries, _ := cmd.Flags().GetInt("retries")

		descriptors, err := loadDescriptors(cmd)
		if err != nil {
			return err
		}

		desc := findDescriptor(descriptors, args[0])
		if desc == nil {
			return fmt.Errorf("asset %s not in catalog", args[0])
		}

		return downloadAsset(cmd, *desc, out, retries)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().String("catalog", "", "Read descriptors from a JSON file instead of the registry")
	fetchCmd.Flags().String("db", "", "Path to the sqlite asset registry")
	fetchCmd.Flags().StringP("out", "o", "", "Output file (default <asset-id>.bin)")
	fetchCmd.Flags().Int("retries", 0, "Extra attempts after a failed download")
}
