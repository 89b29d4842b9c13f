package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/adaptik3d/adaptik/internal/utils"
	"github.com/adaptik3d/adaptik/pkg/catalog"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local asset registry",
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <descriptors.json>",
	Short: "Validate and register descriptors from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		descriptors, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}

		db, err := openRegistry(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		added := 0
		for _, d := range descriptors {
			if err := db.Upsert(context.Background(), d); err != nil {
				var verr *catalog.ValidationError
				if errors.As(err, &verr) {
					utils.Log.Warnf("skipping %s: %v", d.ID, verr)
					continue
				}
				return err
			}
			added++
		}

		utils.Log.Infof("registered %d of %d descriptors", added, len(descriptors))
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered assets",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openRegistry(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		descriptors, err := db.List(context.Background())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tQUALITY\tSIZE\tORIGIN")
		for _, d := range descriptors {
			origin := "-"
			if dom, ok := catalog.RegisteredDomain(d.URL); ok {
				origin = dom
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				d.ID, d.Name, d.Quality, utils.HumanBytes(d.FileSizeBytes), origin)
		}
		return w.Flush()
	},
}

var catalogRmCmd = &cobra.Command{
	Use:   "rm <asset-id>",
	Short: "Remove an asset from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openRegistry(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Remove(context.Background(), args[0]); err != nil {
			return err
		}
		utils.Log.Infof("removed %s", args[0])
		return nil
	},
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check <descriptors.json>",
	Short: "Validate a descriptor file without registering anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		descriptors, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}

		bad := 0
		for _, d := range descriptors {
			problems := catalog.Validate(d)
			if len(problems) == 0 {
				continue
			}
			bad++
			fmt.Printf("%s:\n", d.ID)
			for _, p := range problems {
				fmt.Printf("  - %s\n", p)
			}
		}

		if bad > 0 {
			return fmt.Errorf("%d of %d descriptors invalid", bad, len(descriptors))
		}
		utils.Log.Infof("all %d descriptors valid", len(descriptors))
		return nil
	},
}

func openRegistry(cmd *cobra.Command) (*catalog.DB, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = viper.GetString("catalog.db")
	}
	return catalog.Open(dbPath)
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.PersistentFlags().String("db", "", "Path to the sqlite asset registry")
	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogRmCmd)
	catalogCmd.AddCommand(catalogCheckCmd)
}
