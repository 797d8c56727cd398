package cli

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"artwaves-catalog/catalog"
	"artwaves-catalog/database"
)

func newGenerateCmd() *cobra.Command {
	var (
		out   string
		count int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic catalog snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("--count must not be negative")
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			data := catalog.Generate(rand.New(rand.NewPCG(seed, seed)), count, time.Now())
			if err := database.WriteCatalogFile(out, data); err != nil {
				return err
			}
			logger.Debug("generated catalog", "seed", seed)
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d products in %d categories\nData written to %s\n",
				len(data.Products), len(data.Categories), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", cfg.CatalogFile, "Output file")
	cmd.Flags().IntVarP(&count, "count", "n", 100, "Number of products")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (default: time based)")
	return cmd
}
