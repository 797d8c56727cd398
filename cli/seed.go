package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"artwaves-catalog/config"
	"artwaves-catalog/database"
)

func newSeedCmd() *cobra.Command {
	var (
		file    string
		backend string
		dsn     string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a catalog snapshot into the sqlite or mongo backend",
		Long: `Replace the contents of a catalog backend with a db.json snapshot.
Connection settings come from the environment (SQLITE_PATH, MONGO_URI,
MONGO_DATABASE) unless --dsn is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := *cfg
			target.Backend = backend
			switch backend {
			case config.BackendSQLite:
				if dsn != "" {
					target.SQLitePath = dsn
				}
			case config.BackendMongo:
				if dsn != "" {
					target.MongoURI = dsn
				}
			default:
				return fmt.Errorf("cannot seed backend %q (want sqlite or mongo)", backend)
			}

			data, err := database.ReadCatalogFile(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			dst, err := database.Open(ctx, &target, logger)
			if err != nil {
				return err
			}
			defer dst.Close()

			if err := database.Seed(ctx, dst, data); err != nil {
				return err
			}
			logger.Info("catalog seeded", "backend", backend, "products", len(data.Products), "categories", len(data.Categories))
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products in %d categories into %s\n",
				len(data.Products), len(data.Categories), backend)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", cfg.CatalogFile, "Catalog snapshot (db.json)")
	cmd.Flags().StringVar(&backend, "backend", config.BackendSQLite, "Target backend (sqlite, mongo)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "SQLite path or MongoDB URI, overriding the environment")
	return cmd
}
