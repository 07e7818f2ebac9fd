package main

import (
	"fmt"
	"sort"

	"github.com/bizconsole/backend/internal/bootstrap"
	"github.com/bizconsole/backend/internal/infrastructure/kvstore"
	"github.com/bizconsole/backend/internal/infrastructure/mockdata"
	"github.com/spf13/cobra"
)

var (
	seedForce bool
	seedValue uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate the CRM mock dataset",
	Long: `Generate customers, leads, opportunities and activities into the configured
key-value store. Keys that already hold data are left alone unless --force is set.
The same seed always produces the same dataset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		if cmd.Flags().Changed("seed") {
			cfg.Mock.Seed = seedValue
		}

		deps := kvstore.Deps{Logger: log}
		if cfg.KV.Backend == "sql" {
			db, err := bootstrap.OpenDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()
			deps.DB = db.DB
		}
		if rdb := bootstrap.NewRedis(cfg); rdb != nil {
			defer rdb.Close()
			deps.Redis = rdb
		}
		store, err := kvstore.New(cfg.KV, deps)
		if err != nil {
			return err
		}

		res, err := mockdata.Seed(cmd.Context(), store, bootstrap.SeedOptions(cfg, seedForce), log)
		if err != nil {
			return err
		}
		printSeedResult(cmd, res)
		return nil
	},
}

func printSeedResult(cmd *cobra.Command, res *mockdata.SeedResult) {
	keys := make([]string, 0, len(res.Written))
	for k := range res.Written {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := cmd.OutOrStdout()
	for _, k := range keys {
		fmt.Fprintf(out, "%-20s %d written\n", k, res.Written[k])
	}
	for _, k := range res.Skipped {
		fmt.Fprintf(out, "%-20s skipped (holds data, use --force)\n", k)
	}
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVarP(&seedForce, "force", "f", false, "Overwrite keys that already hold data")
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 0, "Override mock.seed")
}
