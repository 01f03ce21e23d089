package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/taskapi/internal/db/bunx"
	"github.com/terraconstructs/taskapi/internal/logging"
	"github.com/terraconstructs/taskapi/internal/seed"
)

var (
	seedUsers     int
	seedRandom    int64
	seedSkipBruce bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo data",
	Long: `Creates Bruce Wayne (login batman / alfred) with four tasks and a number of
identity provider users with one task each. Run 'taskapi db migrate' first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		random := uint64(seedRandom)
		if seedRandom == 0 {
			random = uint64(time.Now().UnixNano())
		}
		s := seed.New(db, random, logging.Component("seed"))
		ctx := cmd.Context()

		if !seedSkipBruce {
			bruce, err := s.CreateBruce(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s (%s)\n", bruce.Username, bruce.ID)
		}

		if seedUsers > 0 {
			users, err := s.CreateUsers(ctx, seedUsers)
			if err != nil {
				return err
			}
			fmt.Printf("Created %d users\n", len(users))
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedUsers, "users", 10, "Number of identity provider users to create")
	seedCmd.Flags().Int64Var(&seedRandom, "random-seed", 0, "Random seed for generated names (0 = time based)")
	seedCmd.Flags().BoolVar(&seedSkipBruce, "skip-bruce", false, "Do not create Bruce Wayne")
	rootCmd.AddCommand(seedCmd)
}
