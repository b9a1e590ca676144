package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/jordanlanch/clientintel/config"
	"github.com/jordanlanch/clientintel/pkg/database"
	"github.com/jordanlanch/clientintel/pkg/logger"
	"github.com/jordanlanch/clientintel/pkg/store"
	"github.com/jordanlanch/clientintel/pkg/testdata"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(args []string) error {
	cfg := config.Load()
	genCfg := testdata.DefaultClientGeneratorConfig()

	var seed int64
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.DatabaseDriver, "driver", cfg.DatabaseDriver, "database driver (postgres or sqlite3)")
	flagSet.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "database URL (default: DATABASE_URL)")
	flagSet.IntVarP(&genCfg.Count, "count", "n", genCfg.Count, "number of clients to create")
	flagSet.IntVar(&genCfg.MaxInteractions, "max-interactions", genCfg.MaxInteractions, "maximum interactions per client")
	flagSet.Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed; equal seeds produce equal data")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	db, err := database.NewClient(cfg.DatabaseDriver, cfg.DatabaseURL, logger.New(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	log.Printf("🌱 Seeding %d clients (seed %d)...", genCfg.Count, seed)

	gen := testdata.NewClientGenerator(seed, genCfg)
	created, logged, err := seedClients(context.Background(), store.New(db), gen, time.Now().UTC())
	if err != nil {
		return err
	}

	log.Printf("✅ Created %d clients with %d interactions", created, logged)
	return nil
}

// seedClients inserts generated clients and replays their interactions
// oldest first, so contact dates end up as the generator drew them.
func seedClients(ctx context.Context, st *store.Store, gen *testdata.ClientGenerator, now time.Time) (clients, interactions int, err error) {
	for _, c := range gen.GenerateClients(now) {
		history := c.Interactions
		c.Interactions = nil
		c.ID = 0
		if err := st.CreateClient(ctx, &c); err != nil {
			return clients, interactions, err
		}
		clients++

		sort.SliceStable(history, func(i, j int) bool { return history[i].CreatedAt.Before(history[j].CreatedAt) })
		for _, in := range history {
			if _, err := st.LogInteraction(ctx, store.LogInteractionParams{
				ClientID:       c.ID,
				Type:           in.Type,
				Content:        in.Content,
				Outcome:        in.Outcome,
				PreviousStatus: c.Status,
				NextContact:    c.NextContactAt,
				At:             in.CreatedAt,
			}); err != nil {
				return clients, interactions, fmt.Errorf("client %d: %w", c.ID, err)
			}
			interactions++
		}
	}
	return clients, interactions, nil
}
