package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0xpratik010/tridev/go/internal/dbconfig"
	"github.com/0xpratik010/tridev/go/internal/luckynumbers"
)

// Entry mirrors one record of the JSON snapshot
type Entry struct {
	ID uuid.UUID `json:"id"`
	luckynumbers.Draft
}

const defaultPath = "go/internal/assets/lucky_numbers.json"

func main() {
	path := defaultPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the JSON snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "database config: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Insert and count
	var (
		total    = len(entries)
		inserted int
		skipped  int
		errs     int
	)

	for _, e := range entries {
		if err := e.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "invalid entry %s: %v\n", e.ID, err)
			errs++
			continue
		}
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}

		cmdTag, err := pool.Exec(ctx, `
            INSERT INTO lucky_numbers (id, draw_date, slot, number, reveal_time)
            VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (id) DO NOTHING
        `,
			e.ID, e.Date, string(e.Slot), e.Number, e.RevealTime,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting lucky number %s: %v\n", e.ID, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Lucky numbers seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
	if errs > 0 {
		os.Exit(1)
	}
}
