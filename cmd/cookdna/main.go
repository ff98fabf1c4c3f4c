package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"cookdna/internal/app"
	"cookdna/internal/config"
	"cookdna/internal/database"
	"cookdna/internal/feed"
	"cookdna/internal/ghost"
	"cookdna/internal/logging"
	"cookdna/internal/personality"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load policy")
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	application, err := app.NewApp(db, ghost.NewClient(cfg), policy)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ingest":
		report, err := application.IngestRecipes(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Ingestion failed")
		}
		fmt.Printf("Fetched %d posts: %d saved, %d skipped, %d removed.\n",
			report.Fetched, report.Saved, report.Skipped, report.Removed)

	case "onboard":
		cmd := flag.NewFlagSet("onboard", flag.ExitOnError)
		user := cmd.String("user", "", "User ID")
		archetype := cmd.String("archetype", "", "thrill_seeker, weekend_warrior, weekday_hero or batch_planner")
		cmd.Parse(os.Args[2:])

		a, err := personality.ParseArchetype(*archetype)
		if err != nil || *user == "" {
			cmd.Usage()
			os.Exit(2)
		}
		p, err := application.Onboard(ctx, *user, a)
		if err != nil {
			log.Fatal().Err(err).Msg("Onboarding failed")
		}
		printJSON(p)

	case "feed":
		cmd := flag.NewFlagSet("feed", flag.ExitOnError)
		user := cmd.String("user", "", "User ID")
		cmd.Parse(os.Args[2:])

		cards, err := application.BuildFeed(ctx, *user, app.FeedRequest{})
		if err != nil {
			log.Fatal().Err(err).Msg("Feed failed")
		}
		printFeed(cards)

	case "plan":
		cmd := flag.NewFlagSet("plan", flag.ExitOnError)
		user := cmd.String("user", "", "User ID")
		accept := cmd.Bool("accept", false, "Accept the proposal and store its shopping list")
		cmd.Parse(os.Args[2:])

		p, err := application.ProposePlan(ctx, *user, app.PlanRequest{})
		if err != nil {
			log.Fatal().Err(err).Msg("Planning failed")
		}
		printJSON(p)
		if *accept {
			list, err := application.AcceptPlan(ctx, *user, p, nil)
			if err != nil {
				log.Fatal().Err(err).Msg("Accepting plan failed")
			}
			fmt.Println("\n=== SHOPPING LIST ===")
			for _, item := range list.Items {
				fmt.Printf("- %s\n", item)
			}
		}

	case "metrics-cleanup":
		cmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cmd.Int("days", 30, "Keep records for the last N days")
		cmd.Parse(os.Args[2:])

		affected, err := application.MetricsStore().Cleanup(ctx, *days)
		if err != nil {
			log.Fatal().Err(err).Msg("Cleanup failed")
		}
		purged, err := application.PurgeCooldowns(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Cooldown cleanup failed")
		}
		fmt.Printf("Removed %d old metric records and %d expired cooldowns.\n", affected, purged)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printFeed(cards []feed.Card) {
	type row struct {
		Kind feed.Kind `json:"kind"`
		Card feed.Card `json:"card"`
	}
	rows := make([]row, len(cards))
	for i, c := range cards {
		rows[i] = row{Kind: c.Kind(), Card: c}
	}
	printJSON(rows)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to print result")
	}
}

func printUsage() {
	fmt.Println("Usage: cookdna <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  ingest             Sync the recipe catalogue from Ghost")
	fmt.Println("  onboard            Store a profile: -user <id> -archetype <name>")
	fmt.Println("  feed               Print a feed batch: -user <id>")
	fmt.Println("  plan               Propose next week's plan: -user <id> [-accept]")
	fmt.Println("  metrics-cleanup    Remove old metric records and expired cooldowns")
}
