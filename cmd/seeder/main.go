package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/pitchside/calcetto/internal/database"
	"github.com/pitchside/calcetto/internal/ledger"
	"github.com/pitchside/calcetto/internal/roster"
)

const seedTenant = "seed-tenant"

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":        "calcetto-seed.db",
		"MIGRATIONS_DIR": "./migrations",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], "", "", cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()
	defer db.Close()

	log.Info("Successfully connected to the database.")

	names := []string{
		"Rossi", "Bianchi", "Verdi", "Neri", "Gialli",
		"Blu", "Viola", "Rosa", "Marrone", "Grigi",
	}
	rosterStore := roster.New(db)
	if err := rosterStore.AddPlayers(seedTenant, names); err != nil {
		log.Fatalf("Failed to seed players: %s", err)
	}
	log.Info("Ensured seed players exist.", "count", len(names))

	ledgerStore := ledger.New(db, rosterStore)

	const numMatches = 50
	log.Info("Preparing to insert seed matches...", "total", numMatches)

	for i := 0; i < numMatches; i++ {
		// Shuffle players into two teams of five.
		shuffled := make([]string, len(names))
		copy(shuffled, names)
		rand.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		teamA := shuffled[:5]
		teamB := shuffled[5:]

		scoreA := rand.Intn(8)
		scoreB := rand.Intn(8)
		goals := spreadCounts(teamA, scoreA)
		for name, n := range spreadCounts(teamB, scoreB) {
			goals[name] = n
		}
		assists := spreadCounts(shuffled, rand.Intn(scoreA+scoreB+1))

		_, err := ledgerStore.Commit(ledger.Match{
			Tenant: seedTenant,
			Date:   fmt.Sprintf("%02d/%02d/2024", 1+rand.Intn(28), 1+rand.Intn(12)),
			TeamA:  teamA,
			TeamB:  teamB,
			Score:  fmt.Sprintf("%d-%d", scoreA, scoreB),
		}, goals, assists)
		if err != nil {
			log.Fatalf("Failed to insert seed match: %s", err)
		}
	}

	log.Info("Successfully inserted all seed matches.", "total", numMatches)
}

// spreadCounts distributes a total randomly over the given names.
func spreadCounts(names []string, total int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i < total; i++ {
		counts[names[rand.Intn(len(names))]]++
	}
	return counts
}
