package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pollwave/pollwave/internal/api"
	"github.com/pollwave/pollwave/internal/db"
	"github.com/pollwave/pollwave/internal/middleware"
	"github.com/pollwave/pollwave/internal/payments"
	"github.com/pollwave/pollwave/internal/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	addr := utils.SafeEnv("POLLWAVE_ADDR", ":8080")
	sqlitePath := os.Getenv("POLLWAVE_SQLITE_PATH")
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")

	store, err := openStore(sqlitePath)
	if err != nil {
		log.Fatalf("store init: %v", err)
	}
	provider := payments.NewStripeProvider(stripeKey)

	handler := middleware.CORS(api.NewRouter(store, provider).Handler())

	log.Printf("PollWave server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openStore selects SQLite when a path is configured, otherwise an
// in-memory store that loses data on restart.
func openStore(sqlitePath string) (api.Store, error) {
	if sqlitePath == "" {
		log.Printf("POLLWAVE_SQLITE_PATH not set, using in-memory store")
		return api.NewMemoryStore(), nil
	}
	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(sqlitePath))
	sqliteDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.RunMigrations(sqliteDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db.NewStore(sqliteDB)
}
