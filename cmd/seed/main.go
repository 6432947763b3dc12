package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/delcom/foodshare/config"
	"github.com/delcom/foodshare/pkg/helpers"
)

// Seeds a demo user and a couple of donations for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@foodshare.local"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, "Demo User", email, hash).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", userID, email, password)

	donations := []struct {
		name     string
		location string
		category string
		isHalal  bool
		portion  int
	}{
		{"Nasi Kotak Ayam", "Jl. Sudirman 12", "Makanan Berat", true, 10},
		{"Roti Sisa Bazar", "Balai Warga RW 05", "Snack", true, 24},
		{"Aneka Minuman Botol", "Kantor Kelurahan", "Minuman", false, 12},
	}
	for _, d := range donations {
		if _, err := db.Exec(`
			INSERT INTO donations (name, location, category, is_halal, portion, description, user_id)
			VALUES ($1, $2, $3, $4, $5, '', $6)
		`, d.name, d.location, d.category, d.isHalal, d.portion, userID); err != nil {
			log.Fatalf("failed to seed donation %q: %v", d.name, err)
		}
	}
	fmt.Printf("seeded %d donations\n", len(donations))
}
