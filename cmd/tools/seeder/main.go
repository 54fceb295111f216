package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedBranches(ctx, pool)
	seedProducts(ctx, pool)

	log.Println("Seeding completed successfully!")
}

func seedBranches(ctx context.Context, pool *pgxpool.Pool) {
	branches := []string{"Matriz", "Filial Centro", "Filial Norte"}
	for _, name := range branches {
		_, err := pool.Exec(ctx, `
			INSERT INTO branch (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, name)
		if err != nil {
			log.Fatalf("Failed to seed branch %q: %v", name, err)
		}
	}
	log.Printf("Seeded %d branches", len(branches))
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) {
	// Prices are minor units of the configured currency.
	products := []struct {
		Name  string
		Price int64
		Stock int32
	}{
		{"Cerveja Skol", 1_000, 120},
		{"Guarana Antarctica", 700, 80},
		{"Agua Mineral", 300, 200},
		{"Suco de Laranja", 500, 60},
	}
	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO product (name, price, stock) VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET price = EXCLUDED.price, stock = EXCLUDED.stock
		`, p.Name, p.Price, p.Stock)
		if err != nil {
			log.Fatalf("Failed to seed product %q: %v", p.Name, err)
		}
	}
	log.Printf("Seeded %d products", len(products))
}
