package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kraijai/api/internal/config"
	"github.com/kraijai/api/internal/database"
	"github.com/kraijai/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

type seedMenuItem struct {
	name          string
	description   string
	price         string
	category      string
	allowToppings bool
}

type seedTopping struct {
	name     string
	price    string
	category string
}

var sampleMenu = []seedMenuItem{
	{"Som Tam Thai", "Green papaya salad with peanuts and dried shrimp", "60.00", "Salad", true},
	{"Larb Moo", "Minced pork salad with toasted rice", "80.00", "Salad", true},
	{"Gaeng Keow Wan Gai", "Green curry with chicken", "90.00", "Curry", true},
	{"Massaman Neua", "Massaman beef curry", "120.00", "Curry", true},
	{"Pad Thai Goong", "Stir-fried rice noodles with shrimp", "100.00", "Noodles", true},
	{"Cha Yen", "Thai iced tea", "35.00", "Drinks", false},
}

var sampleToppings = []seedTopping{
	{"Salted Crab", "15.00", "Salad"},
	{"Extra Chili", "0.00", "General"},
	{"Jasmine Rice", "10.00", "General"},
	{"Roti", "20.00", "Curry"},
	{"Fried Egg", "15.00", "General"},
	{"Extra Shrimp", "30.00", "Noodles"},
}

func main() {
	// CLI flags
	adminEmail := flag.String("admin-email", "", "Admin email address")
	adminPassword := flag.String("admin-password", "", "Admin password")
	staffEmail := flag.String("staff-email", "", "Staff email address")
	staffPassword := flag.String("staff-password", "", "Staff password")
	withMenu := flag.Bool("menu", true, "Seed the sample menu")
	flag.Parse()

	// Fall back to environment variables, then defaults
	fallback(adminEmail, "SEED_ADMIN_EMAIL", "admin@kraijai.app")
	fallback(adminPassword, "SEED_ADMIN_PASSWORD", "")
	fallback(staffEmail, "SEED_STAFF_EMAIL", "staff@kraijai.app")
	fallback(staffPassword, "SEED_STAFF_PASSWORD", "")
	if *adminPassword == "" || *staffPassword == "" {
		log.Println("WARNING: Using default password 'password123'. Change immediately in production!")
		fallback(adminPassword, "", "password123")
		fallback(staffPassword, "", "password123")
	}

	cfg := config.Load(".env")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Seed in a transaction: everything or nothing
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	q := database.New(tx)
	adminID, err := seedProfile(ctx, q, *adminEmail, *adminPassword, "Kraijai Admin", enum.UserRoleAdmin)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	staffID, err := seedProfile(ctx, q, *staffEmail, *staffPassword, "Kraijai Staff", enum.UserRoleStaff)
	if err != nil {
		log.Fatalf("Failed to seed staff: %v", err)
	}

	if *withMenu {
		if err := seedMenu(ctx, tx); err != nil {
			log.Fatalf("Failed to seed menu: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed completed successfully")
	log.Printf("Admin ID: %s", adminID)
	log.Printf("Staff ID: %s", staffID)
}

func fallback(v *string, env, def string) {
	if *v != "" {
		return
	}
	if env != "" {
		*v = os.Getenv(env)
	}
	if *v == "" {
		*v = def
	}
}

// seedProfile creates or updates a login. Re-running the seed resets the
// password.
func seedProfile(ctx context.Context, q *database.Queries, email, password, fullName, role string) (uuid.UUID, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	p, err := q.UpsertProfile(ctx, database.UpsertProfileParams{
		Email:          email,
		HashedPassword: string(hashed),
		FullName:       fullName,
		Role:           role,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert profile %s: %w", email, err)
	}

	log.Printf("Seeded %s '%s' (ID: %s)", role, email, p.ID)
	return p.ID, nil
}

// seedMenu inserts the sample dishes and toppings, skipping any name that
// already exists.
func seedMenu(ctx context.Context, tx pgx.Tx) error {
	for _, it := range sampleMenu {
		tag, err := tx.Exec(ctx, `
			INSERT INTO menu_items (name, description, price, category, is_available, allow_toppings)
			SELECT $1, $2, $3::numeric, $4, true, $5
			WHERE NOT EXISTS (SELECT 1 FROM menu_items WHERE name = $1)
		`, it.name, it.description, it.price, it.category, it.allowToppings)
		if err != nil {
			return fmt.Errorf("insert menu item %s: %w", it.name, err)
		}
		if tag.RowsAffected() == 0 {
			log.Printf("Menu item '%s' already exists, skipping", it.name)
		}
	}

	for _, t := range sampleToppings {
		tag, err := tx.Exec(ctx, `
			INSERT INTO toppings (name, price, category, is_available)
			SELECT $1, $2::numeric, $3, true
			WHERE NOT EXISTS (SELECT 1 FROM toppings WHERE name = $1)
		`, t.name, t.price, t.category)
		if err != nil {
			return fmt.Errorf("insert topping %s: %w", t.name, err)
		}
		if tag.RowsAffected() == 0 {
			log.Printf("Topping '%s' already exists, skipping", t.name)
		}
	}

	log.Printf("Sample menu ready (%d items, %d toppings)", len(sampleMenu), len(sampleToppings))
	return nil
}
