// Command seed-db loads the sample catalog and creates the initial admin
// account. Safe to re-run: products upsert in place and an existing admin
// email is left untouched.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/catalog"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/user"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/repository"
)

type productJSON struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Category           string          `json:"category"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountStart      *time.Time      `json:"discount_start"`
	DiscountEnd        *time.Time      `json:"discount_end"`
	Stock              int             `json:"stock"`
	LowStockThreshold  int             `json:"low_stock_threshold"`
	Featured           bool            `json:"featured"`
	ImageURL           string          `json:"image_url"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&adminEmail, "admin-email", "", "admin account email (or OASIS_SEED_ADMIN_EMAIL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or OASIS_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("OASIS_SEED_ADMIN_EMAIL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("OASIS_SEED_ADMIN_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, repository.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if adminEmail != "" && adminPassword != "" {
		if err := seedAdmin(ctx, repository.NewUserRepository(pool), adminEmail, adminPassword); err != nil {
			return errors.Wrap(err, "seed admin")
		}
	} else {
		slog.Info("admin credentials not provided, skipping admin account")
	}

	return nil
}

func seedProducts(ctx context.Context, products *repository.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var entries []productJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(entries)))

	for _, e := range entries {
		threshold := e.LowStockThreshold
		if threshold == 0 {
			threshold = 5
		}
		p := &catalog.Product{
			ID:                 e.ID,
			Name:               e.Name,
			Description:        e.Description,
			Price:              e.Price,
			Category:           e.Category,
			DiscountPercentage: e.DiscountPercentage,
			DiscountStart:      e.DiscountStart,
			DiscountEnd:        e.DiscountEnd,
			Stock:              e.Stock,
			LowStockThreshold:  threshold,
			Featured:           e.Featured,
			ImageURL:           e.ImageURL,
		}
		if err := products.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", e.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedAdmin(ctx context.Context, users *repository.UserRepository, email, password string) error {
	slog.Info("seeding admin account", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	err = users.Create(ctx, &user.User{
		ID:           uuid.New().String(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         user.RoleAdmin,
		CreatedAt:    time.Now(),
	})
	if errors.Is(err, user.ErrEmailTaken) {
		slog.Info("admin account already exists, leaving as is")
		return nil
	}
	return err
}
