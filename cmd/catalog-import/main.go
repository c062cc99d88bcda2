// Command catalog-import loads gzipped JSONL product feeds into the catalog.
// Feeds from multiple suppliers may overlap; entries already imported in this
// run are skipped via a bloom filter keyed on supplier SKU.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/catalog"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 50_000

	defaultLowStockThreshold = 5
)

// feedEntry is one product line in a supplier feed.
type feedEntry struct {
	SKU                string     `json:"sku"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Price              string     `json:"price"`
	Category           string     `json:"category"`
	DiscountPercentage string     `json:"discount_percentage"`
	DiscountStart      *time.Time `json:"discount_start"`
	DiscountEnd        *time.Time `json:"discount_end"`
	Stock              int        `json:"stock"`
	Featured           bool       `json:"featured"`
	ImageURL           string     `json:"image_url"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz product feeds")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz feeds found under %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	products := repository.NewProductRepository(pool)

	// Feeds may repeat SKUs across suppliers; first occurrence wins within a
	// run. The filter is shared across workers behind a mutex since bloom
	// writes are not concurrency safe.
	var (
		mu   sync.Mutex
		seen = bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	)

	slog.Info("importing feeds", slog.Int("files", len(files)))

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(importFeed(ctx, f, products, &mu, seen))
	}
	return g.Wait()
}

func importFeed(
	ctx context.Context,
	path string,
	products *repository.ProductRepository,
	mu *sync.Mutex,
	seen *bloom.BloomFilter,
) func() error {
	return func() error {
		var imported, skipped uint64

		err := streamGzFile(ctx, path, func(line []byte) error {
			var entry feedEntry
			if err := json.Unmarshal(line, &entry); err != nil {
				slog.Warn("skipping malformed feed line",
					slog.String("file", filepath.Base(path)),
					slog.String("error", err.Error()),
				)
				return nil
			}
			if entry.SKU == "" || entry.Name == "" {
				skipped++
				return nil
			}

			mu.Lock()
			dup := seen.TestString(entry.SKU)
			if !dup {
				seen.AddString(entry.SKU)
			}
			mu.Unlock()
			if dup {
				skipped++
				return nil
			}

			p, err := toProduct(entry)
			if err != nil {
				slog.Warn("skipping invalid feed entry",
					slog.String("file", filepath.Base(path)),
					slog.String("sku", entry.SKU),
					slog.String("error", err.Error()),
				)
				return nil
			}

			if err := products.Upsert(ctx, p); err != nil {
				return errors.Wrapf(err, "upsert product sku %s", entry.SKU)
			}

			imported++
			if imported%progressEvery == 0 {
				slog.Info("import progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("imported", imported),
				)
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "import feed %s", path)
		}

		slog.Info("feed complete",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("imported", imported),
			slog.Uint64("skipped", skipped),
		)
		return nil
	}
}

// toProduct converts a feed entry, deriving a stable product ID from the SKU
// so repeated imports update in place.
func toProduct(entry feedEntry) (*catalog.Product, error) {
	price, err := decimal.NewFromString(entry.Price)
	if err != nil {
		return nil, errors.Wrap(err, "parse price")
	}
	pct := decimal.Zero
	if entry.DiscountPercentage != "" {
		pct, err = decimal.NewFromString(entry.DiscountPercentage)
		if err != nil {
			return nil, errors.Wrap(err, "parse discount percentage")
		}
	}

	return &catalog.Product{
		ID:                 uuid.NewSHA1(uuid.NameSpaceOID, []byte(entry.SKU)).String(),
		Name:               entry.Name,
		Description:        entry.Description,
		Price:              price,
		Category:           entry.Category,
		DiscountPercentage: pct,
		DiscountStart:      entry.DiscountStart,
		DiscountEnd:        entry.DiscountEnd,
		Stock:              entry.Stock,
		LowStockThreshold:  defaultLowStockThreshold,
		Featured:           entry.Featured,
		ImageURL:           entry.ImageURL,
	}, nil
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
