// cmd/analyze/main.go
//
// analyze runs one computation over CSV inputs and writes the results to a
// CSV file, optionally persisting a snapshot to Postgres and uploading the
// output to object storage.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stockwise/internal/config"
	"github.com/andresuchdata/stockwise/internal/domain"
	"github.com/andresuchdata/stockwise/internal/engine"
	"github.com/andresuchdata/stockwise/internal/export"
	"github.com/andresuchdata/stockwise/internal/ingest"
	"github.com/andresuchdata/stockwise/internal/repository/postgres"
	"github.com/andresuchdata/stockwise/internal/storage"
	"github.com/andresuchdata/stockwise/pkg/logger"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "analyze",
		Usage: "Compute replenishment targets and suggestions from CSV inputs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "products",
				Usage:    "Path to the products CSV",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "transactions",
				Usage: "Path to the transactions CSV",
			},
			&cli.StringFlag{
				Name:  "purchase-orders",
				Usage: "Path to the purchase orders CSV",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output CSV path",
				Value: "./results.csv",
			},
			&cli.Float64Flag{
				Name:  "service-level",
				Usage: "Global service level (0,1)",
			},
			&cli.Float64Flag{
				Name:  "growth-factor",
				Usage: "Demand growth multiplier",
			},
			&cli.IntFlag{
				Name:  "order-cycle-days",
				Usage: "Replenishment cycle length in days",
			},
			&cli.StringFlag{
				Name:  "stock-basis",
				Usage: "Stock reading used for classification (physical or available)",
			},
			&cli.StringFlag{
				Name:  "lead-time-mode",
				Usage: "Lead time aggregation (AVERAGE or MAX)",
			},
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Persist the snapshot to this Postgres database",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:  "storage-prefix",
				Usage: "Fetch the input CSVs from object storage under this prefix instead of the local filesystem",
			},
			&cli.StringFlag{
				Name:  "upload-key",
				Usage: "Upload the output CSV to object storage under this key",
			},
		},
		Action: runAnalyze,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("analyze failed")
	}
}

func runAnalyze(c *cli.Context) error {
	cfg := config.Load()
	engineCfg := cfg.Engine.ServiceLevelConfig()
	applyOverrides(&engineCfg, c)

	var err error
	productsPath := c.String("products")
	transactionsPath := c.String("transactions")
	purchaseOrdersPath := c.String("purchase-orders")

	if prefix := c.String("storage-prefix"); prefix != "" {
		productsPath, transactionsPath, purchaseOrdersPath, err = fetchInputs(c, prefix, productsPath, transactionsPath, purchaseOrdersPath)
		if err != nil {
			return err
		}
	}

	products, err := ingest.LoadProducts(productsPath)
	if err != nil {
		return err
	}

	var transactions []domain.Transaction
	if transactionsPath != "" {
		if transactions, err = ingest.LoadTransactions(transactionsPath); err != nil {
			return err
		}
	}

	var purchaseOrders []domain.PurchaseOrder
	if purchaseOrdersPath != "" {
		if purchaseOrders, err = ingest.LoadPurchaseOrders(purchaseOrdersPath); err != nil {
			return err
		}
	}

	start := time.Now()
	results := engine.Compute(c.Context, products, transactions, purchaseOrders, engineCfg)
	logger.Log.Info().
		Int("products", len(products)).
		Int("results", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("computation finished")

	outPath := c.String("out")
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := export.SaveResults(outPath, results); err != nil {
		return err
	}
	logger.Log.Info().Str("path", outPath).Msg("results written")

	if dbURL := c.String("db-url"); dbURL != "" {
		db, err := postgres.NewDBFromURL(dbURL)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := postgres.NewAnalysisRepository(db)
		runID, err := repo.SaveSnapshot(c.Context, results)
		if err != nil {
			return err
		}
		logger.Log.Info().Int64("run_id", runID).Msg("snapshot persisted")
	}

	if key := c.String("upload-key"); key != "" {
		if err := uploadResults(c, key, results); err != nil {
			return err
		}
	}

	return nil
}

// fetchInputs downloads the named input objects from object storage into a
// temporary directory and returns their local paths. The products input must
// exist; the other two stay optional.
func fetchInputs(c *cli.Context, prefix, productsName, transactionsName, purchaseOrdersName string) (string, string, string, error) {
	client, err := newStorageClient()
	if err != nil {
		return "", "", "", err
	}

	destDir, err := os.MkdirTemp("", "stockwise-inputs-")
	if err != nil {
		return "", "", "", fmt.Errorf("failed to create download directory: %w", err)
	}

	fetcher := &inputFetcher{client: client, destDir: destDir}
	local, err := fetcher.fetch(c.Context, prefix, []string{productsName, transactionsName, purchaseOrdersName})
	if err != nil {
		return "", "", "", err
	}

	productsPath, ok := local[productsName]
	if !ok {
		return "", "", "", fmt.Errorf("products object %s not found under prefix %s", productsName, prefix)
	}

	return productsPath, local[transactionsName], local[purchaseOrdersName], nil
}

func newStorageClient() (storage.ObjectStorage, error) {
	cfg := config.Load()
	if !cfg.Storage.Enabled {
		return nil, fmt.Errorf("object storage requested but STORAGE_ENABLED is false")
	}

	return storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
}

func uploadResults(c *cli.Context, key string, results []domain.AnalysisResult) error {
	client, err := newStorageClient()
	if err != nil {
		return err
	}

	buf, err := export.ResultsCSV(results)
	if err != nil {
		return err
	}
	if err := client.UploadObject(c.Context, key, buf.Bytes()); err != nil {
		return err
	}

	logger.Log.Info().Str("key", key).Int("bytes", buf.Len()).Msg("results uploaded")
	return nil
}

func applyOverrides(cfg *domain.ServiceLevelConfig, c *cli.Context) {
	if v := c.Float64("service-level"); v > 0 && v < 1 {
		cfg.ServiceLevel = v
	}
	if v := c.Float64("growth-factor"); v > 0 {
		cfg.GrowthFactor = v
	}
	if v := c.Int("order-cycle-days"); v > 0 {
		cfg.OrderCycleDays = v
	}
	if v := strings.TrimSpace(c.String("stock-basis")); v != "" {
		if strings.EqualFold(v, string(domain.BasisAvailable)) {
			cfg.StockBasis = domain.BasisAvailable
		} else {
			cfg.StockBasis = domain.BasisPhysical
		}
	}
	if v := strings.TrimSpace(c.String("lead-time-mode")); v != "" {
		if strings.EqualFold(v, string(domain.LeadTimeMax)) {
			cfg.LeadTimeMode = domain.LeadTimeMax
		} else {
			cfg.LeadTimeMode = domain.LeadTimeAverage
		}
	}
}
