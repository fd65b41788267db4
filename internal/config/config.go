// internal/config/config.go
package config

import (
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/andresuchdata/stockwise/internal/domain"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Engine   EngineConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// EngineConfig carries the computation defaults; it maps one-to-one onto
// domain.ServiceLevelConfig.
type EngineConfig struct {
	ServiceLevel         float64
	StockBasis           string
	OutlierThreshold     float64
	OrderCycleDays       int
	SafetyStockStrategy  string
	WeeksOfSafetyStock   float64
	LeadTimeMode         string
	GrowthFactor         float64
	RebalancingBias      float64
	ReplenishmentModel   string
	OrderPlacementCost   float64
	HoldingCostAnnualPct float64
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_ENABLED", false)
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "stockwise")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_TTL_SECONDS", 60)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "")
		viper.SetDefault("STORAGE_REGION", "")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("ENGINE_SERVICE_LEVEL", 0.95)
		viper.SetDefault("ENGINE_STOCK_BASIS", string(domain.BasisPhysical))
		viper.SetDefault("ENGINE_OUTLIER_THRESHOLD", 3.0)
		viper.SetDefault("ENGINE_ORDER_CYCLE_DAYS", 14)
		viper.SetDefault("ENGINE_SAFETY_STOCK_STRATEGY", string(domain.StrategyStatistical))
		viper.SetDefault("ENGINE_WEEKS_OF_SAFETY_STOCK", 2.0)
		viper.SetDefault("ENGINE_LEAD_TIME_MODE", string(domain.LeadTimeAverage))
		viper.SetDefault("ENGINE_GROWTH_FACTOR", 1.0)
		viper.SetDefault("ENGINE_REBALANCING_BIAS", 0.0)
		viper.SetDefault("ENGINE_REPLENISHMENT_MODEL", string(domain.ModelMinMax))
		viper.SetDefault("ENGINE_ORDER_PLACEMENT_COST", 50.0)
		viper.SetDefault("ENGINE_HOLDING_COST_ANNUAL_PCT", 0.20)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Enabled:  viper.GetBool("DB_ENABLED"),
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				TTLSeconds:    viper.GetInt("CACHE_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Engine: EngineConfig{
				ServiceLevel:         viper.GetFloat64("ENGINE_SERVICE_LEVEL"),
				StockBasis:           viper.GetString("ENGINE_STOCK_BASIS"),
				OutlierThreshold:     viper.GetFloat64("ENGINE_OUTLIER_THRESHOLD"),
				OrderCycleDays:       viper.GetInt("ENGINE_ORDER_CYCLE_DAYS"),
				SafetyStockStrategy:  viper.GetString("ENGINE_SAFETY_STOCK_STRATEGY"),
				WeeksOfSafetyStock:   viper.GetFloat64("ENGINE_WEEKS_OF_SAFETY_STOCK"),
				LeadTimeMode:         viper.GetString("ENGINE_LEAD_TIME_MODE"),
				GrowthFactor:         viper.GetFloat64("ENGINE_GROWTH_FACTOR"),
				RebalancingBias:      viper.GetFloat64("ENGINE_REBALANCING_BIAS"),
				ReplenishmentModel:   viper.GetString("ENGINE_REPLENISHMENT_MODEL"),
				OrderPlacementCost:   viper.GetFloat64("ENGINE_ORDER_PLACEMENT_COST"),
				HoldingCostAnnualPct: viper.GetFloat64("ENGINE_HOLDING_COST_ANNUAL_PCT"),
			},
		}
	})

	return instance
}

// ServiceLevelConfig converts the loaded engine settings into the immutable
// computation configuration passed through the engine.
func (e EngineConfig) ServiceLevelConfig() domain.ServiceLevelConfig {
	cfg := domain.DefaultServiceLevelConfig()

	if e.ServiceLevel > 0 {
		cfg.ServiceLevel = e.ServiceLevel
	}
	if basis := strings.TrimSpace(strings.ToLower(e.StockBasis)); basis == string(domain.BasisAvailable) {
		cfg.StockBasis = domain.BasisAvailable
	}
	if e.OutlierThreshold >= 0 {
		cfg.OutlierThreshold = e.OutlierThreshold
	}
	if e.OrderCycleDays > 0 {
		cfg.OrderCycleDays = e.OrderCycleDays
	}
	if strings.EqualFold(e.SafetyStockStrategy, string(domain.StrategyWeeksOfCover)) {
		cfg.Strategy = domain.StrategyWeeksOfCover
	}
	if e.WeeksOfSafetyStock > 0 {
		cfg.WeeksOfSafetyStock = e.WeeksOfSafetyStock
	}
	if strings.EqualFold(e.LeadTimeMode, string(domain.LeadTimeMax)) {
		cfg.LeadTimeMode = domain.LeadTimeMax
	}
	if e.GrowthFactor > 0 {
		cfg.GrowthFactor = e.GrowthFactor
	}
	cfg.RebalancingBias = e.RebalancingBias
	switch strings.ToUpper(strings.TrimSpace(e.ReplenishmentModel)) {
	case string(domain.ModelPeriodicReview):
		cfg.ReplenishmentModel = domain.ModelPeriodicReview
	case string(domain.ModelFixedDays):
		cfg.ReplenishmentModel = domain.ModelFixedDays
	}
	if e.OrderPlacementCost > 0 {
		cfg.OrderPlacementCost = e.OrderPlacementCost
	}
	if e.HoldingCostAnnualPct > 0 {
		cfg.HoldingCostAnnualPct = e.HoldingCostAnnualPct
	}

	return cfg
}
