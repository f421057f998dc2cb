package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/tronkit/tronkit/pkg/journal"
	"github.com/tronkit/tronkit/pkg/log"
	"github.com/tronkit/tronkit/pkg/node"
)

const (
	configDirPathEnv     = "TRONKIT_CONFIG_DIR_PATH"
	defaultConfigDirPath = "."
	// defaultJournalFile is the sqlite journal used when no database name is
	// configured, so sends stay visible to later runs.
	defaultJournalFile = "tronkit.db"
)

// envConfig is everything tronkit reads from the environment.
type envConfig struct {
	Network     string        `env:"TRONKIT_NETWORK" env-default:""`
	APIKey      string        `env:"TRONKIT_API_KEY" env-default:""`
	PrivateKey  string        `env:"TRONKIT_PRIVATE_KEY" env-default:""`
	MetricsFile string        `env:"TRONKIT_METRICS_TEXTFILE" env-default:""`
	Timeout     time.Duration `env:"TRONKIT_NODE_TIMEOUT" env-default:"30s"`
	Log         log.Config
	Database    journal.DatabaseConfig
}

// Config represents the overall application configuration
type Config struct {
	network       NetworkConfig
	dbConf        journal.DatabaseConfig
	privateKeyHex string
	metricsFile   string
	nodeTimeout   time.Duration
}

func configDirPath() string {
	if dir := os.Getenv(configDirPathEnv); dir != "" {
		return dir
	}
	return defaultConfigDirPath
}

// loadDotEnv loads <config dir>/.env into the process environment. Variables
// that are already set win. It reports whether a file was found.
func loadDotEnv() bool {
	return godotenv.Load(filepath.Join(configDirPath(), ".env")) == nil
}

// LoadLogConfig reads the logger settings from the environment.
func LoadLogConfig() (log.Config, error) {
	var conf log.Config
	if err := cleanenv.ReadEnv(&conf); err != nil {
		return log.Config{}, err
	}
	return conf, nil
}

// LoadConfig builds configuration from environment variables and
// networks.yaml. The .env file must already be loaded.
func LoadConfig(logger log.Logger) (*Config, error) {
	logger = logger.WithName("config")

	var env envConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		logger.Error("failed to read env", "error", err)
		return nil, err
	}

	// TRONKIT_DATABASE_URL takes precedence over the individual fields.
	dbConf := env.Database
	if dbConf.URL != "" {
		parsed, err := journal.ParseConnectionString(dbConf.URL)
		if err != nil {
			logger.Error("failed to parse connection string", "error", err)
			return nil, err
		}
		dbConf = parsed
	}

	dir := configDirPath()
	if (dbConf.Driver == "sqlite" || dbConf.Driver == "") && dbConf.Name == "" {
		dbConf.Name = filepath.Join(dir, defaultJournalFile)
	}

	networks, err := LoadNetworks(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load networks: %w", err)
	}
	network, err := networks.Get(env.Network)
	if err != nil {
		return nil, err
	}
	if network.APIKey == "" {
		network.APIKey = env.APIKey
	}
	logger.Info("using network", "name", network.Name, "fullNode", network.FullNode, "configDir", dir)

	return &Config{
		network:       network,
		dbConf:        dbConf,
		privateKeyHex: env.PrivateKey,
		metricsFile:   env.MetricsFile,
		nodeTimeout:   env.Timeout,
	}, nil
}

// nodeConfig converts the selected network into HTTP node settings.
func (c *Config) nodeConfig() node.Config {
	cfg := node.DefaultConfig
	cfg.FullNode = c.network.FullNode
	cfg.SolidityNode = c.network.SolidityNode
	cfg.Explorer = c.network.Explorer
	cfg.APIKey = c.network.APIKey
	cfg.RetryMax = c.network.Retries
	if c.nodeTimeout > 0 {
		cfg.Timeout = c.nodeTimeout
	}
	return cfg
}
