package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	LockChain     ChainConfig        `yaml:"lock_chain"`
	MintChain     ChainConfig        `yaml:"mint_chain"`
	Signer        SignerConfig       `yaml:"signer"`
	Relay         RelayConfig        `yaml:"relay"`
	Notifications NotificationConfig `yaml:"notifications"`
	Auth          AuthConfig         `yaml:"auth"`
	Monitoring    MonitoringConfig   `yaml:"monitoring"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `yaml:"host" default:"0.0.0.0"`
	Port              int           `yaml:"port" default:"8080" validate:"gt=0,lt=65536"`
	ReadTimeout       time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout      time.Duration `yaml:"write_timeout" default:"15s"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" default:"60s"`
	MiddlewareTimeout time.Duration `yaml:"middleware_timeout" default:"60s" validate:"gt=0"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" default:"30s"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database" default:"relayer"`
	SSLMode  string `yaml:"ssl_mode" default:"disable" validate:"oneof=disable require verify-ca verify-full"`
}

// ChainConfig describes one side of the bridge. The lock chain is observed for
// Locked events, the mint chain receives mintRemote transactions.
type ChainConfig struct {
	Name            string `yaml:"name" validate:"required"`
	RPCURL          string `yaml:"rpc_url" validate:"required,url"`
	ChainID         int64  `yaml:"chain_id"`
	ContractAddress string `yaml:"contract_address" validate:"omitempty,eth_addr"`
	// DeploymentFile is a deploy-N1.json / deploy-N2.json style file holding the
	// contract address under DeploymentKey. Used when ContractAddress is empty.
	DeploymentFile string `yaml:"deployment_file"`
	DeploymentKey  string `yaml:"deployment_key"`

	RequestTimeout time.Duration `yaml:"request_timeout" default:"15s" validate:"gt=0"`
	RPCRetries     uint          `yaml:"rpc_retries" default:"3"`
	RPCRetryDelay  time.Duration `yaml:"rpc_retry_delay" default:"2s"`

	// Observation (lock chain)
	StartBlock        uint64        `yaml:"start_block"`
	ReorgSafetyMargin uint64        `yaml:"reorg_safety_margin" default:"5"`
	MaxBlockRange     uint64        `yaml:"max_block_range" default:"2000" validate:"gt=0"`
	PollingInterval   time.Duration `yaml:"polling_interval" default:"5s" validate:"gt=0"`

	// Submission (mint chain)
	GasLimit            uint64        `yaml:"gas_limit"`
	MaxGasPrice         string        `yaml:"max_gas_price" validate:"omitempty,numeric"`
	Confirmations       uint64        `yaml:"confirmations" default:"1" validate:"gte=1"`
	ConfirmationTimeout time.Duration `yaml:"confirmation_timeout" default:"2m" validate:"gt=0"`
	ReceiptPollInterval time.Duration `yaml:"receipt_poll_interval" default:"2s" validate:"gt=0"`
}

// SignerConfig holds the mint chain signing credential. Exactly one of
// PrivateKey or SealedKey must be set.
type SignerConfig struct {
	PrivateKey string `yaml:"private_key"`
	SealedKey  string `yaml:"sealed_key"`
	Passphrase string `yaml:"passphrase"`
}

// RelayConfig controls the delivery queue and relay workers
type RelayConfig struct {
	Workers           int           `yaml:"workers" default:"4" validate:"gt=0"`
	MaxAttempts       uint32        `yaml:"max_attempts" default:"5" validate:"gt=0"`
	BackoffInitial    time.Duration `yaml:"backoff_initial" default:"2s" validate:"gt=0"`
	BackoffMax        time.Duration `yaml:"backoff_max" default:"2m"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" default:"1" validate:"gte=1"`
	DequeueInterval   time.Duration `yaml:"dequeue_interval" default:"1s" validate:"gt=0"`
	DrainTimeout      time.Duration `yaml:"drain_timeout" default:"30s" validate:"gt=0"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval" default:"30s" validate:"gt=0"`
	VerifyRelayer     bool          `yaml:"verify_relayer" default:"true"`
	ObserveMints      bool          `yaml:"observe_mints" default:"true"`
}

// NotificationConfig configures the progress feed
type NotificationConfig struct {
	BufferSize      int           `yaml:"buffer_size" default:"1024" validate:"gt=0"`
	WebSocket       bool          `yaml:"websocket" default:"true"`
	ClientBuffer    int           `yaml:"client_buffer" default:"64" validate:"gt=0"`
	RedisURL        string        `yaml:"redis_url" validate:"omitempty,url"`
	RedisChannel    string        `yaml:"redis_channel" default:"lockmint:notifications"`
	PublishTimeout  time.Duration `yaml:"publish_timeout" default:"2s" validate:"gt=0"`
	LogNotification bool          `yaml:"log" default:"false"`
}

// AuthConfig protects the operator endpoints
type AuthConfig struct {
	OperatorSecret string `yaml:"operator_secret"`
	Issuer         string `yaml:"issuer"`
}

// MonitoringConfig contains monitoring settings
type MonitoringConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// envOverlay lists the environment variables read on top of the file. The
// first four keep the names used by the original deployment scripts.
type envOverlay struct {
	LockRPCURL        *string `envconfig:"RPC_URL_N1"`
	MintRPCURL        *string `envconfig:"RPC_URL_N2"`
	StartBlock        *uint64 `envconfig:"START_BLOCK_N1"`
	PrivateKey        *string `envconfig:"PRIVATE_KEY_RELAYER"`
	ReorgSafetyMargin *uint64 `envconfig:"REORG_SAFETY_MARGIN"`
	LockChainID       *int64  `envconfig:"CHAIN_ID_N1"`
	MintChainID       *int64  `envconfig:"CHAIN_ID_N2"`
	LockContract      *string `envconfig:"LOCK_LEDGER_ADDRESS"`
	MintContract      *string `envconfig:"MINT_LEDGER_ADDRESS"`

	SealedKey  *string `envconfig:"RELAYER_SEALED_KEY"`
	Passphrase *string `envconfig:"RELAYER_KEY_PASSPHRASE"`

	Workers           *int           `envconfig:"RELAY_WORKERS"`
	MaxAttempts       *uint32        `envconfig:"RELAY_MAX_ATTEMPTS"`
	BackoffInitial    *time.Duration `envconfig:"RELAY_BACKOFF_INITIAL"`
	BackoffMax        *time.Duration `envconfig:"RELAY_BACKOFF_MAX"`
	BackoffMultiplier *float64       `envconfig:"RELAY_BACKOFF_MULTIPLIER"`
	DrainTimeout      *time.Duration `envconfig:"RELAY_DRAIN_TIMEOUT"`

	DBHost     *string `envconfig:"DB_HOST"`
	DBPort     *int    `envconfig:"DB_PORT"`
	DBUser     *string `envconfig:"DB_USER"`
	DBPassword *string `envconfig:"DB_PASSWORD"`
	DBName     *string `envconfig:"DB_NAME"`

	RedisURL       *string `envconfig:"REDIS_URL"`
	OperatorSecret *string `envconfig:"OPERATOR_JWT_SECRET"`
	LogLevel       *string `envconfig:"LOG_LEVEL"`
	HTTPPort       *int    `envconfig:"HTTP_PORT"`
}

// GetConnectionString returns the PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// IsWebSocket reports whether the endpoint should be dialled as a websocket.
func (c *ChainConfig) IsWebSocket() bool {
	return strings.HasPrefix(c.RPCURL, "ws://") || strings.HasPrefix(c.RPCURL, "wss://")
}

// Load builds the configuration: struct defaults first, then the YAML file at
// configPath, then a .env file next to it (if any), then environment variables.
// The result is validated.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment-only deployments are allowed
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dotenv := filepath.Join(filepath.Dir(configPath), ".env")
	if _, err := os.Stat(dotenv); err == nil {
		if err := godotenv.Load(dotenv); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyChainNames(cfg)

	if err := resolveContractAddress(&cfg.LockChain); err != nil {
		return nil, err
	}
	if err := resolveContractAddress(&cfg.MintChain); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var e envOverlay
	if err := envconfig.Process("", &e); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	set(&cfg.LockChain.RPCURL, e.LockRPCURL)
	set(&cfg.MintChain.RPCURL, e.MintRPCURL)
	set(&cfg.LockChain.StartBlock, e.StartBlock)
	set(&cfg.Signer.PrivateKey, e.PrivateKey)
	set(&cfg.LockChain.ReorgSafetyMargin, e.ReorgSafetyMargin)
	set(&cfg.LockChain.ChainID, e.LockChainID)
	set(&cfg.MintChain.ChainID, e.MintChainID)
	set(&cfg.LockChain.ContractAddress, e.LockContract)
	set(&cfg.MintChain.ContractAddress, e.MintContract)

	set(&cfg.Signer.SealedKey, e.SealedKey)
	set(&cfg.Signer.Passphrase, e.Passphrase)

	set(&cfg.Relay.Workers, e.Workers)
	set(&cfg.Relay.MaxAttempts, e.MaxAttempts)
	set(&cfg.Relay.BackoffInitial, e.BackoffInitial)
	set(&cfg.Relay.BackoffMax, e.BackoffMax)
	set(&cfg.Relay.BackoffMultiplier, e.BackoffMultiplier)
	set(&cfg.Relay.DrainTimeout, e.DrainTimeout)

	set(&cfg.Database.Host, e.DBHost)
	set(&cfg.Database.Port, e.DBPort)
	set(&cfg.Database.User, e.DBUser)
	set(&cfg.Database.Password, e.DBPassword)
	set(&cfg.Database.Database, e.DBName)

	set(&cfg.Notifications.RedisURL, e.RedisURL)
	set(&cfg.Auth.OperatorSecret, e.OperatorSecret)
	set(&cfg.Logging.Level, e.LogLevel)
	set(&cfg.Server.Port, e.HTTPPort)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func applyChainNames(cfg *Config) {
	if cfg.LockChain.Name == "" {
		cfg.LockChain.Name = "lock"
	}
	if cfg.MintChain.Name == "" {
		cfg.MintChain.Name = "mint"
	}
	if cfg.LockChain.DeploymentKey == "" {
		cfg.LockChain.DeploymentKey = "sender"
	}
	if cfg.MintChain.DeploymentKey == "" {
		cfg.MintChain.DeploymentKey = "receiver"
	}
}

// resolveContractAddress reads the contract address from the deployment file
// when it is not configured directly.
func resolveContractAddress(c *ChainConfig) error {
	if c.ContractAddress != "" || c.DeploymentFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.DeploymentFile)
	if err != nil {
		return fmt.Errorf("failed to read deployment file for %s: %w", c.Name, err)
	}
	var deployment map[string]any
	if err := json.Unmarshal(data, &deployment); err != nil {
		return fmt.Errorf("failed to parse deployment file %s: %w", c.DeploymentFile, err)
	}
	addr, ok := deployment[c.DeploymentKey].(string)
	if !ok || addr == "" {
		return fmt.Errorf("deployment file %s has no %q address", c.DeploymentFile, c.DeploymentKey)
	}
	c.ContractAddress = addr
	return nil
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.LockChain.ContractAddress == "" {
		return fmt.Errorf("invalid config: lock_chain.contract_address is required")
	}
	if cfg.MintChain.ContractAddress == "" {
		return fmt.Errorf("invalid config: mint_chain.contract_address is required")
	}
	if (cfg.Signer.PrivateKey == "") == (cfg.Signer.SealedKey == "") {
		return fmt.Errorf("invalid config: exactly one of signer.private_key or signer.sealed_key is required")
	}
	if cfg.Signer.SealedKey != "" && cfg.Signer.Passphrase == "" {
		return fmt.Errorf("invalid config: signer.passphrase is required with a sealed key")
	}
	if cfg.Relay.BackoffMax < cfg.Relay.BackoffInitial {
		return fmt.Errorf("invalid config: relay.backoff_max must be >= relay.backoff_initial")
	}
	return nil
}
