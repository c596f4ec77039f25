package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/simaogato/cpay-backend/internal/domain"
	"github.com/simaogato/cpay-backend/internal/usecase/ledger"
)

const EnvPrefix = "CPAY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Config is the runtime configuration, read from CPAY_* environment variables
type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"dev"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	GRPCAddr string `envconfig:"GRPC_ADDR" default:":8080"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":9090"`

	MockMode    bool   `envconfig:"MOCK_MODE" default:"true"`
	SeedDemo    bool   `envconfig:"SEED_DEMO" default:"true"`
	DemoAddress string `envconfig:"DEMO_ADDRESS" default:"0x742d35cc6634c0532925a3b844bc9e7595f8ff71"`

	// embedded so their variables keep the plain CPAY_ prefix
	LatencyConfig
	ChainConfig
	KafkaConfig
}

// LatencyConfig holds the simulated response time of each ledger operation
type LatencyConfig struct {
	GetBalances          time.Duration `envconfig:"LATENCY_GET_BALANCES" default:"300ms"`
	Transfer             time.Duration `envconfig:"LATENCY_TRANSFER" default:"800ms"`
	CreateInvoice        time.Duration `envconfig:"LATENCY_CREATE_INVOICE" default:"600ms"`
	PayInvoice           time.Duration `envconfig:"LATENCY_PAY_INVOICE" default:"800ms"`
	CreatePaymentRequest time.Duration `envconfig:"LATENCY_CREATE_PAYMENT_REQUEST" default:"500ms"`
	Reads                time.Duration `envconfig:"LATENCY_READS" default:"300ms"`
}

// ChainConfig is the network and contract configuration exposed to clients
type ChainConfig struct {
	ChainID          int64  `envconfig:"CHAIN_ID" default:"44787"`
	RPCURL           string `envconfig:"RPC_URL" default:"https://alfajores-forno.celo-testnet.org"`
	MerchantRegistry string `envconfig:"CONTRACT_MERCHANT_REGISTRY" default:"0x0000000000000000000000000000000000000000"`
	CPayPayments     string `envconfig:"CONTRACT_CPAY_PAYMENTS" default:"0x0000000000000000000000000000000000000000"`
	CUSD             string `envconfig:"CONTRACT_CUSD" default:"0x874069Fa1Eb16D44d622F2e0Ca25eeA172369bC1"`
}

// KafkaConfig enables the feed relay when Brokers is set
type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"cpay.feed"`
}

// Load reads optional .env files, then the environment.
// Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	if !domain.IsSupportedNetwork(c.ChainID) {
		return fmt.Errorf("unsupported chain id %d", c.ChainID)
	}
	for name, d := range c.LatencyConfig.byOperation() {
		if d < 0 {
			return fmt.Errorf("latency for %s must not be negative", name)
		}
	}
	if c.KafkaEnabled() && strings.TrimSpace(c.Topic) == "" {
		return errors.New("kafka topic is required when brokers are set")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return strings.EqualFold(c.AppEnv, AppEnvDev)
}

func (c *Config) IsProd() bool {
	return strings.EqualFold(c.AppEnv, AppEnvProd)
}

// KafkaEnabled reports whether feed items should be relayed to Kafka
func (c *Config) KafkaEnabled() bool {
	for _, b := range c.Brokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

// AppConfig returns the settings clients may see
func (c *Config) AppConfig() domain.AppConfig {
	return domain.AppConfig{
		MockMode:   c.MockMode,
		CeloRPCURL: c.RPCURL,
		ChainID:    c.ChainID,
		Contracts: domain.ContractAddresses{
			MerchantRegistry: c.MerchantRegistry,
			CPayPayments:     c.CPayPayments,
			CUSD:             c.CUSD,
		},
	}
}

// Delays converts the latency settings to per-operation delays
func (l LatencyConfig) Delays() map[ledger.Operation]time.Duration {
	return l.byOperation()
}

func (l LatencyConfig) byOperation() map[ledger.Operation]time.Duration {
	return map[ledger.Operation]time.Duration{
		ledger.OpGetBalances:          l.GetBalances,
		ledger.OpTransfer:             l.Transfer,
		ledger.OpCreateInvoice:        l.CreateInvoice,
		ledger.OpPayInvoice:           l.PayInvoice,
		ledger.OpCreatePaymentRequest: l.CreatePaymentRequest,
		ledger.OpListTransactions:     l.Reads,
		ledger.OpListInvoices:         l.Reads,
		ledger.OpListPaymentRequests:  l.Reads,
		ledger.OpListFeed:             l.Reads,
	}
}
