package config

import (
	"fmt"
	"math/big"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	id "gatepass/pkg/domain"
)

// Ledger modes.
const (
	LedgerModeMemory = "memory"
	LedgerModeEVM    = "evm"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	Env            string
	TrustedProxies []netip.Prefix
	RequestTimeout time.Duration

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Ledger   LedgerConfig
	Limits   RateLimitConfig

	// ExpiryCacheTTL bounds how long a pass expiry stays in Redis.
	ExpiryCacheTTL time.Duration
	// AdminAddress seeds the configuration admin on first start.
	AdminAddress common.Address
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers         string
	AuditTopic      string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
	OutboxRetention time.Duration
}

type AuthConfig struct {
	JWTSigningKey string
	Issuer        string
	Audience      string
	TokenTTL      time.Duration
}

// RateLimitConfig is applied per client IP. RequestsPerSecond <= 0 disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type LedgerConfig struct {
	Mode                string
	CustodyAddress      common.Address
	PaymentTokenAddress common.Address
	PassContractAddress common.Address
	RPCURL              string
	PrivateKeyHex       string
	ChainID             *big.Int
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Unset values fall back to development defaults; malformed values are errors.
func FromEnv() (Server, error) {
	p := &parser{}

	cfg := Server{
		Addr:           envOr("GATEPASS_ADDR", ":8080"),
		Env:            envOr("GATEPASS_ENV", "local"),
		TrustedProxies: p.prefixes("TRUSTED_PROXIES"),
		RequestTimeout: p.duration("REQUEST_TIMEOUT", 30*time.Second),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    p.int("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    p.int("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: p.duration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.int("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:         os.Getenv("KAFKA_BROKERS"),
			AuditTopic:      envOr("AUDIT_TOPIC", "gatepass.audit.events"),
			Acks:            envOr("KAFKA_ACKS", "all"),
			Retries:         p.int("KAFKA_RETRIES", 3),
			DeliveryTimeout: p.duration("KAFKA_DELIVERY_TIMEOUT", 30*time.Second),
			OutboxRetention: p.duration("OUTBOX_RETENTION", 7*24*time.Hour),
		},
		Auth: AuthConfig{
			// Development default; override in every shared environment.
			JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:        envOr("JWT_ISSUER", "gatepass"),
			Audience:      envOr("JWT_AUDIENCE", "gatepass-api"),
			TokenTTL:      p.duration("CALLER_TOKEN_TTL", 15*time.Minute),
		},
		Ledger: LedgerConfig{
			Mode:                strings.ToLower(envOr("LEDGER_MODE", LedgerModeMemory)),
			CustodyAddress:      p.address("CUSTODY_ADDRESS", "0x000000000000000000000000000000000000c0de"),
			PaymentTokenAddress: p.address("PAYMENT_TOKEN_ADDRESS", "0x00000000000000000000000000000000000005dc"),
			PassContractAddress: p.address("PASS_CONTRACT_ADDRESS", ""),
			RPCURL:              os.Getenv("ETH_RPC_URL"),
			PrivateKeyHex:       strings.TrimPrefix(os.Getenv("ETH_PRIVATE_KEY"), "0x"),
			ChainID:             p.bigInt("ETH_CHAIN_ID", 31337),
		},
		Limits: RateLimitConfig{
			RequestsPerSecond: p.float("RATE_LIMIT_RPS", 20),
			Burst:             p.int("RATE_LIMIT_BURST", 40),
		},
		ExpiryCacheTTL: p.duration("EXPIRY_CACHE_TTL", time.Hour),
		AdminAddress:   p.address("ADMIN_ADDRESS", "0x00000000000000000000000000000000000000ad"),
	}

	if p.err != nil {
		return Server{}, p.err
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	switch c.Ledger.Mode {
	case LedgerModeMemory:
	case LedgerModeEVM:
		if c.Ledger.RPCURL == "" {
			return fmt.Errorf("ETH_RPC_URL is required when LEDGER_MODE=evm")
		}
		if c.Ledger.PrivateKeyHex == "" {
			return fmt.Errorf("ETH_PRIVATE_KEY is required when LEDGER_MODE=evm")
		}
		if id.IsZeroAddress(c.Ledger.PassContractAddress) {
			return fmt.Errorf("PASS_CONTRACT_ADDRESS is required when LEDGER_MODE=evm")
		}
	default:
		return fmt.Errorf("LEDGER_MODE must be %q or %q, got %q", LedgerModeMemory, LedgerModeEVM, c.Ledger.Mode)
	}
	if id.IsZeroAddress(c.AdminAddress) {
		return fmt.Errorf("ADMIN_ADDRESS cannot be the zero address")
	}
	if id.IsZeroAddress(c.Ledger.CustodyAddress) {
		return fmt.Errorf("CUSTODY_ADDRESS cannot be the zero address")
	}
	return nil
}

// IsLocal reports whether the process runs in a developer environment.
func (c Server) IsLocal() bool {
	return c.Env == "local" || c.Env == "test"
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// parser keeps the first malformed variable so FromEnv reports one clear error.
type parser struct {
	err error
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return d
}

func (p *parser) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return f
}

func (p *parser) bigInt(key string, def int64) *big.Int {
	raw := os.Getenv(key)
	if raw == "" {
		return big.NewInt(def)
	}
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		p.fail(key, fmt.Errorf("not a base-10 integer: %q", raw))
		return big.NewInt(def)
	}
	return n
}

func (p *parser) address(key, def string) common.Address {
	raw := envOr(key, def)
	if raw == "" {
		return common.Address{}
	}
	addr, err := id.ParseAddress(raw)
	if err != nil {
		p.fail(key, err)
		return common.Address{}
	}
	return addr
}

func (p *parser) prefixes(key string) []netip.Prefix {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []netip.Prefix
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(part)
		if err != nil {
			p.fail(key, err)
			return nil
		}
		out = append(out, prefix)
	}
	return out
}
