package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ChainConfig describes one watched blockchain.
type ChainConfig struct {
	BlockchainKey string
	RPCEndpoint   string
	ChainID       int64
	PollInterval  time.Duration
	Confirmations uint64
}

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	// invoice id generation
	IDEpochMS  int64
	IDWorkerID int

	// settlement queue
	SettlementStream    string
	SettlementDLQStream string
	SettlementGroup     string
	ConsumerName        string
	MaxDeliveries       int64

	// background sweeps
	CacheRefreshInterval time.Duration
	LeaseTTL             time.Duration
	LtvSweepInterval     time.Duration
	ExpirySweepInterval  time.Duration

	Chains []ChainConfig
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getseconds(k string, d int) time.Duration {
	return time.Duration(getint(k, d)) * time.Second
}

func Load() *Config {
	// best effort; absent .env just means plain env vars
	_ = godotenv.Load()

	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "cryptolend"),
		MySQLUser: getenv("MYSQL_USER", "cryptolend"),
		MySQLPass: getenv("MYSQL_PASS", "cryptolend"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getint("REDIS_DB", 0),

		IDEpochMS:  int64(getint("ID_EPOCH_MS", 1577836800000)), // 2020-01-01T00:00:00Z
		IDWorkerID: getint("ID_WORKER_ID", 0),

		SettlementStream:    getenv("SETTLEMENT_STREAM", "settlement:detected"),
		SettlementDLQStream: getenv("SETTLEMENT_DLQ_STREAM", "settlement:dlq"),
		SettlementGroup:     getenv("SETTLEMENT_GROUP", "settlement_cg"),
		ConsumerName:        getenv("SETTLEMENT_CONSUMER", defaultConsumerName()),
		MaxDeliveries:       int64(getint("SETTLEMENT_MAX_DELIVERIES", 5)),

		CacheRefreshInterval: getseconds("CACHE_REFRESH_SECONDS", 30),
		LeaseTTL:             getseconds("WATCHER_LEASE_TTL_SECONDS", 15),
		LtvSweepInterval:     getseconds("LTV_SWEEP_SECONDS", 300),
		ExpirySweepInterval:  getseconds("EXPIRY_SWEEP_SECONDS", 600),
	}
	c.Chains = loadChains()
	return c
}

// loadChains parses WATCH_CHAINS, a comma-separated list of chain keys;
// each key K then has K_RPC_ENDPOINT, K_CHAIN_ID, K_POLL_SECONDS and
// K_CONFIRMATIONS vars (upper-cased key).
func loadChains() []ChainConfig {
	raw := strings.TrimSpace(os.Getenv("WATCH_CHAINS"))
	if raw == "" {
		return nil
	}
	var out []ChainConfig
	for _, key := range strings.Split(raw, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		p := strings.ToUpper(key)
		out = append(out, ChainConfig{
			BlockchainKey: key,
			RPCEndpoint:   os.Getenv(p + "_RPC_ENDPOINT"),
			ChainID:       int64(getint(p+"_CHAIN_ID", 1)),
			PollInterval:  getseconds(p+"_POLL_SECONDS", 10),
			Confirmations: uint64(getint(p+"_CONFIRMATIONS", 6)),
		})
	}
	return out
}

func defaultConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "settlementd"
	}
	return "settlementd-" + host
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.IDEpochMS < 0 {
		return errors.New("ID_EPOCH_MS must not be negative")
	}
	if c.IDWorkerID < 0 || c.IDWorkerID > 15 {
		return errors.New("ID_WORKER_ID must be in [0,15]")
	}
	for _, ch := range c.Chains {
		if ch.RPCEndpoint == "" {
			return fmt.Errorf("chain %s: missing RPC endpoint", ch.BlockchainKey)
		}
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
