package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	c := Load()
	if c.AppPort != "8080" {
		t.Fatalf("AppPort = %q", c.AppPort)
	}
	if c.SettlementStream != "settlement:detected" {
		t.Fatalf("SettlementStream = %q", c.SettlementStream)
	}
	if c.MaxDeliveries != 5 {
		t.Fatalf("MaxDeliveries = %d", c.MaxDeliveries)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate on defaults: %v", err)
	}
}

func TestLoad_Chains(t *testing.T) {
	t.Setenv("WATCH_CHAINS", "eth, polygon")
	t.Setenv("ETH_RPC_ENDPOINT", "http://eth-node:8545")
	t.Setenv("ETH_CHAIN_ID", "1")
	t.Setenv("POLYGON_RPC_ENDPOINT", "http://polygon-node:8545")
	t.Setenv("POLYGON_CHAIN_ID", "137")
	t.Setenv("POLYGON_POLL_SECONDS", "3")

	c := Load()
	if len(c.Chains) != 2 {
		t.Fatalf("chains = %d, want 2", len(c.Chains))
	}
	if c.Chains[0].BlockchainKey != "eth" || c.Chains[0].ChainID != 1 {
		t.Fatalf("eth chain misparsed: %+v", c.Chains[0])
	}
	if c.Chains[1].ChainID != 137 || c.Chains[1].PollInterval.Seconds() != 3 {
		t.Fatalf("polygon chain misparsed: %+v", c.Chains[1])
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	c := Load()

	c.IDWorkerID = 16
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "ID_WORKER_ID") {
		t.Fatalf("worker id 16: got %v", err)
	}
	c.IDWorkerID = 0

	c.IDEpochMS = -1
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "ID_EPOCH_MS") {
		t.Fatalf("negative epoch: got %v", err)
	}
	c.IDEpochMS = 0

	c.Chains = []ChainConfig{{BlockchainKey: "eth"}}
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "RPC endpoint") {
		t.Fatalf("missing endpoint: got %v", err)
	}
}

func TestMySQLDSN(t *testing.T) {
	c := Load()
	dsn := c.MySQLDSN()
	if !strings.Contains(dsn, "@tcp(mysql:3306)/cryptolend") || !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("DSN = %q", dsn)
	}
}
