package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"welshStreet/internal/config"
	"welshStreet/internal/exchange"
)

type cli struct {
	t    *testing.T
	base []string
}

func newCLI(t *testing.T) cli {
	dir := t.TempDir()
	return cli{t: t, base: []string{
		"--state-file", filepath.Join(dir, "state.json"),
		"--journal", filepath.Join(dir, "journal.jsonl"),
		"--log-level", "error",
	}}
}

func (c cli) run(args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append(args, c.base...))
	err := root.Execute()
	return out.String(), err
}

func (c cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("%s: %v", args[0], err)
	}
	return out
}

func TestCLIBootstrapSwapInfo(t *testing.T) {
	c := newCLI(t)

	c.mustRun("street-mint", "--amount", "1000000000000")
	c.mustRun("bootstrap", "--amount-a", "1000000000000", "--amount-b", "1000000000000")

	var swap map[string]uint64
	if err := json.Unmarshal([]byte(c.mustRun("swap", "--direction", "a-b", "--amount", "1000000000")), &swap); err != nil {
		t.Fatalf("parse swap: %v", err)
	}
	if swap["amount-out"] != 989_020_869 || swap["fee-a"] != 10_000_000 || swap["rev-a"] != 5_000_000 {
		t.Fatalf("swap mismatch: %v", swap)
	}

	var info map[string]uint64
	if err := json.Unmarshal([]byte(c.mustRun("info")), &info); err != nil {
		t.Fatalf("parse info: %v", err)
	}
	if info["avail-a"] != 1_001_000_000_000 || info["avail-b"] != 1_000_000_000_000-989_020_869 {
		t.Fatalf("info mismatch: %v", info)
	}
	if info["tax"] != 5_000_000 || info["revenue"] != 5_000_000 || info["fee"] != 100 {
		t.Fatalf("fee state mismatch: %v", info)
	}

	var lp map[string]interface{}
	if err := json.Unmarshal([]byte(c.mustRun("balance")), &lp); err != nil {
		t.Fatalf("parse balance: %v", err)
	}
	if lp["token"] != "CREDIT" || lp["balance"] != float64(1_000_000_000_000) {
		t.Fatalf("lp balance mismatch: %v", lp)
	}

	if _, err := c.run("bootstrap", "--amount-a", "1", "--amount-b", "1"); err == nil || !strings.Contains(err.Error(), "u702") {
		t.Fatalf("expected already initialized, got %v", err)
	}

	history := strings.Split(strings.TrimSpace(c.mustRun("history", "--event", "swap")), "\n")
	if len(history) != 1 || !strings.Contains(history[0], `"event_name":"Swap"`) {
		t.Fatalf("history mismatch: %v", history)
	}
	all := strings.Split(strings.TrimSpace(c.mustRun("history")), "\n")
	if len(all) != 3 {
		t.Fatalf("expected mint, bootstrap and swap events, got %d", len(all))
	}
}

func TestCLIAccessControl(t *testing.T) {
	c := newCLI(t)
	wallet1 := "0x2222222222222222222222222222222222222222"

	if _, err := c.run("bootstrap", "--caller", wallet1, "--amount-a", "1000", "--amount-b", "1000"); err == nil || !strings.Contains(err.Error(), "u701") {
		t.Fatalf("expected not owner, got %v", err)
	}
	if _, err := c.run("street-mint", "--caller", wallet1, "--amount", "1"); err == nil || !strings.Contains(err.Error(), "u901") {
		t.Fatalf("expected not token owner, got %v", err)
	}
	// rejected calls leave nothing behind
	if out := c.mustRun("history"); strings.TrimSpace(out) != "" {
		t.Fatalf("rejected calls were journaled: %s", out)
	}
}

func TestCLIStreetMintReceipt(t *testing.T) {
	c := newCLI(t)

	var first, second map[string]uint64
	if err := json.Unmarshal([]byte(c.mustRun("street-mint", "--amount", "500")), &first); err != nil {
		t.Fatalf("parse mint: %v", err)
	}
	if first["amount"] != 500 || first["block"] != 1 || first["epoch"] != 0 {
		t.Fatalf("mint receipt mismatch: %v", first)
	}
	if err := json.Unmarshal([]byte(c.mustRun("street-mint", "--amount", "7")), &second); err != nil {
		t.Fatalf("parse mint: %v", err)
	}
	if second["amount"] != 7 || second["block"] != 2 {
		t.Fatalf("mint receipt mismatch: %v", second)
	}
}

func TestCLICustodyCannotAct(t *testing.T) {
	c := newCLI(t)
	custody := exchange.CustodyAddress(common.HexToAddress(config.DefaultOwner)).Hex()
	wallet1 := "0x2222222222222222222222222222222222222222"

	c.mustRun("street-mint", "--amount", "1000000000000")
	c.mustRun("bootstrap", "--amount-a", "1000000000000", "--amount-b", "1000000000000")

	if _, err := c.run("transfer", "--caller", custody, "--token", "WELSH", "--to", wallet1, "--amount", "1000000000000"); err == nil {
		t.Fatalf("expected custody transfer to be rejected")
	}
	if _, err := c.run("transfer", "--token", "STREET", "--to", custody, "--amount", "1"); err == nil {
		t.Fatalf("expected transfer into custody to be rejected")
	}
	if _, err := c.run("swap", "--caller", custody, "--direction", "a-b", "--amount", "1000"); err == nil {
		t.Fatalf("expected custody caller to be rejected")
	}

	var held map[string]interface{}
	if err := json.Unmarshal([]byte(c.mustRun("balance", "--token", "WELSH", "--principal", custody)), &held); err != nil {
		t.Fatalf("parse balance: %v", err)
	}
	if held["balance"] != float64(1_000_000_000_000) {
		t.Fatalf("custody balance changed: %v", held)
	}
	var info map[string]uint64
	if err := json.Unmarshal([]byte(c.mustRun("info")), &info); err != nil {
		t.Fatalf("parse info: %v", err)
	}
	if info["reserve-a"] != 1_000_000_000_000 || info["reserve-b"] != 1_000_000_000_000 {
		t.Fatalf("reserves changed: %v", info)
	}
	// a fresh session still restores the persisted state
	c.mustRun("swap", "--direction", "a-b", "--amount", "1000000000")
}

func TestCLISimulate(t *testing.T) {
	c := newCLI(t)
	var outcomes []map[string]interface{}
	if err := json.Unmarshal([]byte(c.mustRun("simulate")), &outcomes); err != nil {
		t.Fatalf("parse outcomes: %v", err)
	}
	if len(outcomes) != 5 {
		t.Fatalf("expected 5 outcomes, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if o["passed"] != true {
			t.Fatalf("scenario failed: %v", o)
		}
	}
}
