package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FeeBps != 100 || cfg.TaxShareBps != 5000 || cfg.Decimals != 6 {
		t.Fatalf("defaults mismatch: %+v", cfg)
	}
	if cfg.WelshSupply != 10_000_000_000_000_000 {
		t.Fatalf("supply mismatch: %d", cfg.WelshSupply)
	}
	if cfg.Caller != DefaultOwner || cfg.Window != 5*time.Minute {
		t.Fatalf("caller/window mismatch: %+v", cfg)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exchange.yaml")
	content := "fee-bps: 30\njournal: /tmp/j.jsonl\nevent: [swap, bootstrap]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("EXCHANGE_TAX_SHARE_BPS", "2500")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("caller", "", "")
	flags.StringSlice("scenario", nil, "")
	if err := flags.Parse([]string{"--caller", "0x2222222222222222222222222222222222222222", "--scenario", "deploy, swap,"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FeeBps != 30 || cfg.TaxShareBps != 2500 || cfg.Journal != "/tmp/j.jsonl" {
		t.Fatalf("merge mismatch: %+v", cfg)
	}
	if len(cfg.Events) != 2 || cfg.Events[0] != "swap" {
		t.Fatalf("events mismatch: %v", cfg.Events)
	}
	if len(cfg.Scenarios) != 2 || cfg.Scenarios[1] != "swap" {
		t.Fatalf("scenarios mismatch: %v", cfg.Scenarios)
	}
	caller, err := cfg.CallerAddress()
	if err != nil || caller.Hex() != "0x2222222222222222222222222222222222222222" {
		t.Fatalf("caller mismatch: %v %v", caller, err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestParseAddress(t *testing.T) {
	if _, err := ParseAddress("wallet_1"); err == nil {
		t.Fatalf("expected error for non-hex principal")
	}
	if _, err := ParseAddress(" " + DefaultOwner + " "); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
		ok   bool
	}{
		{"", 0, true},
		{"1700000000", 1700000000, true},
		{"2023-11-14T22:13:20Z", 1700000000, true},
		{"yesterday", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseTimestamp(%q) = %d, %v", tc.in, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseTimestamp(%q) expected error", tc.in)
		}
	}
}
