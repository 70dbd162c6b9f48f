package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultOwner is the deployer used when no owner is configured.
const DefaultOwner = "0x1111111111111111111111111111111111111111"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Owner        string
	Caller       string
	FeeBps       uint64
	TaxShareBps  uint64
	WelshSupply  uint64
	Decimals     uint8
	StateFile    string
	StateName    string
	Journal      string
	PGDSN        string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
	Window       time.Duration
	Since        string
	Events       []string
	Scenarios    []string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EXCHANGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("owner", DefaultOwner)
	v.SetDefault("fee-bps", uint64(100))
	v.SetDefault("tax-share-bps", uint64(5000))
	v.SetDefault("welsh-supply", uint64(10_000_000_000_000_000))
	v.SetDefault("decimals", 6)
	v.SetDefault("state-file", "./data/state.json")
	v.SetDefault("state-name", "default")
	v.SetDefault("journal", "./data/journal.jsonl")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
	v.SetDefault("window", 5*time.Minute)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	decimals := v.GetUint("decimals")
	if decimals > 18 {
		return Config{}, fmt.Errorf("decimals out of range: %d", decimals)
	}

	cfg := Config{
		Owner:        v.GetString("owner"),
		Caller:       v.GetString("caller"),
		FeeBps:       v.GetUint64("fee-bps"),
		TaxShareBps:  v.GetUint64("tax-share-bps"),
		WelshSupply:  v.GetUint64("welsh-supply"),
		Decimals:     uint8(decimals),
		StateFile:    v.GetString("state-file"),
		StateName:    v.GetString("state-name"),
		Journal:      v.GetString("journal"),
		PGDSN:        v.GetString("pg-dsn"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
		Window:       v.GetDuration("window"),
		Since:        v.GetString("since"),
		Events:       getStringSlice(v, "event"),
		Scenarios:    getStringSlice(v, "scenario"),
	}
	if cfg.Caller == "" {
		cfg.Caller = cfg.Owner
	}

	return cfg, nil
}

// OwnerAddress parses the configured owner.
func (c Config) OwnerAddress() (common.Address, error) {
	return ParseAddress(c.Owner)
}

// CallerAddress parses the configured caller.
func (c Config) CallerAddress() (common.Address, error) {
	return ParseAddress(c.Caller)
}

// ParseAddress parses a 0x-prefixed hex principal.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %q", input)
	}
	return common.HexToAddress(input), nil
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339).
func ParseTimestamp(input string) (uint64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, nil
	}

	if isNumeric(input) {
		return strconv.ParseUint(input, 10, 64)
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return uint64(tm.Unix()), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	switch typed := v.Get(key).(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		if typed == "" {
			return nil
		}
		return cleanStrings(strings.Split(typed, ","))
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
