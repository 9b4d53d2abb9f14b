package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"frenparty/crypto"
	"frenparty/native/shares"
)

// Market holds the fee and curve configuration fixed for the daemon's
// lifetime. Rates are basis points; the coefficient is an exact rational.
type Market struct {
	ProtocolFeeDestination string `toml:"ProtocolFeeDestination"`
	ProtocolFeeBps         uint32 `toml:"ProtocolFeeBps"`
	SubjectFeeBps          uint32 `toml:"SubjectFeeBps"`
	CoefficientNum         uint64 `toml:"CoefficientNum"`
	CoefficientDen         uint64 `toml:"CoefficientDen"`
}

type Config struct {
	RPCAddress  string `toml:"RPCAddress"`
	DataDir     string `toml:"DataDir"`
	Environment string `toml:"Environment"`
	Market      Market `toml:"Market"`
}

func defaultConfig() *Config {
	var zero [20]byte
	return &Config{
		RPCAddress:  "0.0.0.0:8645",
		DataDir:     "./frenparty-data",
		Environment: "local",
		Market: Market{
			ProtocolFeeDestination: crypto.MustNewAddress(crypto.FrenPrefix, zero[:]).String(),
			ProtocolFeeBps:         500,
			SubjectFeeBps:          500,
			CoefficientNum:         1,
			CoefficientDen:         8,
		},
	}
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("RPCAddress is required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DataDir is required")
	}
	if _, err := c.MarketParams(); err != nil {
		return err
	}
	return nil
}

// RuntimeEnvironment resolves the environment label attached to log lines.
// A non-empty override (typically the FRENPARTY_ENV variable) wins over the
// configured value.
func (c *Config) RuntimeEnvironment(override string) string {
	if env := strings.TrimSpace(override); env != "" {
		return env
	}
	return strings.TrimSpace(c.Environment)
}

// MarketParams converts the market table into engine parameters.
func (c *Config) MarketParams() (shares.Params, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(c.Market.ProtocolFeeDestination))
	if err != nil {
		return shares.Params{}, fmt.Errorf("Market.ProtocolFeeDestination: %w", err)
	}
	if addr.Prefix() != crypto.FrenPrefix {
		return shares.Params{}, fmt.Errorf("Market.ProtocolFeeDestination: unexpected prefix %q", addr.Prefix())
	}
	var dest [20]byte
	copy(dest[:], addr.Bytes())
	params := shares.Params{
		ProtocolFeeDestination: dest,
		ProtocolFeeBps:         c.Market.ProtocolFeeBps,
		SubjectFeeBps:          c.Market.SubjectFeeBps,
		CurveCoefficient: shares.Ratio{
			Num: c.Market.CoefficientNum,
			Den: c.Market.CoefficientDen,
		},
	}
	if err := params.Validate(); err != nil {
		return shares.Params{}, fmt.Errorf("Market: %w", err)
	}
	return params, nil
}
