package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
	extendedEnvENV    = "EXTENDED_ENV"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	databaseURL       = "DATABASE_URL"
	referralCodeENV   = "REFERRAL_CODE"

	EnvMainnet = "mainnet"
	EnvTestnet = "testnet"
)

// Endpoint: набор адресов одного окружения биржи.
type Endpoint struct {
	APIBaseURL    string `yaml:"api_base_url" mapstructure:"api_base_url"`
	StreamURL     string `yaml:"stream_url" mapstructure:"stream_url"`
	OnboardingURL string `yaml:"onboarding_url" mapstructure:"onboarding_url"`
	SigningDomain string `yaml:"signing_domain" mapstructure:"signing_domain"`
	// ChainID участвует в хеше ордера
	ChainID string `yaml:"chain_id" mapstructure:"chain_id"`
}

// Config ...
type Config struct {
	Env string `yaml:"env" mapstructure:"env"`

	Service struct {
		Host       string `yaml:"host" mapstructure:"host"`
		PublicPort int    `yaml:"public_port" mapstructure:"public_port"`
		AdminPort  int    `yaml:"admin_port" mapstructure:"admin_port"`
	} `yaml:"service" mapstructure:"service"`

	Log struct {
		Level string `yaml:"level" mapstructure:"level"`
	} `yaml:"log" mapstructure:"log"`

	Extended struct {
		Mainnet Endpoint `yaml:"mainnet" mapstructure:"mainnet"`
		Testnet Endpoint `yaml:"testnet" mapstructure:"testnet"`

		Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`
		RateLimitRPS     float64       `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
		RateLimitBurst   int           `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
		ReferralCode     string        `yaml:"referral_code" mapstructure:"referral_code"`
		APIKeyDescriptor string        `yaml:"api_key_description" mapstructure:"api_key_description"`
	} `yaml:"extended" mapstructure:"extended"`

	Storage struct {
		Driver string `yaml:"driver" mapstructure:"driver"` // memory | postgres | sqlite
		DSN    string `yaml:"dsn" mapstructure:"dsn"`
	} `yaml:"storage" mapstructure:"storage"`

	Markets struct {
		CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	} `yaml:"markets" mapstructure:"markets"`

	Onboarding struct {
		VerifyL1Signature bool `yaml:"verify_l1_signature" mapstructure:"verify_l1_signature"`
	} `yaml:"onboarding" mapstructure:"onboarding"`

	Orders struct {
		Expiry         time.Duration `yaml:"expiry" mapstructure:"expiry"`
		DefaultFeeRate string        `yaml:"default_fee_rate" mapstructure:"default_fee_rate"`
	} `yaml:"orders" mapstructure:"orders"`

	Session struct {
		NonceTTL time.Duration `yaml:"nonce_ttl" mapstructure:"nonce_ttl"`
	} `yaml:"session" mapstructure:"session"`

	Telegram struct {
		Token  string `yaml:"token" mapstructure:"token"`
		ChatID int64  `yaml:"chat_id" mapstructure:"chat_id"`
	} `yaml:"telegram" mapstructure:"telegram"`

	Tracing struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Host    string `yaml:"host" mapstructure:"host"`
		Port    int    `yaml:"port" mapstructure:"port"`
	} `yaml:"tracing" mapstructure:"tracing"`
}

// Active возвращает эндпоинты окружения, выбранного в конфиге.
func (c *Config) Active() Endpoint {
	return c.Endpoint(c.Env)
}

func (c *Config) Endpoint(env string) Endpoint {
	if strings.EqualFold(env, EnvMainnet) {
		return c.Extended.Mainnet
	}
	return c.Extended.Testnet
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvTestnet)
	v.SetDefault("service.host", "0.0.0.0")
	v.SetDefault("service.public_port", 8000)
	v.SetDefault("service.admin_port", 8081)
	v.SetDefault("log.level", "info")

	v.SetDefault("extended.mainnet.api_base_url", "https://api.starknet.extended.exchange/api/v1")
	v.SetDefault("extended.mainnet.stream_url", "wss://api.starknet.extended.exchange/stream.extended.exchange/v1")
	v.SetDefault("extended.mainnet.onboarding_url", "https://api.starknet.extended.exchange")
	v.SetDefault("extended.mainnet.signing_domain", "extended.exchange")
	v.SetDefault("extended.mainnet.chain_id", "SN_MAIN")

	v.SetDefault("extended.testnet.api_base_url", "https://api.starknet.sepolia.extended.exchange/api/v1")
	v.SetDefault("extended.testnet.stream_url", "wss://api.starknet.sepolia.extended.exchange/stream.extended.exchange/v1")
	v.SetDefault("extended.testnet.onboarding_url", "https://api.starknet.sepolia.extended.exchange")
	v.SetDefault("extended.testnet.signing_domain", "starknet.sepolia.extended.exchange")
	v.SetDefault("extended.testnet.chain_id", "SN_SEPOLIA")

	v.SetDefault("extended.timeout", "20s")
	v.SetDefault("extended.rate_limit_rps", 10)
	v.SetDefault("extended.rate_limit_burst", 20)
	v.SetDefault("extended.referral_code", "")
	v.SetDefault("extended.api_key_description", "stark-bridge trading key")

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("markets.cache_ttl", "10m")
	v.SetDefault("onboarding.verify_l1_signature", false)
	v.SetDefault("orders.expiry", "336h")
	v.SetDefault("orders.default_fee_rate", "0.0005")
	v.SetDefault("session.nonce_ttl", "5m")
	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)
}

func NewConfig() (*Config, error) {
	configFileName := getenvDefault(configFilePathENV, "values_local.yaml")
	configDir := getenvDefault(configDirENV, "configs")

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configDir + "/" + configFileName)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// без файла работаем на дефолтах + env
	if fileExists(configDir + "/" + configFileName) {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return decode(v)
}

// NewConfigFromViper нужен тестам и утилитам: конфиг собирается из уже заполненного viper.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if env := os.Getenv(extendedEnvENV); env != "" {
		config.Env = strings.ToLower(env)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := getenvDefault(databaseDSN, os.Getenv(databaseURL))
	if dsn != "" {
		config.Storage.DSN = dsn
		if config.Storage.Driver == "" || config.Storage.Driver == "memory" {
			config.Storage.Driver = "postgres"
		}
	}

	if code := os.Getenv(referralCodeENV); code != "" {
		config.Extended.ReferralCode = code
	}

	if config.Telegram.ChatID == 0 {
		config.Telegram.ChatID = int64FromEnv("TELEGRAM_CHAT_ID", 0)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Env) {
	case EnvMainnet, EnvTestnet:
	default:
		return fmt.Errorf("config: unknown env %q", c.Env)
	}
	switch c.Storage.Driver {
	case "memory", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver != "memory" && c.Storage.DSN == "" {
		return fmt.Errorf("config: storage.dsn is required for driver %s", c.Storage.Driver)
	}
	if c.Markets.CacheTTL <= 0 {
		return fmt.Errorf("config: markets.cache_ttl must be positive")
	}
	if c.Extended.Timeout <= 0 {
		return fmt.Errorf("config: extended.timeout must be positive")
	}
	return nil
}

// Dump: эффективный конфиг в YAML без секретов, пишется в лог при старте.
func (c *Config) Dump() string {
	cp := *c
	if cp.Telegram.Token != "" {
		cp.Telegram.Token = "***"
	}
	if cp.Storage.DSN != "" {
		cp.Storage.DSN = "***"
	}
	bs, err := yaml.Marshal(cp)
	if err != nil {
		return fmt.Sprintf("<config dump failed: %v>", err)
	}
	return string(bs)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func int64FromEnv(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
