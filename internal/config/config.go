package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all walletd configuration.
type Config struct {
	Env                string `mapstructure:"env"`
	LocalStackEndpoint string `mapstructure:"localstack_endpoint"`
	Network            string `mapstructure:"network"`
	AppID              uint64 `mapstructure:"app_id"`

	Custody CustodyConfig
	Ledger  LedgerConfig
	Observer ObserverConfig
}

// CustodyConfig holds the sealed-seed-at-rest settings.
type CustodyConfig struct {
	KMSKeyID       string `mapstructure:"kms_key_id"`
	AWSRegion      string `mapstructure:"aws_region"`
	SealedSeedPath string `mapstructure:"sealed_seed_path"`
}

// LedgerConfig holds the subscription-source settings: a live tailing
// endpoint, a catchup indexer endpoint, and the starting round. The
// application id the scanner filters against is Config.AppID.
type LedgerConfig struct {
	TailURL    string `mapstructure:"tail_url"`
	IndexerURL string `mapstructure:"indexer_url"`
	StartRound uint64 `mapstructure:"start_round"`
}

// ObserverConfig holds the non-authoritative telemetry sink settings.
type ObserverConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	Channel       string `mapstructure:"channel"`
}

// Load reads configuration from environment variables prefixed with
// MITHRAS_.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MITHRAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "development")
	v.SetDefault("network", "testnet")
	v.SetDefault("app_id", 0)

	v.SetDefault("custody.aws_region", "us-east-1")
	v.SetDefault("custody.sealed_seed_path", "/var/lib/mithras/seed.sealed")

	v.SetDefault("ledger.tail_url", "ws://localhost:8980/v1/tail")
	v.SetDefault("ledger.indexer_url", "http://localhost:8980")
	v.SetDefault("ledger.start_round", 0)

	v.SetDefault("observer.redis_addr", "localhost:6379")
	v.SetDefault("observer.redis_password", "")
	v.SetDefault("observer.redis_db", 0)
	v.SetDefault("observer.channel", "mithras:notes")

	cfg := &Config{
		Env:                v.GetString("env"),
		LocalStackEndpoint: v.GetString("localstack_endpoint"),
		Network:            v.GetString("network"),
		AppID:              uint64(v.GetInt64("app_id")),
	}

	cfg.Custody = CustodyConfig{
		KMSKeyID:       v.GetString("custody.kms_key_id"),
		AWSRegion:      v.GetString("custody.aws_region"),
		SealedSeedPath: v.GetString("custody.sealed_seed_path"),
	}

	cfg.Ledger = LedgerConfig{
		TailURL:    v.GetString("ledger.tail_url"),
		IndexerURL: v.GetString("ledger.indexer_url"),
		StartRound: uint64(v.GetInt64("ledger.start_round")),
	}

	cfg.Observer = ObserverConfig{
		RedisAddr:     v.GetString("observer.redis_addr"),
		RedisPassword: v.GetString("observer.redis_password"),
		RedisDB:       v.GetInt("observer.redis_db"),
		Channel:       v.GetString("observer.channel"),
	}

	return cfg, nil
}
