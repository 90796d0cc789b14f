// Command walletd runs a long-lived Mithras wallet: it unseals a wallet's
// spend and discovery keys, tails a ledger for application calls against a
// configured app id, and maintains a local view of recorded, unspent UTXOs.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/awnumar/memguard"

	"github.com/mithras-protocol/mithras/internal/config"
	"github.com/mithras-protocol/mithras/internal/custody"
	mhpke "github.com/mithras-protocol/mithras/internal/hpke"
	"github.com/mithras-protocol/mithras/internal/kms"
	"github.com/mithras-protocol/mithras/internal/ledger"
	"github.com/mithras-protocol/mithras/internal/observer"
	"github.com/mithras-protocol/mithras/internal/scanner"
	"github.com/redis/go-redis/v9"
)

func main() {
	defer memguard.Purge()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	network, err := parseNetwork(cfg.Network)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid network: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Mithras walletd starting (env=%s, network=%s, app=%d)\n", cfg.Env, network, cfg.AppID)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	vault := custody.New()
	sealed, err := os.ReadFile(cfg.Custody.SealedSeedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read sealed seed: %v\n", err)
		os.Exit(1)
	}

	kmsClient, err := kms.New(ctx, cfg.Custody.AWSRegion, cfg.LocalStackEndpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build kms client: %v\n", err)
		os.Exit(1)
	}
	if err := vault.Unlock(ctx, kmsClient, sealed); err != nil {
		fmt.Fprintf(os.Stderr, "failed to unlock wallet: %v\n", err)
		os.Exit(1)
	}
	defer vault.Destroy()

	spendSeed, err := vault.Spend()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open spend seed: %v\n", err)
		os.Exit(1)
	}
	discoveryKeypair, err := vault.Discovery()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open discovery key: %v\n", err)
		os.Exit(1)
	}

	sc := scanner.New(spendSeed, discoveryKeypair, cfg.AppID)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Observer.RedisAddr,
		Password: cfg.Observer.RedisPassword,
		DB:       cfg.Observer.RedisDB,
	})
	sink := observer.New(observer.NewRedisPublisher(redisClient), cfg.Observer.Channel)
	sc.SetTelemetry(sink)
	go sink.Run(ctx)

	catchup := ledger.NewCatchupSource(ledger.DefaultIndexerConfig(cfg.Ledger.IndexerURL, cfg.AppID, cfg.Ledger.StartRound))
	if err := sc.Run(ctx, catchup); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "catchup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Caught up: balance=%d recorded=%d\n", sc.Balance(), sc.RecordedCount())

	tail := ledger.NewTailSource(ledger.DefaultTailConfig(cfg.Ledger.TailURL))
	errCh := make(chan error, 1)
	go func() {
		errCh <- sc.Run(ctx, tail)
	}()

	fmt.Println("walletd ready — tailing ledger")

	select {
	case <-ctx.Done():
		fmt.Println("walletd shutting down gracefully...")
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "tail source error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("walletd stopped")
}

// parseNetwork accepts the four named networks case-insensitively, or a
// 64-character hex string naming a genesis hash for a custom network.
func parseNetwork(s string) (mhpke.SupportedNetwork, error) {
	switch strings.ToLower(s) {
	case "mainnet":
		return mhpke.Mainnet(), nil
	case "testnet":
		return mhpke.Testnet(), nil
	case "betanet":
		return mhpke.Betanet(), nil
	case "devnet":
		return mhpke.Devnet(), nil
	}

	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		return mhpke.SupportedNetwork{}, fmt.Errorf("network must be mainnet/testnet/betanet/devnet or a 32-byte hex genesis hash, got %q", s)
	}
	var tag [32]byte
	copy(tag[:], b)
	return mhpke.Custom(tag), nil
}
