package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kereva-dev/attractor/internal/attractor"
	"github.com/kereva-dev/attractor/internal/detect"
	"github.com/kereva-dev/attractor/internal/engine"
	"github.com/kereva-dev/attractor/internal/memory"
	"github.com/kereva-dev/attractor/internal/provider"
)

// #region main
func main() {
	paths := attractor.BundlePaths{
		Primary: attractor.Bundle{
			CentroidFile: os.Getenv("ATTRACTOR_PRIMARY_CENTROIDS"),
			KeywordFile:  envOr("ATTRACTOR_PRIMARY_KEYWORDS", "bundles/primary_keywords.yaml"),
		},
		Secondary: attractor.Bundle{
			CentroidFile: os.Getenv("ATTRACTOR_SECONDARY_CENTROIDS"),
			KeywordFile:  os.Getenv("ATTRACTOR_SECONDARY_KEYWORDS"),
		},
	}

	providerCfg := provider.Config{
		BaseURL:        os.Getenv("PROVIDER_BASE_URL"),
		APIKey:         os.Getenv("PROVIDER_API_KEY"),
		Model:          envOr("PROVIDER_MODEL", "gpt-4o-mini"),
		EmbeddingModel: envOr("PROVIDER_EMBEDDING_MODEL", "text-embedding-3-small"),
	}

	var opts []engine.Option
	useEmbeddings := os.Getenv("ATTRACTOR_USE_EMBEDDINGS") == "true"
	if useEmbeddings {
		opts = append(opts, engine.WithEmbedder(provider.NewEmbedClient(providerCfg)))
	}

	eng, err := engine.Load(paths, opts...)
	if err != nil {
		log.Fatalf("failed to load attractor bundles: %v", err)
	}

	gen := provider.NewChatClient(providerCfg)

	store, err := memory.Open(envOr("ATTRACTOR_DB", "attractor_outcomes.db"))
	if err != nil {
		log.Fatalf("failed to open outcome store: %v", err)
	}
	defer store.Close()

	maxAttempts := envInt("ATTRACTOR_MAX_ATTEMPTS", 3)
	intensity := envFloat("ATTRACTOR_INTENSITY", 1.0)

	fmt.Println("Attractor steering console ready.")
	fmt.Printf("  max_attempts=%d intensity=%.2f embeddings=%v\n", maxAttempts, intensity, useEmbeddings)
	fmt.Println("Type a prompt (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		prompt := strings.TrimSpace(scanner.Text())
		if prompt == "" {
			continue
		}
		if prompt == "quit" || prompt == "exit" {
			break
		}

		dctx := detect.NewContext("")
		dctx.Intensity = intensity
		dctx.UseEmbeddings = useEmbeddings

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		out, err := eng.Steer(ctx, gen, prompt, dctx, maxAttempts)
		cancel()
		if err != nil {
			log.Printf("steer error: %v", err)
			continue
		}

		fmt.Printf("\n%s\n\n", out.Text)
		fmt.Printf("[attempts=%d attracted=%v score=%.2f triggered=%v]\n",
			out.Attempts, out.Result.IsAttracted, out.Result.KeywordScore, out.Result.TriggeredAttractors)

		if _, err := store.Record(prompt, out); err != nil {
			log.Printf("record error: %v", err)
		}
	}
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}

// #endregion helpers
