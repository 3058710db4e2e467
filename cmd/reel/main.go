package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aussiebroadwan/reel/internal/reel/app"
	"github.com/aussiebroadwan/reel/pkg/reelsdk"
)

func main() {
	cfg := app.LoadConfig()

	// `reel healthcheck` probes a running instance, for container HEALTHCHECK
	// directives in images without curl.
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(healthcheck(cfg.Port))
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func healthcheck(port int) int {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client := reelsdk.NewSDKClient(fmt.Sprintf("http://127.0.0.1:%d", port))
	health, err := client.GetLiveness(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unhealthy: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "%s (%s, up %s)\n", health.Status, health.Version, health.Uptime)
	return 0
}
