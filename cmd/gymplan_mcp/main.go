// Package main runs the gymplan MCP server over stdio (for local editor use).
// The same MCP server is also mounted on the main backend at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/gymplan/internal/catalog"
	"github.com/2beens/gymplan/internal/config"
	"github.com/2beens/gymplan/internal/db"
	gymplanmcp "github.com/2beens/gymplan/internal/mcp"
	"github.com/2beens/gymplan/internal/plans"
	"github.com/2beens/gymplan/internal/progress"
	"github.com/2beens/gymplan/internal/textgen"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         os.Getenv("GYMPLAN_POSTGRES_USER"),
		DBPassword:     os.Getenv("GYMPLAN_POSTGRES_PASS"),
		TracingEnabled: false,
	})
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer dbPool.Close()

	client, err := textgen.New(ctx, textgen.Config{
		Provider: cfg.LLMProvider,
		BaseURL:  cfg.LLMBaseURL,
		Model:    cfg.LLMModel,
		APIKey:   os.Getenv("GYMPLAN_LLM_API_KEY"),
	})
	if err != nil {
		log.Fatalf("text generation client: %v", err)
	}

	exercises := catalog.NewCachedStore(catalog.NewRepo(dbPool), cfg.CatalogCacheSizeMB, cfg.CatalogCacheTTL)
	coach := progress.NewCoachService(
		progress.NewRepo(dbPool),
		client,
		cfg.LLMTemperature,
		cfg.LLMMaxTokens,
		cfg.GenerationTimeout,
	)

	server := gymplanmcp.NewServer(
		gymplanmcp.NewPoolSchemaRepo(dbPool),
		exercises,
		coach,
		plans.NewStore(dbPool),
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
