// Package main runs the fitassist MCP server over stdio, scoped to one user.
// The backend serves the same tools at /mcp for the logged-in user.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2beens/fitassist/internal/chat"
	"github.com/2beens/fitassist/internal/config"
	"github.com/2beens/fitassist/internal/dashboard"
	"github.com/2beens/fitassist/internal/db"
	"github.com/2beens/fitassist/internal/goals"
	fitmcp "github.com/2beens/fitassist/internal/mcp"
	"github.com/2beens/fitassist/internal/report"
	"github.com/2beens/fitassist/internal/users"
	"github.com/2beens/fitassist/internal/workouts"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	userID := flag.Int("user", 0, "id of the user whose data the tools expose")
	flag.Parse()

	if *userID <= 0 {
		log.Fatalf("user id must be set, use -user")
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("FITASSIST_DB_PASS"),
		SSLMode:    cfg.PostgresSSLMode,
	})
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer dbPool.Close()

	usersRepo := users.NewRepo(dbPool)
	goalsRepo := goals.NewRepo(dbPool)
	workoutsRepo := workouts.NewRepo(dbPool)
	chatRepo := chat.NewRepo(dbPool)

	service := fitmcp.NewContextService(
		goalsRepo,
		workoutsRepo,
		dashboard.NewService(usersRepo, goalsRepo, workoutsRepo, chatRepo),
		report.NewAssembler(usersRepo, goalsRepo, workoutsRepo, chatRepo),
	)
	server := fitmcp.NewServer(service, *userID)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
