package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"

	"dbdesigner/internal/config"
	"dbdesigner/internal/database"
	"dbdesigner/internal/mcp"
	"dbdesigner/internal/repositories"
	"dbdesigner/internal/services"
)

func main() {
	projectFlag := flag.String("project", "", "id of the project whose design the tools edit")
	userFlag := flag.String("user", "", "id of the user who owns the project")
	flag.Parse()

	projectID, err := uuid.Parse(*projectFlag)
	if err != nil {
		log.Fatalf("invalid --project: %v", err)
	}
	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		log.Fatalf("invalid --user: %v", err)
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatalf("failed to load database configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := database.Connect(ctx, dbCfg)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	projectService := services.NewProjectService(repositories.NewProjectRepository(pool), nil)
	if _, err := projectService.GetProject(context.Background(), userID, projectID); err != nil {
		log.Fatalf("cannot open project %s: %v", projectID, err)
	}

	s := server.NewMCPServer(
		"dbdesigner",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)
	mcp.RegisterTools(s, mcp.NewTools(projectService, userID, projectID))
	log.Printf("serving design tools for project %s", projectID)

	// Start the stdio server
	if err := server.ServeStdio(s); err != nil {
		log.Printf("Server error: %v", err)
	}
}
