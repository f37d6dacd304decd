package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"chirp/backend/internal/graph"
	"chirp/backend/internal/social"
	"chirp/backend/pkg/config"
	"chirp/backend/pkg/logger"
)

func main() {
	reset := flag.Bool("reset", false, "Delete all nodes and relationships before seeding")
	schemaOnly := flag.Bool("schema-only", false, "Only create constraints and indexes")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	ctx := context.Background()
	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	repo := graph.NewRepository(driver, cfg.Neo4jDatabase)
	defer repo.Close()

	if *reset {
		log.Warn("Resetting database...")
		if err := deleteAllData(ctx, driver, cfg.Neo4jDatabase); err != nil {
			log.Fatal("Failed to reset database", zap.Error(err))
		}
	}

	log.Info("Creating constraints and indexes...")
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to create schema", zap.Error(err))
	}
	if *schemaOnly {
		log.Info("Schema ready")
		return
	}

	if err := seedDemo(ctx, social.NewService(repo), log); err != nil {
		log.Fatal("Failed to seed demo data", zap.Error(err))
	}
	log.Info("Seeding complete")
}

// seedDemo creates a few users who follow each other and exchange posts
func seedDemo(ctx context.Context, svc *social.Service, log *zap.Logger) error {
	names := []string{"ada", "grace", "linus"}
	users := make(map[string]*social.User, len(names))
	for _, name := range names {
		user, err := svc.RegisterUser(ctx, social.NewUser{Username: name})
		if err != nil {
			return fmt.Errorf("failed to register %s: %w", name, err)
		}
		users[name] = user
	}

	follows := [][2]string{{"ada", "grace"}, {"grace", "ada"}, {"linus", "ada"}}
	for _, pair := range follows {
		if _, err := svc.Follow(ctx, users[pair[0]].ID, users[pair[1]].ID); err != nil {
			return fmt.Errorf("failed to follow: %w", err)
		}
	}

	first, err := svc.CreatePost(ctx, social.NewPost{
		AuthorID: users["ada"].ID,
		Content:  "Graphs all the way down #neo4j #golang",
	})
	if err != nil {
		return err
	}
	if _, err := svc.CreatePost(ctx, social.NewPost{
		AuthorID:   users["grace"].ID,
		Content:    "Agreed @ada, and they are fast #neo4j",
		RespondsTo: first.ID,
	}); err != nil {
		return err
	}
	if _, err := svc.CreatePost(ctx, social.NewPost{
		AuthorID: users["linus"].ID,
		Content:  "Worth reading",
		Quotes:   first.ID,
	}); err != nil {
		return err
	}
	for _, name := range []string{"grace", "linus"} {
		if _, err := svc.Like(ctx, users[name].ID, first.ID); err != nil {
			return err
		}
	}

	log.Info("Demo data created", zap.Int("users", len(users)))
	return nil
}

func deleteAllData(ctx context.Context, driver neo4j.DriverWithContext, database string) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `MATCH (n) DETACH DELETE n`, nil)
	if err != nil {
		return fmt.Errorf("failed to delete all data: %w", err)
	}
	_, err = result.Consume(ctx)
	return err
}
