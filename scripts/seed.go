// Seed script that writes a demo ACH session into the configured store.
// Run with: go run ./scripts/seed.go
//
// The printed agent id goes in the ach_agent cookie to see the session.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/achworks/achd/internal/config"
	"github.com/achworks/achd/internal/domain"
	"github.com/achworks/achd/internal/service"
	"github.com/achworks/achd/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	var ws domain.WorkspaceStore
	switch config.StoreBackend() {
	case "postgres":
		pool, err := pgxpool.New(ctx, config.DatabaseURL())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		pg := store.NewPostgresWorkspaceStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to create schema: %v", err)
		}
		ws = pg
	case "sqlite":
		lite, err := store.NewSQLiteWorkspaceStore(config.SQLitePath())
		if err != nil {
			log.Fatalf("Failed to open sqlite: %v", err)
		}
		defer lite.Close()
		ws = lite
	default:
		log.Fatalf("Seeding needs a persistent STORE_BACKEND, got %q", config.StoreBackend())
	}

	logger, _ := zap.NewDevelopment()
	svc := service.NewWorkspaceService(ws, nil, logger)
	if err := svc.Load(ctx); err != nil {
		log.Fatalf("Failed to load workspace: %v", err)
	}

	agentID := uuid.NewString()
	view, err := svc.CreateSession(ctx, agentID)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	sid := view.ID
	fmt.Printf("Created session %s for agent %s\n", sid, agentID)

	hypotheses := []string{
		"The outage was caused by the config push",
		"The outage was caused by a failing disk",
		"The outage was caused by a traffic spike",
	}
	for _, content := range hypotheses {
		if _, _, err := svc.AddHypothesis(ctx, agentID, sid, content); err != nil {
			log.Fatalf("Failed to add hypothesis: %v", err)
		}
	}

	evidence := []struct {
		content     string
		credibility domain.Weight
		relevance   domain.Weight
	}{
		{"Errors began two minutes after the push", domain.WeightHigh, domain.WeightHigh},
		{"SMART checks on the primary were clean", domain.WeightMedium, domain.WeightMedium},
		{"Request volume was flat all morning", domain.WeightHigh, domain.WeightLow},
	}
	for _, e := range evidence {
		cred, rel := e.credibility, e.relevance
		if _, _, err := svc.AddEvidence(ctx, agentID, sid, service.EvidenceInput{
			Content: e.content, Credibility: &cred, Relevance: &rel,
		}); err != nil {
			log.Fatalf("Failed to add evidence: %v", err)
		}
	}

	ratings := [][]domain.Consistency{
		{domain.VeryConsistent, domain.Neutral, domain.Consistent},
		{domain.Inconsistent, domain.VeryInconsistent, domain.Neutral},
		{domain.Inconsistent, domain.Neutral, domain.VeryInconsistent},
	}
	for i, row := range ratings {
		for j, level := range row {
			hid := domain.HypothesisID(fmt.Sprintf("H%d", i))
			eid := domain.EvidenceID(fmt.Sprintf("E%d", j))
			if _, err := svc.Rate(ctx, agentID, sid, hid, eid, level); err != nil {
				log.Fatalf("Failed to rate %s/%s: %v", hid, eid, err)
			}
		}
	}

	scores, err := svc.Scores(agentID, sid)
	if err != nil {
		log.Fatalf("Failed to score session: %v", err)
	}
	fmt.Println("\nRanking (lower is better supported):")
	for _, s := range scores {
		fmt.Printf("  %s  %.3f  %s\n", s.Hypothesis, s.Score, s.Content)
	}
	fmt.Println("\nSeed complete!")
}
