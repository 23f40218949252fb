package pgsource

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pable/go-merc-metrics/internal/model"
	"github.com/pable/go-merc-metrics/internal/storage"
)

func TestBuildQuery(t *testing.T) {
	q, args := buildQuery(storage.Filter{})
	if strings.Contains(q, "WHERE") || len(args) != 0 {
		t.Errorf("empty filter: %q %v", q, args)
	}

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q, args = buildQuery(storage.Filter{Since: since, ScenarioIDs: []int{3790, 3800}})
	if !strings.Contains(q, `"startDate" >= $1`) || !strings.Contains(q, `"scenarioId" = ANY($2)`) {
		t.Errorf("query: %s", q)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if got, ok := args[0].(time.Time); !ok || !got.Equal(since) {
		t.Errorf("since arg: %v", args[0])
	}

	q, args = buildQuery(storage.Filter{ScenarioIDs: []int{1}})
	if !strings.Contains(q, `"scenarioId" = ANY($1)`) || len(args) != 1 {
		t.Errorf("scenario-only query: %s %v", q, args)
	}
}

// TestLoadRows runs against a live database when MERCSTATS_TEST_PG_DSN is set.
func TestLoadRows(t *testing.T) {
	dsn := os.Getenv("MERCSTATS_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("MERCSTATS_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	src, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(src.Close)

	_, err = src.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+Table+` (
		id BIGSERIAL PRIMARY KEY,
		"startDate" TIMESTAMPTZ NOT NULL,
		"reviewId" TEXT NOT NULL,
		"result" TEXT NOT NULL,
		"scenarioId" INTEGER NOT NULL,
		"buildNumber" INTEGER NOT NULL,
		"rating" INTEGER,
		"difficulty" TEXT,
		"heroCardId" TEXT NOT NULL,
		"battleEnterTiming" INTEGER NOT NULL,
		"heroLevel" INTEGER NOT NULL,
		"equipmentCardId" TEXT NOT NULL,
		"equipmentLevel" INTEGER NOT NULL,
		"firstSkillCardId" TEXT, "firstSkillLevel" INTEGER, "firstSkillNumberOfTimesUsed" INTEGER,
		"secondSkillCardId" TEXT, "secondSkillLevel" INTEGER, "secondSkillNumberOfTimesUsed" INTEGER,
		"thirdSkillCardId" TEXT, "thirdSkillLevel" INTEGER, "thirdSkillNumberOfTimesUsed" INTEGER)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	// A scenario id unique to this run keeps the test isolated from existing data.
	scenario := int(uuid.New().ID() & 0x3fffffff)
	review := uuid.NewString()
	start := time.Now().UTC().Truncate(time.Second)
	_, err = src.pool.Exec(ctx, `INSERT INTO `+Table+`
		("startDate", "reviewId", "result", "scenarioId", "buildNumber", "rating", "difficulty",
		 "heroCardId", "battleEnterTiming", "heroLevel", "equipmentCardId", "equipmentLevel",
		 "firstSkillCardId", "firstSkillLevel", "firstSkillNumberOfTimesUsed")
		VALUES ($1, $2, 'WON', $3, 1, NULL, 'LEGENDARY', 'HERO_A', 0, 30, 'HERO_A_E1', 4, 'HERO_A_S1', 5, 2)`,
		start, review, scenario)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	t.Cleanup(func() {
		src.pool.Exec(context.Background(), `DELETE FROM `+Table+` WHERE "scenarioId" = $1`, scenario)
	})

	rows, err := src.LoadRows(ctx, storage.Filter{ScenarioIDs: []int{scenario}})
	if err != nil {
		t.Fatalf("LoadRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.ReviewID != review || r.Result != model.ResultWon || r.Difficulty != model.DifficultyLegendary {
		t.Errorf("row: %+v", r)
	}
	if r.Rating != nil {
		t.Errorf("rating should be nil, got %d", *r.Rating)
	}
	if !r.StartDate.Equal(start) {
		t.Errorf("StartDate: got %v, want %v", r.StartDate, start)
	}
	if r.Skills[0].CardID != "HERO_A_S1" || r.Skills[0].TimesUsed != 2 || r.Skills[1].CardID != "" {
		t.Errorf("skills: %+v", r.Skills)
	}
}
