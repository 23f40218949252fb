// Package pgsource loads match rows from the PostgreSQL telemetry table.
package pgsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pable/go-merc-metrics/internal/model"
	"github.com/pable/go-merc-metrics/internal/storage"
)

// Table is the telemetry table read by LoadRows.
const Table = "mercenaries_match_stats"

const columns = `"startDate", "reviewId", "result", "scenarioId", "buildNumber", "rating", "difficulty",
	"heroCardId", "battleEnterTiming", "heroLevel", "equipmentCardId", "equipmentLevel",
	"firstSkillCardId", "firstSkillLevel", "firstSkillNumberOfTimesUsed",
	"secondSkillCardId", "secondSkillLevel", "secondSkillNumberOfTimesUsed",
	"thirdSkillCardId", "thirdSkillLevel", "thirdSkillNumberOfTimesUsed"`

// Source reads rows through a pgx connection pool.
type Source struct {
	pool *pgxpool.Pool
}

var _ storage.RowSource = (*Source)(nil)

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Source, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Source{pool: pool}, nil
}

// Close releases the pool.
func (s *Source) Close() {
	s.pool.Close()
}

// LoadRows returns the rows matching f, ordered by start date then match.
func (s *Source) LoadRows(ctx context.Context, f storage.Filter) ([]model.MatchRow, error) {
	query, args := buildQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", Table, err)
	}
	defer rows.Close()

	var out []model.MatchRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func buildQuery(f storage.Filter) (string, []any) {
	var where []string
	var args []any
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		where = append(where, fmt.Sprintf(`"startDate" >= $%d`, len(args)))
	}
	if len(f.ScenarioIDs) > 0 {
		args = append(args, f.ScenarioIDs)
		where = append(where, fmt.Sprintf(`"scenarioId" = ANY($%d)`, len(args)))
	}
	query := "SELECT id, " + columns + " FROM " + Table
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + ` ORDER BY "startDate", "reviewId", id`, args
}

func scanRow(rows pgx.Rows) (model.MatchRow, error) {
	var r model.MatchRow
	var result string
	var difficulty *string
	var skillIDs [3]*string
	var skillLevels, skillUses [3]*int
	if err := rows.Scan(
		&r.ID, &r.StartDate, &r.ReviewID, &result, &r.ScenarioID, &r.BuildNumber, &r.Rating, &difficulty,
		&r.HeroCardID, &r.BattleEnterTiming, &r.HeroLevel, &r.EquipmentCardID, &r.EquipmentLevel,
		&skillIDs[0], &skillLevels[0], &skillUses[0],
		&skillIDs[1], &skillLevels[1], &skillUses[1],
		&skillIDs[2], &skillLevels[2], &skillUses[2],
	); err != nil {
		return r, fmt.Errorf("scan %s row: %w", Table, err)
	}

	r.Result = model.Result(strings.ToLower(result))
	if difficulty != nil {
		d, err := model.ParseDifficulty(strings.ToLower(*difficulty))
		if err != nil {
			return r, fmt.Errorf("row %d: %w", r.ID, err)
		}
		r.Difficulty = d
	}
	for i := range r.Skills {
		if skillIDs[i] == nil || *skillIDs[i] == "" {
			continue
		}
		r.Skills[i].CardID = *skillIDs[i]
		if skillLevels[i] != nil {
			r.Skills[i].Level = *skillLevels[i]
		}
		if skillUses[i] != nil {
			r.Skills[i].TimesUsed = *skillUses[i]
		}
	}
	return r, nil
}
