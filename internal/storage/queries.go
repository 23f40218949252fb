package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pable/go-merc-metrics/internal/model"
)

const matchColumns = `startDate, reviewId, result, scenarioId, buildNumber, rating, difficulty,
	heroCardId, battleEnterTiming, heroLevel, equipmentCardId, equipmentLevel,
	firstSkillCardId, firstSkillLevel, firstSkillNumberOfTimesUsed,
	secondSkillCardId, secondSkillLevel, secondSkillNumberOfTimesUsed,
	thirdSkillCardId, thirdSkillLevel, thirdSkillNumberOfTimesUsed`

// InsertMatchRows bulk-inserts match rows in a transaction. A row with the same
// review id and hero replaces the stored one, so re-ingesting a file is idempotent.
func (db *DB) InsertMatchRows(ctx context.Context, rows []model.MatchRow) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO mercenaries_match_stats(`+matchColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range rows {
		args := []any{
			formatTime(r.StartDate), r.ReviewID, string(r.Result), r.ScenarioID, r.BuildNumber,
			nullInt(r.Rating), nullString(string(r.Difficulty)),
			r.HeroCardID, r.BattleEnterTiming, r.HeroLevel, r.EquipmentCardID, r.EquipmentLevel,
		}
		for _, s := range r.Skills {
			if s.CardID == "" {
				args = append(args, nil, nil, nil)
				continue
			}
			args = append(args, s.CardID, s.Level, s.TimesUsed)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert match row %s/%s: %w", r.ReviewID, r.HeroCardID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// LoadRows returns the stored rows matching f, ordered by start date then match.
func (db *DB) LoadRows(ctx context.Context, f Filter) ([]model.MatchRow, error) {
	var where []string
	var args []any
	if !f.Since.IsZero() {
		where = append(where, "startDate >= ?")
		args = append(args, formatTime(f.Since))
	}
	if len(f.ScenarioIDs) > 0 {
		where = append(where, "scenarioId IN ("+placeholders(len(f.ScenarioIDs))+")")
		for _, id := range f.ScenarioIDs {
			args = append(args, id)
		}
	}
	query := "SELECT id, " + matchColumns + " FROM mercenaries_match_stats"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY startDate, reviewId, id"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query match rows: %w", err)
	}
	defer rows.Close()

	var out []model.MatchRow
	for rows.Next() {
		r, err := scanMatchRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatchRow(sc rowScanner) (model.MatchRow, error) {
	var r model.MatchRow
	var startDate, result string
	var rating sql.NullInt64
	var difficulty sql.NullString
	var skillIDs [3]sql.NullString
	var skillLevels, skillUses [3]sql.NullInt64
	if err := sc.Scan(
		&r.ID, &startDate, &r.ReviewID, &result, &r.ScenarioID, &r.BuildNumber, &rating, &difficulty,
		&r.HeroCardID, &r.BattleEnterTiming, &r.HeroLevel, &r.EquipmentCardID, &r.EquipmentLevel,
		&skillIDs[0], &skillLevels[0], &skillUses[0],
		&skillIDs[1], &skillLevels[1], &skillUses[1],
		&skillIDs[2], &skillLevels[2], &skillUses[2],
	); err != nil {
		return r, fmt.Errorf("scan match row: %w", err)
	}

	t, err := parseTime(startDate)
	if err != nil {
		return r, fmt.Errorf("parse startDate %q: %w", startDate, err)
	}
	r.StartDate = t
	r.Result = model.Result(result)
	if rating.Valid {
		v := int(rating.Int64)
		r.Rating = &v
	}
	if difficulty.Valid {
		d, err := model.ParseDifficulty(difficulty.String)
		if err != nil {
			return r, err
		}
		r.Difficulty = d
	}
	for i := range r.Skills {
		if !skillIDs[i].Valid {
			continue
		}
		r.Skills[i] = model.SkillSlot{
			CardID:    skillIDs[i].String,
			Level:     int(skillLevels[i].Int64),
			TimesUsed: int(skillUses[i].Int64),
		}
	}
	return r, nil
}

// PruneBefore deletes rows started before t and returns how many were removed.
func (db *DB) PruneBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM mercenaries_match_stats WHERE startDate < ?", formatTime(t))
	if err != nil {
		return 0, fmt.Errorf("prune rows: %w", err)
	}
	return res.RowsAffected()
}

// InsertRun records a build run. An empty ID is replaced with a fresh UUID.
func (db *DB) InsertRun(run *model.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := db.conn.Exec(`
		INSERT INTO build_runs(id, started_at, finished_at, rows_loaded, hero_stats, compositions, output_path, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.RowsLoaded, run.HeroStats, run.Compositions, run.OutputPath, run.Source,
	)
	return err
}

// ListRuns returns the most recent runs first. limit <= 0 returns all of them.
func (db *DB) ListRuns(limit int) ([]model.Run, error) {
	query := `
		SELECT id, started_at, finished_at, rows_loaded, hero_stats, compositions, output_path, source
		FROM build_runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		var r model.Run
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.RowsLoaded, &r.HeroStats,
			&r.Compositions, &r.OutputPath, &r.Source); err != nil {
			return nil, err
		}
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if r.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRuns clears the run ledger and returns how many entries were removed.
func (db *DB) DeleteRuns() (int64, error) {
	res, err := db.conn.Exec("DELETE FROM build_runs")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
