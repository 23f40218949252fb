package storage

import (
	"database/sql"
	"fmt"

	"github.com/pable/go-merc-metrics/internal/model"
)

// GetOverview summarises the row store.
func (db *DB) GetOverview() (*model.StoreOverview, error) {
	var o model.StoreOverview
	var earliest, latest sql.NullString
	var minRating, maxRating sql.NullInt64
	err := db.conn.QueryRow(`
		SELECT COUNT(*),
		       COUNT(DISTINCT reviewId),
		       COUNT(rating),
		       COUNT(difficulty),
		       COUNT(DISTINCT heroCardId),
		       MIN(startDate), MAX(startDate),
		       MIN(rating), MAX(rating)
		FROM mercenaries_match_stats`).
		Scan(&o.TotalRows, &o.TotalMatches, &o.PvpRows, &o.PveRows, &o.UniqueHeroes,
			&earliest, &latest, &minRating, &maxRating)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	o.EarliestMatch = earliest.String
	o.LatestMatch = latest.String
	o.MinRating = int(minRating.Int64)
	o.MaxRating = int(maxRating.Int64)
	return &o, nil
}

// DifficultyCounts returns the number of distinct PvE matches per tier, in tier order.
func (db *DB) DifficultyCounts() ([]model.DifficultyCount, error) {
	rows, err := db.conn.Query(`
		SELECT difficulty, COUNT(DISTINCT reviewId)
		FROM mercenaries_match_stats
		WHERE difficulty IS NOT NULL
		GROUP BY difficulty`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Difficulty]int)
	for rows.Next() {
		var d string
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, err
		}
		counts[model.Difficulty(d)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.DifficultyCount, 0, len(model.Difficulties))
	for _, d := range model.Difficulties {
		out = append(out, model.DifficultyCount{Difficulty: d, Matches: counts[d]})
	}
	return out, nil
}

// QueryRaw runs an arbitrary read query and returns its column names and rows
// rendered as strings. NULL values render as "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				rec[i] = "NULL"
			case []byte:
				rec[i] = string(x)
			default:
				rec[i] = fmt.Sprint(x)
			}
		}
		out = append(out, rec)
	}
	return cols, out, rows.Err()
}
