package storage

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/pable/go-merc-metrics/internal/model"
)

// matchRecord is the JSONL shape of a match row, keyed by the column names of
// the mercenaries_match_stats table.
type matchRecord struct {
	StartDate         string  `json:"startDate"`
	ReviewID          string  `json:"reviewId"`
	Result            string  `json:"result"`
	ScenarioID        int     `json:"scenarioId"`
	BuildNumber       int     `json:"buildNumber"`
	Rating            *int    `json:"rating"`
	Difficulty        *string `json:"difficulty"`
	HeroCardID        string  `json:"heroCardId"`
	BattleEnterTiming int     `json:"battleEnterTiming"`
	HeroLevel         int     `json:"heroLevel"`
	EquipmentCardID   string  `json:"equipmentCardId"`
	EquipmentLevel    int     `json:"equipmentLevel"`

	FirstSkillCardID             *string `json:"firstSkillCardId"`
	FirstSkillLevel              int     `json:"firstSkillLevel"`
	FirstSkillNumberOfTimesUsed  int     `json:"firstSkillNumberOfTimesUsed"`
	SecondSkillCardID            *string `json:"secondSkillCardId"`
	SecondSkillLevel             int     `json:"secondSkillLevel"`
	SecondSkillNumberOfTimesUsed int     `json:"secondSkillNumberOfTimesUsed"`
	ThirdSkillCardID             *string `json:"thirdSkillCardId"`
	ThirdSkillLevel              int     `json:"thirdSkillLevel"`
	ThirdSkillNumberOfTimesUsed  int     `json:"thirdSkillNumberOfTimesUsed"`
}

func (rec *matchRecord) toRow() (model.MatchRow, error) {
	if rec.ReviewID == "" || rec.HeroCardID == "" {
		return model.MatchRow{}, fmt.Errorf("missing reviewId or heroCardId")
	}
	start, err := time.Parse(time.RFC3339Nano, rec.StartDate)
	if err != nil {
		return model.MatchRow{}, fmt.Errorf("parse startDate: %w", err)
	}
	result := model.Result(strings.ToLower(rec.Result))
	switch result {
	case model.ResultWon, model.ResultLost, model.ResultTied:
	default:
		return model.MatchRow{}, fmt.Errorf("unknown result %q", rec.Result)
	}

	row := model.MatchRow{
		StartDate:         start,
		ReviewID:          rec.ReviewID,
		Result:            result,
		ScenarioID:        rec.ScenarioID,
		BuildNumber:       rec.BuildNumber,
		Rating:            rec.Rating,
		HeroCardID:        rec.HeroCardID,
		EquipmentCardID:   rec.EquipmentCardID,
		HeroLevel:         rec.HeroLevel,
		EquipmentLevel:    rec.EquipmentLevel,
		BattleEnterTiming: rec.BattleEnterTiming,
	}
	if rec.Difficulty != nil {
		d, err := model.ParseDifficulty(strings.ToLower(*rec.Difficulty))
		if err != nil {
			return model.MatchRow{}, err
		}
		row.Difficulty = d
	}
	row.Skills[0] = skillSlot(rec.FirstSkillCardID, rec.FirstSkillLevel, rec.FirstSkillNumberOfTimesUsed)
	row.Skills[1] = skillSlot(rec.SecondSkillCardID, rec.SecondSkillLevel, rec.SecondSkillNumberOfTimesUsed)
	row.Skills[2] = skillSlot(rec.ThirdSkillCardID, rec.ThirdSkillLevel, rec.ThirdSkillNumberOfTimesUsed)
	return row, nil
}

func skillSlot(id *string, level, used int) model.SkillSlot {
	if id == nil || *id == "" {
		return model.SkillSlot{}
	}
	return model.SkillSlot{CardID: *id, Level: level, TimesUsed: used}
}

// ReadJSONL decodes one match row per line. Blank lines are ignored. A malformed
// line is logged and counted in skipped, or returned as an error when strict is set.
func ReadJSONL(r io.Reader, strict bool, log zerolog.Logger) (rows []model.MatchRow, skipped int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec matchRecord
		row, err := func() (model.MatchRow, error) {
			if err := json.Unmarshal([]byte(text), &rec); err != nil {
				return model.MatchRow{}, err
			}
			return rec.toRow()
		}()
		if err != nil {
			if strict {
				return nil, skipped, fmt.Errorf("line %d: %w", line, err)
			}
			log.Warn().Int("line", line).Err(err).Msg("skipping malformed row")
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read jsonl: %w", err)
	}
	return rows, skipped, nil
}
