package model

import (
	"fmt"
	"strconv"
	"time"
)

// Result is the outcome of a match from the player's side.
type Result string

const (
	ResultWon  Result = "won"
	ResultLost Result = "lost"
	ResultTied Result = "tied"
)

// Difficulty is the co-op difficulty tier of a PvE run.
type Difficulty string

const (
	DifficultyNone      Difficulty = ""
	DifficultyNormal    Difficulty = "normal"
	DifficultyHeroic    Difficulty = "heroic"
	DifficultyLegendary Difficulty = "legendary"
)

// Difficulties is the fixed, ordered tier list used for PvE segmentation.
var Difficulties = []Difficulty{DifficultyNormal, DifficultyHeroic, DifficultyLegendary}

// ParseDifficulty returns the tier for s, or an error for anything outside the tier list.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyNone, DifficultyNormal, DifficultyHeroic, DifficultyLegendary:
		return Difficulty(s), nil
	}
	return DifficultyNone, fmt.Errorf("unknown difficulty %q", s)
}

// Role is the combat role of a hero card.
type Role int

const (
	RoleUnknown Role = iota
	RoleCaster
	RoleFighter
	RoleProtector
)

func (r Role) String() string {
	switch r {
	case RoleCaster:
		return "caster"
	case RoleFighter:
		return "fighter"
	case RoleProtector:
		return "protector"
	default:
		return "unknown"
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	switch string(b) {
	case "caster":
		*r = RoleCaster
	case "fighter":
		*r = RoleFighter
	case "protector":
		*r = RoleProtector
	default:
		*r = RoleUnknown
	}
	return nil
}

// StarterEnterTiming is the last battle-enter turn at which a hero still counts as
// a starter. Starters are recorded at turn 0 or 1 depending on the client build.
const StarterEnterTiming = 1

// ---- Raw rows ----

// SkillSlot is one of the three ability slots of a hero in a match.
// An empty CardID means the slot was not recorded.
type SkillSlot struct {
	CardID    string
	Level     int
	TimesUsed int
}

// MatchRow is one hero in one match. All rows sharing a ReviewID form a match.
type MatchRow struct {
	ID                int64
	StartDate         time.Time
	ReviewID          string
	Result            Result
	ScenarioID        int
	BuildNumber       int
	Rating            *int       // set for PvP rows
	Difficulty        Difficulty // set for PvE rows
	HeroCardID        string
	EquipmentCardID   string
	HeroLevel         int
	EquipmentLevel    int
	BattleEnterTiming int
	Skills            [3]SkillSlot
}

// IsStarter reports whether the hero was on the board from the start of the match.
func (r *MatchRow) IsStarter() bool {
	return r.BattleEnterTiming <= StarterEnterTiming
}

// Won reports whether the match was won.
func (r *MatchRow) Won() bool { return r.Result == ResultWon }

// Lost reports whether the match was lost.
func (r *MatchRow) Lost() bool { return r.Result == ResultLost }

// ---- Aggregated output ----

// Segment tags a stat with the population it was computed over: either a rating
// percentile (PvP) or a difficulty tier (PvE). It serialises as a number or a string.
type Segment struct {
	Percentile int
	Difficulty Difficulty
}

// PercentileSegment returns the segment for a rating percentile rank.
func PercentileSegment(p int) Segment { return Segment{Percentile: p} }

// DifficultySegment returns the segment for a difficulty tier.
func DifficultySegment(d Difficulty) Segment { return Segment{Difficulty: d} }

func (s Segment) String() string {
	if s.Difficulty != DifficultyNone {
		return string(s.Difficulty)
	}
	return strconv.Itoa(s.Percentile)
}

func (s Segment) MarshalJSON() ([]byte, error) {
	if s.Difficulty != DifficultyNone {
		return []byte(strconv.Quote(string(s.Difficulty))), nil
	}
	return []byte(strconv.Itoa(s.Percentile)), nil
}

func (s *Segment) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		v, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("segment: %w", err)
		}
		d, err := ParseDifficulty(v)
		if err != nil {
			return err
		}
		*s = DifficultySegment(d)
		return nil
	}
	p, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("segment: %w", err)
	}
	*s = PercentileSegment(p)
	return nil
}

// MmrPercentile is a rating cutoff for a percentile rank. A nil Mmr means the cutoff
// could not be computed (empty population) and selects no rows.
type MmrPercentile struct {
	Percentile int  `json:"percentile"`
	Mmr        *int `json:"mmr"`
}

// Includes reports whether a rating falls inside this bracket.
func (p MmrPercentile) Includes(rating *int) bool {
	if p.Mmr == nil || rating == nil {
		return false
	}
	return *rating >= *p.Mmr
}

// SkillInfo is the merged usage of one skill card within a hero stat bucket.
type SkillInfo struct {
	CardID            string `json:"cardId"`
	NumberOfTimesUsed int    `json:"numberOfTimesUsed"`
	NumberOfMatches   int    `json:"numberOfMatches"`
}

// HeroStat is the aggregate for one hero configuration within a segment.
type HeroStat struct {
	Date            string      `json:"date"`
	MmrPercentile   Segment     `json:"mmrPercentile"`
	HeroCardID      string      `json:"heroCardId"`
	HeroRole        Role        `json:"heroRole"`
	HeroLevel       int         `json:"heroLevel"`
	Starter         bool        `json:"starter"`
	EquipmentCardID string      `json:"equipementCardId"`
	TotalMatches    int         `json:"totalMatches"`
	TotalWins       int         `json:"totalWins"`
	TotalLosses     int         `json:"totalLosses"`
	SkillInfos      []SkillInfo `json:"skillInfos"`
}

func (s *HeroStat) WinRate() float64 {
	if s.TotalMatches == 0 {
		return 0
	}
	return float64(s.TotalWins) / float64(s.TotalMatches)
}

// CompositionBench is the record of one bench line-up behind a starter composition.
type CompositionBench struct {
	HeroCardIDs  []string `json:"heroCardIds"`
	TotalMatches int      `json:"totalMatches"`
	TotalWins    int      `json:"totalWins"`
	TotalLosses  int      `json:"totalLosses"`
}

func (b *CompositionBench) WinRate() float64 {
	if b.TotalMatches == 0 {
		return 0
	}
	return float64(b.TotalWins) / float64(b.TotalMatches)
}

// Composition is the record of a team fielded together. Benches is nil for the
// flat-team variant.
type Composition struct {
	Date          string             `json:"date"`
	HeroCardIDs   []string           `json:"heroCardIds"`
	MmrPercentile Segment            `json:"mmrPercentile"`
	TotalMatches  int                `json:"totalMatches"`
	TotalWins     int                `json:"totalWins"`
	TotalLosses   int                `json:"totalLosses"`
	Benches       []CompositionBench `json:"benches"`
}

func (c *Composition) WinRate() float64 {
	if c.TotalMatches == 0 {
		return 0
	}
	return float64(c.TotalWins) / float64(c.TotalMatches)
}

// Pvp is the skill-bracket view.
type Pvp struct {
	MmrPercentiles []MmrPercentile `json:"mmrPercentiles"`
	HeroStats      []HeroStat      `json:"heroStats"`
	Compositions   []Composition   `json:"compositions"`
}

// Pve is the difficulty-tier view.
type Pve struct {
	HeroStats    []HeroStat    `json:"heroStats"`
	Compositions []Composition `json:"compositions"`
}

// GlobalStats is the published document.
type GlobalStats struct {
	LastUpdateDate time.Time `json:"lastUpdateDate"`
	Pve            *Pve      `json:"pve,omitempty"`
	Pvp            *Pvp      `json:"pvp"`
}

// ---- Store bookkeeping ----

// Run is a recorded execution of the build job.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	RowsLoaded   int
	HeroStats    int
	Compositions int
	OutputPath   string
	Source       string
}

// StoreOverview summarises the contents of the row store.
type StoreOverview struct {
	TotalRows     int
	TotalMatches  int
	PvpRows       int
	PveRows       int
	UniqueHeroes  int
	EarliestMatch string
	LatestMatch   string
	MinRating     int
	MaxRating     int
}

// DifficultyCount is the number of matches stored for one PvE tier.
type DifficultyCount struct {
	Difficulty Difficulty
	Matches    int
}
