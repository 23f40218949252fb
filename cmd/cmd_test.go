package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/pable/go-merc-metrics/internal/aggregator"
	"github.com/pable/go-merc-metrics/internal/model"
	"github.com/pable/go-merc-metrics/internal/publish"
	"github.com/pable/go-merc-metrics/internal/storage"
)

func TestSetUnchanged(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var db string
	var days int
	var periods []string
	fs.StringVar(&db, "db", "default.db", "")
	fs.IntVar(&days, "window-days", 30, "")
	fs.StringSliceVar(&periods, "period", []string{"all-time"}, "")
	if err := fs.Parse([]string{"--db", "explicit.db"}); err != nil {
		t.Fatal(err)
	}

	err := setUnchanged(fs, map[string]string{
		"db":          "from-env.db",
		"window-days": "7",
		"period":      "all-time,past-seven",
		"missing":     "ignored",
	})
	if err != nil {
		t.Fatalf("setUnchanged: %v", err)
	}
	if db != "explicit.db" {
		t.Errorf("explicit flag overridden: %s", db)
	}
	if days != 7 {
		t.Errorf("window-days: got %d, want 7", days)
	}
	if !reflect.DeepEqual(periods, []string{"all-time", "past-seven"}) {
		t.Errorf("period: %v", periods)
	}

	if err := setUnchanged(fs, map[string]string{"window-days": "soon"}); err == nil {
		t.Error("expected error for invalid config value")
	}
}

func TestBuildOptions(t *testing.T) {
	defer func(p []string, skip, benches bool) {
		buildPeriods, buildSkipPve, buildPvpBenches = p, skip, benches
	}(buildPeriods, buildSkipPve, buildPvpBenches)

	buildPeriods = []string{"all-time", "past-seven"}
	buildSkipPve, buildPvpBenches = true, true
	opts, err := buildOptions()
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}
	if !reflect.DeepEqual(opts.Periods, []aggregator.Period{aggregator.AllTime, aggregator.PastSeven}) {
		t.Errorf("periods: %+v", opts.Periods)
	}
	if !opts.SkipPve || !opts.PvpBenches {
		t.Errorf("flags not applied: %+v", opts)
	}

	buildPeriods = []string{"last-year"}
	if _, err := buildOptions(); err == nil {
		t.Error("expected error for unknown period")
	}
}

func writeFixtures(t *testing.T, dir string) (cardsFile, rowsFile string) {
	t.Helper()
	cardsFile = filepath.Join(dir, "cards.json")
	cardsJSON := `[{"id":"HERO_A","mercenaryRole":"TANK"},{"id":"HERO_B","mercenaryRole":"CASTER"},{"id":"HERO_C","mercenaryRole":"FIGHTER"},{"id":"HERO_D","mercenaryRole":"FIGHTER"}]`
	if err := os.WriteFile(cardsFile, []byte(cardsJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	var lines []string
	start := time.Now().UTC().Add(-24 * time.Hour)
	line := func(review, result, hero string, timing int, rating, difficulty string) {
		lines = append(lines, fmt.Sprintf(
			`{"startDate":%q,"reviewId":%q,"result":%q,"scenarioId":3790,"rating":%s,"difficulty":%s,"heroCardId":%q,"battleEnterTiming":%d,"heroLevel":30,"equipmentCardId":"%s_E1","firstSkillCardId":"%s_S1","firstSkillLevel":5,"firstSkillNumberOfTimesUsed":2}`,
			start.Format(time.RFC3339), review, result, rating, difficulty, hero, timing, hero, hero))
	}
	// 12 heroic matches: A, B, C start and D comes off the bench; 7 wins.
	for i := 0; i < 12; i++ {
		result := "won"
		if i >= 7 {
			result = "lost"
		}
		review := fmt.Sprintf("pve-%02d", i)
		for _, h := range []string{"HERO_A", "HERO_B", "HERO_C"} {
			line(review, result, h, 1, "null", `"heroic"`)
		}
		line(review, result, "HERO_D", 3, "null", `"heroic"`)
	}
	// 12 rated matches of A, B, C.
	for i := 0; i < 12; i++ {
		review := fmt.Sprintf("pvp-%02d", i)
		for _, h := range []string{"HERO_A", "HERO_B", "HERO_C"} {
			line(review, "won", h, 0, fmt.Sprint(1000+i*100), "null")
		}
	}
	lines = append(lines, "this line is not json")

	rowsFile = filepath.Join(dir, "rows.jsonl")
	if err := os.WriteFile(rowsFile, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return cardsFile, rowsFile
}

func execute(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("mercstats %s: %v", strings.Join(args, " "), err)
	}
}

func TestIngestBuildEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cardsFile, rowsFile := writeFixtures(t, dir)
	db := filepath.Join(dir, "store", "stats.db")
	out := filepath.Join(dir, "public", "global_stats.json.gz")
	common := []string{"--db", db, "--cards", cardsFile, "--out", out, "--env-file", filepath.Join(dir, "none.env")}

	execute(t, append([]string{"ingest", rowsFile}, common...)...)
	execute(t, append([]string{"build", "--window-days", "0"}, common...)...)

	doc, err := publish.Read(out)
	if err != nil {
		t.Fatalf("read published document: %v", err)
	}

	if doc.Pve == nil {
		t.Fatal("expected pve view")
	}
	var heroic []model.Composition
	for _, c := range doc.Pve.Compositions {
		if c.MmrPercentile.Difficulty == model.DifficultyHeroic {
			heroic = append(heroic, c)
		}
	}
	if len(heroic) != 1 {
		t.Fatalf("expected 1 heroic composition, got %d", len(heroic))
	}
	c := heroic[0]
	if !reflect.DeepEqual(c.HeroCardIDs, []string{"HERO_A", "HERO_B", "HERO_C"}) || c.TotalMatches != 12 || c.TotalWins != 7 {
		t.Errorf("heroic composition: %+v", c)
	}
	if len(c.Benches) != 1 || !reflect.DeepEqual(c.Benches[0].HeroCardIDs, []string{"HERO_D"}) || c.Benches[0].TotalMatches != 12 {
		t.Errorf("benches: %+v", c.Benches)
	}

	var top100 []model.Composition
	for _, c := range doc.Pvp.Compositions {
		if c.MmrPercentile.Percentile == 100 {
			top100 = append(top100, c)
		}
	}
	if len(top100) != 1 || top100[0].TotalMatches != 12 || top100[0].Benches != nil {
		t.Errorf("pvp top-100 compositions: %+v", top100)
	}
	for _, hs := range doc.Pvp.HeroStats {
		if hs.HeroCardID == "HERO_A" && hs.HeroRole != model.RoleProtector {
			t.Errorf("HERO_A role: %v", hs.HeroRole)
		}
	}

	store, err := storage.Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	runs, err := store.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].RowsLoaded != 84 || runs[0].OutputPath != out || runs[0].Source != "sqlite" {
		t.Errorf("run ledger: %+v", runs)
	}
}

func TestShellExec(t *testing.T) {
	zero := 0
	var buf bytes.Buffer
	s := &shellSession{
		out: &buf,
		top: 5,
		doc: &model.GlobalStats{
			Pvp: &model.Pvp{
				MmrPercentiles: []model.MmrPercentile{{Percentile: 100, Mmr: &zero}},
				HeroStats:      []model.HeroStat{{Date: "all-time", MmrPercentile: model.PercentileSegment(100), HeroCardID: "HERO_A", TotalMatches: 3}},
			},
		},
	}

	if s.exec("thresholds") {
		t.Fatal("thresholds should not end the session")
	}
	if !strings.Contains(buf.String(), "top 100%") {
		t.Errorf("thresholds output: %s", buf.String())
	}

	buf.Reset()
	s.exec("pvp 100 all-time")
	if !strings.Contains(buf.String(), "HERO_A") {
		t.Errorf("pvp output: %s", buf.String())
	}

	s.exec("top 0")
	if s.top != 0 {
		t.Errorf("top: got %d, want 0", s.top)
	}
	s.exec("top -3")
	if s.top != 0 {
		t.Errorf("negative top accepted: %d", s.top)
	}

	if !s.exec("quit") || !s.exec("  exit ") {
		t.Error("quit and exit should end the session")
	}
	if s.exec("") {
		t.Error("empty line should not end the session")
	}
}
