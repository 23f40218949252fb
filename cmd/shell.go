package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-merc-metrics/internal/model"
	"github.com/pable/go-merc-metrics/internal/publish"
	"github.com/pable/go-merc-metrics/internal/report"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session over the published document",
	Long:  "Load the document at --out once and explore it interactively. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shellSession holds the document a shell explores.
type shellSession struct {
	path string
	doc  *model.GlobalStats
	out  io.Writer
	top  int
}

func runShell(cmd *cobra.Command, _ []string) error {
	s := &shellSession{path: outPath, out: os.Stdout, top: 15}
	if err := s.reload(); err != nil {
		return err
	}

	cGreeting.Println("mercstats shell")
	cMuted.Printf("%s, updated %s. type 'help' or 'exit'\n", s.path, s.doc.LastUpdateDate.Format("2006-01-02 15:04"))
	fmt.Println()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cPrompt.Print("mercstats")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		if quit := s.exec(scanner.Text()); quit {
			return nil
		}
	}
	return nil
}

func (s *shellSession) reload() error {
	doc, err := publish.Read(s.path)
	if errors.Is(err, publish.ErrNotFound) {
		return fmt.Errorf("%w: run 'mercstats build' first", err)
	}
	if err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// exec runs one shell line and reports whether the session should end.
func (s *shellSession) exec(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return false
	}
	cmd, args := tokens[0], tokens[1:]

	switch cmd {
	case "exit", "quit":
		return true
	case "help":
		s.help()
	case "reload":
		if err := s.reload(); err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return false
		}
		cMuted.Fprintf(s.out, "reloaded, updated %s\n", s.doc.LastUpdateDate.Format("2006-01-02 15:04"))
	case "thresholds":
		if s.doc.Pvp == nil {
			cWarn.Fprintln(os.Stderr, "document has no pvp view")
			return false
		}
		report.PrintThresholds(s.out, s.doc.Pvp.MmrPercentiles)
	case "pvp", "pve":
		s.view(cmd, args)
	case "hero":
		if len(args) == 0 {
			cError.Fprintln(os.Stderr, "usage: hero <heroCardId>")
			return false
		}
		for _, id := range args {
			printHeroTo(s.out, s.doc, id, s.top)
		}
	case "top":
		if len(args) != 1 {
			cError.Fprintln(os.Stderr, "usage: top <n>")
			return false
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			cError.Fprintln(os.Stderr, "usage: top <n>")
			return false
		}
		s.top = n
	default:
		cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
	}
	return false
}

// view prints hero stats and compositions of one view, optionally narrowed by
// segment and period.
func (s *shellSession) view(name string, args []string) {
	sel := report.Selection{Top: s.top}
	if len(args) > 0 {
		sel.Segment = args[0]
	}
	if len(args) > 1 {
		sel.Period = args[1]
	}

	var stats []model.HeroStat
	var comps []model.Composition
	switch {
	case name == "pvp" && s.doc.Pvp != nil:
		stats, comps = s.doc.Pvp.HeroStats, s.doc.Pvp.Compositions
	case name == "pve" && s.doc.Pve != nil:
		stats, comps = s.doc.Pve.HeroStats, s.doc.Pve.Compositions
	default:
		cWarn.Fprintf(os.Stderr, "document has no %s view\n", name)
		return
	}
	cHeader.Fprintf(s.out, "\n--- %s hero stats ---\n\n", strings.ToUpper(name))
	report.PrintHeroStats(s.out, stats, sel)
	cHeader.Fprintf(s.out, "\n--- %s compositions ---\n\n", strings.ToUpper(name))
	report.PrintCompositions(s.out, comps, sel)
}

func (s *shellSession) help() {
	fmt.Fprintln(s.out)
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"thresholds", "rating cutoff of each skill bracket"},
		{"pvp [percentile] [period]", "pvp hero stats and compositions"},
		{"pve [tier] [period]", "pve hero stats and compositions"},
		{"hero <heroCardId> [...]", "every bucket and composition for a hero"},
		{"top <n>", "rows per table (0 = all)"},
		{"reload", "re-read the document from disk"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Fprint(s.out, "  ")
		cCmd.Fprintf(s.out, "%-30s", r.cmd)
		fmt.Fprintln(s.out, r.desc)
	}
	fmt.Fprintln(s.out)
}
