package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"twotable/pkg/config"
	"twotable/pkg/cursor"
	dberror "twotable/pkg/error"
	"twotable/pkg/execution/split"
	"twotable/pkg/execution/twotable"
	"twotable/pkg/key"
	"twotable/pkg/logging"
	"twotable/pkg/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

type Configuration struct {
	ConfigPath string
	Tables     tableFlags
	StartRow   string
	EndRow     string
	Splits     string
	Workers    int
	Batch      int
	ShowStats  bool
	Trace      bool
}

// tableFlags collects repeated -table name=path flags.
type tableFlags map[string]string

func (t tableFlags) String() string {
	parts := make([]string, 0, len(t))
	for name, path := range t {
		parts = append(parts, name+"="+path)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (t tableFlags) Set(v string) error {
	name, path, ok := strings.Cut(v, "=")
	if !ok || name == "" || path == "" {
		return fmt.Errorf("expected name=path, got %q", v)
	}
	t[name] = path
	return nil
}

func main() {
	cfg := parseArguments()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		var je *dberror.JoinError
		if cfg.Trace && errors.As(err, &je) {
			fmt.Fprint(os.Stderr, je.FormatStack())
		}
		log.Fatalf("join failed: %v", err)
	}
}

// parseArguments processes command-line flags
func parseArguments() Configuration {
	cfg := Configuration{Tables: make(tableFlags)}

	flag.StringVar(&cfg.ConfigPath, "config", "join.ini", "Join definition (INI)")
	flag.Var(cfg.Tables, "table", "Table file as name=path; may be repeated")
	flag.StringVar(&cfg.StartRow, "start", "", "First row to join (inclusive)")
	flag.StringVar(&cfg.EndRow, "end", "", "Last row to join (inclusive)")
	flag.StringVar(&cfg.Splits, "splits", "", "Comma-separated split rows; runs the ranges in parallel")
	flag.IntVar(&cfg.Workers, "workers", 4, "Parallel ranges when -splits is set")
	flag.IntVar(&cfg.Batch, "batch", 0, "Entries per resumable batch; 0 reads everything at once")
	flag.BoolVar(&cfg.ShowStats, "stats", false, "Print aligner counters")
	flag.BoolVar(&cfg.Trace, "trace", false, "Print the stack captured by a failing join")

	flag.Parse()
	return cfg
}

func run(ctx context.Context, cfg Configuration) error {
	jf, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return err
	}

	logCfg, err := jf.Logging()
	if err != nil {
		return err
	}
	if err := logging.Init(logCfg); err != nil {
		return err
	}
	defer logging.Close()

	env, err := loadTables(jf, cfg)
	if err != nil {
		return err
	}

	al, err := twotable.Open(jf.Options(), env, nil)
	if err != nil {
		return err
	}
	defer al.Close()

	fmt.Println(titleStyle.Render(fmt.Sprintf("⋈ %s join over %s", al.Mode(), strings.Join(env.Catalog.Names(), ", "))))

	bound := key.RowRange(cfg.StartRow, cfg.EndRow)
	if cfg.Splits != "" {
		return runSplit(ctx, al, env, bound, cfg)
	}
	return runBatched(al, bound, cfg)
}

// loadTables reads the tables of the [tables] section, overridden by -table
// flags. Relative paths in the join file are resolved against its directory.
func loadTables(jf *config.JoinFile, cfg Configuration) (*cursor.Environment, error) {
	paths := make(map[string]string)
	base := filepath.Dir(jf.Path())
	for name, path := range jf.Tables() {
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		paths[name] = path
	}
	for name, path := range cfg.Tables {
		paths[name] = path
	}

	catalog := cursor.NewCatalog()
	for name, path := range paths {
		t, err := table.LoadTable(name, path)
		if err != nil {
			return nil, err
		}
		if err := catalog.Register(t); err != nil {
			return nil, err
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("📂 %s: %d entries from %s", name, t.Len(), path)))
	}
	return cursor.NewEnvironment(catalog), nil
}

// runBatched drains the join in batches, restarting from each checkpoint.
func runBatched(al *twotable.Aligner, bound key.Range, cfg Configuration) error {
	rng := bound
	if err := al.Start(rng); err != nil {
		return err
	}

	for n := 1; ; n++ {
		batch, err := twotable.Drain(al, cfg.Batch)
		if err != nil {
			return err
		}
		if cfg.Batch > 0 {
			fmt.Println(sectionStyle.Render(fmt.Sprintf("── batch %d (%d entries)", n, len(batch.Entries))))
		}
		printEntries(batch.Entries)

		if batch.Done {
			break
		}
		fmt.Println(dimStyle.Render("   checkpoint " + batch.Checkpoint.String()))

		rng = twotable.ResumeRange(rng, batch.Checkpoint)
		if err := al.Start(rng); err != nil {
			return err
		}
	}

	if cfg.ShowStats {
		printStats("total", al.Stats())
	}
	return nil
}

// runSplit drains the split ranges in parallel and prints their merged output.
func runSplit(ctx context.Context, al *twotable.Aligner, env *cursor.Environment, bound key.Range, cfg Configuration) error {
	ranges := split.Clip(split.SplitRows(strings.Split(cfg.Splits, ",")), bound)

	results, err := split.Run(ctx, al, ranges,
		split.WithWorkers(cfg.Workers),
		split.WithEnvironment(env))
	if err != nil {
		return err
	}

	for i, res := range results {
		fmt.Println(sectionStyle.Render(fmt.Sprintf("── range %d %s (%d entries)", i+1, res.Range, len(res.Entries))))
		if cfg.ShowStats {
			printStats(res.TaskID, res.Stats)
		}
	}
	fmt.Println(sectionStyle.Render("── output"))
	printEntries(split.Merge(results))
	return nil
}

func printEntries(entries []key.Entry) {
	for _, e := range entries {
		fmt.Printf("%s\t%s\n", e.Key, e.Value)
	}
}

func printStats(label string, s twotable.Stats) {
	fmt.Println(dimStyle.Render(fmt.Sprintf(
		"   [%s] groups=%d matches=%d passthrough=%d skipSteps=%d skipSeeks=%d emitted=%d",
		label, s.Groups, s.Matches, s.PassThrough, s.SkipSteps, s.SkipSeeks, s.Emitted)))
}
