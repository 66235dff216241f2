// Command analyze plays many seeded Pair Drop games with a fixed strategy and
// prints the outcome distribution: how often the board is cleared, why games
// end, and how many cards are typically left behind.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/pair-drop-game/game/config"
	"github.com/wricardo/pair-drop-game/game/engine"
)

// Strategy picks the cell for the pending card of an active game
type Strategy func(e *engine.GameEngine) engine.Position

var strategies = map[string]Strategy{
	"greedy": greedy,
	"first":  firstEmpty,
}

// GameResult summarizes one finished game
type GameResult struct {
	Seed       int64
	Outcome    engine.Outcome
	EndReason  engine.EndReason
	Left       int
	Cleared    int
	Placements int
}

// Summary aggregates a batch of games
type Summary struct {
	Games      int
	Outcomes   map[engine.Outcome]int
	EndReasons map[engine.EndReason]int
	AvgLeft    float64
	AvgCleared float64
	Best       GameResult
}

// greedy takes the empty cell that clears the most cards. Without a match it
// takes the cell with the most empty neighbors to keep room around future
// partners.
func greedy(e *engine.GameEngine) engine.Position {
	board := e.Board()
	pending, _ := e.GetPending()
	partner, pairs := e.Rule().PartnerOf(pending)

	best := engine.Position{Row: -1}
	bestScore := -1
	for _, pos := range board.EmptyCells() {
		matches, free := 0, 0
		for _, n := range board.NeighborsOf(pos.Row, pos.Col) {
			v, occupied := board.Value(n.Row, n.Col)
			switch {
			case !occupied:
				free++
			case pairs && v == partner:
				matches++
			}
		}
		// A match always outranks free space
		score := matches*10 + free
		if score > bestScore {
			best, bestScore = pos, score
		}
	}
	return best
}

// firstEmpty takes the first empty cell in row-major order
func firstEmpty(e *engine.GameEngine) engine.Position {
	cells := e.Board().EmptyCells()
	if len(cells) == 0 {
		return engine.Position{Row: -1}
	}
	return cells[0]
}

// playGame runs e to the end with strategy
func playGame(e *engine.GameEngine, strategy Strategy) (GameResult, error) {
	if err := e.Start(); err != nil {
		return GameResult{}, err
	}

	for !e.IsTerminal() {
		pos := strategy(e)
		out, err := e.AttemptPlacement(pos.Row, pos.Col)
		if err != nil {
			return GameResult{}, err
		}
		if !out.Accepted {
			return GameResult{}, fmt.Errorf("seed %d: placement at (%d,%d) rejected: %s", e.GetSeed(), pos.Row, pos.Col, out.RejectReason)
		}
	}

	state := e.GetState()
	return GameResult{
		Seed:       e.GetSeed(),
		Outcome:    state.Outcome,
		EndReason:  state.EndReason,
		Left:       state.Occupied,
		Cleared:    state.ClearedTotal,
		Placements: state.TotalPlacements,
	}, nil
}

// simulate plays games with seeds seed, seed+1, ... on up to workers goroutines
func simulate(ctx context.Context, cfg *engine.GameConfig, strategy Strategy, games int, seed int64, workers int) (*Summary, error) {
	results := make([]GameResult, games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < games; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := engine.NewEngine(cfg, seed+int64(i))
			if err != nil {
				return err
			}
			result, err := playGame(e, strategy)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summarize(results), nil
}

func summarize(results []GameResult) *Summary {
	s := &Summary{
		Games:      len(results),
		Outcomes:   map[engine.Outcome]int{},
		EndReasons: map[engine.EndReason]int{},
	}
	if len(results) == 0 {
		return s
	}

	left, cleared := 0, 0
	s.Best = results[0]
	for _, r := range results {
		s.Outcomes[r.Outcome]++
		s.EndReasons[r.EndReason]++
		left += r.Left
		cleared += r.Cleared
		if r.Left < s.Best.Left {
			s.Best = r
		}
	}
	s.AvgLeft = float64(left) / float64(len(results))
	s.AvgCleared = float64(cleared) / float64(len(results))
	return s
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

func printSummary(out io.Writer, cfg *engine.GameConfig, strategyName string, s *Summary) {
	fmt.Fprintf(out, "\n=== Analyzing %s (%s strategy) ===\n", cfg.Name, strategyName)
	fmt.Fprintf(out, "Board: %dx%d, Deck: %d cards\n", cfg.BoardRows, cfg.BoardCols, cfg.Ranks*cfg.Multiplicity)
	fmt.Fprintf(out, "Games: %d\n", s.Games)

	fmt.Fprintln(out, "Outcomes:")
	for _, o := range []engine.Outcome{engine.PerfectClear, engine.ClearedWithRemainder} {
		fmt.Fprintf(out, "  %-24s %5d (%.1f%%)\n", o, s.Outcomes[o], percent(s.Outcomes[o], s.Games))
	}

	fmt.Fprintln(out, "End reasons:")
	reasons := make([]string, 0, len(s.EndReasons))
	for r := range s.EndReasons {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		n := s.EndReasons[engine.EndReason(r)]
		fmt.Fprintf(out, "  %-24s %5d (%.1f%%)\n", r, n, percent(n, s.Games))
	}

	fmt.Fprintf(out, "Average cards left: %.2f\n", s.AvgLeft)
	fmt.Fprintf(out, "Average cards cleared: %.2f\n", s.AvgCleared)
	if s.Games > 0 {
		fmt.Fprintf(out, "Best game: seed %d, %d left after %d placements\n", s.Best.Seed, s.Best.Left, s.Best.Placements)
	}

	if !engine.PerfectClearPossible(cfg) {
		fmt.Fprintf(out, "⚠️  Rank %d never pairs, so no game can end in a perfect clear\n", cfg.NonPairingRank)
	}
}

func loadConfig(path string) (*engine.GameConfig, error) {
	if path == "" {
		return engine.DefaultGameConfig(), nil
	}
	cfg, err := config.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateGameConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func strategyNames() string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Play seeded Pair Drop games and report outcome statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Rule set file (.json or .hcl); the built-in classic rules when empty",
			},
			&cli.IntFlag{
				Name:    "games",
				Aliases: []string{"n"},
				Value:   1000,
				Usage:   "Number of games to play",
			},
			&cli.IntFlag{
				Name:  "seed",
				Value: 1,
				Usage: "Seed of the first game; game i uses seed+i",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Value: "greedy",
				Usage: "Placement strategy: " + strategyNames(),
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: 4,
				Usage: "Games played concurrently",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			strategyName := cmd.String("strategy")
			strategy, ok := strategies[strategyName]
			if !ok {
				return fmt.Errorf("unknown strategy %q (available: %s)", strategyName, strategyNames())
			}

			games := int(cmd.Int("games"))
			workers := int(cmd.Int("workers"))
			if games < 1 {
				return fmt.Errorf("games must be positive, got %d", games)
			}
			if workers < 1 {
				workers = 1
			}

			cfg, err := loadConfig(cmd.String("config"))
			if err != nil {
				return err
			}

			summary, err := simulate(ctx, cfg, strategy, games, int64(cmd.Int("seed")), workers)
			if err != nil {
				return err
			}
			printSummary(out, cfg, strategyName, summary)
			return nil
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
