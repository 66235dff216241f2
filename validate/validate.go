// Command validate checks Pair Drop rule set files (*.json and *.hcl) in a
// config directory. It checks:
//   - the file decodes as JSON or HCL
//   - required fields and value ranges
//   - the pair table can be built (an even number of pairing ranks)
//   - message templates carry their %d verb
//   - the board is not permanently jammed by non-pairing cards
//
// Valid files get a short summary including whether a perfect clear can
// ever happen under the rule set.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/pair-drop-game/game/config"
	"github.com/wricardo/pair-drop-game/game/engine"
)

var errInvalidConfigs = errors.New("some configurations have errors")

// ValidationResult captures the outcome of validating a single file.
// Errors make the file invalid; Warnings and Info are reported either way.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig decodes and validates a single rule set file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	cfg, err := config.DecodeFile(filePath)
	if err != nil {
		result.fail("Failed to load: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(cfg); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	rule, err := engine.NewPairTable(cfg.Ranks, cfg.NonPairingRank)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	cells := cfg.BoardRows * cfg.BoardCols
	deckSize := cfg.Ranks * cfg.Multiplicity

	if cfg.NonPairingRank != engine.NoNonPairingRank {
		if cfg.Multiplicity >= cells {
			result.fail("%d copies of non-pairing rank %d can fill all %d cells", cfg.Multiplicity, cfg.NonPairingRank, cells)
			return result
		}
		if cfg.Multiplicity*2 > cells {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Non-pairing cards can take %d of %d cells", cfg.Multiplicity, cells))
		}
	}
	if deckSize < cells {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Deck has %d cards for %d cells; the board never fills", deckSize, cells))
	}

	result.Info = append(result.Info, fmt.Sprintf("✓ Name: %s", cfg.Name))
	result.Info = append(result.Info, fmt.Sprintf("✓ Board: %dx%d", cfg.BoardRows, cfg.BoardCols))
	result.Info = append(result.Info, fmt.Sprintf("✓ Deck: %d ranks x %d = %d cards", cfg.Ranks, cfg.Multiplicity, deckSize))
	result.Info = append(result.Info, fmt.Sprintf("✓ Pairs: %s", formatPairs(rule.Pairs())))
	if cfg.NonPairingRank == engine.NoNonPairingRank {
		result.Info = append(result.Info, "✓ Non-pairing rank: none")
	} else {
		result.Info = append(result.Info, fmt.Sprintf("✓ Non-pairing rank: %d", cfg.NonPairingRank))
	}
	if engine.PerfectClearPossible(cfg) {
		result.Info = append(result.Info, "✓ Perfect clear: possible")
	} else {
		result.Info = append(result.Info, fmt.Sprintf("✓ Perfect clear: impossible (%d non-pairing cards stay on the board)", cfg.Multiplicity))
	}

	return result
}

func formatPairs(pairs [][2]engine.CardValue) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%d+%d", p[0], p[1])
	}
	return strings.Join(parts, ", ")
}

// configFiles lists the rule set files in dir, sorted by name
func configFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.hcl"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// duplicateIDs reports config IDs defined by more than one file. The config
// manager resolves these to the .json file.
func duplicateIDs(files []string) []string {
	seen := map[string]int{}
	for _, f := range files {
		name := filepath.Base(f)
		seen[strings.TrimSuffix(name, filepath.Ext(name))]++
	}
	var dups []string
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	return dups
}

// report validates every file and prints the results. It returns false when
// any file is invalid.
func report(out io.Writer, files []string) bool {
	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(out, "  "+info)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(out, "  ❌ "+err)
			}
		}
		for _, w := range result.Warnings {
			fmt.Fprintln(out, "  ⚠️  "+w)
		}
	}

	for _, id := range duplicateIDs(files) {
		fmt.Fprintf(out, "\n⚠️  %s is defined more than once; %s.json wins\n", id, id)
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(out, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(out, "❌ Some configurations have errors")
	}
	return allValid
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate Pair Drop rule set files",
		ArgsUsage: "[file ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "../configs",
				Usage:   "Directory scanned when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				found, err := configFiles(cmd.String("dir"))
				if err != nil {
					return fmt.Errorf("error finding config files: %w", err)
				}
				files = found
			}
			if len(files) == 0 {
				return fmt.Errorf("no config files found in %s", cmd.String("dir"))
			}

			if !report(out, files) {
				return errInvalidConfigs
			}
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
