package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/petrobytes/probecalc-cli/internal/config"
	"github.com/petrobytes/probecalc-cli/internal/oxide"
	"github.com/petrobytes/probecalc-cli/internal/probe"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagTablePath string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "probecalc",
	Short: "probecalc: recalculate microprobe oxide analyses to cations per formula unit",
	Long: `probecalc converts electron-microprobe oxide weight-percent tables (CSV/TSV/XLSX)
into cations per formula unit, flags analyses with anomalous cation totals,
and estimates the FeO/Fe2O3 split by stoichiometric methods.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.probecalc/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagTablePath, "table", "", "oxide reference table file (CSV or YAML, merged over builtin)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to builtin defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = &cfgpkg.Global{DefaultWiggle: 0.005, DefaultSheetIndex: 1, WriteManifest: true}
		return
	}
	cfg = c
}

// loadTable resolves the effective oxide reference table: builtin defaults,
// optionally merged with the file from --table or config.
func loadTable() (*oxide.Table, error) {
	path := flagTablePath
	if path == "" && cfg != nil {
		path = cfg.OxideTable
	}
	if path == "" {
		return oxide.Default(), nil
	}
	return oxide.LoadFile(path)
}

// readFrame ingests a tabular input file, choosing the reader by extension.
func readFrame(path, delimiter, sheetName string, sheetIndex int) (*probe.Frame, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		if sheetIndex <= 0 && cfg != nil {
			sheetIndex = cfg.DefaultSheetIndex
		}
		return probe.ReadXLSX(path, sheetName, sheetIndex)
	}
	delim, err := parseDelimiter(delimiter)
	if err != nil {
		return nil, err
	}
	return probe.ReadCSV(path, delim)
}

func parseDelimiter(s string) (rune, error) {
	if s == "" && cfg != nil {
		s = cfg.DefaultDelimiter
	}
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s (use ','|';'|'tab')", s)
}

// splitOxides parses a comma-separated oxide list, dropping empty entries.
func splitOxides(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func datasetOptions(labelCol string) probe.Options {
	opt := probe.Options{LabelColumn: labelCol}
	if cfg != nil {
		if opt.LabelColumn == "" {
			opt.LabelColumn = cfg.LabelColumn
		}
		if cfg.NAValues != nil {
			opt.NAValues = cfg.NAValues
		}
	}
	return opt
}
