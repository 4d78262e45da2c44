package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petrobytes/probecalc-cli/internal/probe"
)

var (
	recOxides     string
	recAFU        float64
	recCFU        float64
	recWiggle     float64
	recOutputPath string
	recManifest   string
	recDelimiter  string
	recSheetName  string
	recSheetIndex int
	recLabelCol   string
)

var recalcCmd = &cobra.Command{
	Use:   "recalc <file>",
	Short: "Recalculate oxide wt% analyses to cations per formula unit",
	Long: `Recalc converts each analysis row of a CSV/TSV/XLSX table to cations per
formula unit, normalized to --afu anions (e.g. 4 for olivine). With --cfu it
also classifies each row against the ideal cation total within a tolerance
band of --wiggle (a fraction of the ideal; 0 demands an exact match, which is
usually too strict for measured data).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		table, err := loadTable()
		if err != nil {
			return err
		}
		frame, err := readFrame(path, recDelimiter, recSheetName, recSheetIndex)
		if err != nil {
			return err
		}
		oxides := splitOxides(recOxides)
		ds, err := probe.NewDataset(frame, oxides, table, datasetOptions(recLabelCol))
		if err != nil {
			return err
		}
		rows, err := probe.Recalculate(ds, recAFU)
		if err != nil {
			return err
		}

		wiggle := recWiggle
		if !cmd.Flags().Changed("wiggle") && cfg != nil {
			wiggle = cfg.DefaultWiggle
		}
		var mask []bool
		if cmd.Flags().Changed("cfu") {
			mask, err = probe.CheckTotals(rows, recCFU, wiggle)
			if err != nil {
				return err
			}
		}

		if n := probe.CountDegenerate(rows); n > 0 {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %d of %d rows could not be normalized (zero oxygen total)\n", n, len(rows))
		}

		out := os.Stdout
		if recOutputPath != "" {
			f, err := os.Create(recOutputPath)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}
		if err := probe.WriteCationCSV(out, ds, rows, mask); err != nil {
			return err
		}
		if recOutputPath != "" {
			fmt.Printf("✓ Wrote %d rows to %s\n", len(rows), recOutputPath)
		}

		if shouldWriteManifest(cmd, recOutputPath) {
			m := probe.NewManifest(path)
			m.Sheet = recSheetName
			m.Oxides = oxides
			m.AFU = recAFU
			m.Rows = len(rows)
			m.Degenerate = probe.CountDegenerate(rows)
			m.Output = recOutputPath
			if mask != nil {
				m.CFU = recCFU
				m.Wiggle = wiggle
				acc, rej := probe.Partition(rows, mask)
				m.Accepted = len(acc)
				m.Rejected = len(rej)
			}
			mPath := recManifest
			if mPath == "" {
				mPath = recOutputPath + ".manifest.json"
			}
			if err := m.Save(mPath); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
			fmt.Printf("✓ Run %s recorded in %s\n", m.RunID, mPath)
		}
		return nil
	},
}

// shouldWriteManifest: only for file output, controlled by config unless the
// user names a manifest path explicitly.
func shouldWriteManifest(cmd *cobra.Command, outputPath string) bool {
	if cmd.Flags().Changed("manifest") {
		return true
	}
	if outputPath == "" {
		return false
	}
	return cfg == nil || cfg.WriteManifest
}

func init() {
	rootCmd.AddCommand(recalcCmd)
	recalcCmd.Flags().StringVar(&recOxides, "oxides", "", "comma-separated oxide columns to use, e.g. SiO2,FeO,MgO")
	recalcCmd.Flags().Float64Var(&recAFU, "afu", 0, "ideal anions per formula unit (e.g. 4 for olivine)")
	recalcCmd.Flags().Float64Var(&recCFU, "cfu", 0, "ideal cation total for anomaly filtering (omit to skip)")
	recalcCmd.Flags().Float64Var(&recWiggle, "wiggle", 0.005, "accepted fraction either side of the ideal cation total")
	recalcCmd.Flags().StringVarP(&recOutputPath, "output", "o", "", "path to write results CSV (default stdout)")
	recalcCmd.Flags().StringVar(&recManifest, "manifest", "", "path to write the JSON run manifest")
	recalcCmd.Flags().StringVar(&recDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	recalcCmd.Flags().StringVar(&recSheetName, "sheet-name", "", "XLSX: sheet name to read")
	recalcCmd.Flags().IntVar(&recSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	recalcCmd.Flags().StringVar(&recLabelCol, "label-col", "", "column carried through as the sample label")
	_ = recalcCmd.MarkFlagRequired("oxides")
	_ = recalcCmd.MarkFlagRequired("afu")
}
