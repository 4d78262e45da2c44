package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petrobytes/probecalc-cli/internal/ferric"
	"github.com/petrobytes/probecalc-cli/internal/probe"
)

var (
	ferMethod     string
	ferOxides     string
	ferAFU        float64
	ferCFU        float64
	ferTetSites   float64
	ferCharge     float64
	ferOutputPath string
	ferDelimiter  string
	ferSheetName  string
	ferSheetIndex int
	ferLabelCol   string
)

var ferricCmd = &cobra.Command{
	Use:   "ferric <file>",
	Short: "Split total iron (as FeO) into FeO and Fe2O3 stoichiometrically",
	Long: `Ferric estimates the ferrous/ferric split of total iron reported as FeO.
Methods:
  droop    charge-deficit method of Droop (1987); needs --cfu and --afu
           (e.g. 4 and 6 for clinopyroxene)
  papike   pyroxene site balance; needs --afu and --tet-sites (default 2)
  stormer  spinel charge balance; needs --cfu (3 for spinel) and --charge
           (default 8)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		method, err := ferric.ParseMethod(ferMethod)
		if err != nil {
			return err
		}
		table, err := loadTable()
		if err != nil {
			return err
		}
		frame, err := readFrame(path, ferDelimiter, ferSheetName, ferSheetIndex)
		if err != nil {
			return err
		}
		ds, err := probe.NewDataset(frame, splitOxides(ferOxides), table, datasetOptions(ferLabelCol))
		if err != nil {
			return err
		}
		results, err := ferric.Partition(ds, method, ferric.Options{
			CFU:         ferCFU,
			AFU:         ferAFU,
			TetSites:    ferTetSites,
			IdealCharge: ferCharge,
		})
		if err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if !r.Valid() {
				failed++
			}
		}
		if failed > 0 {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %d of %d rows could not be partitioned\n", failed, len(results))
		}

		out := os.Stdout
		if ferOutputPath != "" {
			f, err := os.Create(ferOutputPath)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}
		if err := ferric.WriteCSV(out, results); err != nil {
			return err
		}
		if ferOutputPath != "" {
			fmt.Printf("✓ Wrote %d rows to %s\n", len(results), ferOutputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ferricCmd)
	ferricCmd.Flags().StringVar(&ferMethod, "method", "", "estimation method: droop | papike | stormer")
	ferricCmd.Flags().StringVar(&ferOxides, "oxides", "", "comma-separated oxide columns to use (must include FeO)")
	ferricCmd.Flags().Float64Var(&ferAFU, "afu", 0, "ideal anions per formula unit")
	ferricCmd.Flags().Float64Var(&ferCFU, "cfu", 0, "ideal cations per formula unit (droop)")
	ferricCmd.Flags().Float64Var(&ferTetSites, "tet-sites", 2, "tetrahedral site total (papike)")
	ferricCmd.Flags().Float64Var(&ferCharge, "charge", 8, "ideal total cation charge (stormer)")
	ferricCmd.Flags().StringVarP(&ferOutputPath, "output", "o", "", "path to write results CSV (default stdout)")
	ferricCmd.Flags().StringVar(&ferDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	ferricCmd.Flags().StringVar(&ferSheetName, "sheet-name", "", "XLSX: sheet name to read")
	ferricCmd.Flags().IntVar(&ferSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index")
	ferricCmd.Flags().StringVar(&ferLabelCol, "label-col", "", "column carried through as the sample label")
	_ = ferricCmd.MarkFlagRequired("method")
	_ = ferricCmd.MarkFlagRequired("oxides")
}
