package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var oxidesCmd = &cobra.Command{
	Use:   "oxides",
	Short: "List the effective oxide reference table",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		fmt.Printf("%-8s %10s %8s %8s %6s\n", "oxide", "molar_mass", "cations", "oxygens", "cation")
		for _, sym := range table.Symbols() {
			p, err := table.Lookup(sym)
			if err != nil {
				return err
			}
			fmt.Printf("%-8s %10.3f %8d %8d %6s\n", p.Symbol, p.MolarMass, p.Cations, p.Oxygens, p.Cation)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(oxidesCmd)
}
