package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/petrobytes/probecalc-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set probecalc configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("oxide_table: %s\n", cfg.OxideTable)
		fmt.Printf("default_wiggle: %.4f\n", cfg.DefaultWiggle)
		fmt.Printf("default_delimiter: %s\n", cfg.DefaultDelimiter)
		fmt.Printf("default_sheet_index: %d\n", cfg.DefaultSheetIndex)
		fmt.Printf("na_values: %s\n", strings.Join(cfg.NAValues, " "))
		fmt.Printf("label_column: %s\n", cfg.LabelColumn)
		fmt.Printf("write_manifest: %t\n", cfg.WriteManifest)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "oxide_table":
			cfg.OxideTable = val
		case "default_wiggle":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("default_wiggle must be a non-negative number")
			}
			cfg.DefaultWiggle = f
		case "default_delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			cfg.DefaultDelimiter = val
		case "default_sheet_index":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return fmt.Errorf("default_sheet_index must be a positive integer")
			}
			cfg.DefaultSheetIndex = n
		case "na_values":
			cfg.NAValues = strings.Split(val, ",")
		case "label_column":
			cfg.LabelColumn = val
		case "write_manifest":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("write_manifest must be true or false")
			}
			cfg.WriteManifest = b
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Saved %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
