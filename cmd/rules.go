package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genelens/genelens-cli/internal/genetics"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the trait rules known to the interpreter",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		rules, err := genetics.LoadRules(c.TraitRules)
		if err != nil {
			return fmt.Errorf("load trait rules: %w", err)
		}
		for _, rsid := range rules.RsIDs() {
			r := rules[rsid]
			fmt.Printf("- %s (%s): %s, %d genotypes\n", rsid, r.Gene, r.Domain, len(r.Genotypes))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
