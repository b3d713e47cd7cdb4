package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/prloop/internal/taxonomy"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Show the effective keyword taxonomy",
	Long: `Show the keyword lists driving comment classification and sentiment
scoring. When taxonomy_file points at a YAML override, the override is
validated and shown instead of the built-in lists.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return taxonomyRun()
	},
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)
}

func taxonomyRun() error {
	path := viper.GetString("taxonomy_file")
	tax, err := loadTaxonomy()
	if err != nil {
		return err
	}

	if path != "" {
		ui.Info("Taxonomy override: %s", path)
	} else {
		ui.Info("Taxonomy: built-in defaults")
	}
	fmt.Fprintln(ui.Out)

	for _, l := range []struct {
		name     string
		keywords []string
	}{
		{"corrective", tax.Corrective},
		{"style", tax.Style},
		{"security", tax.Security},
		{"testing", tax.Testing},
		{"positive", tax.Positive},
		{"negative", tax.Negative},
	} {
		fmt.Fprintf(ui.Out, "%s (%d):\n  %s\n", l.name, len(l.keywords), strings.Join(l.keywords, ", "))
	}
	return nil
}

// loadTaxonomy returns the effective taxonomy: the configured override file
// when set, the built-in lists otherwise.
func loadTaxonomy() (taxonomy.Taxonomy, error) {
	path := viper.GetString("taxonomy_file")
	if path == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.Load(path)
}
