package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xolan/worklog/internal/entry"
)

// categoriesCmd represents the categories command
var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "List the recognised categories",
	Long: `List the categories entries can be recorded under, in catalog order.
The catalog is fixed unless categories is set in the config file; 其他 is
always available and is the only category that keeps content.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		listCategories()
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func listCategories() {
	services := loadServices()
	if services == nil {
		return
	}
	for i, category := range services.Entry.Catalog() {
		if category == entry.OtherCategory {
			_, _ = fmt.Fprintf(deps.Stdout, "%2d. %s (content required)\n", i+1, category)
			continue
		}
		_, _ = fmt.Fprintf(deps.Stdout, "%2d. %s\n", i+1, category)
	}
}
