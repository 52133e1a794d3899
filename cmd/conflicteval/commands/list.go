package commands

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
	"github.com/akryshtal/conflict-sensitivity-eval/pkg/model"
	"github.com/akryshtal/conflict-sensitivity-eval/pkg/reporter"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List evaluation vocabulary",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dimensions",
		Short: "List scoring dimensions and their rubrics",
		Run: func(cmd *cobra.Command, args []string) {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"Dimension", "Rubric"})
			for _, d := range core.Dimensions() {
				table.Append([]string{string(d), d.Rubric()})
			}
			table.Render()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "List sample categories",
		Run: func(cmd *cobra.Command, args []string) {
			items := make([]string, 0, len(core.Categories()))
			for _, c := range core.Categories() {
				items = append(items, string(c))
			}
			renderList(cmd, "Category", items)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "providers",
		Short: "List model providers",
		Run: func(cmd *cobra.Command, args []string) {
			renderList(cmd, "Provider", model.Providers())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "formats",
		Short: "List report formats",
		Run: func(cmd *cobra.Command, args []string) {
			renderList(cmd, "Format", reporter.Formats())
		},
	})

	return cmd
}

func renderList(cmd *cobra.Command, title string, items []string) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header([]string{title})
	for _, item := range items {
		table.Append([]string{item})
	}
	table.Render()
}
