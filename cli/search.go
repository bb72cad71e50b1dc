package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/flokiorg/appinion/cli/output"
)

func (c *CLI) newSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search the app catalog",
		Long: `Search the app catalog for software matching term. Multiple arguments are
joined with spaces.

Examples:
  appinion search spotify
  appinion search "photo editor"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")
			results, err := c.api.SearchCatalog(cmd.Context(), term)
			if err != nil {
				return err
			}

			if c.jsonOutput {
				return c.printer.JSON(results)
			}
			if len(results) == 0 {
				c.printer.Warning("No apps found for %q", term)
				return nil
			}

			c.printer.Header("Search results for " + term)
			table := output.NewTable(c.printer.Out(), []string{"ID", "NAME", "DEVELOPER", "VERSION"})
			for _, result := range results {
				table.AddRow([]string{
					result.ID,
					c.printer.Bold(output.Truncate(result.Name, 48)),
					output.Truncate(result.ArtistName, 32),
					result.Version,
				})
			}
			return table.Render()
		},
	}
}
