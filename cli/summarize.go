package cli

import (
	"github.com/spf13/cobra"

	"github.com/flokiorg/appinion/apps"
)

func (c *CLI) newSummarizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <id>",
		Short: "Summarize the most recent reviews of an app",
		Long: `Fetch the most recent reviews of an app and summarize them with OpenAI.
Apps that were never saved are looked up in the catalog and saved first.
Requires OPENAI_API_KEY in config.yaml or the environment.

Examples:
  appinion summarize 324684580`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			app, err := c.api.GetApp(id)
			switch {
			case apps.IsNotFound(err):
				app, err = c.api.SelectCatalogApp(cmd.Context(), id)
			case err == nil:
				app, err = c.api.SelectRecentApp(id)
			}
			if err != nil {
				return err
			}

			if !c.jsonOutput {
				c.printer.Print("Summarizing reviews of %s...", c.printer.Bold(app.Name))
			}
			app, err = c.api.GenerateSummary(cmd.Context(), id)
			if err != nil {
				return err
			}

			if c.jsonOutput {
				return c.printer.JSON(app)
			}
			c.printApp(app)
			return nil
		},
	}
}
