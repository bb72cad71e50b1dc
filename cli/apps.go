package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/flokiorg/appinion/api"
	"github.com/flokiorg/appinion/apps"
	"github.com/flokiorg/appinion/cli/output"
)

func (c *CLI) newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved app, or its catalog entry if it was never saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.api.GetApp(args[0])
			if err == nil {
				if c.jsonOutput {
					return c.printer.JSON(app)
				}
				c.printApp(app)
				return nil
			}
			if !apps.IsNotFound(err) {
				return err
			}

			catalogApp, err := c.api.LookupCatalogApp(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printer.JSON(catalogApp)
			}
			c.printCatalogApp(catalogApp)
			return nil
		},
	}
}

func (c *CLI) newRecentCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "recent",
		Aliases: []string{"ls"},
		Short:   "List recently viewed apps",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recent, err := c.api.ListRecentApps(limit)
			if err != nil {
				return err
			}

			if c.jsonOutput {
				return c.printer.JSON(recent)
			}
			if len(recent) == 0 {
				c.printer.Print("No recent apps. Try 'appinion search <term>'.")
				return nil
			}

			c.printer.Header("Recent apps")
			table := output.NewTable(c.printer.Out(), []string{"ID", "NAME", "BUNDLE ID", "LAST VIEWED", "SUMMARY"})
			for _, app := range recent {
				table.AddRow([]string{
					app.ID,
					c.printer.Bold(output.Truncate(app.Name, 40)),
					app.BundleID,
					app.LastSearched.Local().Format(time.DateTime),
					c.summaryStatus(&app),
				})
			}
			return table.Render()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of apps (default from RECENT_APPS_LIMIT)")
	return cmd
}

func (c *CLI) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved app and its summary",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.api.DeleteApp(args[0]); err != nil {
				return err
			}
			c.printer.Success("Deleted app %s", args[0])
			return nil
		},
	}
}

func (c *CLI) newClearCommand() *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to delete all apps without --yes")
			}
			if err := c.api.ClearAllApps(); err != nil {
				return err
			}
			c.printer.Success("Deleted all saved apps")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "confirm deleting every saved app")
	return cmd
}

func (c *CLI) printApp(app *api.AppResponse) {
	c.printer.Header(app.Name)
	c.printer.Field("ID", app.ID)
	c.printer.Field("Bundle ID", app.BundleID)
	if app.Version != nil {
		c.printer.Field("Version", *app.Version)
	}
	if app.IconURL != nil {
		c.printer.Field("Icon", *app.IconURL)
	}
	c.printer.Field("Last viewed", app.LastSearched.Local().Format(time.DateTime))
	c.printSummary(app)
}

func (c *CLI) printSummary(app *api.AppResponse) {
	if app.ReviewSummary == nil {
		c.printer.Print("\nNo summary yet. Run 'appinion summarize %s'.", app.ID)
		return
	}
	if app.SummaryGeneratedDate != nil {
		c.printer.Field("Summarized", app.SummaryGeneratedDate.Local().Format(time.DateTime))
	}
	if app.SummaryStale && app.SummaryAppVersion != nil {
		c.printer.Warning("Summary was generated for version %s", *app.SummaryAppVersion)
	}
	c.printer.Print("\n%s", *app.ReviewSummary)
}

func (c *CLI) printCatalogApp(app *api.CatalogAppResponse) {
	c.printer.Header(app.Name)
	c.printer.Field("ID", app.ID)
	c.printer.Field("Developer", app.ArtistName)
	c.printer.Field("Bundle ID", app.BundleID)
	c.printer.Field("Version", app.Version)
	if app.AverageUserRating != nil {
		rating := strconv.FormatFloat(*app.AverageUserRating, 'f', 1, 64)
		if app.UserRatingCount != nil {
			rating = fmt.Sprintf("%s (%d ratings)", rating, *app.UserRatingCount)
		}
		c.printer.Field("Rating", rating)
	}
	if app.Price > 0 {
		c.printer.Field("Price", fmt.Sprintf("%.2f %s", app.Price, app.Currency))
	} else {
		c.printer.Field("Price", "Free")
	}
	c.printer.Field("Store", app.StoreURL)
	if !app.Saved {
		c.printer.Print("\nNot saved yet. Run 'appinion summarize %s' to save and summarize it.", app.ID)
	}
}

func (c *CLI) summaryStatus(app *api.AppResponse) string {
	switch {
	case app.ReviewSummary == nil:
		return c.printer.Dim("none")
	case app.SummaryStale:
		return "stale"
	default:
		return "yes"
	}
}
