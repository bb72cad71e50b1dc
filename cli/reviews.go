package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/flokiorg/appinion/cli/output"
	"github.com/flokiorg/appinion/constants"
)

func (c *CLI) newReviewsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "reviews <id>",
		Short: "List the most recent reviews of an app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := c.api.ListReviews(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			if c.jsonOutput {
				return c.printer.JSON(response)
			}
			if len(response.Reviews) == 0 {
				c.printer.Print("No reviews found for app %s.", args[0])
				return nil
			}

			c.printer.Header("Recent reviews")
			table := output.NewTable(c.printer.Out(), []string{"RATING", "DATE", "AUTHOR", "TITLE", "REVIEW"})
			for _, review := range response.Reviews {
				date := ""
				if !review.Updated.IsZero() {
					date = review.Updated.Local().Format(time.DateOnly)
				}
				table.AddRow([]string{
					c.printer.Stars(review.Rating),
					date,
					output.Truncate(review.Author, 20),
					c.printer.Bold(output.Truncate(review.Title, 32)),
					output.Truncate(review.Content, 60),
				})
			}
			return table.Render()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", constants.REVIEW_FETCH_LIMIT, "maximum number of reviews")
	return cmd
}
