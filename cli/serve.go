package cli

import (
	"github.com/spf13/cobra"

	"github.com/flokiorg/appinion/http"
)

func (c *CLI) newServeCommand() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == 0 {
				port = c.svc.GetConfig().GetEnv().Port
			}
			c.printer.Success("Serving the appinion API on :%d", port)
			return http.Serve(cmd.Context(), c.svc, port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from PORT)")
	return cmd
}
