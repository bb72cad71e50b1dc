// Package cli implements the appinion command line client on top of the
// same API the HTTP server exposes.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/flokiorg/appinion/api"
	"github.com/flokiorg/appinion/cli/output"
	"github.com/flokiorg/appinion/pkg/version"
	"github.com/flokiorg/appinion/service"
)

// ServiceLoader builds the service a command runs against. verbose keeps
// info level logging on the console.
type ServiceLoader func(ctx context.Context, verbose bool) (service.Service, error)

type CLI struct {
	root        *cobra.Command
	loadService ServiceLoader

	svc     service.Service
	api     api.API
	printer *output.Printer

	jsonOutput bool
	noColor    bool
	verbose    bool
}

func New(loadService ServiceLoader) *CLI {
	c := &CLI{loadService: loadService}

	c.root = &cobra.Command{
		Use:   "appinion",
		Short: "Search the app catalog and summarize what users say about an app",
		Long: `appinion searches the public app catalog, keeps a history of the apps you
looked at and summarizes their most recent reviews with an OpenAI model.

Example usage:
  appinion search spotify      # Search the catalog
  appinion summarize 324684580 # Summarize the latest reviews of an app
  appinion recent              # List recently viewed apps
  appinion serve               # Run the local HTTP API`,
		Version:           version.Tag,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	c.root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "output as JSON")
	c.root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")
	c.root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at info level")

	c.root.AddCommand(
		c.newSearchCommand(),
		c.newShowCommand(),
		c.newSummarizeCommand(),
		c.newReviewsCommand(),
		c.newRecentCommand(),
		c.newDeleteCommand(),
		c.newClearCommand(),
		c.newServeCommand(),
	)

	return c
}

func (c *CLI) Command() *cobra.Command {
	return c.root
}

// Execute runs the command line and shuts the service down afterwards.
func (c *CLI) Execute(ctx context.Context) error {
	err := c.root.ExecuteContext(ctx)
	if c.svc != nil {
		c.svc.Shutdown()
		c.svc = nil
	}
	return err
}

// PrintError reports err the way the command output is configured.
func (c *CLI) PrintError(err error) {
	printer := c.printer
	if printer == nil {
		printer = output.NewPrinter(c.root.OutOrStdout(), c.root.ErrOrStderr(), output.ResolveColors(c.noColor))
	}
	printer.Error("%s", err.Error())
}

func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	c.printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ResolveColors(c.noColor))
	if c.loadService == nil {
		return errors.New("no service loader configured")
	}

	svc, err := c.loadService(cmd.Context(), c.verbose)
	if err != nil {
		return err
	}
	c.svc = svc
	c.api = api.NewAPI(svc)
	return nil
}

// LoadService is the default ServiceLoader: it reads .env and the
// environment and logs errors only unless verbose is set.
func LoadService(ctx context.Context, verbose bool) (service.Service, error) {
	appConfig, err := service.LoadAppConfig()
	if err != nil {
		return nil, err
	}
	if !verbose {
		appConfig.LogLevel = "2"
	}
	return service.NewServiceWithConfig(ctx, appConfig)
}
