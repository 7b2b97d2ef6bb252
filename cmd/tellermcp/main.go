// tellermcp serves Teller lending and delta-neutral workflows as MCP tools.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/tellermcp/internal/domain/tool"
	"github.com/matiasleandrokruk/tellermcp/internal/infra/config"
	"github.com/matiasleandrokruk/tellermcp/internal/infra/logger"
	"github.com/matiasleandrokruk/tellermcp/internal/infra/teller"
	"github.com/matiasleandrokruk/tellermcp/internal/server"
	"github.com/matiasleandrokruk/tellermcp/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	showVersion bool
	configPath  string
	envFile     string
	httpAddr    string
}

// flagError marks argument errors so run can map them to exit code 2.
type flagError struct{ err error }

func (e *flagError) Error() string { return e.err.Error() }
func (e *flagError) Unwrap() error { return e.err }

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	cmd := newRootCmd(out)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(errOut, "tellermcp: %v\n", err) //nolint:errcheck
		var fe *flagError
		if errors.As(err, &fe) {
			return 2
		}
		return 1
	}
	return 0
}

func newRootCmd(out io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "tellermcp",
		Short: "Teller lending and delta-neutral tools over MCP",
		Long: `tellermcp exposes the Teller delta-neutral and lending API as MCP tools.

By default the server speaks MCP over stdio. Pass --http-addr (or set
TELLERMCP_HTTP_ADDR) to serve streamable HTTP at /mcp instead.

Environment:
  TELLER_API_BASE_URL     Teller API base URL
  TELLER_API_TIMEOUT_MS   per-request timeout in milliseconds
  TELLERMCP_LOG_LEVEL     debug|info|warn|error
  TELLERMCP_HTTP_ADDR     listen address for streamable HTTP`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.showVersion {
				fmt.Fprintln(out, version.String()) //nolint:errcheck
				return nil
			}
			return serve(cmd.Context(), opts, cmd.Flags().Changed("http-addr"))
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &flagError{err: err}
	})

	cmd.Flags().BoolVar(&opts.showVersion, "version", false, "Show version information")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to an optional YAML config file")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file seeding the environment")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", "", "Serve streamable HTTP on this address instead of stdio")

	return cmd
}

func serve(ctx context.Context, opts options, httpAddrSet bool) error {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if httpAddrSet {
		cfg.HTTPAddr = opts.httpAddr
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		return err
	}

	client := teller.NewClient(teller.Config{
		BaseURL: cfg.TellerBaseURL,
		Timeout: cfg.TellerTimeout,
	})
	mcpServer, registry, err := tool.NewServer(client, log)
	if err != nil {
		return fmt.Errorf("build mcp server: %w", err)
	}

	log.Info().
		Str("base_url", client.Config().BaseURL).
		Dur("timeout", client.Config().Timeout).
		Strs("tools", registry.Names()).
		Msg("service configuration")

	if cfg.HTTPAddr != "" {
		httpCfg := server.DefaultConfig()
		httpCfg.Addr = cfg.HTTPAddr
		return server.NewServer(mcpServer, httpCfg, log).Run(ctx)
	}
	return serveStdio(ctx, mcpServer, log)
}

func serveStdio(ctx context.Context, mcpServer *mcp.Server, log zerolog.Logger) error {
	log.Info().Msg("tellermcp MCP server listening on stdio")
	err := mcpServer.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}
