package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/3-lines-studio/prerender/internal/adapters/cli"
	"github.com/3-lines-studio/prerender/internal/adapters/fs"
	previewhttp "github.com/3-lines-studio/prerender/internal/adapters/http"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [project]",
	Short: "Preview the build output with locale negotiation",
	Long: `Serves the output directory of a previous build. Requests for "/"
follow the appinfo.json of the locale matching ?locale= or the
Accept-Language header.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "listen address")
	serveCmd.Flags().StringVarP(&flags.output, "output", "o", "", "output directory (default: dist)")
}

func runServe(cmd *cobra.Command, args []string) error {
	output := cli.NewOutput()

	projectDir := "."
	if len(args) == 1 {
		projectDir = args[0]
	}

	cfg, err := resolveConfig(projectDir, cfgFile, cmd.Flags(), flags, os.LookupEnv, output)
	if err != nil {
		output.PrintError("%v", err)
		return err
	}

	handler := previewhttp.NewPreviewHandler(cfg.OutputDir(), fs.NewOSFileSystem(), slog.Default())
	server := &http.Server{
		Addr:              serveAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	output.PrintHeader("Prerender Preview")
	output.PrintStep("🌐", "Serving %s on http://%s", cfg.OutputDir(), serveAddr)
	if locales := handler.Locales(); len(locales) > 0 {
		output.PrintStep("🗺", "Locales: %s", strings.Join(locales, ", "))
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		output.PrintError("%v", err)
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
