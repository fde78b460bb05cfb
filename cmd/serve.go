package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xolan/worklog/internal/entryserver"
	"github.com/xolan/worklog/internal/logging"
	"github.com/xolan/worklog/internal/service"
)

const serveShutdownTimeout = 5 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept entries from a phone on the local network",
	Long: `Run the entry server in the foreground until interrupted (Ctrl+C).

The server binds the first free port starting at preferred_port (5000 unless
configured) and prints the address to open on a phone in the same network,
with a QR code. Phones log in with the shared password before they can
record entries; entries go to the same log file as 'worklog log'.

Examples:
  worklog serve
  worklog serve --password 8642     Use a different password for this run
  worklog serve --no-qr`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		runServe(ctx, cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("password", "", "Shared password for this run (overrides the config file)")
	serveCmd.Flags().Bool("no-qr", false, "Do not print a QR code of the address")
}

// runServe starts the entry server and blocks until ctx is done or the server fails
func runServe(ctx context.Context, cmd *cobra.Command) {
	password, _ := cmd.Flags().GetString("password")
	noQR, _ := cmd.Flags().GetBool("no-qr")

	services := loadServices()
	if services == nil {
		return
	}
	server := services.Server

	if password != "" {
		if err := server.SetPassword(password); err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to set password: %v\n", err)
			deps.Exit(1)
			return
		}
	}

	printer := logging.Tee(logger(), logging.Slog(slog.New(slog.NewTextHandler(deps.Stderr, nil))))

	if err := server.Start(ctx); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to start entry server: %v\n", err)
		deps.Exit(1)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watchServer(gctx, server, printer, !noQR)
	})
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
		defer cancel()
		if err := server.Stop(stopCtx); err != nil {
			return fmt.Errorf("failed to stop entry server: %w", err)
		}
		printer.Printf("entry server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Entry server failed")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		var bindErr *entryserver.BindError
		if errors.As(err, &bindErr) {
			_, _ = fmt.Fprintln(deps.Stderr, "Hint: Free one of those ports or change preferred_port with 'worklog config set preferred_port <port>'")
		}
		deps.Exit(1)
	}
}

// watchServer reports lifecycle events until ctx is done. A failure ends the
// group.
func watchServer(ctx context.Context, server *service.ServerService, logger logging.Printer, qr bool) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-server.Events():
			switch evt.Kind {
			case entryserver.EventStarted:
				logger.Printf("entry server listening on %s", evt.Addr)
				printServeBanner(evt.URL, server.Password(), qr)
			case entryserver.EventFailed:
				return evt.Err
			}
		}
	}
}

func printServeBanner(url, password string, qr bool) {
	_, _ = fmt.Fprintln(deps.Stdout)
	_, _ = fmt.Fprintf(deps.Stdout, "Open on your phone: %s\n", url)
	_, _ = fmt.Fprintf(deps.Stdout, "Password:           %s\n", password)
	if qr {
		_, _ = fmt.Fprintln(deps.Stdout)
		qrterminal.GenerateHalfBlock(url, qrterminal.L, deps.Stdout)
	}
	_, _ = fmt.Fprintln(deps.Stdout, "Press Ctrl+C to stop")
}
