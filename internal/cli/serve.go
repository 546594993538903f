package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/qrcatalog/internal/qrcode"
	"github.com/JonMunkholm/qrcatalog/internal/web"
)

type serveFlags struct {
	site string
	port int
}

func newServeCommand(a *app) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built site for local preview",
		Long: `Serve the output directory read-only and render product detail pages from the
catalog document. On startup the LAN address is printed with a scannable code, so
phones on the same network can open the catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *a.cfg
			site := cfg.Catalog.OutputDir
			if f.site != "" {
				site = f.site
			}
			if f.port != 0 {
				cfg.Server.Port = f.port
			}

			srv, err := web.NewServer(cfg.Server, site, cfg.Catalog.PagePath)
			if err != nil {
				return err
			}

			printLANAddress(cmd.OutOrStdout(), cfg.Server.Port)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&f.site, "site", "", "site directory to serve (env CATALOG_OUTPUT_DIR)")
	cmd.Flags().IntVar(&f.port, "port", 0, "port to listen on (env SERVER_PORT)")
	return cmd
}

// printLANAddress prints the address other devices on the network can use,
// with a terminal QR code of it.
func printLANAddress(w io.Writer, port int) {
	addr := "http://" + net.JoinHostPort(lanIP(), strconv.Itoa(port)) + "/"
	fmt.Fprintf(w, "Serving catalog at %s\n", addr)

	code, err := qrcode.Terminal(addr)
	if err != nil {
		slog.Debug("terminal code unavailable", "error", err)
		return
	}
	fmt.Fprint(w, code)
}

// lanIP returns the local address of the default route, or 127.0.0.1 when
// there is none. The UDP dial sends no packets.
func lanIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && addr.IP != nil {
		return addr.IP.String()
	}
	return "127.0.0.1"
}
