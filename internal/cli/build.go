package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/qrcatalog/internal/catalog"
	"github.com/JonMunkholm/qrcatalog/internal/config"
	"github.com/JonMunkholm/qrcatalog/internal/qrcode"
	"github.com/JonMunkholm/qrcatalog/internal/store"
)

type buildFlags struct {
	source  string
	out     string
	baseURL string
	noCodes bool
}

func newBuildCommand(a *app) *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the catalog document and QR codes",
		Long: `Read every *.csv file in the source directory, assign each product a unique
identifier, and write <out>/data/products.json plus <out>/qrcodes/<identifier>.png.

A failure to write the catalog document exits non-zero. Unreadable sources and
failed QR codes are logged and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *a.cfg
			if f.source != "" {
				cfg.Catalog.SourceDir = f.source
			}
			if f.out != "" {
				cfg.Catalog.OutputDir = f.out
			}
			if f.baseURL != "" {
				cfg.Catalog.BaseURL = f.baseURL
			}
			if f.noCodes {
				cfg.Codes.Enabled = false
			}
			return a.runBuild(cmd, &cfg)
		},
	}

	cmd.Flags().StringVar(&f.source, "source", "", "directory of *.csv exports (env CATALOG_SOURCE_DIR)")
	cmd.Flags().StringVar(&f.out, "out", "", "output site directory (env CATALOG_OUTPUT_DIR)")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "public site address the QR codes point at (env SITE_BASE_URL)")
	cmd.Flags().BoolVar(&f.noCodes, "no-codes", false, "skip QR code generation")
	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	overlong, err := catalog.ParseOverlongPolicy(cfg.Catalog.OverlongRows)
	if err != nil {
		return err
	}

	out, err := outputStore(cfg)
	if err != nil {
		return err
	}

	enc, err := codeEncoder(cfg.Codes)
	if err != nil {
		return err
	}

	emitter, err := qrcode.NewEmitter(qrcode.EmitterOptions{
		Encoder:  enc,
		Store:    out,
		BaseURL:  cfg.Catalog.BaseURL,
		PagePath: cfg.Catalog.PagePath,
		Workers:  cfg.Codes.Workers,
	})
	if err != nil {
		return err
	}

	report, err := catalog.Build(ctx, catalog.BuildOptions{
		SourceDir: cfg.Catalog.SourceDir,
		Read: catalog.ReadOptions{
			AdmitURLOnly: cfg.Catalog.AdmitURLOnly,
			Overlong:     overlong,
		},
		Store:   out,
		Emitter: emitter,
	})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if report.Document == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "no products found in %s; nothing written\n", cfg.Catalog.SourceDir)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d products -> %s\n",
		len(report.Entries), filepath.Join(cfg.Catalog.OutputDir, filepath.FromSlash(report.Document)))
	if n := len(report.SourceErrors()); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "skipped %d unreadable source(s)\n", n)
	}
	if report.Codes.Failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d QR code(s) failed\n", report.Codes.Failed)
	}
	return nil
}

// outputStore returns the local site store, mirrored to the publish bucket
// when one is configured.
func outputStore(cfg *config.Config) (store.Store, error) {
	local := store.NewDirStore(cfg.Catalog.OutputDir)
	if !cfg.Publish.Enabled() {
		return local, nil
	}

	bucket, err := store.NewS3Store(store.S3Config{
		Endpoint:  cfg.Publish.Endpoint,
		Region:    cfg.Publish.Region,
		AccessKey: cfg.Publish.AccessKey,
		SecretKey: cfg.Publish.SecretKey,
		Bucket:    cfg.Publish.Bucket,
		Prefix:    cfg.Publish.Prefix,
		UseSSL:    cfg.Publish.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("publish target: %w", err)
	}
	return store.Mirror(local, bucket, nil), nil
}

// codeEncoder returns the configured encoder, or a disabled one when codes
// are turned off.
func codeEncoder(cfg config.CodesConfig) (qrcode.Encoder, error) {
	if !cfg.Enabled {
		return qrcode.Disabled("disabled by configuration"), nil
	}
	return qrcode.NewEncoder(cfg.Format, cfg.Size, cfg.Level)
}
