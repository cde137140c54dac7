package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "portfolio",
	Short:         "Research portfolio site",
	Long:          `Serves the research portfolio: home and research pages, the project catalog listings and the project microsites.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Fetch the project catalog and print the listings",
	Long:  `Fetches the project catalog the way the site does and prints what each listing would show, in order.`,
	RunE:  runCatalog,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "portfolio.yaml", "config file")
	catalogCmd.Flags().String("file", "", "read the catalog from a local file instead of the server")
	catalogCmd.Flags().String("url", "", "base URL to fetch the catalog from (defaults to catalog.base_url)")
	catalogCmd.Flags().String("area", "", "also list the projects of this research area")
	rootCmd.AddCommand(serveCmd, catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return LoadConfig(path)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	journal, err := OpenJournal(cfg.Diagnostics.DSN, cfg.Diagnostics.Retention, logger)
	if err != nil {
		return fmt.Errorf("opening diagnostics journal: %w", err)
	}
	defer journal.Close()

	sites, err := LoadSites(sitesFS, "sites")
	if err != nil {
		return err
	}
	catalog, err := NewCatalogClient(cfg.CatalogBaseURL(), cfg.Catalog.Timeout)
	if err != nil {
		return err
	}

	srv, err := NewServer(cfg, catalog, sites, journal, logger)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.sweepSessions(ctx, time.Minute)
	go journal.runCleanup(ctx, cfg.Diagnostics.Cleanup)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", httpServer.Addr),
			zap.String("catalog", catalog.Endpoint()),
			zap.Bool("prerender", cfg.Listings.Prerender),
			zap.Strings("sites", siteSlugs(sites)),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("server shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var source CatalogSource
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		source = fileCatalog{path: path}
	} else {
		base, _ := cmd.Flags().GetString("url")
		if base == "" {
			base = cfg.CatalogBaseURL()
		}
		client, err := NewCatalogClient(base, cfg.Catalog.Timeout)
		if err != nil {
			return err
		}
		source = client
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Catalog.Timeout+time.Second)
	defer cancel()
	projects, err := source.Fetch(ctx)
	if err != nil {
		return newLoadError("catalog", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d projects in catalog\n", len(projects))
	for _, cfg := range []ListingConfig{recentWorkListing, researchProjectsListing} {
		printListing(out, cfg.Name, SortByOrder(Select(projects, cfg.Filter)))
	}
	if area, _ := cmd.Flags().GetString("area"); area != "" {
		printListing(out, "area "+area, SortByOrder(Select(projects, InResearchArea(area))))
	}
	return nil
}

func printListing(w io.Writer, name string, projects []Project) {
	fmt.Fprintf(w, "\n%s (%d)\n", name, len(projects))
	for i, p := range projects {
		order := "-"
		if p.Order.Defined {
			order = fmt.Sprintf("%g", p.Order.Value)
		}
		fmt.Fprintf(w, "  %d. %-24s order=%-4s %s\n", i+1, p.ID, order, PrimaryLink(p).Href)
	}
}
