package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/tair/freshsave/internal/scanner"
	"github.com/tair/freshsave/internal/scanner/client"
	"github.com/tair/freshsave/internal/scanner/local"
	"github.com/tair/freshsave/pkg/config"
)

const (
	exitNotFound = 1
	exitInvalid  = 2
)

func newResolveCmd() *cobra.Command {
	var (
		catalogURL string
		offURL     string
		offline    bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <barcode>",
		Short: "Resolve a barcode and print the product as JSON",
		Long: `Resolve runs the same lookup chain as the scanner service: the built-in
product table, then the catalog service, then Open Food Facts.

Exit status is 1 when no source knows the barcode and 2 when the barcode
is blank.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := local.Default()
			if err != nil {
				return err
			}

			timeout, err := cmd.Flags().GetDuration("timeout")
			if err != nil {
				return err
			}

			var (
				catalog   scanner.Catalog
				nutrition scanner.NutritionDatabase
			)
			if !offline {
				httpClient := client.NewHTTPClient(timeout)
				catalog = client.NewCatalogClient(catalogURL, httpClient)
				nutrition = client.NewOpenFoodFactsClient(offURL, 0, httpClient)
			}

			resolver := scanner.NewResolver(table, catalog, nutrition, scanner.WithStepTimeout(timeout))
			product, err := resolver.Resolve(cmd.Context(), args[0])
			switch {
			case errors.Is(err, scanner.ErrInvalidInput):
				return withExitCode(exitInvalid, "%w", err)
			case errors.Is(err, scanner.ErrProductNotFound):
				return withExitCode(exitNotFound, "%s: %w", args[0], err)
			case err != nil:
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(product)
		},
	}

	cmd.Flags().StringVar(&catalogURL, "catalog", config.GetEnv("CATALOG_SERVICE_URL", "http://localhost:8081"), "catalog service base URL")
	cmd.Flags().StringVar(&offURL, "off", config.GetEnv("OFF_BASE_URL", client.DefaultOpenFoodFactsURL), "Open Food Facts base URL")
	cmd.Flags().Duration("timeout", config.GetDuration("STEP_TIMEOUT", scanner.DefaultStepTimeout), "timeout of each remote lookup")
	cmd.Flags().BoolVar(&offline, "offline", false, "only consult the built-in product table")
	return cmd
}
