package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/product"
	logs "github.com/example/ec-storefront/internal/infrastructure/log"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/query"
	"github.com/example/ec-storefront/internal/seed"
	"github.com/spf13/cobra"
)

// backend is the storage the commands run against.
type backend struct {
	products store.ProductStore
	users    store.UserStore
	close    func() error
}

type app struct {
	out        io.Writer
	configPath string
	open       func(ctx context.Context, cfg *config.Config) (*backend, error)
}

func newApp(out io.Writer) *app {
	return &app{out: out, open: openPostgres}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*backend, error) {
	db, err := store.ConnectPostgres(ctx, store.PoolConfig{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrate {
		if err := store.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &backend{
		products: store.NewPostgresProductStore(db),
		users:    store.NewPostgresUserStore(db),
		close:    db.Close,
	}, nil
}

// session loads config, builds the logger and opens the backend.
func (a *app) session(ctx context.Context) (*config.Config, *slog.Logger, *backend, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := logs.New(os.Stderr, cfg.Env.Log, "catalog")
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := a.open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, b, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalog",
		Short:         "Storefront catalog administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default $SHOP_CONFIG or ./config.yaml)")
	root.SetOut(a.out)

	root.AddCommand(newSeedCmd(a), newListCmd(a))
	return root
}

func newSeedCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the catalog with the sample products or a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := loadProducts(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, logger, b, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			pricing, err := cfg.CartPricing()
			if err != nil {
				return err
			}
			queryHandler := query.NewHandler(b.products, b.users, query.Config{
				MaxPageSize: cfg.Catalog.MaxPageSize,
				Pricing:     pricing,
			}, logger)
			handler := command.NewHandler(b.products, b.users, queryHandler, nil, logger)

			count, err := handler.SeedCatalog(ctx, command.SeedCatalog{Products: products})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", count)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON array of products to load instead of the bundled sample")
	return cmd
}

func loadProducts(file string) ([]*product.Product, error) {
	if file == "" {
		return seed.Products()
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var products []*product.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode %s: %w", file, err)
	}
	return products, nil
}

func newListCmd(a *app) *cobra.Command {
	var (
		category string
		brand    string
		search   string
		sortBy   string
		order    string
		featured bool
		page     int
		limit    int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active products with the same filters as the listing endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := url.Values{}
			set := func(key, v string) {
				if v != "" {
					values.Set(key, v)
				}
			}
			set("category", category)
			set("brand", brand)
			set("search", search)
			set("sortBy", sortBy)
			set("sortOrder", order)
			set("page", strconv.Itoa(page))
			set("limit", strconv.Itoa(limit))
			if featured {
				values.Set("featured", "true")
			}

			q, err := query.ParseListingQuery(values)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, logger, b, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			handler := query.NewHandler(b.products, b.users, query.Config{MaxPageSize: cfg.Catalog.MaxPageSize}, logger)
			result, err := handler.ListProducts(ctx, q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tBRAND\tPRICE\tSTOCK")
			for _, p := range result.Products {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%d\n", p.ID, p.Name, p.Category, p.Brand, p.Price, p.Stock)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			pg := result.Pagination
			fmt.Fprintf(out, "page %d of %d (%d products)\n", pg.CurrentPage, pg.TotalPages, pg.TotalProducts)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&category, "category", "", "Category, or \"all\"")
	f.StringVar(&brand, "brand", "", "Brand substring")
	f.StringVarP(&search, "search", "s", "", "Free-text search")
	f.StringVar(&sortBy, "sort", "createdAt", "Sort key: createdAt, price, name, rating.average, rating.count")
	f.StringVar(&order, "order", "desc", "Sort order: asc or desc")
	f.BoolVar(&featured, "featured", false, "Only featured products")
	f.IntVar(&page, "page", 1, "Page number")
	f.IntVar(&limit, "limit", query.DefaultPageSize, "Page size")
	f.BoolVar(&asJSON, "json", false, "Print the listing response as JSON")
	return cmd
}
