package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/valenante/alef-gateway/internal/cache"
	"github.com/valenante/alef-gateway/internal/config"
	"github.com/valenante/alef-gateway/internal/domain"
	"github.com/valenante/alef-gateway/internal/registry"
	"github.com/valenante/alef-gateway/internal/reports"
	"github.com/valenante/alef-gateway/internal/stats"
	"github.com/valenante/alef-gateway/internal/upstream"
	"github.com/valenante/alef-gateway/internal/ventas"
)

func newTenantFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "tenant",
		Usage:    "Tenant id or slug",
		Required: true,
		EnvVars:  []string{"ALEF_TENANT"},
	}
}

func loadTenant(c *cli.Context, client *upstream.Client) (domain.Tenant, error) {
	t, err := client.TenantMe(c.Context, c.String("tenant"))
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("could not resolve tenant %s: %w", c.String("tenant"), err)
	}
	return t, nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func exportVentas(c *cli.Context) error {
	cfg := config.Load()
	client := upstream.NewClient(cfg.Upstream)

	t, err := loadTenant(c, client)
	if err != nil {
		return err
	}

	engine := ventas.NewEngine(client)
	engine.SetTenant(&t)
	engine.SetQuery(c.String("q"))
	engine.SetDesde(c.String("from"))
	engine.SetHasta(c.String("to"))
	engine.SetMetodoPago(c.String("metodo"))
	engine.SetCanal(c.String("canal"))
	engine.SetEstado(c.String("estado"))
	engine.SetPageSize(c.Int("limit"))
	engine.SetPage(c.Int("page"))

	snap := engine.Refresh(c.Context)
	if snap.State == ventas.StateError {
		return fmt.Errorf("export failed: %s", snap.Err)
	}

	outPath := c.String("out")
	if outPath == "" {
		outPath = ventas.ExportFilename(t.ID, time.Now())
	}
	out, closeOut, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := ventas.WriteCSV(out, snap.Items); err != nil {
		return err
	}
	log.Info().Int("ventas", len(snap.Items)).Str("out", outPath).Msg("export written")
	return nil
}

func cajaReport(c *cli.Context) error {
	cfg := config.Load()
	client := upstream.NewClient(cfg.Upstream)

	t, err := loadTenant(c, client)
	if err != nil {
		return err
	}

	dia := time.Now()
	if raw := c.String("fecha"); raw != "" {
		dia, err = time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --fecha, expected YYYY-MM-DD: %w", err)
		}
	}

	report, err := reports.NewBuilder(client).Daily(c.Context, t, dia)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(c.String("out"))
	if err != nil {
		return err
	}
	defer closeOut()

	switch c.String("formato") {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "csv":
		return reports.WriteCSV(out, report)
	case "xlsx":
		return reports.WriteXLSX(out, report)
	default:
		return fmt.Errorf("unknown --formato %q", c.String("formato"))
	}
}

func statsCategoria(c *cli.Context) error {
	cfg := config.Load()
	client := upstream.NewClient(cfg.Upstream)

	t, err := loadTenant(c, client)
	if err != nil {
		return err
	}

	var productos []domain.Producto
	for _, id := range strings.Split(c.String("productos"), ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			productos = append(productos, domain.Producto{ID: id})
		}
	}
	if len(productos) == 0 {
		return fmt.Errorf("at least one product id is required via --productos")
	}

	var dia *time.Time
	if raw := c.String("fecha"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --fecha, expected YYYY-MM-DD: %w", err)
		}
		dia = &parsed
	}

	// The CLI fails loudly; silent empty stats are for the dashboard only.
	aggregator := stats.NewAggregator(client, cache.NewNoopStatsCache(), stats.ErrorPolicyPropagate)
	snap, err := aggregator.Categoria(c.Context, t, productos, dia)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func statsInvalidate(c *cli.Context) error {
	cfg := config.Load()
	if !cfg.Cache.Enabled {
		return fmt.Errorf("stats cache is disabled (set CACHE_ENABLED=true)")
	}

	client, err := cache.NewRedisClient(cfg.Cache)
	if err != nil {
		return err
	}
	defer client.Close()

	statsCache := cache.NewStatsCache(client, cache.StatsTTL(cfg.Cache))
	tenantID := c.String("tenant")
	if err := statsCache.InvalidateTenant(c.Context, tenantID); err != nil {
		return err
	}
	log.Info().Str("tenant", tenantID).Msg("stats cache invalidated")
	return nil
}

func tenantSync(c *cli.Context) error {
	cfg := config.Load()
	if !cfg.Registry.Enabled {
		return fmt.Errorf("tenant registry is disabled (set REGISTRY_ENABLED=true)")
	}

	client := upstream.NewClient(cfg.Upstream)
	t, err := loadTenant(c, client)
	if err != nil {
		return err
	}

	db, err := registry.NewDB(cfg.Registry)
	if err != nil {
		return err
	}
	defer db.Close()

	repo, err := registry.NewRepository(db)
	if err != nil {
		return err
	}
	if err := repo.Upsert(c.Context, t); err != nil {
		return err
	}
	log.Info().Str("tenant", t.ID).Str("nombre", t.Nombre).Msg("tenant synced")
	return nil
}

func tenantList(c *cli.Context) error {
	cfg := config.Load()
	if !cfg.Registry.Enabled {
		return fmt.Errorf("tenant registry is disabled (set REGISTRY_ENABLED=true)")
	}

	db, err := registry.NewDB(cfg.Registry)
	if err != nil {
		return err
	}
	defer db.Close()

	repo, err := registry.NewRepository(db)
	if err != nil {
		return err
	}
	tenants, err := repo.List(c.Context)
	if err != nil {
		return err
	}

	for _, t := range tenants {
		fmt.Printf("%s\t%s\t%s\t%s\n", t.ID, t.Slug, t.EffectiveBusinessType(), t.Nombre)
	}
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "alefctl",
		Usage: "Admin tooling for the Alef gateway",
		Commands: []*cli.Command{
			{
				Name:  "ventas",
				Usage: "Sales queries and exports",
				Subcommands: []*cli.Command{
					{
						Name:   "export",
						Usage:  "Export one page of sales as CSV",
						Action: exportVentas,
						Flags: []cli.Flag{
							newTenantFlag(),
							&cli.StringFlag{Name: "q", Usage: "Free-text query"},
							&cli.StringFlag{Name: "from", Usage: "Start day (YYYY-MM-DD)"},
							&cli.StringFlag{Name: "to", Usage: "End day (YYYY-MM-DD)"},
							&cli.StringFlag{Name: "metodo", Usage: "Payment method filter", Value: domain.FilterAll},
							&cli.StringFlag{Name: "canal", Usage: "Channel filter", Value: domain.FilterAll},
							&cli.StringFlag{Name: "estado", Usage: "Status filter", Value: domain.FilterAll},
							&cli.IntFlag{Name: "page", Usage: "Page number", Value: 1},
							&cli.IntFlag{Name: "limit", Usage: "Page size", Value: domain.DefaultPageSize},
							&cli.StringFlag{Name: "out", Usage: "Output file (default: conventional name)"},
						},
					},
				},
			},
			{
				Name:  "caja",
				Usage: "Cash-register reports",
				Subcommands: []*cli.Command{
					{
						Name:   "report",
						Usage:  "Build the daily caja report",
						Action: cajaReport,
						Flags: []cli.Flag{
							newTenantFlag(),
							&cli.StringFlag{Name: "fecha", Usage: "Day (YYYY-MM-DD), default today"},
							&cli.StringFlag{Name: "formato", Usage: "json, csv or xlsx", Value: "json"},
							&cli.StringFlag{Name: "out", Usage: "Output file (default: stdout)"},
						},
					},
				},
			},
			{
				Name:  "stats",
				Usage: "Category statistics",
				Subcommands: []*cli.Command{
					{
						Name:   "categoria",
						Usage:  "Compute the category statistics snapshot",
						Action: statsCategoria,
						Flags: []cli.Flag{
							newTenantFlag(),
							&cli.StringFlag{Name: "productos", Usage: "Comma-separated product ids", Required: true},
							&cli.StringFlag{Name: "fecha", Usage: "Day (YYYY-MM-DD), optional"},
						},
					},
					{
						Name:   "invalidate",
						Usage:  "Drop the cached statistics snapshots for a tenant",
						Action: statsInvalidate,
						Flags:  []cli.Flag{newTenantFlag()},
					},
				},
			},
			{
				Name:  "tenant",
				Usage: "Tenant registry operations",
				Subcommands: []*cli.Command{
					{
						Name:   "sync",
						Usage:  "Fetch tenant metadata upstream and store it locally",
						Action: tenantSync,
						Flags:  []cli.Flag{newTenantFlag()},
					},
					{
						Name:   "list",
						Usage:  "List tenants in the local registry",
						Action: tenantList,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("alefctl failed")
	}
}
