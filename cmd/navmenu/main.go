package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/html"

	"github.com/mchmarny/navmenu/pkg/logger"
	"github.com/mchmarny/navmenu/pkg/menu"
	"github.com/mchmarny/navmenu/pkg/metric"
	"github.com/mchmarny/navmenu/pkg/outline"
	"github.com/mchmarny/navmenu/pkg/preview"
	"github.com/mchmarny/navmenu/pkg/server"
)

var (
	version = "v0.0.0"  // Set at build time via -ldflags "-X main.version=version"
	commit  = "none"    // Set at build time via -ldflags "-X main.commit=commit"
	date    = "unknown" // Set at build time via -ldflags "-X main.date=date"

	port        = flag.Int("port", server.DefaultPort, "Port to run the preview server on")
	configPath  = flag.String("config", "", "YAML file with the menu config layer")
	outlinePath = flag.String("outline", "", "YAML file with the outline to preview (built-in demo when empty)")
	renderPath  = flag.String("render", "", "HTML file to enhance and print to stdout instead of serving")
	path        = flag.String("path", "", "Current location used to mark active items")
	logLevel    = flag.String("log-level", os.Getenv(logger.EnvVarLogLevel), "Log level: debug, info, warn, error")
)

func main() {
	// Parse command-line flags
	flag.Parse()

	logger.SetDefaultLoggerWithLevel("navmenu", version, *logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		slog.Error("navmenu failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer) error {
	layer, err := loadLayer(*configPath, *path)
	if err != nil {
		return err
	}

	if *renderPath != "" {
		return render(*renderPath, layer, out)
	}

	o := demoOutline()
	if *outlinePath != "" {
		if o, err = outline.LoadFile(*outlinePath); err != nil {
			return err
		}
	}

	slog.Info("starting navmenu", "commit", commit, "date", date, "outline", o.Title)

	reg := prometheus.NewRegistry()
	svc := preview.New(o,
		preview.WithLayer(layer),
		preview.WithToggleCounter(metric.NewToggleCounter(reg)),
		preview.WithSessionCounter(metric.NewSessionCounter(reg)),
	)

	return svc.Run(ctx,
		server.WithPort(*port),
		server.WithRegistry(reg),
		server.WithMetrics(),
		server.WithSimpleHealth(),
	)
}

// loadLayer reads the optional config file; -path overrides its path.
func loadLayer(file, current string) (menu.Layer, error) {
	var l menu.Layer
	if file != "" {
		var err error
		if l, err = menu.LoadLayerFile(file); err != nil {
			return l, err
		}
	}
	if current != "" {
		l.Path = &current
	}
	return l, nil
}

// render enhances the menu in an HTML file and writes the result.
func render(file string, l menu.Layer, out io.Writer) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}

	m := menu.New(doc, menu.WithLayer(l))
	if m.Root() == nil {
		slog.Warn("no menu found, writing input unchanged", "file", file)
	}

	if err := html.Render(out, doc); err != nil {
		return fmt.Errorf("failed to render %s: %w", file, err)
	}
	return nil
}

// demoOutline is served when no outline file is given.
func demoOutline() *outline.Outline {
	return &outline.Outline{
		Title:       fmt.Sprintf("Demo Menu (%s)", version),
		Description: "Built-in demo outline",
		Version:     version,
		Items: []outline.Item{
			{
				Title:       "Item 1",
				Description: "This is item 1",
				Path:        "/item1",
			},
			{
				Title:       "Item 2",
				Description: "This is item 2",
				Path:        "/item2",
				Items: []outline.Item{
					{
						Title:       "Subitem 1",
						Description: "This is subitem 1",
						Path:        "/item2/subitem1",
					},
					{
						Title:       "Subitem 2",
						Description: "This is subitem 2",
						Path:        "/item2/subitem2",
						Items: []outline.Item{
							{Title: "Detail", Path: "/item2/subitem2/detail"},
						},
					},
				},
			},
			{
				Title: "Item 3",
				Path:  "/item3",
				Items: []outline.Item{
					{Title: "Subitem 3", Path: "/item3/subitem3"},
				},
			},
		},
	}
}
