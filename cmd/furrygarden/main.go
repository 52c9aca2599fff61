// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/poiesic/furrygarden"
	"github.com/poiesic/furrygarden/config"
	"github.com/poiesic/furrygarden/convert"
	"github.com/poiesic/furrygarden/core"
	"github.com/poiesic/furrygarden/source"
	"github.com/poiesic/furrygarden/storage/badger"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

var errSafetyFlags = errors.New("--safe and --toxic are mutually exclusive")

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	safetyFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.BoolFlag{
				Name:  "safe",
				Usage: "Only show pet-safe plants",
			},
			&cli.BoolFlag{
				Name:  "toxic",
				Usage: "Only show pet-toxic plants",
			},
		}
	}

	return &cli.App{
		Name:      "furrygarden",
		Usage:     "Look up whether plants are safe for cats and dogs",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Value:   "furrygarden.yaml",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file with FURRYGARDEN_* settings",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Directory holding safe.csv and toxic.csv (overrides config)",
			},
			&cli.StringFlag{
				Name:  "data-url",
				Usage: "Base URL serving safe.csv and toxic.csv (overrides config)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "BadgerDB snapshot to read plants from (overrides config)",
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return loadConfig(c)
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Fuzzy search plants by common, alternate, latin or Polish name",
				ArgsUsage: "<query...>",
				Action:    searchCommand,
				Flags: append(safetyFlags(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results (0 for all)",
						Value:   10,
					},
				),
			},
			{
				Name:   "list",
				Usage:  "List every plant in the corpus",
				Action: listCommand,
				Flags:  safetyFlags(),
			},
			{
				Name:   "status",
				Usage:  "Load the corpus and report what was loaded",
				Action: statusCommand,
			},
			{
				Name:   "convert",
				Usage:  "Convert safe.csv and toxic.csv into JSON files",
				Action: convertCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "in",
						Aliases:  []string{"i"},
						Usage:    "Directory holding safe.csv and toxic.csv",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Directory to write safe.json and toxic.json",
						Required: true,
					},
				},
			},
			{
				Name:   "import",
				Usage:  "Import partition files into a BadgerDB snapshot",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "in",
						Aliases:  []string{"i"},
						Usage:    "Directory holding the partition files",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Input format (csv, json)",
						Value: "csv",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N rows",
						Value: 100,
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	return installLogger(c, c.String("log-level"))
}

func installLogger(c *cli.Context, levelName string) error {
	level, err := config.ParseLogLevel(levelName)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// loadConfig layers .env, the config file and the global flags, and keeps
// the result in the app metadata for the commands.
func loadConfig(c *cli.Context) error {
	if err := config.LoadEnvFiles(c.String("env-file")); err != nil {
		return err
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch {
	case c.String("db") != "":
		config.WithDBPath(c.String("db"))(cfg)
	case c.String("data-url") != "":
		config.WithURL(c.String("data-url"))(cfg)
	case c.String("data-dir") != "":
		config.WithSourceKind(config.SourceCSV)(cfg)
		config.WithDir(c.String("data-dir"))(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	// The flag wins over log_level from the config file.
	if !c.IsSet("log-level") {
		if err := installLogger(c, cfg.LogLevel); err != nil {
			return err
		}
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func contextOf(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}

func openCatalog(c *cli.Context) (*furrygarden.Catalog, error) {
	catalog, err := furrygarden.NewCatalogFromConfig(configFrom(c))
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}
	if err := catalog.Initialize(contextOf(c)); err != nil {
		catalog.Close()
		return nil, fmt.Errorf("failed to load plants: %w", err)
	}

	for _, partition := range core.Partitions {
		if cause, ok := catalog.Status().Causes[partition]; ok {
			fmt.Fprintf(c.App.ErrWriter, "warning: %s plants unavailable: %v\n", partition, cause)
		}
	}
	return catalog, nil
}

func safetyFilter(c *cli.Context) (*bool, error) {
	safe, toxic := c.Bool("safe"), c.Bool("toxic")
	switch {
	case safe && toxic:
		return nil, errSafetyFlags
	case safe:
		return core.Bool(true), nil
	case toxic:
		return core.Bool(false), nil
	default:
		return nil, nil
	}
}

func searchCommand(c *cli.Context) error {
	filter, err := safetyFilter(c)
	if err != nil {
		return err
	}
	query := strings.Join(c.Args().Slice(), " ")

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	results, err := catalog.Search(query)
	if err != nil {
		return err
	}

	plants := make([]core.Plant, len(results))
	for i := range results {
		plants[i] = results[i].Plant
	}
	plants = catalog.FilterBySafety(plants, filter)
	if limit := c.Int("limit"); limit > 0 && len(plants) > limit {
		plants = plants[:limit]
	}

	if len(plants) == 0 {
		fmt.Fprintf(c.App.Writer, "No plants match %q\n", query)
		return nil
	}
	return printPlants(c.App.Writer, plants)
}

func listCommand(c *cli.Context) error {
	filter, err := safetyFilter(c)
	if err != nil {
		return err
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	plants, err := catalog.All()
	if err != nil {
		return err
	}
	return printPlants(c.App.Writer, catalog.FilterBySafety(plants, filter))
}

func statusCommand(c *cli.Context) error {
	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	status := catalog.Status()
	safe, _ := catalog.Safe()
	toxic, _ := catalog.Toxic()

	fmt.Fprintf(c.App.Writer, "State:    %s\n", status.State)
	fmt.Fprintf(c.App.Writer, "Plants:   %d (%d safe, %d toxic)\n", status.Size, len(safe), len(toxic))
	fmt.Fprintf(c.App.Writer, "Dropped:  %d rows without a name\n", status.Dropped)
	fmt.Fprintf(c.App.Writer, "Degraded: %t\n", status.Degraded)
	return nil
}

func printPlants(w io.Writer, plants []core.Plant) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SAFETY\tNAME\tLATIN\tALSO KNOWN AS\tPOLISH")
	for i := range plants {
		p := &plants[i]
		safety := "toxic"
		if p.IsSafe {
			safety = "safe"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			safety, p.CommonName, p.LatinName, strings.Join(p.AdditionalNames, ", "), p.LocalizedName)
	}
	return tw.Flush()
}

func convertCommand(c *cli.Context) error {
	conv, err := convert.NewConverter()
	if err != nil {
		return err
	}
	defer conv.Release()

	report, err := conv.ConvertDir(contextOf(c), c.String("in"), c.String("out"))
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	for _, p := range report.Partitions {
		fmt.Fprintf(c.App.Writer, "%s: %d rows written to %s (%d malformed lines skipped, %d rows without a name)\n",
			p.Partition, p.Rows, p.Path, p.Skipped, p.Invalid)
	}
	return nil
}

func importCommand(c *cli.Context) error {
	format := source.Format(strings.ToLower(c.String("format")))
	if err := format.Validate(); err != nil {
		return err
	}

	src, err := source.NewCSVDir(c.String("in"), source.WithFormat(format))
	if err != nil {
		return err
	}

	dbPath := c.String("db")
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewPlantRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	conv, err := convert.NewConverter(convert.WithProgress(c.App.ErrWriter, c.Int("report-interval")))
	if err != nil {
		return err
	}
	defer conv.Release()

	fmt.Fprintf(c.App.ErrWriter, "Importing %s into %s\n", c.String("in"), dbPath)
	report, err := conv.Import(contextOf(c), src, repo)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	for _, p := range report.Partitions {
		fmt.Fprintf(c.App.Writer, "%s: %d rows imported (%d rows without a name)\n", p.Partition, p.Rows, p.Invalid)
	}
	return nil
}
