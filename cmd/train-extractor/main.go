// Command train-extractor flattens a persisted trains file into per-stop
// records, sanitizing known upstream defects on the way. Supported output
// formats are csv and sqlite.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/MarcoBuster/railway-opendata/internal/config"
	"github.com/MarcoBuster/railway-opendata/internal/export"
	"github.com/MarcoBuster/railway-opendata/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	format := flag.String("f", "csv", "output format: csv or sqlite")
	output := flag.String("o", "", "output path (csv defaults to stdout)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <trains.json>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("cannot load configuration", "err", err)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		slog.Error("cannot load timezone", "timezone", cfg.Timezone, "err", err)
		os.Exit(1)
	}

	trains, err := store.LoadTrainsFile(flag.Arg(0))
	if err != nil {
		slog.Error("cannot load trains", "err", err)
		os.Exit(1)
	}
	export.Sanitize(trains, cfg.IntradaySplitHour, loc)

	switch *format {
	case "csv":
		w := os.Stdout
		if *output != "" {
			f, err := os.Create(*output)
			if err != nil {
				slog.Error("cannot create output file", "err", err)
				os.Exit(1)
			}
			defer f.Close()
			w = f
		}
		err = export.WriteTrainsCSV(w, trains)
	case "sqlite":
		if *output == "" {
			slog.Error("sqlite output needs -o")
			os.Exit(2)
		}
		err = export.WriteTrainsSQLite(*output, trains)
	default:
		slog.Error("unknown output format", "format", *format)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("export failed", "err", err)
		os.Exit(1)
	}
}
