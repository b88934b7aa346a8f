// Command station-extractor exports a persisted stations file as CSV or
// GeoJSON, filling missing positions from same-named stations first.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/MarcoBuster/railway-opendata/internal/export"
	"github.com/MarcoBuster/railway-opendata/internal/store"
)

func main() {
	format := flag.String("f", "csv", "output format: csv or geojson")
	output := flag.String("o", "", "output path (defaults to stdout)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <stations.json>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	stations, err := store.LoadStationsFile(flag.Arg(0))
	if err != nil {
		slog.Error("cannot load stations", "err", err)
		os.Exit(1)
	}
	if filled := export.FillMissingPositions(stations); filled > 0 {
		slog.Info("filled missing positions from same-named stations", "count", filled)
	}

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

	switch *format {
	case "csv":
		err = export.WriteStationsCSV(w, stations)
	case "geojson":
		err = export.WriteStationsGeoJSON(w, stations)
	default:
		slog.Error("unknown output format", "format", *format)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("export failed", "err", err)
		os.Exit(1)
	}
}
