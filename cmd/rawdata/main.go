// Command rawdata inspects raw diffraction dataset directories: printing
// metadata, dumping frame statistics, rendering frames as heat maps,
// producing acquisition-condition reports, and maintaining a sqlite index
// of dataset collections.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/mcgill-femto/rawdata/dataset"
	"github.com/mcgill-femto/rawdata/internal/catalog"
	"github.com/mcgill-femto/rawdata/internal/render"
	"github.com/mcgill-femto/rawdata/internal/report"
	_ "github.com/mcgill-femto/rawdata/mcgill" // register the generation adapters
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: rawdata <command> [flags]

Commands:
  info    -adapter <name> <dir>                     print dataset metadata
  frame   -adapter <name> -delay <ps> -scan <n> <dir>
                                                    print frame statistics
  render  -adapter <name> -delay <ps> -scan <n> -out <png> <dir>
                                                    render a frame heat map
  report  -adapter <name> -out <html> <dir>         acquisition conditions report
  index   -adapter <name> -db <file> <dir>          add a dataset to the index
  list    -db <file>                                list indexed datasets

Adapters: %s
`, strings.Join(dataset.Adapters(), ", "))
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "info":
		runInfo(os.Args[2:])
	case "frame":
		runFrame(os.Args[2:])
	case "render":
		runRender(os.Args[2:])
	case "report":
		runReport(os.Args[2:])
	case "index":
		runIndex(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	default:
		usage()
	}
}

// openDataset parses the trailing directory argument and opens it with the
// named adapter.
func openDataset(fs *flag.FlagSet, adapter string) dataset.RawDataset {
	if fs.NArg() != 1 {
		log.Fatalf("expected exactly one dataset directory, got %d arguments", fs.NArg())
	}
	ds, err := dataset.Open(adapter, fs.Arg(0))
	if err != nil {
		log.Fatalf("opening dataset: %v", err)
	}
	return ds
}

func runInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	adapter := fs.String("adapter", "gamma", "dataset adapter to use")
	fs.Parse(args)
	ds := openDataset(fs, *adapter)

	meta := ds.Metadata()
	fmt.Printf("%s\n", ds.DisplayName())
	fmt.Printf("  acquisition date: %s\n", orNA(meta.AcquisitionDate))
	fmt.Printf("  energy:           %s keV\n", num(meta.Energy))
	fmt.Printf("  fluence:          %s mJ/cm²\n", num(meta.Fluence))
	fmt.Printf("  temperature:      %s K\n", num(meta.Temperature))
	fmt.Printf("  exposure:         %s s\n", num(meta.Exposure))
	fmt.Printf("  pump wavelength:  %s nm\n", num(meta.PumpWavelength))
	fmt.Printf("  resolution:       %dx%d\n", meta.Resolution[0], meta.Resolution[1])
	fmt.Printf("  scans:            %d\n", len(meta.Scans))
	fmt.Printf("  time points:      %d\n", len(meta.TimePoints))
	if len(meta.TimePoints) > 0 {
		fmt.Printf("  delay range:      %v to %v ps\n", meta.TimePoints[0], meta.TimePoints[len(meta.TimePoints)-1])
	}
	if meta.Notes != "" {
		fmt.Printf("  notes:            %s\n", meta.Notes)
	}
}

func runFrame(args []string) {
	fs := flag.NewFlagSet("frame", flag.ExitOnError)
	adapter := fs.String("adapter", "gamma", "dataset adapter to use")
	delay := fs.Float64("delay", 0, "time-delay in picoseconds")
	scan := fs.Int("scan", 1, "scan number")
	noBG := fs.Bool("no-background", false, "skip background subtraction")
	fs.Parse(args)
	ds := openDataset(fs, *adapter)

	frame := loadFrame(ds, *delay, *scan, *noBG)
	rows, cols := frame.Dims()
	fmt.Printf("frame %vps scan %d: %dx%d  min=%g max=%g mean=%g\n",
		*delay, *scan, rows, cols, mat.Min(frame), mat.Max(frame), mat.Sum(frame)/float64(rows*cols))
}

func runRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	adapter := fs.String("adapter", "gamma", "dataset adapter to use")
	delay := fs.Float64("delay", 0, "time-delay in picoseconds")
	scan := fs.Int("scan", 1, "scan number")
	noBG := fs.Bool("no-background", false, "skip background subtraction")
	out := fs.String("out", "frame.png", "output PNG path")
	fs.Parse(args)
	ds := openDataset(fs, *adapter)

	frame := loadFrame(ds, *delay, *scan, *noBG)
	title := fmt.Sprintf("%s: %vps, scan %d", ds.DisplayName(), *delay, *scan)
	if err := render.HeatMapPNG(frame, title, *out); err != nil {
		log.Fatalf("rendering frame: %v", err)
	}
	log.Printf("wrote %s", *out)
}

func loadFrame(ds dataset.RawDataset, delay float64, scan int, noBG bool) *mat.Dense {
	var opts []dataset.RawOption
	if noBG {
		opts = append(opts, dataset.NoBackground())
	}
	frame, err := ds.RawData(delay, scan, opts...)
	if err != nil {
		log.Fatalf("reading frame: %v", err)
	}
	return frame
}

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	adapter := fs.String("adapter", "gamma", "dataset adapter to use")
	out := fs.String("out", "conditions.html", "output HTML path")
	fs.Parse(args)
	ds := openDataset(fs, *adapter)

	g, ok := ds.(interface {
		Timestamps() map[string]float64
		ElectronCounts() map[string]float64
		RoomTemperature() map[string]float64
		RoomHumidity() map[string]float64
	})
	if !ok {
		log.Fatalf("adapter %q records no acquisition-condition tables (use gamma or delta)", *adapter)
	}

	timestamps := g.Timestamps()
	series := []report.Series{
		report.SeriesFromTable("Electron counts", g.ElectronCounts(), timestamps),
		report.SeriesFromTable("Room temperature", g.RoomTemperature(), timestamps),
		report.SeriesFromTable("Room humidity", g.RoomHumidity(), timestamps),
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("creating report file: %v", err)
	}
	defer f.Close()
	if err := report.WriteHTML(f, ds.DisplayName(), series); err != nil {
		log.Fatalf("writing report: %v", err)
	}
	log.Printf("wrote %s", *out)
}

func runIndex(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	adapter := fs.String("adapter", "gamma", "dataset adapter to use")
	dbPath := fs.String("db", "rawdata.db", "catalog database path")
	fs.Parse(args)
	ds := openDataset(fs, *adapter)

	cat, err := catalog.Open(*dbPath)
	if err != nil {
		log.Fatalf("opening catalog: %v", err)
	}
	defer cat.Close()

	id, err := cat.IngestDataset(*adapter, fs.Arg(0), ds)
	if err != nil {
		log.Fatalf("indexing dataset: %v", err)
	}
	log.Printf("indexed %s as dataset %d", fs.Arg(0), id)
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dbPath := fs.String("db", "rawdata.db", "catalog database path")
	fs.Parse(args)

	cat, err := catalog.Open(*dbPath)
	if err != nil {
		log.Fatalf("opening catalog: %v", err)
	}
	defer cat.Close()

	records, err := cat.ListDatasets()
	if err != nil {
		log.Fatalf("listing datasets: %v", err)
	}
	if len(records) == 0 {
		fmt.Println("no datasets indexed")
		return
	}
	for _, r := range records {
		fmt.Printf("%4d  %-8s  %3d scans  %4d delays  %s\n",
			r.ID, r.Adapter, r.ScanCount, r.TimePointCount, r.Path)
	}
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

func num(v float64) string {
	if dataset.IsMissing(v) {
		return "n/a"
	}
	return fmt.Sprintf("%g", v)
}
