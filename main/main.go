package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/npickett/goxrt/geom"
	"github.com/npickett/goxrt/io"
	"github.com/npickett/goxrt/logger"
	"github.com/npickett/goxrt/trace"
)

func main() {
	var (
		configFile    string
		exampleConfig bool
		outFile       string
		logFile       string
		logLevel      string
	)

	flag.StringVar(
		&configFile, "Config", "",
		"Instrument configuration file.",
	)
	flag.BoolVar(
		&exampleConfig, "ExampleConfig", false,
		"Prints an example configuration file to stdout and exits.",
	)
	flag.StringVar(
		&outFile, "Out", "",
		"Output table of final hit points. Defaults to stdout.",
	)
	flag.StringVar(
		&logFile, "LogFile", "",
		"Log file. Overrides the config's [Main] LogFile.",
	)
	flag.StringVar(
		&logLevel, "LogLevel", "",
		"Log level: debug, info, warn, or error. Overrides the config.",
	)
	flag.Parse()

	if exampleConfig {
		fmt.Print(io.ExampleConfigFile)
		return
	}
	if configFile == "" {
		fmt.Fprintln(os.Stderr, "goxrt requires the -Config flag. "+
			"Run with -ExampleConfig for an example file.")
		os.Exit(1)
	}

	cfg, err := io.ReadConfig(configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if logFile == "" {
		logFile = cfg.Main.LogFile
	}
	if logLevel == "" {
		logLevel = cfg.Main.LogLevel
	}
	log := logger.New(logLevel, logFile)
	defer log.Sync()

	if err = run(cfg, outFile, log); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(cfg *io.Config, outFile string, log *zap.Logger) error {
	start := time.Now()

	optics := make([]*trace.Optic, 0, len(cfg.Main.OpticNames()))
	for _, name := range cfg.Main.OpticNames() {
		optic, err := io.BuildOptic(cfg.Optic[name], log)
		if err != nil {
			return err
		}
		optics = append(optics, optic)
	}

	out := os.Stdout
	if outFile != "" {
		var err error
		if out, err = os.Create(outFile); err != nil {
			return err
		}
		defer out.Close()
	}
	w := bufio.NewWriter(out)
	defer w.Flush()
	fmt.Fprintln(w, "# source x y z weight wavelength")

	for _, name := range cfg.SourceNames() {
		rays := io.BuildSource(cfg.Source[name])
		log.Info("tracing source",
			zap.String("source", name),
			zap.Int("rays", rays.Len()),
		)

		if err := traceSource(name, rays, optics, w, log); err != nil {
			return err
		}
	}

	log.Info("done", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// traceSource runs one source's bundle through the optic chain and
// writes the surviving rays' final hit points.
func traceSource(
	name string, rays *geom.RayBatch, optics []*trace.Optic,
	w *bufio.Writer, log *zap.Logger,
) error {
	for _, optic := range optics {
		res := optic.Trace(rays)
		log.Info("traced optic",
			zap.String("source", name),
			zap.String("optic", optic.Name()),
			zap.Int("active", rays.ActiveCount()),
			zap.Int("lost", res.Lost),
		)
	}

	for i := range rays.Mask {
		if !rays.Mask[i] {
			continue
		}
		o := rays.Origin[i]
		_, err := fmt.Fprintf(
			w, "%s %.10g %.10g %.10g %g %g\n",
			name, o.X, o.Y, o.Z, rays.Weight[i], rays.Wavelength[i],
		)
		if err != nil {
			return err
		}
	}
	return nil
}
