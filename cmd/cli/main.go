// Command cli reads a DriveInput document (JSON, or YAML for .yaml/.yml files) from a
// file argument or stdin, runs the drive, and writes the DriveLog to stdout.
//
//	cli [-format json|csv] [-render] [file]
//
// With -format csv the output is a time,value table of distance travelled. With
// -render the path is not driven; each segment is printed as one JSON line instead.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/rabid-robot/motion-engine/internal/config"
	"github.com/rabid-robot/motion-engine/internal/engine"
	"github.com/rabid-robot/motion-engine/internal/logging"
	"github.com/rabid-robot/motion-engine/internal/path"
)

func main() {
	format := flag.String("format", "json", "output format: json or csv")
	render := flag.Bool("render", false, "print the decoded path segments instead of driving it")
	flag.Parse()

	cfg, _ := config.Load()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error configuring logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(flag.Arg(0), *format, *render, os.Stdout, logger); err != nil {
		logger.Error("cli failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(name, format string, render bool, w io.Writer, logger *zap.Logger) error {
	if format != "json" && format != "csv" {
		return fmt.Errorf("unknown format %q", format)
	}

	input, err := readInput(name)
	if err != nil {
		return err
	}

	if render {
		p, err := input.Path.Build()
		if err != nil {
			return fmt.Errorf("building path: %w", err)
		}
		return renderPath(w, p)
	}

	e, err := engine.New(input, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	driveLog, err := e.Run(context.Background())
	if err != nil {
		return err
	}

	if format == "csv" {
		return writeCSV(w, driveLog)
	}
	out, err := json.Marshal(driveLog)
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// readInput reads name, or stdin when name is empty. YAML is chosen by extension.
func readInput(name string) (engine.DriveInput, error) {
	var (
		data []byte
		err  error
	)
	if name != "" {
		data, err = os.ReadFile(name)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return engine.DriveInput{}, fmt.Errorf("reading input: %w", err)
	}
	return engine.Parse(name, data)
}

func writeCSV(w io.Writer, driveLog engine.DriveLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "value"}); err != nil {
		return err
	}
	for _, row := range driveLog.Output {
		rec := []string{
			strconv.FormatFloat(row.Timestamp, 'g', -1, 64),
			strconv.FormatFloat(row.Distance, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type renderedSegment struct {
	Index   int            `json:"index"`
	Start   engine.PoseLog `json:"start"`
	Segment path.Segment   `json:"segment"`
}

func renderPath(w io.Writer, p *path.CompoundPath) error {
	enc := json.NewEncoder(w)
	for i, s := range p.Segments() {
		start := p.StartOf(i)
		rs := renderedSegment{
			Index:   i,
			Start:   engine.PoseLog{Point: engine.Point{X: start.Position.X, Y: start.Position.Y}, Heading: start.Heading.Radians()},
			Segment: s,
		}
		if err := enc.Encode(rs); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return nil
}
