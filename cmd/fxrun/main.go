package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strconv"

	"github.com/williamofai/certifiable-inference/fixed"
	"github.com/williamofai/certifiable-inference/pipeline"
)

func main() {
	var (
		verbose = flag.Bool("verbose", false, "Enable verbose output")
		raw     = flag.Bool("raw", false, "Print outputs as raw Q16.16 integers")
		version = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Println("fxrun - Fixed-Point Pipeline Runner v1.0.0")
		fmt.Printf("Built with Go %s\n", runtime.Version())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <pipeline.fxp> [input]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	plan, err := pipeline.LoadFile(args[0])
	if err != nil {
		log.Fatalf("Failed to load pipeline: %v", err)
	}

	if *verbose {
		fmt.Printf("Loaded pipeline: %dx%d input, %d layers, %dx%d output\n",
			plan.InRows, plan.InCols, plan.StepCount(), plan.OutRows(), plan.OutCols())
	}

	input, err := readInput(args[1:], plan.InLen())
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	engine, err := pipeline.NewEngine(plan)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	output := make([]fixed.Fixed, plan.OutLen())
	rows, cols, err := engine.Run(input, output)
	if err != nil {
		log.Fatalf("Execution failed: %v", err)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for r := 0; r < int(rows); r++ {
		for c := 0; c < int(cols); c++ {
			if c > 0 {
				fmt.Fprint(w, " ")
			}
			v := output[r*int(cols)+c]
			if *raw {
				fmt.Fprintf(w, "%d", int32(v))
			} else {
				fmt.Fprintf(w, "%g", v.Float())
			}
		}
		fmt.Fprintln(w)
	}
}

// readInput parses whitespace-separated decimal values from the named file,
// or from stdin when no file is given, and requires exactly want values.
func readInput(args []string, want int) ([]fixed.Fixed, error) {
	var src io.Reader = os.Stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = f
	}

	input := make([]fixed.Fixed, 0, want)
	scanner := bufio.NewScanner(src)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", scanner.Text(), err)
		}
		input = append(input, fixed.FromFloat(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(input) != want {
		return nil, fmt.Errorf("got %d values, pipeline wants %d", len(input), want)
	}
	return input, nil
}
