// Command fxverify runs a compiled pipeline repeatedly and proves the output
// is bit-identical across iterations. It digests the raw output bytes with
// SHA-256, reports latency spread, and can record the evidence in a local
// database so later runs on other machines can be checked against a stored
// baseline.
package main

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/williamofai/certifiable-inference/fixed"
	"github.com/williamofai/certifiable-inference/internal/rundb"
	"github.com/williamofai/certifiable-inference/pipeline"
)

var (
	iter    = flag.Int("iter", 1000, "Number of iterations")
	seed    = flag.Int64("seed", 1, "Input pattern seed")
	dbPath  = flag.String("db", "", "Evidence database directory (optional)")
	setBase = flag.Bool("set-baseline", false, "Record this run's digest as the baseline")
	verbose = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()

	args := flag.Args()
	if *iter < 1 {
		log.Fatalf("iter must be at least 1")
	}
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <pipeline.fxp>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	plan, err := pipeline.LoadFile(args[0])
	if err != nil {
		log.Fatalf("Failed to load pipeline: %v", err)
	}

	fmt.Printf("Fixed-Point Determinism Verifier\n")
	fmt.Printf("================================\n")
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("Pipeline: %s (%dx%d -> %dx%d, %d layers)\n",
		args[0], plan.InRows, plan.InCols, plan.OutRows(), plan.OutCols(), plan.StepCount())
	fmt.Printf("Iterations: %d\n\n", *iter)

	engine, err := pipeline.NewEngine(plan)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	input := patternInput(plan.InLen(), *seed)
	output := make([]fixed.Fixed, plan.OutLen())

	var (
		refDigest string
		minLat    time.Duration
		maxLat    time.Duration
		totalLat  time.Duration
	)
	for i := 0; i < *iter; i++ {
		start := time.Now()
		if _, _, err := engine.Run(input, output); err != nil {
			log.Fatalf("Iteration %d failed: %v", i, err)
		}
		lat := time.Since(start)
		totalLat += lat

		d := digest(output)
		if i == 0 {
			refDigest, minLat, maxLat = d, lat, lat
			continue
		}
		if d != refDigest {
			log.Fatalf("DETERMINISM VIOLATION at iteration %d: digest %s, expected %s", i, d, refDigest)
		}
		if lat < minLat {
			minLat = lat
		}
		if lat > maxLat {
			maxLat = lat
		}
		if *verbose && i%100 == 0 {
			fmt.Printf("  iteration %d: %s ok (%v)\n", i, d[:12], lat)
		}
	}

	fmt.Printf("Result: all %d iterations bit-identical\n", *iter)
	fmt.Printf("Digest: %s\n", refDigest)
	fmt.Printf("Latency: min %v, max %v, mean %v\n", minLat, maxLat, totalLat/time.Duration(*iter))

	if *dbPath == "" {
		return
	}

	name := filepath.Base(args[0])
	db, err := rundb.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open evidence database: %v", err)
	}
	defer db.Close()

	err = db.RecordRun(rundb.Run{
		Pipeline:   name,
		Iterations: *iter,
		Digest:     refDigest,
		MinLatency: minLat,
		MaxLatency: maxLat,
	})
	if err != nil {
		log.Fatalf("Failed to record run: %v", err)
	}

	if *setBase {
		if err := db.SetBaseline(name, refDigest); err != nil {
			log.Fatalf("Failed to set baseline: %v", err)
		}
		fmt.Printf("Baseline recorded for %s\n", name)
		return
	}

	baseline, found, err := db.Baseline(name)
	if err != nil {
		log.Fatalf("Failed to read baseline: %v", err)
	}
	switch {
	case !found:
		fmt.Printf("No baseline recorded for %s (use -set-baseline)\n", name)
	case baseline == refDigest:
		fmt.Printf("Baseline match: output identical to recorded reference\n")
	default:
		log.Fatalf("BASELINE MISMATCH: digest %s, baseline %s", refDigest, baseline)
	}
}

// patternInput builds a reproducible input vector from a seed without any
// floating-point arithmetic, so the same seed yields the same bits on every
// platform.
func patternInput(n int, seed int64) []fixed.Fixed {
	input := make([]fixed.Fixed, n)
	state := uint64(seed)
	for i := range input {
		// xorshift64, then fold into a small signed Q16.16 value.
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		input[i] = fixed.Fixed(state%(8*uint64(fixed.One))) - 4*fixed.One
	}
	return input
}

// digest hashes the output's raw little-endian bytes.
func digest(out []fixed.Fixed) string {
	h := sha256.New()
	var b [4]byte
	for _, v := range out {
		binary.LittleEndian.PutUint32(b[:], uint32(int32(v)))
		h.Write(b[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
