package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/williamofai/certifiable-inference/pipeline"
)

func main() {
	var (
		version = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Println("fxc - Fixed-Point Pipeline Compiler v1.0.0")
		fmt.Println("Built with Go", "1.22.2")
		return
	}

	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <src.fxs> <out.fxp>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	srcFile, outFile := args[0], args[1]

	if err := pipeline.CompileFile(srcFile, outFile); err != nil {
		log.Fatalf("compilation failed: %v", err)
	}

	fmt.Printf("Successfully compiled %s -> %s\n", srcFile, outFile)
}
