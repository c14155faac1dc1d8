// Package certifiable implements deterministic fixed-point neural-network
// inference for safety-critical systems.
//
// Every numeric operation uses Q16.16 fixed-point arithmetic in 32-bit
// containers with 64-bit widened intermediates. There is no floating point,
// no SIMD, and no data-dependent branching in the execution path, so a given
// input produces bit-identical output on every platform, compiler, and
// optimization level.
//
// # Architecture Overview
//
// The engine consists of several key components:
//
//   - fixed: Q16.16 scalar arithmetic with round-to-nearest and saturation
//   - mat: matrix kernels (GEMM, convolution, pooling, activations) over
//     caller-owned storage
//   - table: deterministic fixed-size hash table for model metadata
//   - pipeline: pre-planned layer graphs, arena allocation, serialization,
//     and a text compiler
//
// # Safety Characteristics
//
//   - Zero-allocation execution: all buffers planned before the first run
//   - No partial writes: a rejected operation leaves its output untouched
//   - Explicit status codes: every failure mode is a defined return value
//   - Address independence: output bits do not depend on buffer placement
//
// # Basic Usage
//
//	// Compile a pipeline description
//	fxc examples/classifier.fxs classifier.fxp
//
//	// Load and execute
//	plan, err := pipeline.LoadFile("classifier.fxp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine, err := pipeline.NewEngine(plan)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	output := make([]fixed.Fixed, plan.OutLen())
//	rows, cols, err := engine.Run(input, output)
//
// # Package Structure
//
//   - fixed: scalar Q16.16 primitives
//   - mat: deterministic matrix and tensor kernels
//   - table: deterministic keyed storage
//   - pipeline: plans, arenas, serialization, compilation
//   - cmd: command-line tools (fxc, fxrun, fxverify)
package certifiable
