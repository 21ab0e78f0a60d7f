// Package benchmark holds throughput benchmarks for the document relay
// hot paths: frame codec, engine merges, registry lookups, fan-out and
// the access gate.
//
// Run with:
//
//	go test -run=^$ -bench=. -benchmem ./internal/tests/benchmark/
package benchmark
