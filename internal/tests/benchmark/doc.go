// Package benchmark provides performance benchmarks for omfamily.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Compare the default and strict insert paths:
//
//	go test -bench=BenchmarkGetOrCreate -benchmem -count=5 ./internal/tests/benchmark/... | tee new.txt
//	benchstat old.txt new.txt
package benchmark
