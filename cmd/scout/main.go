// Package main provides the rentalscout command line client.
//
// It runs the same search, enrichment and lookup pipeline as the API server,
// in-process, and prints JSON to stdout.
//
// Usage:
//
//	scout search --zip 78704 --enrich
//	scout financials --address "1 Main St, Austin, TX" --beds 3
//	scout zipcode --city Austin --state TX
package main

func main() {
	Execute()
}
