package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aleksaelezovic/vgpstore/internal/vgptest"
)

func main() {
	base := flag.String("base", "https://example.org", "base IRI the VGP roots projected IRIs at")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: vgp-scenario-runner [-base <iri>] <scenario-manifest.json>")
		os.Exit(1)
	}
	manifestPath := flag.Arg(0)

	dbPath := "./vgp_scenario_db_temp"
	defer os.RemoveAll(dbPath)

	runner, err := vgptest.NewRunner(dbPath, *base)
	if err != nil {
		log.Fatalf("Failed to create scenario runner: %v", err)
	}
	defer runner.Close()

	if err := runner.RunManifest(manifestPath); err != nil {
		log.Fatalf("Failed to run manifest: %v", err)
	}

	if runner.GetStats().Failed > 0 {
		os.Exit(1)
	}
}
