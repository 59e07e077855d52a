package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aleksaelezovic/vgpstore/internal/encoding"
	"github.com/aleksaelezovic/vgpstore/internal/pangenome"
	"github.com/aleksaelezovic/vgpstore/internal/server"
	"github.com/aleksaelezovic/vgpstore/internal/sparql/executor"
	"github.com/aleksaelezovic/vgpstore/internal/sparql/optimizer"
	"github.com/aleksaelezovic/vgpstore/internal/sparql/parser"
	"github.com/aleksaelezovic/vgpstore/internal/storage"
	"github.com/aleksaelezovic/vgpstore/pkg/rdf"
	"github.com/aleksaelezovic/vgpstore/pkg/store"
	"github.com/aleksaelezovic/vgpstore/pkg/vgp"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: vgpstore <command> [args]")
		fmt.Println("Commands:")
		fmt.Println("  demo            - Run a demo with sample data")
		fmt.Println("  query <q>       - Execute a SPARQL query")
		fmt.Println("  serve [addr]    - Start HTTP SPARQL endpoint (default: localhost:8080)")
		fmt.Println("  graph -gfa <file> [-base <iri>] [-badger <dir>] [-pattern s,p,o] - Project a pangenome as RDF quads")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "demo":
		runDemo()
	case "query":
		if len(os.Args) < 3 {
			fmt.Println("Usage: vgpstore query <sparql-query>")
			os.Exit(1)
		}
		runQuery(os.Args[2])
	case "serve":
		addr := "localhost:8080"
		if len(os.Args) >= 3 {
			addr = os.Args[2]
		}
		runServer(addr)
	case "graph":
		runGraph(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func runDemo() {
	fmt.Println("=== vgpstore RDF Triplestore Demo ===")
	fmt.Println()

	// Create storage
	dbPath := "./vgpstore_data"
	fmt.Printf("Opening database at: %s\n", dbPath)

	badgerStorage, err := storage.NewBadgerStorage(dbPath)
	if err != nil {
		log.Fatalf("Failed to create storage: %v", err)
	}
	defer badgerStorage.Close()

	// Create triplestore
	tripleStore := store.NewTripleStore(badgerStorage, encoding.NewTermEncoder(), encoding.NewTermDecoder())
	fmt.Println("Triplestore initialized")
	fmt.Println()

	// Insert sample data
	fmt.Println("Inserting sample data...")

	// Create some example triples
	alice := rdf.NewNamedNode("http://example.org/alice")
	bob := rdf.NewNamedNode("http://example.org/bob")
	carol := rdf.NewNamedNode("http://example.org/carol")

	knows := rdf.NewNamedNode("http://xmlns.com/foaf/0.1/knows")
	name := rdf.NewNamedNode("http://xmlns.com/foaf/0.1/name")
	age := rdf.NewNamedNode("http://xmlns.com/foaf/0.1/age")

	// Insert triples
	triples := []*rdf.Triple{
		rdf.NewTriple(alice, name, rdf.NewLiteral("Alice")),
		rdf.NewTriple(alice, age, rdf.NewIntegerLiteral(30)),
		rdf.NewTriple(alice, knows, bob),

		rdf.NewTriple(bob, name, rdf.NewLiteral("Bob")),
		rdf.NewTriple(bob, age, rdf.NewIntegerLiteral(25)),
		rdf.NewTriple(bob, knows, carol),

		rdf.NewTriple(carol, name, rdf.NewLiteral("Carol")),
		rdf.NewTriple(carol, age, rdf.NewIntegerLiteral(28)),
	}

	for _, triple := range triples {
		if err := tripleStore.InsertTriple(triple); err != nil {
			log.Fatalf("Failed to insert triple: %v", err)
		}
		fmt.Printf("  ✓ %s\n", triple)
	}

	// Insert some quads with named graphs
	fmt.Println("\nInserting data into named graphs...")
	graph1 := rdf.NewNamedNode("http://example.org/graph1")
	graph2 := rdf.NewNamedNode("http://example.org/graph2")

	quads := []*rdf.Quad{
		rdf.NewQuad(alice, name, rdf.NewLiteral("Alice in Graph1"), graph1),
		rdf.NewQuad(bob, name, rdf.NewLiteral("Bob in Graph1"), graph1),
		rdf.NewQuad(alice, name, rdf.NewLiteral("Alice in Graph2"), graph2),
		rdf.NewQuad(carol, name, rdf.NewLiteral("Carol in Graph2"), graph2),
	}

	for _, quad := range quads {
		if err := tripleStore.InsertQuad(quad); err != nil {
			log.Fatalf("Failed to insert quad: %v", err)
		}
		fmt.Printf("  ✓ Quad in graph <%s>: %s %s %s\n",
			quad.Graph.(*rdf.NamedNode).IRI,
			formatTerm(quad.Subject),
			formatTerm(quad.Predicate),
			formatTerm(quad.Object))
	}

	// Count triples
	count, err := tripleStore.Count()
	if err != nil {
		log.Fatalf("Failed to count triples: %v", err)
	}
	fmt.Printf("\nTotal triples stored: %d\n", count)

	// Query example
	fmt.Println()
	fmt.Println("=== Querying Data ===")
	fmt.Println()

	sparqlQuery := `
		SELECT ?person ?name ?age
		WHERE {
			?person <http://xmlns.com/foaf/0.1/name> ?name .
			?person <http://xmlns.com/foaf/0.1/age> ?age .
		}
	`

	fmt.Printf("Query:\n%s\n", sparqlQuery)

	// Parse query
	p := parser.NewParser(sparqlQuery)
	query, err := p.Parse()
	if err != nil {
		log.Fatalf("Failed to parse query: %v", err)
	}
	fmt.Println("✓ Query parsed successfully")

	// Optimize query
	stats := &optimizer.Statistics{TotalTriples: count}
	opt := optimizer.NewOptimizer(stats)
	optimizedQuery, err := opt.Optimize(query)
	if err != nil {
		log.Fatalf("Failed to optimize query: %v", err)
	}
	fmt.Println("✓ Query optimized successfully")

	// Execute query
	exec := executor.NewExecutor(tripleStore)
	result, err := exec.Execute(optimizedQuery)
	if err != nil {
		log.Fatalf("Failed to execute query: %v", err)
	}
	fmt.Println("✓ Query executed successfully")
	fmt.Println()

	// Display results
	fmt.Println("Results:")
	if selectResult, ok := result.(*executor.SelectResult); ok {
		// Print header
		fmt.Print("| ")
		if selectResult.Variables != nil {
			for _, v := range selectResult.Variables {
				fmt.Printf("%-20s | ", v.Name)
			}
		}
		fmt.Println()
		fmt.Println("|" + "----------------------|" + "----------------------|" + "----------------------|")

		// Print rows
		for _, binding := range selectResult.Bindings {
			fmt.Print("| ")
			if selectResult.Variables != nil {
				for _, v := range selectResult.Variables {
					if term, exists := binding.Vars[v.Name]; exists {
						fmt.Printf("%-20s | ", formatTerm(term))
					} else {
						fmt.Printf("%-20s | ", "")
					}
				}
			}
			fmt.Println()
		}

		fmt.Printf("\nFound %d results\n", len(selectResult.Bindings))
	}

	fmt.Println("\n=== Demo Complete ===")
}

func runQuery(sparqlQuery string) {
	// Open existing database
	dbPath := "./vgpstore_data"
	badgerStorage, err := storage.NewBadgerStorage(dbPath)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer badgerStorage.Close()

	tripleStore := store.NewTripleStore(badgerStorage, encoding.NewTermEncoder(), encoding.NewTermDecoder())

	// Parse query
	p := parser.NewParser(sparqlQuery)
	query, err := p.Parse()
	if err != nil {
		log.Fatalf("Failed to parse query: %v", err)
	}

	// Get statistics
	count, _ := tripleStore.Count()
	stats := &optimizer.Statistics{TotalTriples: count}

	// Optimize query
	opt := optimizer.NewOptimizer(stats)
	optimizedQuery, err := opt.Optimize(query)
	if err != nil {
		log.Fatalf("Failed to optimize query: %v", err)
	}

	// Execute query
	exec := executor.NewExecutor(tripleStore)
	result, err := exec.Execute(optimizedQuery)
	if err != nil {
		log.Fatalf("Failed to execute query: %v", err)
	}

	// Display results
	if selectResult, ok := result.(*executor.SelectResult); ok {
		fmt.Println("Results:")
		for _, binding := range selectResult.Bindings {
			for varName, term := range binding.Vars {
				fmt.Printf("  %s = %s\n", varName, formatTerm(term))
			}
			fmt.Println()
		}
	} else if askResult, ok := result.(*executor.AskResult); ok {
		fmt.Printf("Result: %t\n", askResult.Result)
	} else if constructResult, ok := result.(*executor.ConstructResult); ok {
		fmt.Printf("Constructed %d triples:\n", len(constructResult.Triples))
		for _, triple := range constructResult.Triples {
			// Format as N-Triples
			fmt.Printf("<%s> <%s> ", triple.Subject.Value, triple.Predicate.Value)
			if triple.Object.Type == "iri" {
				fmt.Printf("<%s>", triple.Object.Value)
			} else if triple.Object.Type == "literal" {
				fmt.Printf("\"%s\"", triple.Object.Value)
			} else {
				fmt.Printf("_:%s", triple.Object.Value)
			}
			fmt.Println(" .")
		}
	}
}

func runServer(addr string) {
	// Open existing database or create new one
	dbPath := "./vgpstore_data"
	fmt.Printf("Opening database at: %s\n", dbPath)

	badgerStorage, err := storage.NewBadgerStorage(dbPath)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer badgerStorage.Close()

	tripleStore := store.NewTripleStore(badgerStorage, encoding.NewTermEncoder(), encoding.NewTermDecoder())

	// Get current count
	count, _ := tripleStore.Count()
	fmt.Printf("Database loaded with %d triples\n", count)

	// Create and start server
	srv := server.NewServer(tripleStore, addr)
	fmt.Printf("\n🚀 vgpstore SPARQL endpoint starting...\n")
	fmt.Printf("   Endpoint: http://%s/sparql\n", addr)
	fmt.Printf("   Web UI:   http://%s/\n\n", addr)
	fmt.Printf("Press Ctrl+C to stop\n\n")

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runGraph loads a GFA pangenome (in-memory by default, or onto a badger
// directory with -badger) and prints the quads the VGP projects for the
// given pattern, bypassing the SPARQL parser/executor entirely.
func runGraph(args []string) {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	gfaPath := fs.String("gfa", "", "GFA-like pangenome file to load (required)")
	base := fs.String("base", "https://example.org", "base IRI the VGP roots projected IRIs at")
	badgerDir := fs.String("badger", "", "use a badger-backed pangenome at this directory instead of in-memory")
	pattern := fs.String("pattern", "", "optional s,p,o pattern of full IRIs; empty components are unbound (e.g. ,http://www.w3.org/1999/02/22-rdf-syntax-ns#type,http://biohackathon.org/resource/vg#Node)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *gfaPath == "" {
		fmt.Println("Usage: vgpstore graph -gfa <file> [-base <iri>] [-badger <dir>] [-pattern s,p,o]")
		os.Exit(1)
	}

	gfaFile, err := os.Open(*gfaPath) // #nosec G304 - operator-supplied CLI argument
	if err != nil {
		log.Fatalf("Failed to open gfa file: %v", err)
	}
	defer gfaFile.Close()

	var graph vgp.Graph
	if *badgerDir != "" {
		bg, err := pangenome.OpenBadgerGraph(*badgerDir)
		if err != nil {
			log.Fatalf("Failed to open pangenome: %v", err)
		}
		defer bg.Close()
		if err := bg.LoadGFA(gfaFile); err != nil {
			log.Fatalf("Failed to load gfa file: %v", err)
		}
		graph = bg
	} else {
		mg, err := pangenome.LoadMemGraphFromGFA(gfaFile)
		if err != nil {
			log.Fatalf("Failed to load gfa file: %v", err)
		}
		graph = mg
	}

	projector := vgp.NewProjector(*base, graph)
	s, p, o := parsePatternArg(*pattern)

	it := projector.QuadsForPattern(s, p, o, rdf.NewDefaultGraph())
	defer it.Close()

	count := 0
	for it.Next() {
		fmt.Println(it.Quad())
		count++
	}
	if err := it.Err(); err != nil {
		log.Fatalf("Graph I/O error: %v", err)
	}
	fmt.Printf("\n%d quads\n", count)
}

// parsePatternArg decodes a "s,p,o" CLI argument into VGP pattern terms.
// Empty components are unbound; "_:name" is a blank node; anything else
// is treated as an IRI.
func parsePatternArg(arg string) (subject, predicate, object rdf.Term) {
	if arg == "" {
		return nil, nil, nil
	}
	parts := strings.SplitN(arg, ",", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	terms := make([]rdf.Term, 3)
	for i, part := range parts {
		switch {
		case part == "":
			terms[i] = nil
		case strings.HasPrefix(part, "_:"):
			terms[i] = rdf.NewBlankNode(strings.TrimPrefix(part, "_:"))
		default:
			terms[i] = rdf.NewNamedNode(part)
		}
	}
	return terms[0], terms[1], terms[2]
}

func formatTerm(term rdf.Term) string {
	switch t := term.(type) {
	case *rdf.NamedNode:
		// Return just the local name if possible
		iri := t.IRI
		if idx := len(iri) - 1; idx >= 0 {
			for i := idx; i >= 0; i-- {
				if iri[i] == '/' || iri[i] == '#' {
					return iri[i+1:]
				}
			}
		}
		return iri
	case *rdf.Literal:
		return t.Value
	default:
		return term.String()
	}
}
