package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kereva-dev/attractor/internal/attractor"
	"github.com/kereva-dev/attractor/internal/detect"
	"github.com/kereva-dev/attractor/internal/replay"
)

func main() {
	fixturePath := flag.String("fixture", "", "path to replay fixture JSON")
	primaryKeywords := flag.String("primary-keywords", "", "primary keyword/threshold file")
	primaryCentroids := flag.String("primary-centroids", "", "primary centroid file")
	secondaryKeywords := flag.String("secondary-keywords", "", "secondary keyword/threshold file")
	secondaryCentroids := flag.String("secondary-centroids", "", "secondary centroid file")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture f.json --primary-keywords f [--primary-centroids f] [--secondary-keywords f] [--secondary-centroids f]")
		os.Exit(2)
	}

	store, err := attractor.Load(attractor.BundlePaths{
		Primary:   attractor.Bundle{CentroidFile: *primaryCentroids, KeywordFile: *primaryKeywords},
		Secondary: attractor.Bundle{CentroidFile: *secondaryCentroids, KeywordFile: *secondaryKeywords},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "load bundles: %v\n", err)
		os.Exit(1)
	}

	fixture, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("replaying %q: %d cases\n", fixture.Description, len(fixture.Cases))
	results := replay.Run(detect.New(store), fixture)

	failed := 0
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		}
		fmt.Printf("  [%s] %-16s %s\n", status, r.ID, r.Reason)
	}

	fmt.Printf("%d/%d cases passed\n", len(results)-failed, len(results))
	if failed > 0 {
		os.Exit(1)
	}
}
