package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/kereva-dev/attractor/internal/attractor"
	"github.com/kereva-dev/attractor/internal/memory"
)

// #region main

func main() {
	primaryKeywords := flag.String("primary-keywords", "", "primary keyword/threshold file")
	primaryCentroids := flag.String("primary-centroids", "", "primary centroid file")
	secondaryKeywords := flag.String("secondary-keywords", "", "secondary keyword/threshold file")
	secondaryCentroids := flag.String("secondary-centroids", "", "secondary centroid file")
	dbPath := flag.String("db", "", "outcome database to summarize")
	last := flag.Int("last", 20, "show N most recent outcomes")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	if *primaryKeywords == "" && *primaryCentroids == "" && *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect [--primary-keywords f --primary-centroids f --secondary-keywords f --secondary-centroids f] [--db path] [--last N] [--json]")
		os.Exit(2)
	}

	if *primaryKeywords != "" || *primaryCentroids != "" {
		store, err := attractor.Load(attractor.BundlePaths{
			Primary:   attractor.Bundle{CentroidFile: *primaryCentroids, KeywordFile: *primaryKeywords},
			Secondary: attractor.Bundle{CentroidFile: *secondaryCentroids, KeywordFile: *secondaryKeywords},
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "load bundles: %v\n", err)
			os.Exit(1)
		}
		printSets(store, *jsonOut)
	}

	if *dbPath != "" {
		if err := printOutcomes(*dbPath, *last, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region sets

func printSets(store *attractor.Store, jsonOut bool) {
	for _, source := range []attractor.SourceSet{attractor.SetPrimary, attractor.SetSecondary} {
		summaries := store.Get(source).Summaries()
		if jsonOut {
			out, _ := json.MarshalIndent(map[string]any{"set": source, "attractors": summaries}, "", "  ")
			fmt.Println(string(out))
			continue
		}
		fmt.Printf("%s set (%d attractors):\n", source, len(summaries))
		for _, s := range summaries {
			fmt.Printf("  rank=%-3d %-24s kind=%-8s keywords=%-3d dim=%-4d kw_thresh=%.1f emb_thresh=%.2f\n",
				s.Rank, s.ID, s.Kind, s.KeywordCount, s.CentroidDim, s.KeywordThreshold, s.EmbeddingThreshold)
		}
	}
}

// #endregion sets

// #region outcomes

func printOutcomes(dbPath string, last int, jsonOut bool) error {
	store, err := memory.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.Recent(last)
	if err != nil {
		return err
	}
	rates, err := store.HitRates()
	if err != nil {
		return err
	}

	if jsonOut {
		out, _ := json.MarshalIndent(map[string]any{"outcomes": rows, "hit_rates": rates}, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("last %d steering outcomes:\n", len(rows))
	for _, r := range rows {
		fmt.Printf("  %s attempts=%d attracted=%-5v score=%-6.2f triggered=%v\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.Attempts, r.IsAttracted, r.KeywordScore, r.Triggered)
	}

	fmt.Println("attractor hit rates (decay-weighted):")
	for _, hr := range rates {
		fmt.Printf("  %-32s weight=%.3f count=%d\n", hr.AttractorID, hr.Weight, hr.Count)
	}
	return nil
}

// #endregion outcomes
