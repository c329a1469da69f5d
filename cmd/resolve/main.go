package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/internal/cli"
	"tickerlens-api/internal/config"
	"tickerlens-api/internal/svc"
	"tickerlens-api/pkg/journal"
	"tickerlens-api/pkg/resolver"
)

var (
	configFile = flag.String("f", "etc/tickerlens.yaml", "the config file")
	namesFile  = flag.String("file", "", "newline-delimited file of names to resolve")
	jsonOut    = flag.Bool("json", false, "emit JSON output")
	showAll    = flag.Bool("candidates", false, "print the full candidate list per name")
	journalDir = flag.String("journal", "", "write per-name audit records to this directory")
	quietLogs  = flag.Bool("quiet", false, "suppress structured logs")
)

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)
	if *quietLogs {
		logx.Disable()
	} else {
		logx.MustSetup(cfg.Log)
		cli.LogConfigSummary(cfg)
	}

	names := collectNames(flag.Args(), *namesFile)
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "usage: resolve [-f config] [-file names.txt] [-json] [-candidates] \"Security Name\" ...")
		os.Exit(2)
	}

	ctx := svc.NewServiceContext(*cfg)

	results, err := ctx.Engine.ResolveMany(context.Background(), names)
	if err != nil {
		log.Fatalf("resolve: %v", err)
	}

	if *journalDir != "" {
		writeJournal(*journalDir, results)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			log.Fatalf("encode results: %v", err)
		}
		return
	}

	ordered := make([]string, 0, len(results))
	for name := range results {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	unresolved := 0
	for _, name := range ordered {
		res := results[name]
		if res.Accepted() {
			fmt.Printf("%-40s -> %-8s (%s)\n", name, res.Symbol, res.Reason)
		} else {
			unresolved++
			fmt.Printf("%-40s -> %-8s (%s)\n", name, "?", res.Reason)
		}
		if *showAll {
			for _, c := range res.Candidates {
				fmt.Printf("    %-8s %.2f %-12s %s\n", c.Symbol, c.Score, c.Source, c.DisplayName)
			}
		}
	}
	if unresolved > 0 {
		fmt.Printf("%d of %d names unresolved\n", unresolved, len(ordered))
		os.Exit(1)
	}
}

// writeJournal persists one audit record per resolution.
func writeJournal(dir string, results map[string]resolver.Resolution) {
	w := journal.NewWriter(dir)
	for _, res := range results {
		rec := &journal.Record{
			Input:      res.Input,
			Simplified: res.Meta.Simplified,
			Symbol:     res.Symbol,
			Reason:     res.Reason,
			CacheHit:   res.Meta.CacheHit,
			SecondPass: res.Meta.SecondPass,
			Providers:  res.Meta.Providers,
			Variants:   res.Meta.Variants,
		}
		for _, c := range res.Candidates {
			rec.Candidates = append(rec.Candidates, journal.CandidateRecord{
				Symbol: c.Symbol,
				Score:  c.Score,
				Source: c.Source,
				Name:   c.DisplayName,
			})
		}
		if _, err := w.Write(rec); err != nil {
			logx.Errorf("journal write for %q: %v", res.Input, err)
		}
	}
}

// collectNames merges positional arguments with an optional names file,
// skipping blank lines and comments.
func collectNames(args []string, path string) []string {
	names := make([]string, 0, len(args))
	for _, a := range args {
		if strings.TrimSpace(a) != "" {
			names = append(names, strings.TrimSpace(a))
		}
	}
	if path == "" {
		return names
	}
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open names file: %v", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read names file: %v", err)
	}
	return names
}
