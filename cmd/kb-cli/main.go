package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cognicore/chainkb/pkg/chainkb"
	"github.com/cognicore/chainkb/pkg/chainkb/config"
	"github.com/cognicore/chainkb/pkg/chainkb/store/sqlite"
)

func main() {
	var (
		dbPath       = flag.String("db", "", "SQLite database path (optional, in-memory if empty)")
		rulebasePath = flag.String("rulebase", "", "YAML rulebase to preload (optional)")
		exprPath     = flag.String("load", "", "Plain-text expression file to preload (optional)")
		batch        = flag.Int("n", 0, "Batch mode: read N expressions from stdin, then one query, then exit")
	)
	flag.Parse()

	ctx := context.Background()

	engine, cleanup, err := buildEngine(ctx, *dbPath, *rulebasePath, *exprPath)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	scanner := bufio.NewScanner(os.Stdin)

	// Batch mode: N expressions, one query
	if *batch > 0 {
		if err := runBatch(ctx, engine, scanner, *batch); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  ChainKB CLI")
	fmt.Println("  Forward-chaining knowledge base")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Facts: Mother(ANN,BOB)   Rules: Mother(x,y)&Father(y,z) => Grandparent(x,z)")
	fmt.Println("Commands: ask <expr>, list, rules, why <rule>, Ctrl+D to exit")
	fmt.Println()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := execute(ctx, engine, line); err != nil {
			fmt.Println("Error:", err)
		}
	}

	fmt.Println("\nGoodbye!")
}

func runBatch(ctx context.Context, engine *chainkb.Engine, scanner *bufio.Scanner, n int) error {
	for i := 0; i < n && scanner.Scan(); i++ {
		expr := strings.TrimSpace(scanner.Text())
		if expr == "" {
			continue
		}
		if _, err := engine.Tell(ctx, expr); err != nil {
			return fmt.Errorf("expression %d: %w", i+1, err)
		}
	}

	if !scanner.Scan() {
		return scanner.Err()
	}
	query := strings.TrimSpace(scanner.Text())
	matches, err := engine.Ask(query)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	for _, m := range matches {
		fmt.Println(m)
	}
	return nil
}

func execute(ctx context.Context, engine *chainkb.Engine, line string) error {
	switch {
	case line == "list":
		for i, expr := range engine.Display() {
			fmt.Printf("%d. %s\n", i+1, expr)
		}
	case line == "rules":
		for i, expr := range engine.Rules() {
			fmt.Printf("%d. %s\n", i+1, expr)
		}
	case strings.HasPrefix(line, "ask "):
		matches, err := engine.Ask(strings.TrimSpace(strings.TrimPrefix(line, "ask ")))
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Println("No matching facts.")
			return nil
		}
		for i, m := range matches {
			fmt.Printf("%d. %s\n", i+1, m)
		}
	case strings.HasPrefix(line, "why "):
		rule := strings.TrimSpace(strings.TrimPrefix(line, "why "))
		derivations := engine.Derivations(rule)
		if len(derivations) == 0 {
			fmt.Println("No derivations recorded.")
			return nil
		}
		for _, d := range derivations {
			fmt.Printf("%s  %s\n", d.ID, d.Derived)
			fmt.Printf("  rule:    %s\n", d.Rule)
			fmt.Printf("  matched: %s\n", strings.Join(d.Matched, ", "))
		}
	default:
		derived, err := engine.Tell(ctx, line)
		if err != nil {
			return err
		}
		fmt.Println("ok")
		for _, d := range derived {
			fmt.Println("  derived:", d)
		}
	}
	return nil
}

func buildEngine(ctx context.Context, dbPath, rulebasePath, exprPath string) (*chainkb.Engine, func(), error) {
	opts := chainkb.Options{}

	if dbPath != "" {
		st, err := sqlite.Open(ctx, dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		opts.Store = st
	}

	engine := chainkb.New(opts)
	if err := engine.Load(ctx); err != nil {
		engine.Close()
		return nil, nil, fmt.Errorf("replay store: %w", err)
	}

	var preload []string
	if rulebasePath != "" {
		rb, err := config.LoadRulebase(rulebasePath)
		if err != nil {
			engine.Close()
			return nil, nil, fmt.Errorf("load rulebase: %w", err)
		}
		preload = append(preload, rb.Expressions()...)
	}
	if exprPath != "" {
		exprs, err := config.LoadExpressionsFile(exprPath)
		if err != nil {
			engine.Close()
			return nil, nil, fmt.Errorf("load expressions: %w", err)
		}
		preload = append(preload, exprs...)
	}

	for _, expr := range preload {
		if _, err := engine.Tell(ctx, expr); err != nil {
			engine.Close()
			return nil, nil, fmt.Errorf("preload %q: %w", expr, err)
		}
	}

	cleanup := func() {
		engine.Close()
	}

	return engine, cleanup, nil
}
