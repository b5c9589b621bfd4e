// Command import-html extracts fact and rule expressions from an HTML
// page and tells them to a knowledge base. Expressions are taken from
// the text of <li> and <code> elements; anything that does not parse
// is counted and skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/chainkb/pkg/chainkb"
	"github.com/cognicore/chainkb/pkg/chainkb/store/sqlite"
)

func main() {
	var (
		url    = flag.String("url", "", "Page to fetch")
		file   = flag.String("file", "", "Local HTML file (alternative to -url)")
		dbPath = flag.String("db", "", "SQLite database to tell into (optional, in-memory if empty)")
	)
	flag.Parse()

	if *url == "" && *file == "" {
		log.Fatal("-url or -file required")
	}

	body, err := readSource(*url, *file)
	if err != nil {
		log.Fatal(err)
	}

	candidates, err := extractExpressions(body)
	if err != nil {
		log.Fatal("parse html:", err)
	}

	ctx := context.Background()
	opts := chainkb.Options{}
	if *dbPath != "" {
		st, err := sqlite.Open(ctx, *dbPath)
		if err != nil {
			log.Fatal("open store:", err)
		}
		opts.Store = st
	}
	engine := chainkb.New(opts)
	defer engine.Close()
	if err := engine.Load(ctx); err != nil {
		log.Fatal("replay store:", err)
	}

	told, derived, skipped := 0, 0, 0
	for _, expr := range candidates {
		newFacts, err := engine.Tell(ctx, expr)
		if err != nil {
			skipped++
			continue
		}
		told++
		derived += len(newFacts)
	}

	log.Printf("Imported %d expressions (%d derived, %d skipped) from %d candidates",
		told, derived, skipped, len(candidates))
	for i, expr := range engine.Display() {
		fmt.Printf("%d. %s\n", i+1, expr)
	}
}

func readSource(url, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractExpressions walks the HTML tree and collects the text of
// <li> and <code> elements that look like expressions.
func extractExpressions(page string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "li" || n.Data == "code") {
			text := strings.TrimSpace(nodeText(n))
			if strings.Contains(text, "(") && strings.Contains(text, ")") {
				out = append(out, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

func nodeText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}
