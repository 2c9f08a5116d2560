// Command tally ranks bug sightings by building and prints a bar chart.
//
// It reads a JSON array of sightings, or the {"sightings": [...]} body
// returned by GET /api/sightings. Without -in it ranks the demo seed.
//
// Usage:
//
//	go run ./cmd/tally -in sightings.json -width 40
//	curl -s localhost:8080/api/sightings | go run ./cmd/tally -in -
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/bugwatch/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("tally", flag.ContinueOnError)
	in := fs.String("in", "", `sightings JSON file ("-" for stdin); empty ranks the demo seed`)
	width := fs.Int("width", 40, "width of the longest bar in characters")
	at := fs.String("now", "", "RFC3339 time the demo seed is relative to (default: current time)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *width < 1 {
		return fmt.Errorf("-width must be positive, got %d", *width)
	}

	if *at != "" {
		now, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parsing -now: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(now))
		defer domain.SetClock(nil)
	}

	sightings, err := load(*in, stdin)
	if err != nil {
		return err
	}

	render(stdout, domain.DefaultCatalog(), domain.Summarize(sightings), *width)
	return nil
}

func load(path string, stdin io.Reader) ([]domain.Sighting, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return domain.DemoSightings(domain.Now()), nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading sightings: %w", err)
	}
	return parseSightings(data)
}

// parseSightings accepts a bare array or an API response object.
func parseSightings(data []byte) ([]domain.Sighting, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []domain.Sighting
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parsing sightings: %w", err)
		}
		return list, nil
	}

	var body struct {
		Sightings []domain.Sighting `json:"sightings"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("parsing sightings: %w", err)
	}
	return body.Sightings, nil
}

func render(w io.Writer, catalog *domain.Catalog, dist domain.Distribution, width int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range dist.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Location, catalog.Name(e.Location), e.Count, bar(e.Count, dist.TopCount, width))
	}
	tw.Flush() //nolint:errcheck // stdout

	noun := "sightings"
	if dist.Total == 1 {
		noun = "sighting"
	}
	fmt.Fprintf(w, "total: %s %s across %d locations\n", humanize.Comma(int64(dist.Total)), noun, len(dist.Entries))
}

// bar scales the page's percentage bar width to a run of block characters.
func bar(count, top, width int) string {
	pct := domain.BarWidth(count, top)
	n := int(math.Round(float64(width) * float64(pct) / 100))
	return strings.Repeat("#", max(1, n))
}
