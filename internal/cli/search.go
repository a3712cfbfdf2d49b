package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/subcommands"
	"github.com/mswatii/cs2-tracker/internal/models"
	"github.com/mswatii/cs2-tracker/internal/search"
	"github.com/shopspring/decimal"
)

type searchCmd struct {
	interactive bool
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "find market names to track" }
func (*searchCmd) Usage() string {
	return `tracker search <query>
tracker search -i

  Lists every wear of the skins matching the query, with the Steam price
  when the market reports one. With -i, queries are read line by line from
  standard input and results are shown once typing pauses.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.interactive, "i", false, "Read queries from standard input as you type.")
}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if app == nil {
		return subcommands.ExitFailure
	}
	if c.interactive {
		if err := app.searchInteractive(ctx); err != nil {
			return app.fail(err, "Search failed")
		}
		return subcommands.ExitSuccess
	}

	query := strings.Join(f.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(app.errOut(), "A search query is required")
		return subcommands.ExitUsageError
	}
	candidates, err := app.Searcher.Search(ctx, query)
	if err != nil {
		return app.fail(err, "Search failed")
	}
	app.printCandidates(ctx, app.Out, candidates)
	return subcommands.ExitSuccess
}

// searchInteractive feeds each input line to a debouncer and prints the
// results that survive. It returns once input ends and the last query has
// been answered.
func (a *App) searchInteractive(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	results := make(chan search.Result)
	d := search.NewDebouncer(ctx, a.Debounce, a.Searcher, func(r search.Result) {
		select {
		case results <- r:
		case <-done:
		}
	})
	defer d.Stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	var last string
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				if strings.TrimSpace(last) == "" {
					return nil
				}
				lines = nil
				continue
			}
			last = line
			d.Submit(line)
		case r := <-results:
			if r.Err != nil {
				fmt.Fprintf(a.Out, "search %q: %s\n", r.Query, userMessage(r.Err, "Search failed"))
			} else if strings.TrimSpace(r.Query) != "" {
				fmt.Fprintf(a.Out, "> %s\n", r.Query)
				a.printCandidates(ctx, a.Out, r.Candidates)
			}
			if lines == nil && r.Query == last {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *App) printCandidates(ctx context.Context, w io.Writer, candidates []models.SearchCandidate) {
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No skins found.")
		return
	}
	for _, c := range candidates {
		price := ""
		if usd, ok := search.PriceOf(c); ok && strings.Contains(c.Price, "$") {
			f, _ := usd.Float64()
			if inr, ok := a.Rates.Convert(ctx, f); ok {
				price = fmt.Sprintf("  %s (~%s)", c.Price, models.FormatMoney(decimal.NewFromInt(inr), models.DisplayCurrency))
			}
		} else if c.Price != "" {
			price = "  " + c.Price
		}
		fmt.Fprintf(w, "%s%s\n", c.Name, price)
	}
}
