package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/mswatii/cs2-tracker/internal/apierror"
	"github.com/mswatii/cs2-tracker/internal/models"
	"github.com/mswatii/cs2-tracker/internal/tracker"
)

func userMessage(err error, fallback string) string {
	return apierror.UserMessage(err, fallback)
}

type listCmd struct {
	sort string
	view string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "show the tracked skins with their status and totals" }
func (*listCmd) Usage() string {
	return `tracker list [-sort <key>] [-view tile|list]

  Loads the watchlist from the backend and prints it in the requested order.
  Sort keys: name-asc, name-desc, price-asc, price-desc, date-newest,
  date-oldest, target-down-asc, target-up-asc.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sort, "sort", "", "Sort key (defaults to DEFAULT_SORT).")
	f.StringVar(&c.view, "view", string(tracker.ViewTile), "Layout: tile or list.")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if app == nil {
		return subcommands.ExitFailure
	}
	if c.sort != "" {
		key, err := tracker.ParseSortKey(c.sort)
		if err != nil {
			fmt.Fprintln(app.errOut(), err)
			return subcommands.ExitUsageError
		}
		app.Trackers.SetSortKey(key)
	}
	app.Trackers.SetViewMode(tracker.ViewMode(c.view))

	if app.Session.UserID() == "" {
		fmt.Fprintln(app.Out, "No account configured. Run `tracker setup -webhook <url>` first.")
		return subcommands.ExitSuccess
	}
	if err := app.Trackers.Load(ctx); err != nil {
		return app.fail(err, "Failed to load trackers")
	}
	printView(app.Out, app.Trackers.View())
	return subcommands.ExitSuccess
}

var statusMark = map[tracker.Highlight]string{
	tracker.HighlightGood:    "+",
	tracker.HighlightBad:     "!",
	tracker.HighlightNeutral: " ",
}

func alertNote(sent bool, at *float64) string {
	if !sent {
		return ""
	}
	if at == nil {
		return " (alert sent)"
	}
	return " (alert sent at " + models.FormatPrice(at) + ")"
}

func printView(w io.Writer, v tracker.View) {
	if len(v.Rows) == 0 {
		fmt.Fprintln(w, "No trackers yet.")
	}

	if v.ViewMode == tracker.ViewList {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\tID\tSKIN\tINTEREST\tPRICE\tDOWN\tUP\tSTATUS")
		for _, r := range v.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				statusMark[r.Highlight], r.ID, r.SkinName, r.Interest,
				models.FormatPrice(r.LastKnownPrice), models.FormatPrice(r.TargetDown),
				models.FormatPrice(r.TargetUp), r.Status)
		}
		tw.Flush()
	} else {
		for _, r := range v.Rows {
			fmt.Fprintf(w, "%s %s [%s]\n", statusMark[r.Highlight], r.SkinName, r.Interest)
			fmt.Fprintf(w, "    id:          %s\n", r.ID)
			fmt.Fprintf(w, "    last price:  %s (%s)\n", models.FormatPrice(r.LastKnownPrice), r.Status)
			fmt.Fprintf(w, "    target down: %s%s\n", models.FormatPrice(r.TargetDown), alertNote(r.DownAlertSent, r.LastDownAlertPrice))
			fmt.Fprintf(w, "    target up:   %s%s\n", models.FormatPrice(r.TargetUp), alertNote(r.UpAlertSent, r.LastUpAlertPrice))
			if r.CreatedAt != nil {
				fmt.Fprintf(w, "    added:       %s\n", r.CreatedAt.Local().Format("02 Jan 2006"))
			}
			if r.Image != "" {
				fmt.Fprintf(w, "    image:       %s\n", r.Image)
			}
			fmt.Fprintf(w, "    listing:     %s\n", r.ListingURL)
		}
	}

	if s := v.Totals.Sell; s != nil {
		fmt.Fprintf(w, "\nTotal Sell Value (After Steam Fees): %s\n", models.FormatMoney(s.Net, models.DisplayCurrency))
		fmt.Fprintf(w, "  Gross: %s  Fees: %s\n", models.FormatMoney(s.Gross, models.DisplayCurrency), models.FormatMoney(s.Fee, models.DisplayCurrency))
	}
	if b := v.Totals.Buy; b != nil {
		fmt.Fprintf(w, "Total Buy Value: %s\n", models.FormatMoney(*b, models.DisplayCurrency))
	}
}

type addCmd struct {
	in tracker.TrackerInput
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "start tracking a skin" }
func (*addCmd) Usage() string {
	return `tracker add -name <skin> [-interest buy|sell] [-down <price>] [-up <price>]

  Creates a tracker for the configured account. Use "tracker search" to find
  the exact market name. Omitted targets are left unset.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in.SkinName, "name", "", "Full market name of the skin, including its wear.")
	f.StringVar(&c.in.Interest, "interest", string(models.InterestSell), "Whether you want to buy or sell.")
	f.StringVar(&c.in.TargetDown, "down", "", "Alert when the price falls to or below this value.")
	f.StringVar(&c.in.TargetUp, "up", "", "Alert when the price rises to or above this value.")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if app == nil {
		return subcommands.ExitFailure
	}
	in := c.in
	if in.SkinName == "" && f.NArg() > 0 {
		in.SkinName = strings.Join(f.Args(), " ")
	}
	created, err := app.Trackers.Create(ctx, in)
	if err != nil {
		return app.fail(err, "Failed to create tracker")
	}
	fmt.Fprintf(app.Out, "Tracking %s (%s)\n", created.SkinName, created.ID)
	return subcommands.ExitSuccess
}

type editCmd struct {
	id       string
	interest string
	down     string
	up       string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change the interest or targets of a tracker" }
func (*editCmd) Usage() string {
	return `tracker edit -id <id> [-interest buy|sell] [-down <price>] [-up <price>]

  Only the given flags change; pass an empty value (-down "") to clear a
  target. The skin of a tracker cannot be changed.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Tracker id, as shown by list.")
	f.StringVar(&c.interest, "interest", "", "New interest: buy or sell.")
	f.StringVar(&c.down, "down", "", "New down target; empty clears it.")
	f.StringVar(&c.up, "up", "", "New up target; empty clears it.")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if app == nil {
		return subcommands.ExitFailure
	}
	if c.id == "" {
		fmt.Fprintln(app.errOut(), "Tracker id is required")
		return subcommands.ExitUsageError
	}
	if err := app.Trackers.Load(ctx); err != nil {
		return app.fail(err, "Failed to load trackers")
	}
	current, ok := app.Trackers.Find(c.id)
	if !ok {
		fmt.Fprintf(app.errOut(), "No tracker with id %s\n", c.id)
		return subcommands.ExitFailure
	}

	in := tracker.InputFor(current)
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "interest":
			in.Interest = c.interest
		case "down":
			in.TargetDown = c.down
		case "up":
			in.TargetUp = c.up
		}
	})

	if _, err := app.Trackers.Update(ctx, c.id, in); err != nil {
		return app.fail(err, "Failed to update tracker")
	}
	fmt.Fprintf(app.Out, "Updated %s\n", current.SkinName)
	return subcommands.ExitSuccess
}

type deleteCmd struct{}

func (*deleteCmd) Name() string             { return "delete" }
func (*deleteCmd) Synopsis() string         { return "stop tracking a skin" }
func (*deleteCmd) Usage() string            { return "tracker delete <id>...\n" }
func (*deleteCmd) SetFlags(f *flag.FlagSet) {}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if app == nil {
		return subcommands.ExitFailure
	}
	if f.NArg() == 0 {
		fmt.Fprintln(app.errOut(), "Tracker id is required")
		return subcommands.ExitUsageError
	}
	for _, id := range f.Args() {
		if err := app.Trackers.Delete(ctx, id); err != nil {
			return app.fail(err, "Failed to delete tracker")
		}
		fmt.Fprintf(app.Out, "Deleted %s\n", id)
	}
	return subcommands.ExitSuccess
}
