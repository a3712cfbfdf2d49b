package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/google/subcommands"
	"github.com/mswatii/cs2-tracker/internal/models"
	"github.com/mswatii/cs2-tracker/internal/session"
	"github.com/shopspring/decimal"
)

type setupCmd struct {
	webhook string
}

func (*setupCmd) Name() string     { return "setup" }
func (*setupCmd) Synopsis() string { return "configure the Discord webhook alerts are sent to" }
func (*setupCmd) Usage() string {
	return `tracker setup -webhook <url>

  Saves the webhook for the current account. Without an account, an existing
  account using the same webhook is recovered, or a new one is created.
`
}

func (c *setupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.webhook, "webhook", "", "Discord webhook URL.")
}

func (c *setupCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if app == nil {
		return subcommands.ExitFailure
	}
	id, err := app.Session.Setup(ctx, c.webhook)
	if err != nil {
		return app.fail(err, session.MsgSaveFailed)
	}
	fmt.Fprintf(app.Out, "Webhook saved. Your User ID is %s; keep it to recover your account.\n", id)
	return subcommands.ExitSuccess
}

type recoverCmd struct {
	userID  string
	webhook string
}

func (*recoverCmd) Name() string     { return "recover" }
func (*recoverCmd) Synopsis() string { return "use an existing account on this machine" }
func (*recoverCmd) Usage() string {
	return `tracker recover [-id <user id>] [-webhook <url>]

  Looks the account up by user id or, when no id is given, by webhook.
`
}

func (c *recoverCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.userID, "id", "", "User ID of the account.")
	f.StringVar(&c.webhook, "webhook", "", "Discord webhook URL the account uses.")
}

func (c *recoverCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if app == nil {
		return subcommands.ExitFailure
	}
	id, err := app.Session.Recover(ctx, c.userID, c.webhook)
	if err != nil {
		return app.fail(err, session.MsgRecoverFailed)
	}
	fmt.Fprintf(app.Out, "Recovered account %s\n", id)
	return subcommands.ExitSuccess
}

type logoutCmd struct{}

func (*logoutCmd) Name() string             { return "logout" }
func (*logoutCmd) Synopsis() string         { return "forget the account on this machine" }
func (*logoutCmd) Usage() string            { return "tracker logout\n" }
func (*logoutCmd) SetFlags(f *flag.FlagSet) {}

func (c *logoutCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if app == nil {
		return subcommands.ExitFailure
	}
	if err := app.Session.Clear(ctx); err != nil {
		return app.fail(err, "Failed to log out")
	}
	fmt.Fprintln(app.Out, "Logged out")
	return subcommands.ExitSuccess
}

type whoamiCmd struct{}

func (*whoamiCmd) Name() string             { return "whoami" }
func (*whoamiCmd) Synopsis() string         { return "show the current account" }
func (*whoamiCmd) Usage() string            { return "tracker whoami\n" }
func (*whoamiCmd) SetFlags(f *flag.FlagSet) {}

func (c *whoamiCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if app == nil {
		return subcommands.ExitFailure
	}
	id := app.Session.UserID()
	if id == "" {
		fmt.Fprintln(app.Out, "Not logged in. Run `tracker setup -webhook <url>` or `tracker recover`.")
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(app.Out, "User ID: %s\n", id)
	if app.Session.NeedsSetup(ctx) {
		fmt.Fprintln(app.Out, "Please configure your Discord webhook to receive price alerts.")
		return subcommands.ExitSuccess
	}
	if hook, err := app.Session.Webhook(ctx); err == nil {
		fmt.Fprintf(app.Out, "Webhook: %s\n", hook)
	}
	return subcommands.ExitSuccess
}

type rateCmd struct{}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "show the USD to INR rate, or convert amounts" }
func (*rateCmd) Usage() string {
	return `tracker rate [<usd amount>...]

  The rate is fetched at most once per day and cached locally.
`
}
func (*rateCmd) SetFlags(f *flag.FlagSet) {}

func (c *rateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if app == nil {
		return subcommands.ExitFailure
	}
	if f.NArg() == 0 {
		fmt.Fprintf(app.Out, "1 USD = %s INR\n", strconv.FormatFloat(app.Rates.GetRate(ctx), 'f', -1, 64))
		return subcommands.ExitSuccess
	}
	for _, arg := range f.Args() {
		usd, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			fmt.Fprintf(app.errOut(), "%q is not a number\n", arg)
			return subcommands.ExitUsageError
		}
		inr, ok := app.Rates.Convert(ctx, usd)
		if !ok {
			fmt.Fprintf(app.Out, "%s USD = %s\n", arg, models.NoPrice)
			continue
		}
		fmt.Fprintf(app.Out, "%s USD = %s\n", arg, models.FormatMoney(decimal.NewFromInt(inr), models.DisplayCurrency))
	}
	return subcommands.ExitSuccess
}
