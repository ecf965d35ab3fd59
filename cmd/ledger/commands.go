package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/honeynil/bank-ledger/internal/app"
	"github.com/honeynil/bank-ledger/internal/config"
	"github.com/honeynil/bank-ledger/internal/database"
	logging "github.com/honeynil/bank-ledger/internal/infrastructure/observability"
	"github.com/honeynil/bank-ledger/internal/models"
	"github.com/honeynil/bank-ledger/internal/observability"
	service "github.com/honeynil/bank-ledger/internal/services"
	"github.com/honeynil/bank-ledger/internal/validation"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
)

// action runs a parsed command against the wired app.
type action func(ctx context.Context, a *app.App) (any, error)

type command struct {
	usage string
	bind  func(fs *flag.FlagSet) action
}

var commands = map[string]command{
	"setup":       {"setup [--enforce-user-uniqueness]", setupCmd},
	"add-user":    {"add-user --name \"Name Surname\" [--birth-day YYYY-MM-DD] [--accounts TEXT]", addUserCmd},
	"add-bank":    {"add-bank --name NAME", addBankCmd},
	"add-account": {"add-account --user ID --bank ID --type credit|debit --number NUMBER --currency CODE [--amount N] [--status S]", addAccountCmd},
	"transfer":    {"transfer --from ID --to ID --amount N [--currency CODE] [--at DATETIME]", transferCmd},
	"report":      {"report [--user ID] [--days N]", reportCmd},
	"cleanup":     {"cleanup", cleanupCmd},
	"history":     {"history --user ID [--days N]", historyCmd},
	"token":       {"token --subject NAME [--ttl DURATION] | token --revoke TOKEN", tokenCmd},
	"audit":       {"audit", auditCmd},
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stdout, "unknown command %q\n", args[0])
		printUsage(stdout)
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	act := cmd.bind(fs)
	if err := fs.Parse(args[1:]); err != nil {
		render(stdout, nil, fmt.Errorf("%w: %v, usage: ledger %s", pkgerrors.ErrInvalidInput, err, cmd.usage))
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		return render(stdout, nil, err)
	}
	shutdownTracing := observability.Setup(ctx, "bank-ledger-cli", cfg)
	defer shutdownTracing(context.Background())
	// stdout carries the result envelope
	slog.SetDefault(logging.NewLogger(os.Stderr, cfg.Logging))

	a, err := app.New(ctx, cfg)
	if err != nil {
		return render(stdout, nil, err)
	}
	defer a.Close()

	data, err := act(ctx, a)
	return render(stdout, data, err)
}

func render(w io.Writer, data any, err error) int {
	res, code := models.OK(data), 0
	if err != nil {
		slog.Debug("command failed", "error", err)
		res, code = models.Failed(err.Error()), 1
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(res)
	return code
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: ledger <command> [flags]")
	for _, name := range names {
		fmt.Fprintln(w, "  "+commands[name].usage)
	}
}

func setupCmd(fs *flag.FlagSet) action {
	unique := fs.Bool("enforce-user-uniqueness", false, "add UNIQUE(name, surname) to User")
	return func(ctx context.Context, a *app.App) (any, error) {
		if err := database.Setup(ctx, a.DB, a.Dialect, database.SchemaOptions{EnforceUserUniqueness: *unique}); err != nil {
			return nil, err
		}
		return map[string]any{"user_uniqueness": *unique}, nil
	}
}

func addUserCmd(fs *flag.FlagSet) action {
	var in validation.UserInput
	fs.StringVar(&in.FullName, "name", "", "full name, at least two words")
	fs.StringVar(&in.BirthDay, "birth-day", "", "YYYY-MM-DD")
	fs.StringVar(&in.Accounts, "accounts", "", "free-text account list")
	return func(ctx context.Context, a *app.App) (any, error) {
		n, err := a.Ledger.AddUsers(ctx, in)
		if err != nil {
			return nil, err
		}
		return map[string]int{"created": n}, nil
	}
}

func addBankCmd(fs *flag.FlagSet) action {
	var in validation.BankInput
	fs.StringVar(&in.Name, "name", "", "bank name")
	return func(ctx context.Context, a *app.App) (any, error) {
		n, err := a.Ledger.AddBanks(ctx, in)
		if err != nil {
			return nil, err
		}
		return map[string]int{"created": n}, nil
	}
}

func addAccountCmd(fs *flag.FlagSet) action {
	var in validation.AccountInput
	fs.Int64Var(&in.UserID, "user", 0, "owner user id")
	fs.Int64Var(&in.BankID, "bank", 0, "bank id")
	fs.StringVar(&in.Type, "type", "", "credit or debit")
	fs.StringVar(&in.AccountNumber, "number", "", "account number")
	fs.StringVar(&in.Currency, "currency", "", "ISO currency code")
	fs.StringVar(&in.Amount, "amount", "0", "opening balance")
	fs.StringVar(&in.Status, "status", "", "gold, silver or platinum")
	return func(ctx context.Context, a *app.App) (any, error) {
		n, err := a.Ledger.AddAccounts(ctx, in)
		if err != nil {
			return nil, err
		}
		return map[string]int{"created": n}, nil
	}
}

func transferCmd(fs *flag.FlagSet) action {
	from := fs.Int64("from", 0, "sender account id")
	to := fs.Int64("to", 0, "receiver account id")
	amount := fs.String("amount", "", "amount in --currency")
	currencyCode := fs.String("currency", "", "currency of amount, defaults to the sender account currency")
	at := fs.String("at", "", "transfer time, defaults to now")
	return func(ctx context.Context, a *app.App) (any, error) {
		value, err := validation.ParsePositiveAmount(*amount)
		if err != nil {
			return nil, err
		}
		when, err := validation.ParseDateTime(*at, time.Now())
		if err != nil {
			return nil, err
		}
		return a.Ledger.Transfer(ctx, service.TransferRequest{
			SenderID:   *from,
			ReceiverID: *to,
			Amount:     value,
			Currency:   *currencyCode,
			DateTime:   when,
		})
	}
}

type report struct {
	Discounts     map[int64]int        `json:"discounts"`
	Debtors       []string             `json:"debtors"`
	RichestBank   string               `json:"richest_bank,omitempty"`
	OldestClient  string               `json:"oldest_client_bank,omitempty"`
	TopSenderBank string               `json:"top_sender_bank,omitempty"`
	Cleanup       models.CleanupResult `json:"cleanup"`
	UserHistory   []models.Transaction `json:"user_transactions"`
	HistoryUserID int64                `json:"history_user_id"`
	HistoryDays   int                  `json:"history_days"`
}

// reportCmd runs every analytics query in turn. Empty single-value lookups
// are left out rather than failing the report.
func reportCmd(fs *flag.FlagSet) action {
	userID := fs.Int64("user", 1, "user whose transactions are listed")
	days := fs.Int("days", service.DefaultHistoryDays, "history window in days")
	return func(ctx context.Context, a *app.App) (any, error) {
		var (
			r   = report{HistoryUserID: *userID, HistoryDays: *days}
			err error
		)
		if r.Discounts, err = a.Analytics.AssignRandomDiscounts(ctx); err != nil {
			return nil, err
		}
		if r.Debtors, err = a.Analytics.UsersWithDebts(ctx); err != nil {
			return nil, err
		}
		for _, lookup := range []struct {
			dst *string
			fn  func(context.Context) (string, error)
		}{
			{&r.RichestBank, a.Analytics.RichestBank},
			{&r.OldestClient, a.Analytics.BankWithOldestClient},
			{&r.TopSenderBank, a.Analytics.BankWithMostUniqueSenders},
		} {
			name, err := lookup.fn(ctx)
			if err != nil && !errors.Is(err, pkgerrors.ErrNoData) {
				return nil, err
			}
			*lookup.dst = name
		}
		if r.Cleanup, err = a.Analytics.DeleteIncomplete(ctx); err != nil {
			return nil, err
		}
		r.UserHistory, err = a.Analytics.UserTransactions(ctx, *userID, *days)
		if err != nil && !errors.Is(err, pkgerrors.ErrUserNotFound) {
			return nil, err
		}
		if r.UserHistory == nil {
			r.UserHistory = []models.Transaction{}
		}
		return r, nil
	}
}

func cleanupCmd(*flag.FlagSet) action {
	return func(ctx context.Context, a *app.App) (any, error) {
		return a.Analytics.DeleteIncomplete(ctx)
	}
}

func historyCmd(fs *flag.FlagSet) action {
	userID := fs.Int64("user", 0, "user id")
	days := fs.Int("days", service.DefaultHistoryDays, "window in days")
	return func(ctx context.Context, a *app.App) (any, error) {
		return a.Analytics.UserTransactions(ctx, *userID, *days)
	}
}

func tokenCmd(fs *flag.FlagSet) action {
	subject := fs.String("subject", "", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	revoke := fs.String("revoke", "", "token to revoke")
	return func(ctx context.Context, a *app.App) (any, error) {
		if a.Tokens == nil {
			return nil, errors.New("JWT_SECRET is not set")
		}
		if *revoke != "" {
			if err := a.Tokens.Revoke(ctx, strings.TrimSpace(*revoke)); err != nil {
				return nil, err
			}
			return map[string]bool{"revoked": true}, nil
		}
		token, err := a.Tokens.Issue(*subject, *ttl)
		if err != nil {
			return nil, err
		}
		return map[string]string{"token": token}, nil
	}
}

func auditCmd(*flag.FlagSet) action {
	return func(ctx context.Context, a *app.App) (any, error) {
		consumer, err := a.NewAuditConsumer()
		if err != nil {
			return nil, err
		}
		defer consumer.Close()

		slog.Info("audit consumer started", "topic", a.Config.Kafka.Topic, "group", a.Config.Kafka.GroupID)
		if err := consumer.Consume(ctx); err != nil {
			return nil, err
		}
		return map[string]string{"audit": "stopped"}, nil
	}
}
