package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/bank-ledger/internal/infrastructure/observability"
	"github.com/honeynil/bank-ledger/internal/models"
	"github.com/honeynil/bank-ledger/internal/repository"
	"github.com/honeynil/bank-ledger/internal/validation"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "ledger-service"

type CurrencyConverter interface {
	Convert(ctx context.Context, from, to string, amount decimal.Decimal) (decimal.Decimal, error)
}

// EventPublisher delivers committed transfers to downstream consumers.
type EventPublisher interface {
	PublishTransfer(ctx context.Context, event models.TransferEvent) error
}

type nopPublisher struct{}

func (nopPublisher) PublishTransfer(context.Context, models.TransferEvent) error { return nil }

// TransferRequest moves Amount expressed in Currency from SenderID to
// ReceiverID. Empty Currency means the sender account currency, zero
// DateTime means now.
type TransferRequest struct {
	SenderID   int64
	ReceiverID int64
	Amount     decimal.Decimal
	Currency   string
	DateTime   time.Time
}

type LedgerService struct {
	store     repository.Store
	converter CurrencyConverter
	events    EventPublisher
	now       func() time.Time
}

func NewLedgerService(store repository.Store, converter CurrencyConverter, events EventPublisher) *LedgerService {
	if events == nil {
		events = nopPublisher{}
	}
	return &LedgerService{
		store:     store,
		converter: converter,
		events:    events,
		now:       time.Now,
	}
}

func (s *LedgerService) AddUsers(ctx context.Context, inputs ...validation.UserInput) (int, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "AddUsers", trace.WithAttributes(attribute.Int("count", len(inputs))))
	defer span.End()

	users := make([]*models.User, 0, len(inputs))
	for _, in := range inputs {
		user, err := validation.NewUser(in)
		if err != nil {
			span.SetStatus(codes.Error, "invalid user")
			slog.Warn("rejected user", "full_name", in.FullName, "error", err)
			return 0, err
		}
		users = append(users, user)
	}

	err := s.store.InTx(ctx, "AddUsers", func(r repository.Repositories) error {
		for _, user := range users {
			if err := r.Users().Create(ctx, user); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add users")
		return 0, err
	}

	slog.Info("users added", "count", len(users))
	return len(users), nil
}

func (s *LedgerService) AddBanks(ctx context.Context, inputs ...validation.BankInput) (int, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "AddBanks", trace.WithAttributes(attribute.Int("count", len(inputs))))
	defer span.End()

	banks := make([]*models.Bank, 0, len(inputs))
	for _, in := range inputs {
		bank, err := validation.NewBank(in)
		if err != nil {
			span.SetStatus(codes.Error, "invalid bank")
			return 0, err
		}
		banks = append(banks, bank)
	}

	err := s.store.InTx(ctx, "AddBanks", func(r repository.Repositories) error {
		for _, bank := range banks {
			if err := r.Banks().Create(ctx, bank); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add banks")
		return 0, err
	}

	slog.Info("banks added", "count", len(banks))
	return len(banks), nil
}

func (s *LedgerService) AddAccounts(ctx context.Context, inputs ...validation.AccountInput) (int, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "AddAccounts", trace.WithAttributes(attribute.Int("count", len(inputs))))
	defer span.End()

	accounts := make([]*models.Account, 0, len(inputs))
	for _, in := range inputs {
		acc, err := validation.NewAccount(in)
		if err != nil {
			span.SetStatus(codes.Error, "invalid account")
			slog.Warn("rejected account", "account_number", in.AccountNumber, "error", err)
			return 0, err
		}
		accounts = append(accounts, acc)
	}

	err := s.store.InTx(ctx, "AddAccounts", func(r repository.Repositories) error {
		for _, acc := range accounts {
			// foreign keys are not always enforced by the engine
			if _, err := r.Users().GetByID(ctx, acc.UserID); err != nil {
				return err
			}
			if _, err := r.Banks().GetByID(ctx, acc.BankID); err != nil {
				return err
			}
			if err := r.Accounts().Create(ctx, acc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add accounts")
		return 0, err
	}

	slog.Info("accounts added", "count", len(accounts))
	return len(accounts), nil
}

func (s *LedgerService) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	var acc *models.Account
	err := s.store.InTx(ctx, "GetAccount", func(r repository.Repositories) error {
		var err error
		acc, err = r.Accounts().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Transfer debits the sender, credits the receiver and records one
// Transaction row, all in a single database transaction. The debit is
// conditional on the balance, so two concurrent transfers cannot both spend
// the same funds.
func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest) (_ *models.Transaction, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Transfer", trace.WithAttributes(
		attribute.Int64("sender_id", req.SenderID),
		attribute.Int64("receiver_id", req.ReceiverID),
		attribute.String("amount", req.Amount.String()),
	))
	defer span.End()
	defer func() {
		observability.TransfersTotal.WithLabelValues(transferOutcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if !req.Amount.IsPositive() {
		slog.Error("invalid transfer amount", "amount", req.Amount)
		return nil, pkgerrors.ErrInvalidAmount
	}
	if req.SenderID == req.ReceiverID {
		return nil, pkgerrors.ErrSameAccount
	}
	if req.Currency != "" {
		if req.Currency, err = validation.NormalizeCurrency(req.Currency); err != nil {
			return nil, err
		}
	}
	if req.DateTime.IsZero() {
		req.DateTime = s.now().UTC().Truncate(time.Second)
	}

	var sender, receiver *models.Account
	err = s.store.InTx(ctx, "LoadTransferAccounts", func(r repository.Repositories) error {
		var err error
		if sender, err = r.Accounts().GetByID(ctx, req.SenderID); err != nil {
			return fmt.Errorf("sender: %w", err)
		}
		if receiver, err = r.Accounts().GetByID(ctx, req.ReceiverID); err != nil {
			return fmt.Errorf("receiver: %w", err)
		}
		return nil
	})
	if err != nil {
		slog.Error("failed to load transfer accounts", "sender_id", req.SenderID, "receiver_id", req.ReceiverID, "error", err)
		return nil, err
	}
	if req.Currency == "" {
		req.Currency = sender.Currency
	}

	debit, err := s.converter.Convert(ctx, req.Currency, sender.Currency, req.Amount)
	if err != nil {
		return nil, err
	}
	credit, err := s.converter.Convert(ctx, req.Currency, receiver.Currency, req.Amount)
	if err != nil {
		return nil, err
	}

	if sender.Amount.LessThan(debit) {
		slog.Warn("insufficient funds", "sender_id", sender.ID, "balance", sender.Amount, "debit", debit)
		return nil, fmt.Errorf("%w: balance %s, need %s %s", pkgerrors.ErrInsufficientFunds, sender.Amount, debit, sender.Currency)
	}

	tx := &models.Transaction{
		BankSenderName:    sender.BankName,
		AccountSenderID:   sender.ID,
		BankReceiverName:  receiver.BankName,
		AccountReceiverID: receiver.ID,
		SentCurrency:      req.Currency,
		SentAmount:        req.Amount,
		DateTime:          req.DateTime,
	}
	err = s.store.InTx(ctx, "Transfer", func(r repository.Repositories) error {
		if _, err := r.Accounts().Debit(ctx, sender.ID, debit); err != nil {
			return err
		}
		if _, err := r.Accounts().Credit(ctx, receiver.ID, credit); err != nil {
			return err
		}
		_, err := r.Transactions().Create(ctx, tx)
		return err
	})
	if err != nil {
		slog.Error("transfer failed", "sender_id", sender.ID, "receiver_id", receiver.ID, "error", err)
		return nil, err
	}

	slog.Info("transfer completed",
		"transaction_id", tx.ID,
		"sender_id", sender.ID,
		"receiver_id", receiver.ID,
		"sent", req.Amount.String()+" "+req.Currency,
		"debited", debit,
		"credited", credit)

	s.publish(ctx, tx, debit, credit)
	return tx, nil
}

func (s *LedgerService) publish(ctx context.Context, tx *models.Transaction, debit, credit decimal.Decimal) {
	event := models.TransferEvent{
		EventID:           uuid.NewString(),
		EventType:         models.EventTransferCompleted,
		TransactionID:     tx.ID,
		AccountSenderID:   tx.AccountSenderID,
		AccountReceiverID: tx.AccountReceiverID,
		SentCurrency:      tx.SentCurrency,
		SentAmount:        tx.SentAmount,
		Debited:           debit,
		Credited:          credit,
		CreatedAt:         s.now().UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishTransfer(ctx, event); err != nil {
		slog.Error("failed to publish transfer event", "transaction_id", tx.ID, "event_id", event.EventID, "error", err)
	}
}

func transferOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case stderrors.Is(err, pkgerrors.ErrInsufficientFunds):
		return "insufficient_funds"
	case stderrors.Is(err, pkgerrors.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
