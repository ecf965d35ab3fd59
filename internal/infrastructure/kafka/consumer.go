package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeynil/bank-ledger/internal/infrastructure/observability"
	"github.com/honeynil/bank-ledger/internal/models"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
	"github.com/segmentio/kafka-go"
)

const readRetryDelay = time.Second

type AuditResult string

const (
	AuditMatched  AuditResult = "matched"
	AuditMismatch AuditResult = "mismatch"
	AuditMissing  AuditResult = "missing"
	AuditSkipped  AuditResult = "skipped"
)

type TransactionFinder interface {
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer reads transfer events and checks each against the Transaction
// table.
type Consumer struct {
	reader       messageReader
	transactions TransactionFinder
}

func NewConsumer(brokers []string, topic, groupID string, transactions TransactionFinder) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
		transactions: transactions,
	}
}

// Consume blocks until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("failed to read Kafka message", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(readRetryDelay):
			}
			continue
		}

		result, err := c.Audit(ctx, msg)
		observability.AuditEvents.WithLabelValues(string(result)).Inc()
		if err != nil {
			slog.Error("transfer audit failed", "key", string(msg.Key), "offset", msg.Offset, "result", result, "error", err)
			continue
		}
		slog.Debug("transfer audited", "key", string(msg.Key), "offset", msg.Offset, "result", result)
	}
}

// Audit compares one event with the stored transaction. Mismatches and
// missing rows are reported as errors alongside their result.
func (c *Consumer) Audit(ctx context.Context, msg kafka.Message) (AuditResult, error) {
	var event models.TransferEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return AuditSkipped, fmt.Errorf("failed to unmarshal transfer event: %w", err)
	}
	if event.EventType != models.EventTransferCompleted {
		return AuditSkipped, nil
	}

	tx, err := c.transactions.GetByID(ctx, event.TransactionID)
	if stderrors.Is(err, pkgerrors.ErrTransactionNotFound) {
		return AuditMissing, fmt.Errorf("transaction %d from event %s not found", event.TransactionID, event.EventID)
	}
	if err != nil {
		return AuditSkipped, err
	}

	if tx.AccountSenderID != event.AccountSenderID ||
		tx.AccountReceiverID != event.AccountReceiverID ||
		tx.SentCurrency != event.SentCurrency ||
		!tx.SentAmount.Equal(event.SentAmount) {
		return AuditMismatch, fmt.Errorf("transaction %d differs from event %s", event.TransactionID, event.EventID)
	}
	return AuditMatched, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
