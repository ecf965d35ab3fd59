package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateTimeLayout is the textual form of Transaction.DateTime in storage.
const DateTimeLayout = "2006-01-02 15:04:05"

type Transaction struct {
	ID                int64           `json:"id"`
	BankSenderName    string          `json:"bank_sender_name"`
	AccountSenderID   int64           `json:"account_sender_id"`
	BankReceiverName  string          `json:"bank_receiver_name"`
	AccountReceiverID int64           `json:"account_receiver_id"`
	SentCurrency      string          `json:"sent_currency"`
	SentAmount        decimal.Decimal `json:"sent_amount"`
	DateTime          time.Time       `json:"datetime"`
}

// TransferEvent is published after a transfer has been committed.
type TransferEvent struct {
	EventID           string          `json:"event_id"`
	EventType         string          `json:"event_type"`
	TransactionID     int64           `json:"transaction_id"`
	AccountSenderID   int64           `json:"account_sender_id"`
	AccountReceiverID int64           `json:"account_receiver_id"`
	SentCurrency      string          `json:"sent_currency"`
	SentAmount        decimal.Decimal `json:"sent_amount"`
	Debited           decimal.Decimal `json:"debited"`
	Credited          decimal.Decimal `json:"credited"`
	CreatedAt         string          `json:"created_at"`
}

const EventTransferCompleted = "transfer.completed"
