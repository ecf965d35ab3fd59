package models

import "github.com/shopspring/decimal"

type Account struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Type          AccountType     `json:"type"`
	AccountNumber string          `json:"account_number"`
	BankID        int64           `json:"bank_id"`
	BankName      string          `json:"bank_name,omitempty"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	Status        AccountStatus   `json:"status,omitempty"`
}

type AccountType string

const (
	TypeCredit AccountType = "credit"
	TypeDebit  AccountType = "debit"
)

type AccountStatus string

const (
	StatusGold     AccountStatus = "gold"
	StatusSilver   AccountStatus = "silver"
	StatusPlatinum AccountStatus = "platinum"
)
