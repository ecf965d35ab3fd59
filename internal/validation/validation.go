package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/honeynil/bank-ledger/internal/models"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
)

const (
	accountNumberLength = 18
	accountNumberPrefix = "ID--"
	birthDayLayout      = "2006-01-02"
)

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	accountNumberChars   = regexp.MustCompile(`[^A-Za-z0-9-]`)
	accountNumberPattern = regexp.MustCompile(`^ID--[A-Za-z]{1,3}-\d+-`)
	currencyPattern      = regexp.MustCompile(`^[A-Z]{3}$`)

	dateTimeLayouts = []string{time.RFC3339, models.DateTimeLayout, birthDayLayout}
)

// UserInput is a user as supplied by callers, before the full name is split.
type UserInput struct {
	FullName string `json:"user_full_name"`
	BirthDay string `json:"birth_day,omitempty"`
	Accounts string `json:"accounts,omitempty"`
}

type BankInput struct {
	Name string `json:"name" validate:"required"`
}

type AccountInput struct {
	UserID        int64  `json:"user_id" validate:"required,gt=0"`
	Type          string `json:"type" validate:"oneof=credit debit"`
	AccountNumber string `json:"account_number"`
	BankID        int64  `json:"bank_id" validate:"required,gt=0"`
	Currency      string `json:"currency"`
	Amount        string `json:"amount"`
	Status        string `json:"status" validate:"omitempty,oneof=gold silver platinum"`
}

// SplitFullName splits "Name Surname..." into name and surname. Tokens are
// separated by whitespace or punctuation other than '-' and '\''.
func SplitFullName(fullName string) (string, string, error) {
	parts := strings.FieldsFunc(fullName, func(r rune) bool {
		if r == '-' || r == '\'' {
			return false
		}
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: %q", pkgerrors.ErrInvalidFullName, fullName)
	}
	return parts[0], strings.Join(parts[1:], " "), nil
}

func NewUser(in UserInput) (*models.User, error) {
	name, surname, err := SplitFullName(in.FullName)
	if err != nil {
		return nil, err
	}
	birthDay, err := ParseBirthDay(in.BirthDay)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Name:     name,
		Surname:  surname,
		BirthDay: birthDay,
		Accounts: strings.TrimSpace(in.Accounts),
	}, nil
}

func NewBank(in BankInput) (*models.Bank, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, pkgerrors.ErrInvalidBankName
	}
	return &models.Bank{Name: in.Name}, nil
}

// NormalizeAccountNumber replaces disallowed characters with '-' and checks
// the resulting number shape.
func NormalizeAccountNumber(raw string) (string, error) {
	number := accountNumberChars.ReplaceAllString(raw, "-")
	switch n := len(number); {
	case n < accountNumberLength:
		return "", fmt.Errorf("%w: %q", pkgerrors.ErrAccountNumberTooShort, raw)
	case n > accountNumberLength:
		return "", fmt.Errorf("%w: %q", pkgerrors.ErrAccountNumberTooLong, raw)
	}
	if !strings.HasPrefix(number, accountNumberPrefix) || !accountNumberPattern.MatchString(number) {
		return "", fmt.Errorf("%w: %q", pkgerrors.ErrInvalidAccountNumber, raw)
	}
	return number, nil
}

func NewAccount(in AccountInput) (*models.Account, error) {
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))

	if err := validate.Struct(in); err != nil {
		return nil, accountFieldError(err)
	}

	number, err := NormalizeAccountNumber(in.AccountNumber)
	if err != nil {
		return nil, err
	}
	currency, err := NormalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}

	return &models.Account{
		UserID:        in.UserID,
		Type:          models.AccountType(in.Type),
		AccountNumber: number,
		BankID:        in.BankID,
		Currency:      currency,
		Amount:        amount,
		Status:        models.AccountStatus(in.Status),
	}, nil
}

func accountFieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", pkgerrors.ErrInvalidInput, err)
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Type":
		return fmt.Errorf("%w: %q", pkgerrors.ErrInvalidAccountType, fe.Value())
	case "Status":
		return fmt.Errorf("%w: %q", pkgerrors.ErrInvalidAccountStatus, fe.Value())
	default:
		return fmt.Errorf("%w: field %s failed %s", pkgerrors.ErrInvalidInput, fe.Field(), fe.Tag())
	}
}

func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currencyPattern.MatchString(code) {
		return "", fmt.Errorf("%w: %q", pkgerrors.ErrInvalidCurrency, code)
	}
	return code, nil
}

// ParseDateTime accepts RFC3339, "2006-01-02 15:04:05" or "2006-01-02".
// An empty value means now.
func ParseDateTime(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return now.UTC().Truncate(time.Second), nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", pkgerrors.ErrInvalidDateTime, value)
}

func ParseBirthDay(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if _, err := time.Parse(birthDayLayout, value); err != nil {
		return "", fmt.Errorf("%w: %q", pkgerrors.ErrInvalidBirthDay, value)
	}
	return value, nil
}
