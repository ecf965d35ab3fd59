package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrNilUser              = errors.New("user is nil")
	ErrBankNotFound         = errors.New("bank not found")
	ErrBankAlreadyExists    = errors.New("bank already exists")
	ErrNilBank              = errors.New("bank is nil")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrNilAccount           = errors.New("account is nil")
	ErrNilTransaction       = errors.New("transaction is nil")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrBalanceConflict      = errors.New("balance changed concurrently")
	ErrNoData               = errors.New("no data")

	ErrInvalidInput          = fmt.Errorf("invalid input")
	ErrInvalidFullName       = fmt.Errorf("%w: full name must contain name and surname", ErrInvalidInput)
	ErrInvalidBankName       = fmt.Errorf("%w: bank name is required", ErrInvalidInput)
	ErrInvalidAccountNumber  = fmt.Errorf("%w: account number has wrong format", ErrInvalidInput)
	ErrAccountNumberTooShort = fmt.Errorf("%w: account number is too short", ErrInvalidInput)
	ErrAccountNumberTooLong  = fmt.Errorf("%w: account number is too long", ErrInvalidInput)
	ErrInvalidAccountType    = fmt.Errorf("%w: account type not allowed", ErrInvalidInput)
	ErrInvalidAccountStatus  = fmt.Errorf("%w: account status not allowed", ErrInvalidInput)
	ErrInvalidCurrency       = fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidInput)
	ErrInvalidDateTime       = fmt.Errorf("%w: unsupported datetime format", ErrInvalidInput)
	ErrInvalidBirthDay       = fmt.Errorf("%w: birth day must be YYYY-MM-DD", ErrInvalidInput)
	ErrInvalidAmount         = fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	ErrSameAccount           = fmt.Errorf("%w: sender and receiver must differ", ErrInvalidInput)

	ErrRateUnavailable = errors.New("currency rate unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
)
