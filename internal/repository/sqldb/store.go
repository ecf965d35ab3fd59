package sqldb

import (
	"context"
	"database/sql"

	"github.com/honeynil/bank-ledger/internal/database"
	"github.com/honeynil/bank-ledger/internal/repository"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, name string, fn func(repository.Repositories) error) error {
	return database.WithTx(ctx, s.db, name, func(tx *sql.Tx) error {
		return fn(repositories{q: tx})
	})
}

type repositories struct {
	q database.Querier
}

func (r repositories) Banks() repository.BankRepository { return NewBankRepository(r.q) }

func (r repositories) Users() repository.UserRepository { return NewUserRepository(r.q) }

func (r repositories) Accounts() repository.AccountRepository { return NewAccountRepository(r.q) }

func (r repositories) Transactions() repository.TransactionRepository {
	return NewTransactionRepository(r.q)
}

func (r repositories) Analytics() repository.AnalyticsRepository { return NewAnalyticsRepository(r.q) }
