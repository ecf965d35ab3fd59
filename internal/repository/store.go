package repository

import "context"

type Repositories interface {
	Banks() BankRepository
	Users() UserRepository
	Accounts() AccountRepository
	Transactions() TransactionRepository
	Analytics() AnalyticsRepository
}

// Store runs fn with repositories bound to one transaction: committed when
// fn returns nil, rolled back otherwise.
type Store interface {
	InTx(ctx context.Context, name string, fn func(Repositories) error) error
}
