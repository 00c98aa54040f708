package app

import (
	"context"

	"scholarship_admin/internal/domain/application"
	"scholarship_admin/internal/domain/cycle"
)

// Store bundles the repositories one operation works with. Inside InTx every
// repository shares the same transaction.
type Store interface {
	Cycles() cycle.Repository
	Applications() application.Repository
	Cascade() CascadeStore
}

// TxStore is a Store that can open transactions. fn's Store is only valid
// during the call; returning an error rolls every write back.
type TxStore interface {
	Store
	InTx(ctx context.Context, fn func(tx Store) error) error
}
