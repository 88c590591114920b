package gormrepo

import (
	"context"

	"gorm.io/gorm"
)

type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return TxManager{db: db}
}

// RunInTx runs fn in a transaction. A call made inside another RunInTx joins
// the outer transaction through a savepoint.
func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	base := t.db.WithContext(ctx)
	if tx, ok := txFrom(ctx); ok {
		base = tx
	}
	return base.Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}
