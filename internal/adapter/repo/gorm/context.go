package gormrepo

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// txFrom returns the transaction RunInTx placed on ctx.
func txFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// conn is the handle a repository call runs on: the ambient transaction when
// there is one, else base bound to ctx.
func conn(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return base.WithContext(ctx)
}
