package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is the repository-level not-found error. Services translate
// it into their own typed errors.
var ErrNotFound = errors.New("record not found")

type ctxKey string

const ctxTxKey ctxKey = "tx"

// ContextWithTx carries an open transaction through a context so that
// repository calls inside a service transaction share it.
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, ctxTxKey, tx)
}

// dbFromContext resolves the DB to use: the context transaction if one is
// present, otherwise the injected handle bound to the context.
func dbFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(ctxTxKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
