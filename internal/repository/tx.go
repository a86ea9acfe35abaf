package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxRepositories exposes the repositories that take part in a checkout,
// all bound to the same transaction
type TxRepositories interface {
	Products() ProductRepository
	Variants() VariantRepository
	Orders() OrderRepository
	Vouchers() VoucherRepository
	Cart() CartRepository
}

// TxManager runs a function inside a database transaction
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepositories) error) error
}

type txRepositories struct {
	tx *sql.Tx
}

func (r *txRepositories) Products() ProductRepository { return NewProductRepository(r.tx) }
func (r *txRepositories) Variants() VariantRepository { return NewVariantRepository(r.tx) }
func (r *txRepositories) Orders() OrderRepository     { return NewOrderRepository(r.tx) }
func (r *txRepositories) Vouchers() VoucherRepository { return NewVoucherRepository(r.tx) }
func (r *txRepositories) Cart() CartRepository        { return NewCartRepository(r.tx) }

type txManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager backed by db
func NewTxManager(db *sql.DB) TxManager {
	return &txManager{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise
func (m *txManager) WithinTx(ctx context.Context, fn func(r TxRepositories) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&txRepositories{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
