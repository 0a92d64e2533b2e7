package services

import (
	"context"

	"clinic/internal/database"
	"clinic/internal/logger"

	"gorm.io/gorm"
)

type transactionKey struct{}

// TransactionService runs a function inside one database transaction. The
// transaction travels in the context so repositories pick it up through
// GetTransaction.
type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("TransactionService"),
	}
}

func (s *TransactionService) Execute(ctx context.Context, fn func(txCtx context.Context) error) error {
	log := s.log.Function("Execute")

	if _, ok := GetTransaction(ctx); ok {
		return fn(ctx)
	}

	tx := s.db.SQLWithContext(ctx).Begin()
	if tx.Error != nil {
		return log.Err("failed to begin transaction", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, transactionKey{}, tx)); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			log.Warn("failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return log.Err("failed to commit transaction", err)
	}

	return nil
}

func GetTransaction(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(transactionKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}
