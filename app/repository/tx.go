package repository

import "gorm.io/gorm"

// gormTxManager implements TxManager over gorm's db.Transaction.
type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager for the given database handle
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) WithTx(fn func(r *Repositories) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
