package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sodcapital/reconcile/internal/model"
)

const dateFormat = "2006-01-02"

// InsertTransaction stores a statement transaction and returns its id.
// Returns ErrDuplicateTransaction when (account, external_id) is already
// present.
func (s *Store) InsertTransaction(txn model.StatementTransaction) (int64, error) {
	var newID int64
	err := s.db.QueryRow(`
		INSERT INTO statement_transactions (account, external_id, posted_on, amount, memo, reference, batch_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id;
	`, txn.Account, txn.ExternalID, txn.PostedOn.Format(dateFormat), txn.Amount.StringFixed(2),
		txn.Memo, txn.Reference, txn.BatchID, time.Now().UTC().Format(time.RFC3339)).Scan(&newID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: statement_transactions") {
			return 0, ErrDuplicateTransaction
		}
		return 0, fmt.Errorf("inserting statement transaction: %w", err)
	}
	return newID, nil
}

// TransactionExists reports whether (account, externalID) was imported.
func (s *Store) TransactionExists(account, externalID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM statement_transactions WHERE account = ? AND external_id = ?
		)
	`, account, externalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking transaction existence: %w", err)
	}
	return exists, nil
}

// GetTransaction returns a statement transaction by id, or ErrNotFound.
func (s *Store) GetTransaction(txnID int64) (*model.StatementTransaction, error) {
	row := s.db.QueryRow(`
		SELECT id, account, external_id, posted_on, amount, memo, reference, batch_id
		FROM statement_transactions
		WHERE id = ?
	`, txnID)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading statement transaction %d: %w", txnID, err)
	}
	return txn, nil
}

// ListTransactions returns all statement transactions for an account in
// ascending posting-date order.
func (s *Store) ListTransactions(account string) ([]*model.StatementTransaction, error) {
	rows, err := s.db.Query(`
		SELECT id, account, external_id, posted_on, amount, memo, reference, batch_id
		FROM statement_transactions
		WHERE account = ?
		ORDER BY posted_on, id
	`, account)
	if err != nil {
		return nil, fmt.Errorf("listing statement transactions: %w", err)
	}
	defer rows.Close()

	var txns []*model.StatementTransaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning statement transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*model.StatementTransaction, error) {
	var txn model.StatementTransaction
	var postedOn, amount string

	if err := row.Scan(&txn.ID, &txn.Account, &txn.ExternalID, &postedOn, &amount,
		&txn.Memo, &txn.Reference, &txn.BatchID); err != nil {
		return nil, err
	}

	posted, err := time.Parse(dateFormat, postedOn)
	if err != nil {
		return nil, fmt.Errorf("parsing posted_on %q: %w", postedOn, err)
	}
	txn.PostedOn = posted

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	return &txn, nil
}
