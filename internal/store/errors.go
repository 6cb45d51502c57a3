package store

import "errors"

var (
	// ErrNotFound reports a lookup for a row that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateTransaction reports an insert for a (account,
	// external_id) pair that was already imported.
	ErrDuplicateTransaction = errors.New("statement transaction already imported")

	// ErrEntryAlreadyReconciled reports an attempt to link a ledger entry
	// that another record already consumes.
	ErrEntryAlreadyReconciled = errors.New("ledger entry already reconciled")
)
