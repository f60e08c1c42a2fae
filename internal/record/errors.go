package record

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	// ErrAmbiguousKey means a primary-key lookup matched more than one row,
	// which only happens when the table's key is not actually unique.
	ErrAmbiguousKey = errors.New("primary key matched more than one row")
	ErrInsertFailed = errors.New("insert failed")
)
