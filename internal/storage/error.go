package storage

import "errors"

// Error description
const (
	ErrExecuteStatement = "failed to execute statement"
	ErrExecuteQuery     = "failed to execute query"
	ErrScanData         = "failed to scan data"
)

var ErrKeyNotFound = errors.New("key not found")
