// Package common holds error sentinels shared across services so handlers
// can map them to HTTP statuses without importing every service package.
package common

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)
