package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into the typed record errors:
//   - ErrNotFound: no row for the requested key
//   - ErrAlreadyUsed: a unique key (operation, payment, email) is already bound
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
)
