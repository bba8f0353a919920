// internal/models/errors.go
package models

import "errors"

// Domain errors. Services wrap these with context; handlers map them to HTTP
// statuses with errors.Is.
var (
	ErrBookNotFound  = errors.New("book not found")
	ErrOrderNotFound = errors.New("order not found")
	ErrGenreNotFound = errors.New("genre not found")

	// ErrNoCopyAvailable is returned when a paper order is requested and
	// every copy of the book is already out.
	ErrNoCopyAvailable = errors.New("no copy available")

	// ErrNotPaperEnabled is returned when a paper copy is requested for a
	// book that does not circulate on paper.
	ErrNotPaperEnabled = errors.New("book is not available on paper")

	ErrUnsupportedOrderType = errors.New("unsupported order type")

	// ErrInvalidTransition is returned when an order status change is
	// requested from a state that does not allow it.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrForbidden is returned when a non-privileged actor tries to delete
	// an order whose copy is already with the reader.
	ErrForbidden = errors.New("operation requires a librarian or admin")

	// ErrCopyAlreadyAvailable indicates a double release. It should never
	// surface through normal API use.
	ErrCopyAlreadyAvailable = errors.New("copy is already available")

	// ErrBookCheckedOut blocks book deletion while copies are out.
	ErrBookCheckedOut = errors.New("book has copies checked out")

	// ErrCommitConflict is returned when a concurrent transaction won the
	// race for the same book state. The caller retries once.
	ErrCommitConflict = errors.New("conflicting concurrent update")

	ErrGenreInUse = errors.New("genre is referenced by books")
)
