package errors

import "errors"

// ErrOptimisticLock means the row was modified by a concurrent operation and
// the caller should reload and retry.
var ErrOptimisticLock = errors.New("record was modified by another operation, reload and retry")

// ErrDuplicateAward means a points-ledger insert collided with the
// (booking_id, reason) uniqueness constraint. The award paths check the
// ledger first, so reaching this error indicates a concurrent duplicate that
// the constraint absorbed.
var ErrDuplicateAward = errors.New("points already awarded for this booking and reason")
