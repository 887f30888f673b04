package errors

import "errors"

// ErrAcquireTimeout reports that AcquireTimeout gave up before the lock
// became free. Callers translate it at their own edge; the build registry
// maps it to the same conflict response as a held lock.
var ErrAcquireTimeout = errors.New("record lock acquire timed out")
