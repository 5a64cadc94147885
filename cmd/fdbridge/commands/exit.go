package commands

import (
	"errors"

	"github.com/stlalpha/fdbridge/internal/area"
	"github.com/stlalpha/fdbridge/internal/ftn"
	"github.com/stlalpha/fdbridge/internal/ra"
)

// Process exit codes. Batch files test these with IF ERRORLEVEL, so the
// values are fixed.
const (
	ExitNoMail          = 0
	ExitMailMoved       = 1
	ExitFailure         = 2 // anything without a code of its own, e.g. bad usage
	ExitWriteFailed     = 10
	ExitSeekFailed      = 11
	ExitTooManyAreas    = 12
	ExitBadArea         = 13
	ExitCantOpenMessage = 14
	ExitCantReadMessage = 15
	ExitSeekReadFailed  = 16 // reserved
	ExitConfigNotFound  = 17
	ExitOutOfMemory     = 18 // reserved
	ExitCantOpenBase    = 19
)

// ErrMailMoved is returned by a successful run that moved mail, so that
// it can become exit code 1.
var ErrMailMoved = errors.New("mail moved")

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitNoMail
	case errors.Is(err, ErrMailMoved):
		return ExitMailMoved
	case errors.Is(err, ra.ErrStorageWrite), errors.Is(err, ftn.ErrWriteMessage), errors.Is(err, ra.ErrBaseFull):
		return ExitWriteFailed
	case errors.Is(err, ra.ErrStorageSeek):
		return ExitSeekFailed
	case errors.Is(err, area.ErrTooManyAreas), errors.Is(err, ra.ErrInvalidBoard):
		return ExitTooManyAreas
	case errors.Is(err, area.ErrNotFound):
		return ExitConfigNotFound
	case errors.Is(err, area.ErrConfiguration):
		return ExitBadArea
	case errors.Is(err, ftn.ErrOpenMessage):
		return ExitCantOpenMessage
	case errors.Is(err, ftn.ErrReadMessage), errors.Is(err, ftn.ErrCorruptRecord),
		errors.Is(err, ra.ErrStorageRead), errors.Is(err, ra.ErrCorruptRecord):
		return ExitCantReadMessage
	case errors.Is(err, ra.ErrBaseOpen), errors.Is(err, ra.ErrLocked), errors.Is(err, ra.ErrBaseNotOpen):
		return ExitCantOpenBase
	}
	return ExitFailure
}
