package api

import "fmt"

// StatusOK is the zero status: success.
const StatusOK Status = 0

// EngineError surfaces a native status code verbatim with its
// human-readable message.
type EngineError struct {
	Code ErrorCode
	Msg  string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine failure (%s): %s", e.Code, e.Msg)
}

// AsError converts a native status into an error and releases the status.
// Returns nil for StatusOK.
func AsError(eng Engine, st Status) error {
	if st == StatusOK {
		return nil
	}
	defer eng.ReleaseStatus(st)
	return &EngineError{Code: eng.StatusCode(st), Msg: eng.StatusMessage(st)}
}
