package offline

import "github.com/pkg/errors"

var (
	// ErrStorageUnavailable means the local store could not be opened or initialized.
	ErrStorageUnavailable = errors.New("offline storage unavailable")
	// ErrLocalPersistenceFailed means a write to the local store failed.
	ErrLocalPersistenceFailed = errors.New("local persistence failed")
	// ErrRemoteDeliveryFailed means the remote API did not acknowledge a write.
	ErrRemoteDeliveryFailed = errors.New("remote delivery failed")
)

// Error classifies a failure with one of the sentinel errors above.
// errors.Is matches both Kind and the wrapped cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

// StorageUnavailable wraps an initialization failure.
func StorageUnavailable(op string, err error) error {
	return &Error{Kind: ErrStorageUnavailable, Op: op, Err: err}
}

// LocalPersistenceFailed wraps a failed local write.
func LocalPersistenceFailed(op string, err error) error {
	return &Error{Kind: ErrLocalPersistenceFailed, Op: op, Err: err}
}

// RemoteDeliveryFailed wraps a failed remote call.
func RemoteDeliveryFailed(op string, err error) error {
	return &Error{Kind: ErrRemoteDeliveryFailed, Op: op, Err: err}
}
