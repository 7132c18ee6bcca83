package errors

import "fmt"

// Export error taxonomy. Serialization errors are recovered per record; the
// transport kinds abort the whole run; ConcurrentRunRejected is reported
// immediately and never retried automatically.

// SerializationError marks a single record that could not be rendered. The
// row is skipped and the batch continues.
type SerializationError struct {
	RecordID int64
	Reason   string
}

func NewSerializationError(recordID int64, reason string) *SerializationError {
	return &SerializationError{RecordID: recordID, Reason: reason}
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error for record %d: %s", e.RecordID, e.Reason)
}

// TransportConnectError is a failure opening or authenticating a transport
// session. Whole-batch failure, retryable on a later tick.
type TransportConnectError struct {
	Transport string
	cause     error
}

func NewTransportConnectError(transport string, cause error) *TransportConnectError {
	return &TransportConnectError{Transport: transport, cause: cause}
}

func (e *TransportConnectError) Error() string {
	return fmt.Sprintf("transport connect error (%s): %v", e.Transport, e.cause)
}

func (e *TransportConnectError) Unwrap() error { return e.cause }

// TransportDeliveryError is a failure after the session opened: the transfer
// or the remote response failed. Whole-batch failure, retryable.
type TransportDeliveryError struct {
	Transport string
	cause     error
}

func NewTransportDeliveryError(transport string, cause error) *TransportDeliveryError {
	return &TransportDeliveryError{Transport: transport, cause: cause}
}

func (e *TransportDeliveryError) Error() string {
	return fmt.Sprintf("transport delivery error (%s): %v", e.Transport, e.cause)
}

func (e *TransportDeliveryError) Unwrap() error { return e.cause }

// ConcurrentRunRejected reports that another run holds the lock for the same
// schedule key.
type ConcurrentRunRejected struct {
	ScheduleKey string
}

func (e *ConcurrentRunRejected) Error() string {
	return fmt.Sprintf("export already running for schedule %q", e.ScheduleKey)
}

// ErrMarkPolicyUnsupported rejects mark policies that cannot work with the
// chosen transport (marking after an HTTP download would run after the
// response stream is committed).
var ErrMarkPolicyUnsupported = New("mark policy not supported by transport", WithId("export.mark_policy_unsupported"))
