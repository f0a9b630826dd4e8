package errors

import (
	"encoding/json"
	stderrors "errors"
)

// FromError converts a native Go error into an *Error.
//
// An *Error anywhere in the chain is returned as-is. JSON encoding and
// decoding failures classify as InvalidArg; everything else (I/O, text
// encoding, ...) as GenericFailure. The original error stays reachable
// through Unwrap.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	status := StatusGenericFailure
	if isJSONError(err) {
		status = StatusInvalidArg
	}
	return Wrap(status, err, err.Error())
}

func isJSONError(err error) bool {
	var (
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
		unsupportedTyp *json.UnsupportedTypeError
		unsupportedVal *json.UnsupportedValueError
		marshalerErr   *json.MarshalerError
		invalidErr     *json.InvalidUnmarshalError
	)
	return stderrors.As(err, &syntaxErr) ||
		stderrors.As(err, &typeErr) ||
		stderrors.As(err, &unsupportedTyp) ||
		stderrors.As(err, &unsupportedVal) ||
		stderrors.As(err, &marshalerErr) ||
		stderrors.As(err, &invalidErr)
}
