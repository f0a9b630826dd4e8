package errors

import (
	"github.com/wippyai/hostbridge"
)

// Status classifies a failure. It mirrors every hostbridge.Code and adds
// StatusUnknown as a catch-all for codes this build does not know.
type Status uint16

const (
	StatusOK Status = iota
	StatusInvalidArg
	StatusObjectExpected
	StatusStringExpected
	StatusNameExpected
	StatusFunctionExpected
	StatusNumberExpected
	StatusBooleanExpected
	StatusArrayExpected
	StatusGenericFailure
	StatusPendingException
	StatusCancelled
	StatusEscapeCalledTwice
	StatusHandleScopeMismatch
	StatusCallbackScopeMismatch
	StatusQueueFull
	StatusClosing
	StatusBigintExpected
	StatusDateExpected
	StatusArrayBufferExpected
	StatusDetachableArrayBufferExpected
	StatusWouldDeadlock
	StatusNoExternalBuffersAllowed
	StatusCannotRunJS

	// StatusUnknown covers codes outside the defined range.
	StatusUnknown Status = 1024
)

// UnknownCode is the raw code StatusUnknown converts back to.
const UnknownCode hostbridge.Code = 1024

var statusNames = [...]string{
	StatusOK:                            "Ok",
	StatusInvalidArg:                    "InvalidArg",
	StatusObjectExpected:                "ObjectExpected",
	StatusStringExpected:                "StringExpected",
	StatusNameExpected:                  "NameExpected",
	StatusFunctionExpected:              "FunctionExpected",
	StatusNumberExpected:                "NumberExpected",
	StatusBooleanExpected:               "BooleanExpected",
	StatusArrayExpected:                 "ArrayExpected",
	StatusGenericFailure:                "GenericFailure",
	StatusPendingException:              "PendingException",
	StatusCancelled:                     "Cancelled",
	StatusEscapeCalledTwice:             "EscapeCalledTwice",
	StatusHandleScopeMismatch:           "HandleScopeMismatch",
	StatusCallbackScopeMismatch:         "CallbackScopeMismatch",
	StatusQueueFull:                     "QueueFull",
	StatusClosing:                       "Closing",
	StatusBigintExpected:                "BigintExpected",
	StatusDateExpected:                  "DateExpected",
	StatusArrayBufferExpected:           "ArrayBufferExpected",
	StatusDetachableArrayBufferExpected: "DetachableArrayBufferExpected",
	StatusWouldDeadlock:                 "WouldDeadlock",
	StatusNoExternalBuffersAllowed:      "NoExternalBuffersAllowed",
	StatusCannotRunJS:                   "CannotRunJS",
}

// StatusFromCode classifies a raw ABI code. It is total: codes outside the
// defined range yield StatusUnknown.
func StatusFromCode(c hostbridge.Code) Status {
	if c < hostbridge.CodeOK || c > hostbridge.MaxCode {
		return StatusUnknown
	}
	return Status(c)
}

// Code converts s back to its raw ABI code.
func (s Status) Code() hostbridge.Code {
	if !s.Valid() {
		return UnknownCode
	}
	return hostbridge.Code(s)
}

// Valid reports whether s is one of the defined statuses (StatusUnknown excluded).
func (s Status) Valid() bool {
	return int(s) < len(statusNames)
}

func (s Status) String() string {
	if s.Valid() {
		return statusNames[s]
	}
	return "Unknown"
}

// AllStatuses returns every defined status in code order, StatusUnknown last.
func AllStatuses() []Status {
	out := make([]Status, 0, len(statusNames)+1)
	for i := range statusNames {
		out = append(out, Status(i))
	}
	return append(out, StatusUnknown)
}
