package errors

import (
	"unicode/utf8"

	"github.com/wippyai/hostbridge"
)

// ExtendedErrorInfo describes the last failed ABI call on an Env.
type ExtendedErrorInfo struct {
	Message         string
	EngineReserved  uintptr
	EngineErrorCode uint32
	ErrorCode       Status
}

// NewExtendedErrorInfo validates and converts the host's raw record.
func NewExtendedErrorInfo(info hostbridge.ErrorInfo) (ExtendedErrorInfo, error) {
	if !utf8.Valid(info.Message) {
		return ExtendedErrorInfo{}, New(StatusGenericFailure, "invalid utf-8 sequence in error message")
	}
	return ExtendedErrorInfo{
		Message:         string(info.Message),
		EngineReserved:  info.EngineReserved,
		EngineErrorCode: info.EngineErrorCode,
		ErrorCode:       StatusFromCode(info.ErrorCode),
	}, nil
}

// LastError fetches the extended info for the last failed call on env.
func LastError(abi hostbridge.ABI, env hostbridge.Env) (ExtendedErrorInfo, error) {
	info, code := abi.LastErrorInfo(env)
	if err := CheckStatusf(code, "get last error info"); err != nil {
		return ExtendedErrorInfo{}, err
	}
	return NewExtendedErrorInfo(info)
}

// Err converts the info into a self-contained error.
func (i ExtendedErrorInfo) Err() *Error {
	return New(i.ErrorCode, i.Message)
}
