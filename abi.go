package hostbridge

// Env identifies the execution context every ABI call runs under.
// Env 0 is reserved and always invalid.
type Env uint32

// Value is a handle to a host value, valid only under the Env that produced it.
type Value uint32

// Ref is a persistent reference keeping a host value alive until deleted.
type Ref uint32

// Code is a raw status returned by every ABI call.
type Code int32

const (
	CodeOK Code = iota
	CodeInvalidArg
	CodeObjectExpected
	CodeStringExpected
	CodeNameExpected
	CodeFunctionExpected
	CodeNumberExpected
	CodeBooleanExpected
	CodeArrayExpected
	CodeGenericFailure
	CodePendingException
	CodeCancelled
	CodeEscapeCalledTwice
	CodeHandleScopeMismatch
	CodeCallbackScopeMismatch
	CodeQueueFull
	CodeClosing
	CodeBigintExpected
	CodeDateExpected
	CodeArrayBufferExpected
	CodeDetachableArrayBufferExpected
	CodeWouldDeadlock
	CodeNoExternalBuffersAllowed
	CodeCannotRunJS
)

// MaxCode is the highest status code the ABI defines.
const MaxCode = CodeCannotRunJS

// ValueType is the runtime kind of a host value.
type ValueType int32

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeSymbol
	TypeObject
	TypeFunction
	TypeExternal
	TypeBigInt
)

var valueTypeNames = [...]string{
	TypeUndefined: "Undefined",
	TypeNull:      "Null",
	TypeBoolean:   "Boolean",
	TypeNumber:    "Number",
	TypeString:    "String",
	TypeSymbol:    "Symbol",
	TypeObject:    "Object",
	TypeFunction:  "Function",
	TypeExternal:  "External",
	TypeBigInt:    "BigInt",
}

func (t ValueType) String() string {
	if t >= 0 && int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return "Unknown"
}

// ErrorInfo is the host's record of the last failed ABI call on an Env.
type ErrorInfo struct {
	Message         []byte
	EngineReserved  uintptr
	EngineErrorCode uint32
	ErrorCode       Code
}

// Unknown is a host value of unspecified kind, paired with its Env.
type Unknown struct {
	Env   Env
	Value Value
}

// ABI is the host runtime surface consumed by the error core.
// Implementations must not retain the byte slices they are given.
type ABI interface {
	// CreateStringUTF8 creates a host string from UTF-8 bytes.
	CreateStringUTF8(env Env, b []byte) (Value, Code)

	// CreateError creates a generic error object. code may be 0 for none.
	CreateError(env Env, code, msg Value) (Value, Code)

	// CreateTypeError creates a type error object.
	CreateTypeError(env Env, code, msg Value) (Value, Code)

	// CreateRangeError creates a range error object.
	CreateRangeError(env Env, code, msg Value) (Value, Code)

	// CreateSyntaxError creates a syntax error object.
	CreateSyntaxError(env Env, code, msg Value) (Value, Code)

	// Throw makes v the pending exception of env.
	Throw(env Env, v Value) Code

	// IsExceptionPending reports whether env has a pending exception.
	IsExceptionPending(env Env) (bool, Code)

	// GetAndClearLastException returns and clears the pending exception.
	GetAndClearLastException(env Env) (Value, Code)

	// CreateReference creates a persistent reference with the given count.
	CreateReference(env Env, v Value, initial uint32) (Ref, Code)

	// DeleteReference deletes a persistent reference.
	DeleteReference(env Env, r Ref) Code

	// GetReferenceValue resolves a persistent reference to a live value.
	GetReferenceValue(env Env, r Ref) (Value, Code)

	// LastErrorInfo returns details about the last failed call on env.
	LastErrorInfo(env Env) (ErrorInfo, Code)
}

// Inspector exposes the value introspection used to build diagnostics.
type Inspector interface {
	TypeOf(env Env, v Value) (ValueType, Code)
	FunctionName(env Env, fn Value) (string, Code)
	CoerceToString(env Env, v Value) (string, Code)
	// Stringify renders v the way the host's JSON serializer does.
	Stringify(env Env, v Value) (string, Code)
	StrictEquals(env Env, a, b Value) (bool, Code)
}
