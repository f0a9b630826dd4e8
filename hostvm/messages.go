package hostvm

import "github.com/wippyai/hostbridge"

var codeMessages = [...]string{
	hostbridge.CodeOK:                            "",
	hostbridge.CodeInvalidArg:                    "Invalid argument",
	hostbridge.CodeObjectExpected:                "An object was expected",
	hostbridge.CodeStringExpected:                "A string was expected",
	hostbridge.CodeNameExpected:                  "A string or symbol was expected",
	hostbridge.CodeFunctionExpected:              "A function was expected",
	hostbridge.CodeNumberExpected:                "A number was expected",
	hostbridge.CodeBooleanExpected:               "A boolean was expected",
	hostbridge.CodeArrayExpected:                 "An array was expected",
	hostbridge.CodeGenericFailure:                "Unknown failure",
	hostbridge.CodePendingException:              "An exception is pending",
	hostbridge.CodeCancelled:                     "The async work item was cancelled",
	hostbridge.CodeEscapeCalledTwice:             "napi_escape_handle already called on scope",
	hostbridge.CodeHandleScopeMismatch:           "Invalid handle scope usage",
	hostbridge.CodeCallbackScopeMismatch:         "Invalid callback scope usage",
	hostbridge.CodeQueueFull:                     "Thread-safe function queue is full",
	hostbridge.CodeClosing:                       "Thread-safe function handle is closing",
	hostbridge.CodeBigintExpected:                "A bigint was expected",
	hostbridge.CodeDateExpected:                  "A date was expected",
	hostbridge.CodeArrayBufferExpected:           "An arraybuffer was expected",
	hostbridge.CodeDetachableArrayBufferExpected: "A detachable arraybuffer was expected",
	hostbridge.CodeWouldDeadlock:                 "Main thread would deadlock",
	hostbridge.CodeNoExternalBuffersAllowed:      "External buffers are not allowed",
	hostbridge.CodeCannotRunJS:                   "Cannot run JavaScript",
}

func codeMessage(code hostbridge.Code) string {
	if code < 0 || int(code) >= len(codeMessages) {
		return "Unknown failure"
	}
	return codeMessages[code]
}
