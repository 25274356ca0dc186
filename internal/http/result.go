package httpapi

// Result response envelope of every dispatched operation.
// - code: ResultSuccess = 2000, otherwise one of the Result* error codes
// - type: 'success' | 'error'
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess            = 2000
	ResultValidation         = 4000
	ResultUnknownOperation   = 4001
	ResultInvalidCredentials = 4010
	ResultNotFound           = 4040
	ResultMethodNotAllowed   = 4050
	ResultConflict           = 4090
	ResultTooManyAttempts    = 4290
	ResultInternal           = 5000
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(code int, message string) Result[any] {
	return Result[any]{Code: code, Type: "error", Message: message, Result: nil}
}

// Created result of a create operation.
type Created struct {
	ID int64 `json:"id"`
}

// Affected result of an update or delete operation.
type Affected struct {
	Affected int64 `json:"affected"`
}
