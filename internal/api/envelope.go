// Package api defines the JSON contract shared by the HTTP server and the
// remote client.
package api

// Envelope wraps every response body.
type Envelope[T any] struct {
	IsSuccess bool   `json:"isSuccess"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Result    T      `json:"result"`
}

// Response codes.
const (
	CodeOK           = "COMMON200"
	CodeBadRequest   = "COMMON400"
	CodeUnauthorized = "COMMON401"
	CodeForbidden    = "COMMON403"
	CodeNotFound     = "COMMON404"
	CodeConflict     = "COMMON409"
	CodeRateLimited  = "COMMON429"
	CodeInternal     = "COMMON500"

	CodeEmailTaken         = "AUTH4001"
	CodeInvalidCredentials = "AUTH4002"
	CodeDuplicateSkill     = "SKILL4001"
	CodeUnknownSkill       = "SKILL4002"
	CodeNoCharacter        = "QUIZ4001"
)

// OK wraps a successful result.
func OK[T any](result T) Envelope[T] {
	return Envelope[T]{IsSuccess: true, Code: CodeOK, Message: "success", Result: result}
}

// Fail builds an error envelope.
func Fail(code, message string) Envelope[any] {
	return Envelope[any]{Code: code, Message: message}
}
