package tipping

// Error is a terminal failure with the numeric code used by the public API.
type Error struct {
	Code    uint32
	Message string
}

func (e *Error) Error() string { return e.Message }

// Failure codes are part of the public API and must stay stable.
var (
	ErrTransferFailed    = &Error{Code: 1, Message: "transfer failed"}
	ErrInvalidAmount     = &Error{Code: 2, Message: "invalid tip amount"}
	ErrInvalidRecipient  = &Error{Code: 5, Message: "invalid recipient"}
	ErrUnauthorized      = &Error{Code: 6, Message: "unauthorized"}
	ErrInvalidRewardRate = &Error{Code: 7, Message: "invalid reward rate"}
	ErrEmptyUsername     = &Error{Code: 8, Message: "username is empty"}
	ErrUsernameLength    = &Error{Code: 9, Message: "username length out of range"}
	ErrUsernameTaken     = &Error{Code: 10, Message: "username already taken"}
	ErrInvalidTokenType  = &Error{Code: 11, Message: "unsupported token type"}
)
