package httperr

// Kind is the closed set of failure categories the protocol layer knows how
// to put on the wire.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
	KindNotImplemented
	KindUnavailable
)

// Error is a typed failure carried from domain code to the protocol layer.
// Domain packages return it; only the protocol layer turns it into a status
// line and error body.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func BadRequest(msg string) *Error     { return &Error{Kind: KindBadRequest, Message: msg} }
func Unauthorized(msg string) *Error   { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error      { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error       { return &Error{Kind: KindConflict, Message: msg} }
func Internal(msg string) *Error       { return &Error{Kind: KindInternal, Message: msg} }
func NotImplemented(msg string) *Error { return &Error{Kind: KindNotImplemented, Message: msg} }
func Unavailable(msg string) *Error    { return &Error{Kind: KindUnavailable, Message: msg} }
