package response

type ErrCode int

const (
	_                       ErrCode = 10000 + iota
	ErrCodeMalformedJSON            // 10001
	ErrCodeResourceExists           // 10002
	ErrCodeResourceNotFound         // 10003
	ErrCodeInternal                 // 10004
)

// New codes go at the end of the enum, with their message appended to
// response.errors in the same order.
