package response

var errors = map[ErrCode]string{
	ErrCodeMalformedJSON:    "The JSON you provided was not well-formed or did not validate against our published format.",
	ErrCodeResourceExists:   "Resource %s already exists.",
	ErrCodeResourceNotFound: "Resource %s not found.",
	ErrCodeInternal:         "Internal error: %s.",
}

var ErrMalformedJSON = &responseError{
	Code:    ErrCodeMalformedJSON,
	Message: errors[ErrCodeMalformedJSON],
}
