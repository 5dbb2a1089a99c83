package service

type ErrorBadRequest struct {
	errMsg string
}

func (e *ErrorBadRequest) Error() string {
	return e.errMsg
}
