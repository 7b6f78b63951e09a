package server_response

type ServerResponseType interface {
	Respond(ctx interface{}, code int, message string, payload interface{}, errs []error, responseCode *uint)
}

var Responder ServerResponseType = ginResponder{}
