package resp

// Codes carried in the "code" field of JSON responses.
const (
	CodeOK            = "OK"
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnknownSource = "UNKNOWN_SOURCE"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeUpstream      = "UPSTREAM_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)
