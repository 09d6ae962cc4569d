package errorx

type Code string

func (c Code) String() string {
	return string(c)
}

const (
	// Client errors (4xx)
	CodeInvalid           Code = "INVALID"
	CodeValidationFailed  Code = "VALIDATION_FAILED"
	CodeMalformedJSON     Code = "MALFORMED_JSON"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeTokenExpired      Code = "TOKEN_EXPIRED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeMethodNotAllowed  Code = "METHOD_NOT_ALLOWED"
	CodeConflict          Code = "CONFLICT"
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"

	// Registration
	CodeMissingField           Code = "MISSING_FIELD"
	CodeInvalidEmailDomain     Code = "INVALID_EMAIL_DOMAIN"
	CodeEmailAlreadyRegistered Code = "EMAIL_ALREADY_REGISTERED"
	CodeUsernameTaken          Code = "USERNAME_TAKEN"
	CodeWeakPassword           Code = "WEAK_PASSWORD"
	CodePasswordMismatch       Code = "PASSWORD_MISMATCH"
	CodeInvalidAttachment      Code = "INVALID_ATTACHMENT"
	CodeInvalidActivationLink  Code = "INVALID_ACTIVATION_LINK"

	// Candidate applications
	CodeUnknownEmail                 Code = "UNKNOWN_EMAIL"
	CodeAccountNotVerified           Code = "ACCOUNT_NOT_VERIFIED"
	CodeDuplicateApplication         Code = "DUPLICATE_APPLICATION"
	CodeDuplicatePositionApplication Code = "DUPLICATE_POSITION_APPLICATION"

	// Server errors (5xx)
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeDeliveryFailed     Code = "DELIVERY_FAILED"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
)
