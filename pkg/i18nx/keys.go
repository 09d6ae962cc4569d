package i18nx

// Error message keys
const (
	// Client errors
	KeyInvalid                   = "invalid"
	KeyValidationFailed          = "validation_failed"
	KeyValidationFailedField     = "validation_failed_field"
	KeyMalformedJSON             = "malformed_json"
	KeyUnauthorized              = "unauthorized"
	KeyTokenExpired              = "token_expired"
	KeyForbidden                 = "forbidden"
	KeyNotFound                  = "not_found"
	KeyMethodNotAllowed          = "method_not_allowed"
	KeyConflict                  = "conflict"
	KeyRateLimitExceededWithTime = "rate_limit_exceeded_with_time"

	// Server errors
	KeyInternalError      = "internal_error"
	KeyServiceUnavailable = "service_unavailable"

	// Registration
	KeyMissingFields           = "missing_fields"
	KeyInvalidEmailDomain      = "invalid_email_domain"
	KeyEmailAlreadyRegistered  = "email_already_registered"
	KeyUsernameTaken           = "username_taken"
	KeyUsernameTakenUnverified = "username_taken_unverified"
	KeyPasswordTooShort        = "password_too_short"
	KeyPasswordTooLong         = "password_too_long"
	KeyPasswordNoDigit         = "password_no_digit"
	KeyPasswordNoUpper         = "password_no_upper"
	KeyPasswordNoLower         = "password_no_lower"
	KeyPasswordMismatch        = "password_mismatch"
	KeyInvalidAttachment       = "invalid_attachment"
	KeyRegistrationSucceeded   = "registration_succeeded"

	// Mail delivery, one key per failure kind
	KeyDeliveryAuthentication = "delivery_authentication"
	KeyDeliveryConnection     = "delivery_connection"
	KeyDeliveryDisconnected   = "delivery_disconnected"
	KeyDeliveryTimeout        = "delivery_timeout"
	KeyDeliveryGeneral        = "delivery_general"
	KeyDeliveryUnexpected     = "delivery_unexpected"

	// Activation
	KeyActivationSucceeded   = "activation_succeeded"
	KeyAlreadyActivated      = "activation_already_done"
	KeyInvalidActivationLink = "activation_link_invalid"
	KeyAccountDeleted        = "account_deleted"

	// Candidate applications
	KeyUnknownEmail                 = "unknown_email"
	KeyAccountNotVerified           = "account_not_verified"
	KeyDuplicateApplication         = "duplicate_application"
	KeyDuplicatePositionApplication = "duplicate_position_application"
	KeyApplicationSubmitted         = "application_submitted"
)

// Message arguments
const (
	ArgField      = "Field"
	ArgFields     = "Fields"
	ArgMinLen     = "MinLen"
	ArgMaxLen     = "MaxLen"
	ArgPosition   = "Position"
	ArgRetryAfter = "RetryAfter"
	ArgThreshold  = "Threshold"
	ArgUnit       = "Unit"
	ArgList       = "List"
)

// Validation codes of custom ozzo-validation rules. They double as message ids.
const (
	ValidationInvalidFileType   = "validation_invalid_file_type"
	ValidationFileSizeTooLarge  = "validation_file_size_too_large"
	ValidationFileSizeTooSmall  = "validation_file_size_too_small"
	ValidationIsMubasEmail      = "validation_is_mubas_email"
	ValidationIsPhone           = "validation_is_phone"
	ValidationTooManyWords      = "validation_too_many_words"
	ValidationIsPosition        = "validation_is_position"
	ValidationIsUsername        = "validation_is_username"
	ValidationPasswordsMismatch = "validation_passwords_mismatch"
)

// Default English texts used as ozzo-validation messages; locales override them.
const (
	MsgValidationInvalidFileType  = "must be one of the following types: {{.List}}"
	MsgValidationFileSizeTooLarge = "must not be larger than {{.Threshold}} {{.Unit}}"
	MsgValidationFileSizeTooSmall = "must be at least {{.Threshold}} {{.Unit}}"
	MsgValidationIsMubasEmail     = "must be a MUBAS student email (mseYY-name@mubas.ac.mw)"
	MsgValidationIsPhone          = "must be a valid phone number"
	MsgValidationTooManyWords     = "must not be longer than {{.Threshold}} words"
	MsgValidationIsPosition       = "must be a valid position"
	MsgValidationIsUsername       = "may only contain letters, digits and @/./+/-/_"
)
