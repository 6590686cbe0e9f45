package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorised = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeVerification = "VERIFICATION_FAILED"
	ErrCodeUpstream     = "UPSTREAM_ERROR"
	ErrCodeGatewayTime  = "GATEWAY_TIMEOUT"
	ErrCodeConsistency  = "CONSISTENCY_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// DomainError carries a stable error code alongside a human-readable message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyOrder         = NewDomainError(ErrCodeValidation, "Order must contain at least one item")
	ErrPricingMismatch    = NewDomainError(ErrCodeValidation, "Total price must equal items, tax and shipping prices")
	ErrInvalidCredentials = NewDomainError(ErrCodeUnauthorised, "Invalid email or password")
	ErrNotOrderOwner      = NewDomainError(ErrCodeUnauthorised, "Not authorized to view this order")
	ErrOrderNotFound      = NewDomainError(ErrCodeNotFound, "Order not found")
	ErrProductNotFound    = NewDomainError(ErrCodeNotFound, "Product not found")
	ErrUserNotFound       = NewDomainError(ErrCodeNotFound, "User not found")
	ErrEmailTaken         = NewDomainError(ErrCodeConflict, "An account with this email already exists")
	ErrInvalidSignature   = NewDomainError(ErrCodeVerification, "Invalid payment signature")
	ErrPaymentNotSuccess  = NewDomainError(ErrCodeVerification, "Payment not successful or not found")
	ErrOwnerUnresolved    = NewDomainError(ErrCodeConsistency, "Order owner could not be resolved")
	ErrGatewayTimeout     = NewDomainError(ErrCodeGatewayTime, "Payment provider did not respond in time")
)

// HTTPStatus maps an error code to the HTTP status it is reported with.
func HTTPStatus(code string) int {
	switch code {
	case ErrCodeValidation, ErrCodeVerification:
		return 400
	case ErrCodeUnauthorised:
		return 401
	case ErrCodeForbidden:
		return 403
	case ErrCodeNotFound:
		return 404
	case ErrCodeConflict:
		return 409
	case ErrCodeGatewayTime:
		return 504
	default:
		return 500
	}
}
