package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code.
// Errors built with NewDomainError for a known code therefore match the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared by the isolation, governance and invoice components.
const (
	CodeNotFound                 = "NOT_FOUND"
	CodeInvalidInput             = "INVALID_INPUT"
	CodeAuthorizationDenied      = "AUTHORIZATION_DENIED"
	CodeNoTenant                 = "NO_TENANT"
	CodeIdentifierRequired       = "IDENTIFIER_REQUIRED"
	CodeDuplicateRace            = "DUPLICATE_RACE"
	CodeInvalidTransition        = "INVALID_TRANSITION"
	CodeMissingTaxCode           = "MISSING_TAX_CODE"
	CodeMasterProductNotApproved = "MASTER_PRODUCT_NOT_APPROVED"
	CodeInsufficientStock        = "INSUFFICIENT_STOCK"
	CodeInvalidSerial            = "INVALID_SERIAL"
	CodeStaleState               = "STALE_STATE"
	CodeInvalidState             = "INVALID_STATE"
	CodeHierarchyCycle           = "HIERARCHY_CYCLE"
	CodeAlreadyExists            = "ALREADY_EXISTS"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrAuthorizationDenied = NewDomainError(CodeAuthorizationDenied, "Not authorized to perform this action")
	ErrNoTenant            = NewDomainError(CodeNoTenant, "Principal is not a member of any organization")
	ErrIdentifierRequired  = NewDomainError(CodeIdentifierRequired, "A mobile number or tax registration number is required")
	ErrDuplicateRace       = NewDomainError(CodeDuplicateRace, "Record was created concurrently")
	ErrInvalidTransition   = NewDomainError(CodeInvalidTransition, "Transition is not allowed from the current status")
	ErrMissingTaxCode      = NewDomainError(CodeMissingTaxCode, "A valid, active tax code is required")
	ErrMasterNotApproved   = NewDomainError(CodeMasterProductNotApproved, "Master product is not approved")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInvalidSerial       = NewDomainError(CodeInvalidSerial, "Serial number is not available")
	ErrStaleState          = NewDomainError(CodeStaleState, "Record was changed by another request")
	ErrHierarchyCycle      = NewDomainError(CodeHierarchyCycle, "Reporting line would create a cycle")
)
