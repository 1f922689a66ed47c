package schemas

// CustomError is a struct that represents a user-facing error
// Code is a stable identifier that also appears in the logs
// Message is shown inline on the page
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *CustomError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	BadRequest = &CustomError{
		Code:    "ERR-001",
		Message: "The submitted form is invalid. Please check your input and try again.",
	}
	InvalidCredentials = &CustomError{
		Code:    "ERR-002",
		Message: "Invalid email or password.",
	}
	TooManyAttempts = &CustomError{
		Code:    "ERR-003",
		Message: "Too many login attempts. Please wait a minute and try again.",
	}
	Unauthorized = &CustomError{
		Code:    "ERR-004",
		Message: "Your session has expired. Please log in again.",
	}
	NotFound = &CustomError{
		Code:    "ERR-005",
		Message: "The requested record does not exist.",
	}
	EmailTaken = &CustomError{
		Code:    "ERR-006",
		Message: "A member with this email already exists.",
	}
	EmailUnreachable = &CustomError{
		Code:    "ERR-007",
		Message: "The email address is not reachable.",
	}
	NoCopiesAvailable = &CustomError{
		Code:    "ERR-008",
		Message: "No copies of this book are available.",
	}
	LoanLimitReached = &CustomError{
		Code:    "ERR-009",
		Message: "The member has reached the maximum number of borrowed books.",
	}
	LoanNotActive = &CustomError{
		Code:    "ERR-010",
		Message: "The book has already been returned.",
	}
	FineExists = &CustomError{
		Code:    "ERR-011",
		Message: "A fine has already been recorded for this loan.",
	}
	InvalidDueDate = &CustomError{
		Code:    "ERR-014",
		Message: "The due date must not lie before the issue date.",
	}
	FormExpired = &CustomError{
		Code:    "ERR-015",
		Message: "The form has expired. Please submit it again.",
	}
	DatabaseError = &CustomError{
		Code:    "ERR-012",
		Message: "A database error occurred. Please try again later.",
	}
	InternalServerError = &CustomError{
		Code:    "ERR-013",
		Message: "An internal server error occurred. Please try again later.",
	}
)

// LookupError returns the catalogue entry for a code, or nil when the code is unknown.
func LookupError(code string) *CustomError {
	for _, e := range []*CustomError{BadRequest, InvalidCredentials, TooManyAttempts, Unauthorized, NotFound,
		EmailTaken, EmailUnreachable, NoCopiesAvailable, LoanLimitReached, LoanNotActive, FineExists,
		InvalidDueDate, FormExpired, DatabaseError, InternalServerError} {
		if e.Code == code {
			return e
		}
	}
	return nil
}
