package managers

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("record not found")
	ErrNoCopiesAvailable  = errors.New("no copies available")
	ErrLoanLimitReached   = errors.New("loan limit reached")
	ErrLoanNotActive      = errors.New("loan is not active")
	ErrFineExists         = errors.New("fine already recorded for loan")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrEmailUnreachable   = errors.New("email address not reachable")
	ErrDueBeforeIssue     = errors.New("due date before issue date")
)

// uniqueViolation is the SQLSTATE of unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
