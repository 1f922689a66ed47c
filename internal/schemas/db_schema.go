// Package schemas defines the data structures
package schemas

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// MemberType distinguishes the two kinds of library members.
type MemberType string

const (
	MemberTypeStudent MemberType = "Student"
	MemberTypeFaculty MemberType = "Faculty"
)

// FineStatus is the payment state of a fine.
type FineStatus string

const (
	FineStatusPaid   FineStatus = "Paid"
	FineStatusUnpaid FineStatus = "Unpaid"
)

// Book represents a catalog entry in the Books table.
type Book struct {
	ID              int    `json:"book_id"`          // Identifier assigned by the database.
	Title           string `json:"title"`            // Title of the book.
	Author          string `json:"author"`           // Author of the book.
	Publisher       string `json:"publisher"`        // Publisher of the book.
	YearPublished   int    `json:"year_published"`   // Year the book was published.
	Category        string `json:"category"`         // Free-form category, e.g. "Fiction".
	CopiesAvailable int    `json:"copies_available"` // Copies currently on the shelf.
}

// Member represents a borrower in the Users table. The password hash is never loaded into it.
type Member struct {
	ID                int        `json:"user_id"`
	Name              string     `json:"name"`
	Type              MemberType `json:"user_type"`
	Email             string     `json:"email"`
	PhoneNumber       string     `json:"phone_number"`
	MaxBooksAllowed   int        `json:"max_books_allowed"`
	IssueDurationDays int        `json:"issue_duration_days"`
}

// Loan represents a row in IssuedBooks. A loan is active while ReturnDate is not valid.
type Loan struct {
	ID         int         `json:"issue_id"`
	BookID     int         `json:"book_id"`
	MemberID   int         `json:"user_id"`
	IssueDate  time.Time   `json:"issue_date"`
	DueDate    time.Time   `json:"due_date"`
	ReturnDate pgtype.Date `json:"return_date"`
}

// Active reports whether the book has not been returned yet.
func (l Loan) Active() bool {
	return !l.ReturnDate.Valid
}

// LoanView is a loan joined with the book title and the member name.
type LoanView struct {
	Loan
	BookTitle  string `json:"title"`
	MemberName string `json:"name"`
}

// OverdueLoan is an active loan whose due date lies in the past.
type OverdueLoan struct {
	LoanID     int       `json:"issue_id"`
	BookTitle  string    `json:"title"`
	MemberName string    `json:"name"`
	IssueDate  time.Time `json:"issue_date"`
	DueDate    time.Time `json:"due_date"`
}

// Fine represents a row in the Fines table.
type Fine struct {
	ID          int         `json:"fine_id"`
	LoanID      int         `json:"issue_id"`
	Amount      float64     `json:"fine_amount"`
	Status      FineStatus  `json:"payment_status"`
	PaymentDate pgtype.Date `json:"payment_date"`
}

// FineView is a fine joined with its loan, book and member.
type FineView struct {
	Fine
	BookTitle  string      `json:"title"`
	MemberName string      `json:"name"`
	DueDate    time.Time   `json:"due_date"`
	ReturnDate pgtype.Date `json:"return_date"`
}

// BookChoice is an option of the issue form's book selector.
type BookChoice struct {
	ID              int
	Title           string
	CopiesAvailable int
}

// MemberChoice is an option of the issue form's member selector.
type MemberChoice struct {
	ID   int
	Name string
	Type MemberType
}

// FineNotice carries what is needed to notify a member about a newly recorded fine.
type FineNotice struct {
	FineID     int
	Email      string
	MemberName string
	BookTitle  string
	Amount     float64
	Status     FineStatus
}
