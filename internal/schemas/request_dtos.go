// Package schemas defines the request structures for the form submissions of the application.
package schemas

import "time"

// LoginRequest is a struct that represents a login form submission
// Email is required and must be a valid email
// Password is required
type LoginRequest struct {
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required,max=72" sanitize:"-"`
}

// BookRequest is a struct that represents the add book form
// Title and Author are required
// YearPublished must lie between 1900 and the current year
// CopiesAvailable must be at least 1
type BookRequest struct {
	Title           string `form:"title" validate:"required,max=255"`
	Author          string `form:"author" validate:"required,max=255"`
	Publisher       string `form:"publisher" validate:"max=255"`
	YearPublished   int    `form:"year_published" validate:"min=1900,not_future_year"`
	Category        string `form:"category" validate:"max=100"`
	CopiesAvailable int    `form:"copies_available" validate:"min=1"`
}

// MemberRequest is a struct that represents the add member form
// UserType is either Student or Faculty
// MaxBooksAllowed and IssueDurationDays are optional, zero selects the default of the member type
type MemberRequest struct {
	Name              string     `form:"name" validate:"required,max=255"`
	UserType          MemberType `form:"user_type" validate:"required,member_type"`
	Email             string     `form:"email" validate:"required,email,max=100"`
	PhoneNumber       string     `form:"phone_number" validate:"max=20"`
	MaxBooksAllowed   int        `form:"max_books_allowed" validate:"min=0"`
	IssueDurationDays int        `form:"issue_duration_days" validate:"min=0"`
	Password          string     `form:"password" validate:"required,min=8,max=72" sanitize:"-"`
}

// IssueRequest is a struct that represents the issue book form
// IssueDate and DueDate are optional and default to today and today plus the member's loan duration
type IssueRequest struct {
	BookID    int       `form:"book_id" validate:"required,min=1"`
	MemberID  int       `form:"user_id" validate:"required,min=1"`
	IssueDate time.Time `form:"issue_date" time_format:"2006-01-02"`
	DueDate   time.Time `form:"due_date" time_format:"2006-01-02"`
}

// ReturnRequest is a struct that represents the return book action
type ReturnRequest struct {
	LoanID int `form:"issue_id" validate:"required,min=1"`
}

// DeleteRequest is a struct that represents the delete action of the books and users pages
type DeleteRequest struct {
	ID int `form:"id" validate:"required,min=1"`
}

// FineRequest is a struct that represents the add fine form
// FineAmount must not be negative
// PaymentDate is only kept when PaymentStatus is Paid
type FineRequest struct {
	LoanID        int        `form:"issue_id" validate:"required,min=1"`
	FineAmount    float64    `form:"fine_amount" validate:"min=0"`
	PaymentStatus FineStatus `form:"payment_status" validate:"required,fine_status"`
	PaymentDate   time.Time  `form:"payment_date" time_format:"2006-01-02"`
}

// UpdateFineRequest is a struct that represents the update fine form
type UpdateFineRequest struct {
	FineID        int        `form:"fine_id" validate:"required,min=1"`
	PaymentStatus FineStatus `form:"payment_status" validate:"required,fine_status"`
	PaymentDate   time.Time  `form:"payment_date" time_format:"2006-01-02"`
}
