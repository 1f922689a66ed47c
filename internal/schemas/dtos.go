package schemas

import (
	"html/template"
	"time"
)

// SessionIdentity is the authenticated staff member of a request
// ExpiresAt is the instant after which the session is no longer accepted
type SessionIdentity struct {
	UserID    int        `json:"user_id"`
	Name      string     `json:"name"`
	UserType  MemberType `json:"user_type"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *SessionIdentity) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// PageDTO is a struct that holds what every rendered page needs
// Active is the sidebar entry to highlight
// CSRFField is the hidden input carrying the CSRF token, empty when protection is disabled
// Success and Error are the inline messages of the last form submission
type PageDTO struct {
	Title     string
	Active    string
	Session   *SessionIdentity
	CSRFField template.HTML
	Success   string
	Error     *CustomError
}

// LoginPageDTO is a struct that represents the login page
type LoginPageDTO struct {
	PageDTO
	Email string
}

// BooksPageDTO is a struct that represents the books page
type BooksPageDTO struct {
	PageDTO
	Books []Book
	Form  BookRequest
}

// UsersPageDTO is a struct that represents the users page
type UsersPageDTO struct {
	PageDTO
	Members []Member
	Form    MemberRequest
}

// IssuesPageDTO is a struct that represents the issue/return page
type IssuesPageDTO struct {
	PageDTO
	Books   []BookChoice
	Members []MemberChoice
	Loans   []LoanView
	Today   time.Time
}

// FinesPageDTO is a struct that represents the fines page
type FinesPageDTO struct {
	PageDTO
	Overdue []OverdueLoan
	Fines   []FineView
	Today   time.Time
}
