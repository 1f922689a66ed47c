package managers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

// LoanMgr issues and returns books.
type LoanMgr interface {
	Issue(ctx context.Context, request *schemas.IssueRequest) (int, error)
	ReturnBook(ctx context.Context, loanId int) error
	ListLoans(ctx context.Context) ([]schemas.LoanView, error)
}

type LoanManager struct {
	DatabaseManager DatabaseMgr
	now             func() time.Time
}

func NewLoanManager(databaseMgr DatabaseMgr) LoanMgr {
	log.Info("Initializing loan manager")
	return &LoanManager{
		DatabaseManager: databaseMgr,
		now:             time.Now,
	}
}

// Issue lends a copy of a book to a member. The book and member rows stay locked until the transaction
// ends, so two concurrent issues of the last copy cannot both succeed.
func (lm *LoanManager) Issue(ctx context.Context, request *schemas.IssueRequest) (int, error) {
	var loanId int

	err := utils.WithTransaction(ctx, lm.DatabaseManager.GetPool(), func(tx pgx.Tx) error {
		var copies int
		err := tx.QueryRow(ctx, "SELECT CopiesAvailable FROM Books WHERE BookID = $1 FOR UPDATE", request.BookID).Scan(&copies)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock book: %w", err)
		}
		if copies <= 0 {
			return ErrNoCopiesAvailable
		}

		var maxBooks, durationDays int
		err = tx.QueryRow(ctx, "SELECT MaxBooksAllowed, IssueDurationDays FROM Users WHERE UserID = $1 FOR UPDATE",
			request.MemberID).Scan(&maxBooks, &durationDays)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock member: %w", err)
		}

		var activeLoans int
		err = tx.QueryRow(ctx, "SELECT COUNT(*) FROM IssuedBooks WHERE UserID = $1 AND ReturnDate IS NULL",
			request.MemberID).Scan(&activeLoans)
		if err != nil {
			return fmt.Errorf("count active loans: %w", err)
		}
		if activeLoans >= maxBooks {
			return ErrLoanLimitReached
		}

		issueDate := request.IssueDate
		if issueDate.IsZero() {
			issueDate = truncateToDate(lm.now())
		}
		dueDate := request.DueDate
		if dueDate.IsZero() {
			dueDate = issueDate.AddDate(0, 0, durationDays)
		}
		if dueDate.Before(issueDate) {
			return ErrDueBeforeIssue
		}

		queryString := "INSERT INTO IssuedBooks (BookID, UserID, IssueDate, DueDate) VALUES ($1, $2, $3, $4) RETURNING IssueID"
		if err = tx.QueryRow(ctx, queryString, request.BookID, request.MemberID, issueDate, dueDate).Scan(&loanId); err != nil {
			return fmt.Errorf("insert loan: %w", err)
		}

		if _, err = tx.Exec(ctx, "UPDATE Books SET CopiesAvailable = CopiesAvailable - 1 WHERE BookID = $1", request.BookID); err != nil {
			return fmt.Errorf("decrement copies: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Issued book %d to member %d as loan %d", request.BookID, request.MemberID, loanId))
	return loanId, nil
}

// ReturnBook closes an active loan with today's date and puts the copy back on the shelf.
// Returning a loan twice fails with ErrLoanNotActive and leaves the copy count untouched.
func (lm *LoanManager) ReturnBook(ctx context.Context, loanId int) error {
	err := utils.WithTransaction(ctx, lm.DatabaseManager.GetPool(), func(tx pgx.Tx) error {
		var bookId int
		queryString := "UPDATE IssuedBooks SET ReturnDate = CURRENT_DATE WHERE IssueID = $1 AND ReturnDate IS NULL RETURNING BookID"
		err := tx.QueryRow(ctx, queryString, loanId).Scan(&bookId)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("close loan: %w", err)
			}

			var exists bool
			if err = tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM IssuedBooks WHERE IssueID = $1)", loanId).Scan(&exists); err != nil {
				return fmt.Errorf("check loan: %w", err)
			}
			if !exists {
				return ErrNotFound
			}
			return ErrLoanNotActive
		}

		if _, err = tx.Exec(ctx, "UPDATE Books SET CopiesAvailable = CopiesAvailable + 1 WHERE BookID = $1", bookId); err != nil {
			return fmt.Errorf("increment copies: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Returned loan %d", loanId))
	return nil
}

// ListLoans returns every loan with book title and member name, most recent issue first.
func (lm *LoanManager) ListLoans(ctx context.Context) ([]schemas.LoanView, error) {
	queryString := "SELECT ib.IssueID, ib.BookID, ib.UserID, ib.IssueDate, ib.DueDate, ib.ReturnDate, b.Title, u.Name " +
		"FROM IssuedBooks ib " +
		"JOIN Books b ON ib.BookID = b.BookID " +
		"JOIN Users u ON ib.UserID = u.UserID " +
		"ORDER BY ib.IssueDate DESC, ib.IssueID DESC"
	rows, err := lm.DatabaseManager.GetPool().Query(ctx, queryString)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}

	loans, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (schemas.LoanView, error) {
		var loan schemas.LoanView
		err := row.Scan(&loan.ID, &loan.BookID, &loan.MemberID, &loan.IssueDate, &loan.DueDate, &loan.ReturnDate,
			&loan.BookTitle, &loan.MemberName)
		return loan, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan loans: %w", err)
	}

	return loans, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
