package managers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	log "github.com/sirupsen/logrus"

	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

// FineMgr records late fines. Amounts are entered by staff, nothing is calculated.
type FineMgr interface {
	ListOverdue(ctx context.Context) ([]schemas.OverdueLoan, error)
	AddFine(ctx context.Context, request *schemas.FineRequest) (*schemas.FineNotice, error)
	UpdateFine(ctx context.Context, request *schemas.UpdateFineRequest) error
	ListFines(ctx context.Context) ([]schemas.FineView, error)
}

type FineManager struct {
	DatabaseManager DatabaseMgr
	now             func() time.Time
}

func NewFineManager(databaseMgr DatabaseMgr) FineMgr {
	log.Info("Initializing fine manager")
	return &FineManager{
		DatabaseManager: databaseMgr,
		now:             time.Now,
	}
}

// ListOverdue returns the active loans whose due date has passed, earliest due date first.
func (fm *FineManager) ListOverdue(ctx context.Context) ([]schemas.OverdueLoan, error) {
	queryString := "SELECT ib.IssueID, b.Title, u.Name, ib.IssueDate, ib.DueDate " +
		"FROM IssuedBooks ib " +
		"JOIN Books b ON ib.BookID = b.BookID " +
		"JOIN Users u ON ib.UserID = u.UserID " +
		"WHERE ib.ReturnDate IS NULL AND ib.DueDate < CURRENT_DATE " +
		"ORDER BY ib.DueDate"
	rows, err := fm.DatabaseManager.GetPool().Query(ctx, queryString)
	if err != nil {
		return nil, fmt.Errorf("query overdue loans: %w", err)
	}

	overdue, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (schemas.OverdueLoan, error) {
		var loan schemas.OverdueLoan
		err := row.Scan(&loan.LoanID, &loan.BookTitle, &loan.MemberName, &loan.IssueDate, &loan.DueDate)
		return loan, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan overdue loans: %w", err)
	}

	return overdue, nil
}

// AddFine records a fine for a loan. A loan carries at most one fine.
// The returned notice names the member and book so the caller can inform the member.
func (fm *FineManager) AddFine(ctx context.Context, request *schemas.FineRequest) (*schemas.FineNotice, error) {
	notice := &schemas.FineNotice{
		Amount: request.FineAmount,
		Status: request.PaymentStatus,
	}

	err := utils.WithTransaction(ctx, fm.DatabaseManager.GetPool(), func(tx pgx.Tx) error {
		queryString := "SELECT u.Email, u.Name, b.Title " +
			"FROM IssuedBooks ib " +
			"JOIN Users u ON ib.UserID = u.UserID " +
			"JOIN Books b ON ib.BookID = b.BookID " +
			"WHERE ib.IssueID = $1 FOR UPDATE OF ib"
		err := tx.QueryRow(ctx, queryString, request.LoanID).Scan(&notice.Email, &notice.MemberName, &notice.BookTitle)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock loan: %w", err)
		}

		var exists bool
		if err = tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM Fines WHERE IssueID = $1)", request.LoanID).Scan(&exists); err != nil {
			return fmt.Errorf("check fine: %w", err)
		}
		if exists {
			return ErrFineExists
		}

		paymentDate := fm.paymentDate(request.PaymentStatus, request.PaymentDate)
		queryString = "INSERT INTO Fines (IssueID, FineAmount, PaymentStatus, PaymentDate) VALUES ($1, $2, $3, $4) RETURNING FineID"
		err = tx.QueryRow(ctx, queryString, request.LoanID, request.FineAmount, request.PaymentStatus, paymentDate).Scan(&notice.FineID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrFineExists
			}
			return fmt.Errorf("insert fine: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Recorded fine %d for loan %d", notice.FineID, request.LoanID))
	return notice, nil
}

// UpdateFine overwrites the payment status and date of a fine.
func (fm *FineManager) UpdateFine(ctx context.Context, request *schemas.UpdateFineRequest) error {
	paymentDate := fm.paymentDate(request.PaymentStatus, request.PaymentDate)

	tag, err := fm.DatabaseManager.GetPool().Exec(ctx, "UPDATE Fines SET PaymentStatus = $1, PaymentDate = $2 WHERE FineID = $3",
		request.PaymentStatus, paymentDate, request.FineID)
	if err != nil {
		return fmt.Errorf("update fine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Updated fine %d to %s", request.FineID, request.PaymentStatus))
	return nil
}

// ListFines returns every fine with its loan, book and member, unpaid and paid grouped, newest first.
func (fm *FineManager) ListFines(ctx context.Context) ([]schemas.FineView, error) {
	queryString := "SELECT f.FineID, f.IssueID, f.FineAmount, f.PaymentStatus, f.PaymentDate, b.Title, u.Name, ib.DueDate, ib.ReturnDate " +
		"FROM Fines f " +
		"JOIN IssuedBooks ib ON f.IssueID = ib.IssueID " +
		"JOIN Books b ON ib.BookID = b.BookID " +
		"JOIN Users u ON ib.UserID = u.UserID " +
		"ORDER BY f.PaymentStatus, f.FineID DESC"
	rows, err := fm.DatabaseManager.GetPool().Query(ctx, queryString)
	if err != nil {
		return nil, fmt.Errorf("query fines: %w", err)
	}

	fines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (schemas.FineView, error) {
		var fine schemas.FineView
		err := row.Scan(&fine.ID, &fine.LoanID, &fine.Amount, &fine.Status, &fine.PaymentDate, &fine.BookTitle,
			&fine.MemberName, &fine.DueDate, &fine.ReturnDate)
		return fine, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan fines: %w", err)
	}

	return fines, nil
}

// paymentDate drops the date of unpaid fines and defaults the date of paid fines to today.
func (fm *FineManager) paymentDate(status schemas.FineStatus, date time.Time) pgtype.Date {
	if status != schemas.FineStatusPaid {
		return pgtype.Date{}
	}
	if date.IsZero() {
		date = truncateToDate(fm.now())
	}
	return pgtype.Date{Time: date, Valid: true}
}
