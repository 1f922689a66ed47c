package managers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

// MemberMgr manages the members (Users table) of the library.
type MemberMgr interface {
	AddMember(ctx context.Context, request *schemas.MemberRequest) (int, error)
	ListMembers(ctx context.Context) ([]schemas.Member, error)
	ListMemberChoices(ctx context.Context) ([]schemas.MemberChoice, error)
	DeleteMember(ctx context.Context, memberId int) error
}

type MemberManager struct {
	DatabaseManager DatabaseMgr
	// VerifyEmail, when set, rejects addresses it reports as unreachable.
	VerifyEmail func(email string) bool
}

func NewMemberManager(databaseMgr DatabaseMgr, verifyEmail func(email string) bool) MemberMgr {
	log.Info("Initializing member manager")
	return &MemberManager{
		DatabaseManager: databaseMgr,
		VerifyEmail:     verifyEmail,
	}
}

// DefaultsFor returns the loan limit and loan duration in days of a member type.
func DefaultsFor(memberType schemas.MemberType) (maxBooks, durationDays int) {
	if memberType == schemas.MemberTypeFaculty {
		return 5, 30
	}
	return 3, 14
}

// loanTerms applies the defaults of the member type to the limits that were not overridden.
func loanTerms(memberType schemas.MemberType, maxBooks, durationDays int) (int, int) {
	defaultMax, defaultDuration := DefaultsFor(memberType)
	if maxBooks <= 0 {
		maxBooks = defaultMax
	}
	if durationDays <= 0 {
		durationDays = defaultDuration
	}
	return maxBooks, durationDays
}

// AddMember stores a new member. A zero loan limit or duration is replaced by the default of the member type.
func (mm *MemberManager) AddMember(ctx context.Context, request *schemas.MemberRequest) (int, error) {
	if mm.VerifyEmail != nil && !mm.VerifyEmail(request.Email) {
		return 0, ErrEmailUnreachable
	}

	maxBooks, durationDays := loanTerms(request.UserType, request.MaxBooksAllowed, request.IssueDurationDays)

	hash, err := HashPassword(request.Password)
	if err != nil {
		return 0, err
	}

	var memberId int
	queryString := "INSERT INTO Users (Name, UserType, Email, PhoneNumber, MaxBooksAllowed, IssueDurationDays, Password) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING UserID"
	err = mm.DatabaseManager.GetPool().QueryRow(ctx, queryString, request.Name, request.UserType, request.Email,
		request.PhoneNumber, maxBooks, durationDays, hash).Scan(&memberId)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert member: %w", err)
	}

	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Added member %d", memberId))
	return memberId, nil
}

// ListMembers returns all members ordered by id. The password column is never selected.
func (mm *MemberManager) ListMembers(ctx context.Context) ([]schemas.Member, error) {
	queryString := "SELECT UserID, Name, UserType, Email, PhoneNumber, MaxBooksAllowed, IssueDurationDays " +
		"FROM Users ORDER BY UserID"
	rows, err := mm.DatabaseManager.GetPool().Query(ctx, queryString)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}

	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (schemas.Member, error) {
		var member schemas.Member
		err := row.Scan(&member.ID, &member.Name, &member.Type, &member.Email, &member.PhoneNumber,
			&member.MaxBooksAllowed, &member.IssueDurationDays)
		return member, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan members: %w", err)
	}

	return members, nil
}

// ListMemberChoices returns id and name of every member for the issue form.
func (mm *MemberManager) ListMemberChoices(ctx context.Context) ([]schemas.MemberChoice, error) {
	rows, err := mm.DatabaseManager.GetPool().Query(ctx, "SELECT UserID, Name, UserType FROM Users ORDER BY Name")
	if err != nil {
		return nil, fmt.Errorf("query member choices: %w", err)
	}

	choices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (schemas.MemberChoice, error) {
		var choice schemas.MemberChoice
		err := row.Scan(&choice.ID, &choice.Name, &choice.Type)
		return choice, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan member choices: %w", err)
	}

	return choices, nil
}

// DeleteMember removes a member together with their loans and fines.
func (mm *MemberManager) DeleteMember(ctx context.Context, memberId int) error {
	tag, err := mm.DatabaseManager.GetPool().Exec(ctx, "DELETE FROM Users WHERE UserID = $1", memberId)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Deleted member %d", memberId))
	return nil
}
