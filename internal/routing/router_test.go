package routing

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"library-admin/internal/config"
	"library-admin/internal/managers"
	"library-admin/internal/managers/mocks"
	"library-admin/internal/middleware"
	"library-admin/internal/schemas"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	poolMock pgxmock.PgxPoolIface
	mailMgr  *mocks.MockMailManager
	jwtMgr   managers.JWTMgr
	expect   *httpexpect.Expect
}

func setupMocks(t *testing.T) (*mocks.MockDatabaseManager, managers.JWTMgr, *mocks.MockMailManager) {
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)

	databaseMgrMock := &mocks.MockDatabaseManager{}
	databaseMgrMock.On("GetPool").Return(poolMock)

	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	jwtMgr := managers.NewJWTManager(privateKey, publicKey)

	mailMgrMock := &mocks.MockMailManager{}
	mailMgrMock.On("SendFineNotice", mock.AnythingOfType("*schemas.FineNotice")).Return(nil)

	return databaseMgrMock, jwtMgr, mailMgrMock
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP:    config.HTTP{AllowedOrigins: []string{"http://localhost:8080"}, LoginRatePerMinute: 100},
		Session: config.Session{Lifetime: time.Hour},
	}
}

func setupServer(t *testing.T) *testEnv {
	return setupServerWithConfig(t, testConfig())
}

func setupServerWithConfig(t *testing.T, cfg *config.Config) *testEnv {
	databaseMgrMock, jwtMgr, mailMgrMock := setupMocks(t)

	router, err := InitRouter(cfg, databaseMgrMock, mailMgrMock, jwtMgr)
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	poolMock := databaseMgrMock.GetPool().(pgxmock.PgxPoolIface)
	t.Cleanup(func() {
		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	expect := httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  server.URL,
		Reporter: httpexpect.NewAssertReporter(t),
		Client: &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}},
	})

	return &testEnv{poolMock: poolMock, mailMgr: mailMgrMock, jwtMgr: jwtMgr, expect: expect}
}

// sessionCookie returns a valid session token for a faculty staff member.
func (env *testEnv) sessionCookie(t *testing.T) string {
	token, err := env.jwtMgr.GenerateJWT(env.jwtMgr.GenerateClaims(&schemas.SessionIdentity{
		UserID: 1, Name: "Ada", UserType: schemas.MemberTypeFaculty, ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, err)
	return token
}

func redirectedWithError(customErr *schemas.CustomError, path string) string {
	return path + "?" + url.Values{"error": {customErr.Code}}.Encode()
}

func TestHealth(t *testing.T) {
	env := setupServer(t)

	env.poolMock.ExpectPing()
	env.expect.GET("/health").Expect().Status(http.StatusOK).Body().IsEqual("OK")

	env.poolMock.ExpectPing().WillReturnError(errors.New("connection refused"))
	env.expect.GET("/health").Expect().Status(http.StatusInternalServerError)
}

func TestProtectedPagesRequireSession(t *testing.T) {
	env := setupServer(t)

	for _, path := range []string{"/", "/books", "/users", "/issues", "/fines"} {
		env.expect.GET(path).Expect().Status(http.StatusSeeOther).Header("Location").IsEqual("/login")
	}
	env.expect.POST("/books/delete").WithFormField("id", 1).Expect().
		Status(http.StatusSeeOther).Header("Location").IsEqual("/login")
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		password string
		location string
		cookie   bool
	}{
		{"ValidCredentials", "correct horse", "/books?success=Welcome%2C+Ada%21", true},
		{"WrongPassword", "battery staple", redirectedWithError(schemas.InvalidCredentials, "/login"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupServer(t)

			env.poolMock.ExpectQuery("SELECT UserID, Name, UserType, Password FROM Users WHERE Email").
				WithArgs("ada@example.org").
				WillReturnRows(pgxmock.NewRows([]string{"userid", "name", "usertype", "password"}).
					AddRow(1, "Ada", schemas.MemberTypeFaculty, string(hash)))

			response := env.expect.POST("/login").
				WithFormField("email", "ada@example.org").
				WithFormField("password", tc.password).
				Expect().
				Status(http.StatusSeeOther)
			response.Header("Location").IsEqual(tc.location)

			if tc.cookie {
				response.Cookie(middleware.SessionCookieName).Value().NotEmpty()
			} else {
				response.Cookies().IsEmpty()
			}
		})
	}
}

func TestLoginRejectsInvalidForm(t *testing.T) {
	env := setupServer(t)

	env.expect.POST("/login").
		WithFormField("email", "not-an-email").
		WithFormField("password", "whatever").
		Expect().
		Status(http.StatusSeeOther).Header("Location").IsEqual(redirectedWithError(schemas.BadRequest, "/login"))
}

func TestLoginRateLimitIgnoresForwardedFor(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRatePerMinute = 3
	env := setupServerWithConfig(t, cfg)

	// The form is invalid, so admitted attempts end at validation without touching the database.
	for i := 0; i < cfg.LoginRatePerMinute; i++ {
		env.expect.POST("/login").
			WithHeader("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1)).
			WithFormField("email", "not-an-email").
			WithFormField("password", "whatever").
			Expect().
			Status(http.StatusSeeOther).Header("Location").IsEqual(redirectedWithError(schemas.BadRequest, "/login"))
	}

	env.expect.POST("/login").
		WithHeader("X-Forwarded-For", "198.51.100.7").
		WithFormField("email", "not-an-email").
		WithFormField("password", "whatever").
		Expect().
		Status(http.StatusSeeOther).Header("Location").IsEqual(redirectedWithError(schemas.TooManyAttempts, "/login"))
}

func TestLoginRateLimitUsesTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRatePerMinute = 1
	cfg.TrustedProxies = []string{"127.0.0.1", "::1"}
	env := setupServerWithConfig(t, cfg)

	// Behind a trusted proxy every forwarded client has its own budget.
	for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
		env.expect.POST("/login").
			WithHeader("X-Forwarded-For", client).
			WithFormField("email", "not-an-email").
			WithFormField("password", "whatever").
			Expect().
			Status(http.StatusSeeOther).Header("Location").IsEqual(redirectedWithError(schemas.BadRequest, "/login"))
	}

	env.expect.POST("/login").
		WithHeader("X-Forwarded-For", "203.0.113.1").
		WithFormField("email", "not-an-email").
		WithFormField("password", "whatever").
		Expect().
		Status(http.StatusSeeOther).Header("Location").IsEqual(redirectedWithError(schemas.TooManyAttempts, "/login"))
}

func TestLoginPageShowsError(t *testing.T) {
	env := setupServer(t)

	env.expect.GET("/login").WithQuery("error", schemas.InvalidCredentials.Code).Expect().
		Status(http.StatusOK).Body().Contains(schemas.InvalidCredentials.Message)
}

func TestLogoutClearsSession(t *testing.T) {
	env := setupServer(t)

	response := env.expect.POST("/logout").WithCookie(middleware.SessionCookieName, env.sessionCookie(t)).Expect().
		Status(http.StatusSeeOther)
	response.Header("Location").HasPrefix("/login")
	response.Cookie(middleware.SessionCookieName).Value().IsEmpty()
}

func TestBooks(t *testing.T) {
	env := setupServer(t)
	session := env.sessionCookie(t)

	env.poolMock.ExpectQuery("FROM Books ORDER BY BookID").
		WillReturnRows(pgxmock.NewRows([]string{"bookid", "title", "author", "publisher", "yearpublished", "category", "copiesavailable"}).
			AddRow(1, "Dune", "Frank Herbert", "Chilton", 1965, "Fiction", 2))
	env.expect.GET("/books").WithCookie(middleware.SessionCookieName, session).Expect().
		Status(http.StatusOK).Body().Contains("Dune").Contains("Frank Herbert")

	env.poolMock.ExpectQuery("INSERT INTO Books").
		WithArgs("Dune", "Frank Herbert", "Chilton", 1965, "Fiction", 2).
		WillReturnRows(pgxmock.NewRows([]string{"bookid"}).AddRow(1))
	env.expect.POST("/books").WithCookie(middleware.SessionCookieName, session).
		WithFormField("title", "Dune").
		WithFormField("author", "Frank Herbert").
		WithFormField("publisher", "Chilton").
		WithFormField("year_published", 1965).
		WithFormField("category", "Fiction").
		WithFormField("copies_available", 2).
		Expect().
		Status(http.StatusSeeOther).Header("Location").HasPrefix("/books?success=")

	// Invalid year never reaches the database.
	env.expect.POST("/books").WithCookie(middleware.SessionCookieName, session).
		WithFormField("title", "Dune").
		WithFormField("author", "Frank Herbert").
		WithFormField("year_published", 1800).
		WithFormField("copies_available", 2).
		Expect().
		Status(http.StatusSeeOther).Header("Location").IsEqual(redirectedWithError(schemas.BadRequest, "/books"))

	env.poolMock.ExpectExec("DELETE FROM Books").WithArgs(1).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	env.expect.POST("/books/delete").WithCookie(middleware.SessionCookieName, session).WithFormField("id", 1).Expect().
		Status(http.StatusSeeOther).Header("Location").HasPrefix("/books?success=")
}

func TestBooksPageShowsDatabaseError(t *testing.T) {
	env := setupServer(t)

	env.poolMock.ExpectQuery("FROM Books ORDER BY BookID").WillReturnError(errors.New("connection reset"))
	env.expect.GET("/books").WithCookie(middleware.SessionCookieName, env.sessionCookie(t)).Expect().
		Status(http.StatusInternalServerError).Body().Contains(schemas.DatabaseError.Message)
}

func TestUsers(t *testing.T) {
	env := setupServer(t)
	session := env.sessionCookie(t)

	env.poolMock.ExpectQuery("INSERT INTO Users").
		WithArgs("Sam", schemas.MemberTypeStudent, "sam@example.org", "", 3, 14, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"userid"}).AddRow(2))
	env.expect.POST("/users").WithCookie(middleware.SessionCookieName, session).
		WithFormField("name", "Sam").
		WithFormField("user_type", "Student").
		WithFormField("email", "sam@example.org").
		WithFormField("password", "password1").
		Expect().
		Status(http.StatusSeeOther).Header("Location").HasPrefix("/users?success=")

	env.expect.POST("/users").WithCookie(middleware.SessionCookieName, session).
		WithFormField("name", "Sam").
		WithFormField("user_type", "Librarian").
		WithFormField("email", "sam@example.org").
		WithFormField("password", "password1").
		Expect().
		Status(http.StatusSeeOther).Header("Location").IsEqual(redirectedWithError(schemas.BadRequest, "/users"))

	env.poolMock.ExpectQuery(regexp.QuoteMeta("FROM Users ORDER BY UserID")).
		WillReturnRows(pgxmock.NewRows([]string{"userid", "name", "usertype", "email", "phonenumber", "maxbooksallowed", "issuedurationdays"}).
			AddRow(2, "Sam", schemas.MemberTypeStudent, "sam@example.org", "", 3, 14))
	env.expect.GET("/users").WithCookie(middleware.SessionCookieName, session).Expect().
		Status(http.StatusOK).Body().Contains("sam@example.org").NotContains("password1")

	env.poolMock.ExpectExec("DELETE FROM Users").WithArgs(2).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	env.expect.POST("/users/delete").WithCookie(middleware.SessionCookieName, session).WithFormField("id", 2).Expect().
		Status(http.StatusSeeOther).Header("Location").IsEqual(redirectedWithError(schemas.NotFound, "/users"))
}

func TestIssues(t *testing.T) {
	env := setupServer(t)
	session := env.sessionCookie(t)
	issued := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	env.poolMock.ExpectQuery("WHERE CopiesAvailable > 0").
		WillReturnRows(pgxmock.NewRows([]string{"bookid", "title", "copiesavailable"}).AddRow(5, "Dune", 1))
	env.poolMock.ExpectQuery("SELECT UserID, Name, UserType FROM Users").
		WillReturnRows(pgxmock.NewRows([]string{"userid", "name", "usertype"}).AddRow(3, "Sam", schemas.MemberTypeStudent))
	env.poolMock.ExpectQuery("FROM IssuedBooks ib").
		WillReturnRows(pgxmock.NewRows([]string{"issueid", "bookid", "userid", "issuedate", "duedate", "returndate", "title", "name"}).
			AddRow(42, 5, 3, issued, due, pgtype.Date{}, "Dune", "Sam"))
	env.expect.GET("/issues").WithCookie(middleware.SessionCookieName, session).Expect().
		Status(http.StatusOK).Body().Contains("Dune (1 available)").Contains("2024-02-15")

	// Issue of a book whose last copy is gone.
	env.poolMock.ExpectBegin()
	env.poolMock.ExpectQuery("SELECT CopiesAvailable FROM Books").WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"copiesavailable"}).AddRow(0))
	env.poolMock.ExpectRollback()
	env.expect.POST("/issues").WithCookie(middleware.SessionCookieName, session).
		WithFormField("book_id", 5).
		WithFormField("user_id", 3).
		Expect().
		Status(http.StatusSeeOther).Header("Location").IsEqual(redirectedWithError(schemas.NoCopiesAvailable, "/issues"))

	// Second return of the same loan.
	env.poolMock.ExpectBegin()
	env.poolMock.ExpectQuery("UPDATE IssuedBooks SET ReturnDate").WithArgs(42).WillReturnError(pgx.ErrNoRows)
	env.poolMock.ExpectQuery("SELECT EXISTS").WithArgs(42).WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	env.poolMock.ExpectRollback()
	env.expect.POST("/issues/return").WithCookie(middleware.SessionCookieName, session).
		WithFormField("issue_id", 42).
		Expect().
		Status(http.StatusSeeOther).Header("Location").IsEqual(redirectedWithError(schemas.LoanNotActive, "/issues"))
}

func TestFines(t *testing.T) {
	env := setupServer(t)
	session := env.sessionCookie(t)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	env.poolMock.ExpectQuery("WHERE ib.ReturnDate IS NULL AND ib.DueDate < CURRENT_DATE").
		WillReturnRows(pgxmock.NewRows([]string{"issueid", "title", "name", "issuedate", "duedate"}).AddRow(7, "Dune", "Sam", issued, due))
	env.poolMock.ExpectQuery("FROM Fines f").
		WillReturnRows(pgxmock.NewRows([]string{"fineid", "issueid", "fineamount", "paymentstatus", "paymentdate", "title", "name", "duedate", "returndate"}))
	env.expect.GET("/fines").WithCookie(middleware.SessionCookieName, session).Expect().
		Status(http.StatusOK).Body().Contains("2024-01-15").Contains("No fines recorded.")

	env.poolMock.ExpectBegin()
	env.poolMock.ExpectQuery("SELECT u.Email, u.Name, b.Title").WithArgs(7).
		WillReturnRows(pgxmock.NewRows([]string{"email", "name", "title"}).AddRow("sam@example.org", "Sam", "Dune"))
	env.poolMock.ExpectQuery("SELECT EXISTS").WithArgs(7).WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	env.poolMock.ExpectQuery("INSERT INTO Fines").WithArgs(7, 2.5, schemas.FineStatusUnpaid, pgtype.Date{}).
		WillReturnRows(pgxmock.NewRows([]string{"fineid"}).AddRow(1))
	env.poolMock.ExpectCommit()
	env.expect.POST("/fines").WithCookie(middleware.SessionCookieName, session).
		WithFormField("issue_id", 7).
		WithFormField("fine_amount", "2.50").
		WithFormField("payment_status", "Unpaid").
		Expect().
		Status(http.StatusSeeOther).Header("Location").HasPrefix("/fines?success=")
	env.mailMgr.AssertCalled(t, "SendFineNotice", mock.MatchedBy(func(notice *schemas.FineNotice) bool {
		return notice.Email == "sam@example.org" && notice.BookTitle == "Dune" && notice.Amount == 2.5
	}))

	env.expect.POST("/fines").WithCookie(middleware.SessionCookieName, session).
		WithFormField("issue_id", 7).
		WithFormField("fine_amount", "-1").
		WithFormField("payment_status", "Unpaid").
		Expect().
		Status(http.StatusSeeOther).Header("Location").IsEqual(redirectedWithError(schemas.BadRequest, "/fines"))

	env.poolMock.ExpectExec("UPDATE Fines SET PaymentStatus").WithArgs(schemas.FineStatusPaid, pgxmock.AnyArg(), 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	env.expect.POST("/fines/update").WithCookie(middleware.SessionCookieName, session).
		WithFormField("fine_id", 1).
		WithFormField("payment_status", "Paid").
		Expect().
		Status(http.StatusSeeOther).Header("Location").HasPrefix("/fines?success=")
}
