package handlers

import (
	"github.com/gin-gonic/gin"

	"library-admin/internal/managers"
	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

type IssueHdl interface {
	ShowIssues(c *gin.Context)
	IssueBook(c *gin.Context)
	ReturnBook(c *gin.Context)
}

type IssueHandler struct {
	CatalogManager managers.CatalogMgr
	MemberManager  managers.MemberMgr
	LoanManager    managers.LoanMgr
}

func NewIssueHandler(catalogManager managers.CatalogMgr, memberManager managers.MemberMgr, loanManager managers.LoanMgr) IssueHdl {
	return &IssueHandler{
		CatalogManager: catalogManager,
		MemberManager:  memberManager,
		LoanManager:    loanManager,
	}
}

// ShowIssues renders the issue form, restricted to books with copies on the shelf, and all loans.
func (handler *IssueHandler) ShowIssues(c *gin.Context) {
	page := &schemas.IssuesPageDTO{PageDTO: newPage(c, "Issue/Return Books", "issues"), Today: today()}

	var err error
	if page.Books, err = handler.CatalogManager.ListAvailableBooks(c); err == nil {
		if page.Members, err = handler.MemberManager.ListMemberChoices(c); err == nil {
			page.Loans, err = handler.LoanManager.ListLoans(c)
		}
	}
	renderPage(c, "issues", &page.PageDTO, page, err)
}

func (handler *IssueHandler) IssueBook(c *gin.Context) {
	request := payload[schemas.IssueRequest](c)

	if _, err := handler.LoanManager.Issue(c, request); err != nil {
		utils.RedirectWithError(c, "/issues", customErrorFor(err), err)
		return
	}

	utils.RedirectWithSuccess(c, "/issues", "Book issued successfully!")
}

func (handler *IssueHandler) ReturnBook(c *gin.Context) {
	request := payload[schemas.ReturnRequest](c)

	if err := handler.LoanManager.ReturnBook(c, request.LoanID); err != nil {
		utils.RedirectWithError(c, "/issues", customErrorFor(err), err)
		return
	}

	utils.RedirectWithSuccess(c, "/issues", "Book returned successfully!")
}
