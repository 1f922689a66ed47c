package handlers

import (
	"github.com/gin-gonic/gin"

	"library-admin/internal/managers"
	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

type FineHdl interface {
	ShowFines(c *gin.Context)
	AddFine(c *gin.Context)
	UpdateFine(c *gin.Context)
}

type FineHandler struct {
	FineManager managers.FineMgr
	MailManager managers.MailMgr
}

func NewFineHandler(fineManager managers.FineMgr, mailManager managers.MailMgr) FineHdl {
	return &FineHandler{
		FineManager: fineManager,
		MailManager: mailManager,
	}
}

// ShowFines renders the overdue loans, the add fine form and all recorded fines.
func (handler *FineHandler) ShowFines(c *gin.Context) {
	page := &schemas.FinesPageDTO{PageDTO: newPage(c, "Fines Management", "fines"), Today: today()}

	var err error
	if page.Overdue, err = handler.FineManager.ListOverdue(c); err == nil {
		page.Fines, err = handler.FineManager.ListFines(c)
	}
	renderPage(c, "fines", &page.PageDTO, page, err)
}

// AddFine records the fine and notifies the member. A failed notice does not fail the submission.
func (handler *FineHandler) AddFine(c *gin.Context) {
	request := payload[schemas.FineRequest](c)

	notice, err := handler.FineManager.AddFine(c, request)
	if err != nil {
		utils.RedirectWithError(c, "/fines", customErrorFor(err), err)
		return
	}

	if err = handler.MailManager.SendFineNotice(notice); err != nil {
		utils.LogMessageWithFieldsAndError(c, "warn", "Fine notice could not be sent", err)
	}

	utils.RedirectWithSuccess(c, "/fines", "Fine added successfully!")
}

func (handler *FineHandler) UpdateFine(c *gin.Context) {
	request := payload[schemas.UpdateFineRequest](c)

	if err := handler.FineManager.UpdateFine(c, request); err != nil {
		utils.RedirectWithError(c, "/fines", customErrorFor(err), err)
		return
	}

	utils.RedirectWithSuccess(c, "/fines", "Fine updated successfully!")
}
