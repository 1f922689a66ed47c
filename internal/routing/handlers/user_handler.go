package handlers

import (
	"github.com/gin-gonic/gin"

	"library-admin/internal/managers"
	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

type UserHdl interface {
	ListUsers(c *gin.Context)
	AddUser(c *gin.Context)
	DeleteUser(c *gin.Context)
}

type UserHandler struct {
	MemberManager managers.MemberMgr
}

func NewUserHandler(memberManager managers.MemberMgr) UserHdl {
	return &UserHandler{MemberManager: memberManager}
}

func (handler *UserHandler) ListUsers(c *gin.Context) {
	page := &schemas.UsersPageDTO{PageDTO: newPage(c, "Users Management", "users")}

	members, err := handler.MemberManager.ListMembers(c)
	page.Members = members
	renderPage(c, "users", &page.PageDTO, page, err)
}

func (handler *UserHandler) AddUser(c *gin.Context) {
	request := payload[schemas.MemberRequest](c)

	if _, err := handler.MemberManager.AddMember(c, request); err != nil {
		utils.RedirectWithError(c, "/users", customErrorFor(err), err)
		return
	}

	utils.RedirectWithSuccess(c, "/users", "User added successfully!")
}

func (handler *UserHandler) DeleteUser(c *gin.Context) {
	request := payload[schemas.DeleteRequest](c)

	if err := handler.MemberManager.DeleteMember(c, request.ID); err != nil {
		utils.RedirectWithError(c, "/users", customErrorFor(err), err)
		return
	}

	utils.RedirectWithSuccess(c, "/users", "User deleted successfully!")
}
