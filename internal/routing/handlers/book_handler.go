package handlers

import (
	"github.com/gin-gonic/gin"

	"library-admin/internal/managers"
	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

type BookHdl interface {
	ListBooks(c *gin.Context)
	AddBook(c *gin.Context)
	DeleteBook(c *gin.Context)
}

type BookHandler struct {
	CatalogManager managers.CatalogMgr
}

func NewBookHandler(catalogManager managers.CatalogMgr) BookHdl {
	return &BookHandler{CatalogManager: catalogManager}
}

func (handler *BookHandler) ListBooks(c *gin.Context) {
	page := &schemas.BooksPageDTO{PageDTO: newPage(c, "Books Management", "books")}

	books, err := handler.CatalogManager.ListBooks(c)
	page.Books = books
	renderPage(c, "books", &page.PageDTO, page, err)
}

func (handler *BookHandler) AddBook(c *gin.Context) {
	request := payload[schemas.BookRequest](c)

	if _, err := handler.CatalogManager.AddBook(c, request); err != nil {
		utils.RedirectWithError(c, "/books", customErrorFor(err), err)
		return
	}

	utils.RedirectWithSuccess(c, "/books", "Book added successfully!")
}

func (handler *BookHandler) DeleteBook(c *gin.Context) {
	request := payload[schemas.DeleteRequest](c)

	if err := handler.CatalogManager.DeleteBook(c, request.ID); err != nil {
		utils.RedirectWithError(c, "/books", customErrorFor(err), err)
		return
	}

	utils.RedirectWithSuccess(c, "/books", "Book deleted successfully!")
}

