package managers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

// CatalogMgr manages the books of the library.
type CatalogMgr interface {
	AddBook(ctx context.Context, request *schemas.BookRequest) (int, error)
	ListBooks(ctx context.Context) ([]schemas.Book, error)
	ListAvailableBooks(ctx context.Context) ([]schemas.BookChoice, error)
	DeleteBook(ctx context.Context, bookId int) error
}

type CatalogManager struct {
	DatabaseManager DatabaseMgr
}

func NewCatalogManager(databaseMgr DatabaseMgr) CatalogMgr {
	log.Info("Initializing catalog manager")
	return &CatalogManager{DatabaseManager: databaseMgr}
}

// AddBook inserts a book and returns its id.
func (cm *CatalogManager) AddBook(ctx context.Context, request *schemas.BookRequest) (int, error) {
	var bookId int

	queryString := "INSERT INTO Books (Title, Author, Publisher, YearPublished, Category, CopiesAvailable) " +
		"VALUES ($1, $2, $3, $4, $5, $6) RETURNING BookID"
	err := cm.DatabaseManager.GetPool().QueryRow(ctx, queryString, request.Title, request.Author, request.Publisher,
		request.YearPublished, request.Category, request.CopiesAvailable).Scan(&bookId)
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}

	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Added book %d", bookId))
	return bookId, nil
}

// ListBooks returns the whole catalog ordered by id.
func (cm *CatalogManager) ListBooks(ctx context.Context) ([]schemas.Book, error) {
	queryString := "SELECT BookID, Title, Author, Publisher, YearPublished, Category, CopiesAvailable " +
		"FROM Books ORDER BY BookID"
	rows, err := cm.DatabaseManager.GetPool().Query(ctx, queryString)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}

	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (schemas.Book, error) {
		var book schemas.Book
		err := row.Scan(&book.ID, &book.Title, &book.Author, &book.Publisher, &book.YearPublished,
			&book.Category, &book.CopiesAvailable)
		return book, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan books: %w", err)
	}

	return books, nil
}

// ListAvailableBooks returns the books that have at least one copy on the shelf.
func (cm *CatalogManager) ListAvailableBooks(ctx context.Context) ([]schemas.BookChoice, error) {
	queryString := "SELECT BookID, Title, CopiesAvailable FROM Books WHERE CopiesAvailable > 0 ORDER BY Title"
	rows, err := cm.DatabaseManager.GetPool().Query(ctx, queryString)
	if err != nil {
		return nil, fmt.Errorf("query available books: %w", err)
	}

	choices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (schemas.BookChoice, error) {
		var choice schemas.BookChoice
		err := row.Scan(&choice.ID, &choice.Title, &choice.CopiesAvailable)
		return choice, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan available books: %w", err)
	}

	return choices, nil
}

// DeleteBook removes a book. Loans and fines referencing it are removed with it.
func (cm *CatalogManager) DeleteBook(ctx context.Context, bookId int) error {
	tag, err := cm.DatabaseManager.GetPool().Exec(ctx, "DELETE FROM Books WHERE BookID = $1", bookId)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Deleted book %d", bookId))
	return nil
}
