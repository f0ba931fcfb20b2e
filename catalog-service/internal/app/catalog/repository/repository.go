package repository

import (
	"context"
	"errors"

	"apicatalogo/catalog-service/internal/app/catalog/entity"
)

var (
	// ErrNotFound возвращается Get, если ни одна строка не подошла под условие
	ErrNotFound            = errors.New("record not found")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrUnitOfWorkClosed    = errors.New("unit of work is closed")
)

// Predicate - условие выборки для Get, не зависящее от ORM
type Predicate struct {
	Query string
	Args  []interface{}
}

// Where строит условие в синтаксисе placeholder'ов GORM: Where("nome = ?", "Bebidas")
func Where(query string, args ...interface{}) Predicate {
	return Predicate{Query: query, Args: args}
}

// Repository - общий набор операций над сущностью T
// Чтение выполняется сразу, изменения только ставятся в очередь до UnitOfWork.Commit
type Repository[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	Get(ctx context.Context, predicate Predicate) (*T, error)
	Create(item *T) (*T, error)
	Update(item *T) (*T, error)
	Delete(item *T) (*T, error)
}

type CategoryRepository interface {
	Repository[entity.Category]
	GetCategoriesWithProducts(ctx context.Context) ([]entity.Category, error)
}

type ProductRepository interface {
	Repository[entity.Product]
	GetProductsByCategory(ctx context.Context, categoryID int) ([]entity.Product, error)
}

// UnitOfWork объединяет репозитории одного запроса над общей сессией
// и фиксирует все отложенные изменения одной транзакцией
type UnitOfWork interface {
	Categories() CategoryRepository
	Products() ProductRepository
	Commit(ctx context.Context) error
	Close()
}

// UnitOfWorkFactory создает новый UnitOfWork на каждый запрос
type UnitOfWorkFactory func() UnitOfWork
