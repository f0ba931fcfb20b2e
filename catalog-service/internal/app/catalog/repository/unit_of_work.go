package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"apicatalogo/catalog-service/internal/app/catalog/entity"
	"apicatalogo/pkg/metrics"
)

// Коды ошибок PostgreSQL, которые классифицируются при Commit
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

type unitOfWork struct {
	s          *session
	categories CategoryRepository
	products   ProductRepository
}

// NewUnitOfWork создает UnitOfWork над новой сессией GORM
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{s: &session{db: db.Session(&gorm.Session{NewDB: true})}}
}

// NewUnitOfWorkFactory возвращает фабрику, создающую UnitOfWork на каждый вызов
func NewUnitOfWorkFactory(db *gorm.DB) UnitOfWorkFactory {
	return func() UnitOfWork {
		return NewUnitOfWork(db)
	}
}

// Categories лениво создает репозиторий категорий
func (u *unitOfWork) Categories() CategoryRepository {
	if u.categories == nil {
		u.categories = newCategoryRepository(u.s)
	}
	return u.categories
}

// Products лениво создает репозиторий товаров
func (u *unitOfWork) Products() ProductRepository {
	if u.products == nil {
		u.products = newProductRepository(u.s)
	}
	return u.products
}

// Commit выполняет все отложенные изменения в одной транзакции
// При любой ошибке транзакция откатывается целиком, очередь очищается в обоих случаях
func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.s.closed {
		return ErrUnitOfWorkClosed
	}

	pending := u.s.pending
	u.s.pending = nil
	if len(pending) == 0 {
		return nil
	}

	err := u.s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range pending {
			timer := metrics.NewDbTimer(serviceName, op.op, op.table)
			err := op.apply(tx)
			timer.ObserveDuration()
			if err != nil {
				metrics.RecordDbError(serviceName, op.op)
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.CatalogCommits.WithLabelValues("failed").Inc()
		return classifyCommitError(err)
	}

	metrics.CatalogCommits.WithLabelValues("success").Inc()
	return nil
}

// Close освобождает сессию и отбрасывает незафиксированные изменения
func (u *unitOfWork) Close() {
	u.s.pending = nil
	u.s.closed = true
}

func classifyCommitError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pgErr.ConstraintName)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicateKey, pgErr.ConstraintName)
		}
	}

	return fmt.Errorf("failed to commit: %w", err)
}

// Migrate создает или обновляет схему таблиц categorias и produtos
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.Category{}, &entity.Product{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
