package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"apicatalogo/pkg/metrics"
)

const serviceName = "catalog"

// stagedOp - отложенное изменение, выполняемое внутри транзакции Commit
type stagedOp struct {
	op    metrics.DbOperation
	table string
	apply func(tx *gorm.DB) error
}

// session - общее состояние UnitOfWork, разделяемое всеми его репозиториями
// Не предназначена для конкурентного использования: одна сессия на запрос
type session struct {
	db      *gorm.DB
	pending []stagedOp
	closed  bool
}

func (s *session) stage(op stagedOp) error {
	if s.closed {
		return ErrUnitOfWorkClosed
	}
	s.pending = append(s.pending, op)
	return nil
}

type gormRepository[T any] struct {
	s     *session
	table string
}

func newGormRepository[T any](s *session, table string) *gormRepository[T] {
	return &gormRepository[T]{s: s, table: table}
}

// reader возвращает сессию для чтения без отслеживания изменений
func (r *gormRepository[T]) reader(ctx context.Context) (*gorm.DB, error) {
	if r.s.closed {
		return nil, ErrUnitOfWorkClosed
	}
	return r.s.db.WithContext(ctx), nil
}

// GetAll получает все строки таблицы
func (r *gormRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	db, err := r.reader(ctx)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, r.table)
	defer timer.ObserveDuration()

	var items []T
	if err := db.Find(&items).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get %s: %w", r.table, err)
	}

	return items, nil
}

// Get получает первую строку, удовлетворяющую условию
func (r *gormRepository[T]) Get(ctx context.Context, predicate Predicate) (*T, error) {
	db, err := r.reader(ctx)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, r.table)
	defer timer.ObserveDuration()

	if predicate.Query != "" {
		db = db.Where(predicate.Query, predicate.Args...)
	}

	var item T
	if err := db.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get %s: %w", r.table, err)
	}

	return &item, nil
}

// Create ставит вставку в очередь, идентификатор заполняется после Commit
func (r *gormRepository[T]) Create(item *T) (*T, error) {
	err := r.s.stage(stagedOp{
		op:    metrics.DbOpInsert,
		table: r.table,
		apply: func(tx *gorm.DB) error {
			return tx.Omit(clause.Associations).Create(item).Error
		},
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update ставит в очередь полную перезапись всех колонок строки
func (r *gormRepository[T]) Update(item *T) (*T, error) {
	err := r.s.stage(stagedOp{
		op:    metrics.DbOpUpdate,
		table: r.table,
		apply: func(tx *gorm.DB) error {
			result := tx.Model(item).Select("*").Omit(clause.Associations).Updates(item)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrNotFound
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete ставит в очередь удаление строки по первичному ключу
func (r *gormRepository[T]) Delete(item *T) (*T, error) {
	err := r.s.stage(stagedOp{
		op:    metrics.DbOpDelete,
		table: r.table,
		apply: func(tx *gorm.DB) error {
			result := tx.Delete(item)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrNotFound
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}
