package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MaxProductPrice - верхняя граница цены, выше которой товар считается ошибочно заведенным
	MaxProductPrice = 100000
	// PriceScale - число знаков после запятой в колонке preco decimal(10,2)
	PriceScale = 2

	forbiddenNameChars = "@#$%&*"
)

var trustedURLPrefixes = []string{"https://", "http://"}

func init() {
	// Цены отдаются в JSON числом, а не строкой
	decimal.MarshalJSONWithoutQuotes = true
}

// Category представляет категорию товаров
// Удаление категории не удаляет связанные товары на уровне приложения
type Category struct {
	ID       int       `json:"categoriaId" gorm:"column:categoria_id;primaryKey;autoIncrement"`
	Name     string    `json:"nome" gorm:"column:nome;type:varchar(80);not null" validate:"required,min=3,max=80"`
	ImageURL string    `json:"imagemUrl" gorm:"column:imagem_url;type:varchar(300);not null" validate:"required,max=300,url"`
	Products []Product `json:"produtos" gorm:"foreignKey:CategoryID;references:ID" validate:"-"`
}

// TableName указывает имя таблицы для GORM
func (Category) TableName() string {
	return "categorias"
}

// Validate проверяет правила, которые нельзя выразить тегами validator
func (c *Category) Validate() []Violation {
	var violations []Violation

	if strings.TrimSpace(c.Name) == "" {
		violations = append(violations, Violation{Field: "nome", Message: "name cannot be blank"})
	}

	if strings.ContainsAny(c.Name, forbiddenNameChars) {
		violations = append(violations, Violation{Field: "nome", Message: "name cannot contain special characters"})
	}

	if c.ImageURL != "" && !hasTrustedPrefix(c.ImageURL) {
		violations = append(violations, Violation{
			Field:   "imagemUrl",
			Message: "image URL must start with http:// or https://",
		})
	}

	return violations
}

// Product представляет товар в каталоге
type Product struct {
	ID           int             `json:"produtoId" gorm:"column:produto_id;primaryKey;autoIncrement"`
	Name         string          `json:"nome" gorm:"column:nome;type:varchar(80);not null" validate:"required,min=3,max=80"`
	Description  string          `json:"descricao" gorm:"column:descricao;type:varchar(300);not null" validate:"required,min=5,max=300"`
	Price        decimal.Decimal `json:"preco" gorm:"column:preco;type:decimal(10,2);not null" validate:"required,gte=0.01"`
	ImageURL     string          `json:"imagemUrl" gorm:"column:imagem_url;type:varchar(300);not null" validate:"required,max=300,url"`
	Stock        float32         `json:"estoque" gorm:"column:estoque;not null" validate:"gte=0,lte=10000"`
	RegisteredAt time.Time       `json:"dataCadastro" gorm:"column:data_cadastro;not null"`
	CategoryID   int             `json:"categoriaId" gorm:"column:categoria_id;not null;index" validate:"required"`
	Category     *Category       `json:"-" gorm:"foreignKey:CategoryID;references:ID" validate:"-"`
}

// TableName указывает имя таблицы для GORM
func (Product) TableName() string {
	return "produtos"
}

// Validate проверяет бизнес-правила товара
func (p *Product) Validate() []Violation {
	var violations []Violation

	if p.RegisteredAt.IsZero() {
		violations = append(violations, Violation{Field: "dataCadastro", Message: "registration date is invalid"})
	}

	if strings.TrimSpace(p.Name) == "" {
		violations = append(violations, Violation{Field: "nome", Message: "name cannot be blank"})
	}

	if !p.Price.Equal(p.Price.Round(PriceScale)) {
		violations = append(violations, Violation{
			Field:   "preco",
			Message: "price must have at most 2 decimal places",
		})
	}

	// Мягкое правило: цена формально корректна, но выглядит как опечатка
	if p.Price.GreaterThan(decimal.NewFromInt(MaxProductPrice)) {
		violations = append(violations, Violation{
			Field:   "preco",
			Message: "price looks too high, please check the value",
		})
	}

	return violations
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventType  string          `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED
	ProductID  int             `json:"product_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID int             `json:"category_id"`
	Timestamp  time.Time       `json:"timestamp"`
}

func hasTrustedPrefix(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, prefix := range trustedURLPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
