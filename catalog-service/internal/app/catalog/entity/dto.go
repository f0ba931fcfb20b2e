package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryDTO - представление категории на границе API
type CategoryDTO struct {
	ID       int    `json:"categoriaId"`
	Name     string `json:"nome" validate:"required,min=3,max=80"`
	ImageURL string `json:"imagemUrl" validate:"required,max=300,url"`
}

// Validate применяет к DTO правила категории
func (d *CategoryDTO) Validate() []Violation {
	category := d.ToCategory()
	return category.Validate()
}

// ProductDTO - представление товара на границе API
type ProductDTO struct {
	ID           int             `json:"produtoId"`
	Name         string          `json:"nome" validate:"required,min=3,max=80"`
	Description  string          `json:"descricao" validate:"required,min=5,max=300"`
	Price        decimal.Decimal `json:"preco" validate:"required,gte=0.01"`
	ImageURL     string          `json:"imagemUrl" validate:"required,max=300,url"`
	Stock        float32         `json:"estoque" validate:"gte=0,lte=10000"`
	RegisteredAt time.Time       `json:"dataCadastro"`
	CategoryID   int             `json:"categoriaId" validate:"required"`
}

// Validate применяет к DTO бизнес-правила товара
func (d *ProductDTO) Validate() []Violation {
	product := d.ToProduct()
	return product.Validate()
}

// ProductUpdateRequest - документ, к которому применяется JSON Patch при частичном обновлении
type ProductUpdateRequest struct {
	Stock        float32   `json:"estoque" validate:"gte=0,lte=10000"`
	RegisteredAt time.Time `json:"dataCadastro"`
}

// Validate проверяет дату регистрации после применения патча
func (r *ProductUpdateRequest) Validate() []Violation {
	if r.RegisteredAt.IsZero() {
		return []Violation{{Field: "dataCadastro", Message: "registration date is invalid"}}
	}
	return nil
}

type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}
