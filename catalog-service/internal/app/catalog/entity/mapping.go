package entity

// Явные преобразования entity <-> DTO в обе стороны

func (d *CategoryDTO) ToCategory() Category {
	return Category{
		ID:       d.ID,
		Name:     d.Name,
		ImageURL: d.ImageURL,
	}
}

func NewCategoryDTO(c *Category) CategoryDTO {
	return CategoryDTO{
		ID:       c.ID,
		Name:     c.Name,
		ImageURL: c.ImageURL,
	}
}

func NewCategoryDTOs(categories []Category) []CategoryDTO {
	dtos := make([]CategoryDTO, len(categories))
	for i := range categories {
		dtos[i] = NewCategoryDTO(&categories[i])
	}
	return dtos
}

func (d *ProductDTO) ToProduct() Product {
	return Product{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		Price:        d.Price,
		ImageURL:     d.ImageURL,
		Stock:        d.Stock,
		RegisteredAt: d.RegisteredAt,
		CategoryID:   d.CategoryID,
	}
}

func NewProductDTO(p *Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		ImageURL:     p.ImageURL,
		Stock:        p.Stock,
		RegisteredAt: p.RegisteredAt,
		CategoryID:   p.CategoryID,
	}
}

func NewProductDTOs(products []Product) []ProductDTO {
	dtos := make([]ProductDTO, len(products))
	for i := range products {
		dtos[i] = NewProductDTO(&products[i])
	}
	return dtos
}

// NewProductUpdateRequest строит документ для применения JSON Patch из текущего состояния товара
func NewProductUpdateRequest(p *Product) ProductUpdateRequest {
	return ProductUpdateRequest{
		Stock:        p.Stock,
		RegisteredAt: p.RegisteredAt,
	}
}

// ApplyTo переносит поля частичного обновления обратно в товар
func (r *ProductUpdateRequest) ApplyTo(p *Product) {
	p.Stock = r.Stock
	p.RegisteredAt = r.RegisteredAt
}
