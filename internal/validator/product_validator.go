package validator

import (
	"unicode/utf8"

	"farmmarket/internal/domain/model"
	"farmmarket/internal/usecase"
)

type productValidator struct {
	categories map[model.Category]struct{}
}

// categoriesが空ならデフォルトのカテゴリ
func NewProductValidator(categories []model.Category) usecase.ProductValidator {
	if len(categories) == 0 {
		categories = model.DefaultCategories
	}
	set := make(map[model.Category]struct{}, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return &productValidator{categories: set}
}

// 出品・更新の入力を検証（正規化済みの値が来る）
func (v *productValidator) ValidateProduct(in usecase.ProductInput) error {
	if in.Name == "" {
		return invalid("name is required")
	}
	if utf8.RuneCountInString(in.Name) > 255 {
		return invalid("name is too long")
	}

	// 価格は0より大きい
	if !in.Price.IsPositive() {
		return invalid("price must be greater than 0")
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return invalid("price must have at most 2 decimal places")
	}

	if in.Stock < 0 {
		return invalid("stock must be 0 or more")
	}

	if _, ok := v.categories[in.Category]; !ok {
		return invalid("invalid category")
	}

	if utf8.RuneCountInString(in.Description) > 2000 {
		return invalid("description is too long")
	}
	return nil
}
