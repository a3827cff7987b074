package services

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/repositories"
	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/cache"
	"github.com/shashiranjanraj/cafe/pkg/orm"
)

// CategoryInput is the body of AddCategory / UpdateCategory.
type CategoryInput struct {
	Name         string `json:"name"         validate:"required,max=100"`
	Description  string `json:"description"  validate:"max=1000"`
	DisplayOrder int    `json:"displayOrder" validate:"gte=0"`
	IsActive     *bool  `json:"isActive"`
}

type CategoryService struct {
	categories *repositories.CategoryRepository
}

func NewCategoryService() *CategoryService {
	return &CategoryService{categories: repositories.NewCategoryRepository()}
}

// All lists categories in menu order. The listing is cached.
func (s *CategoryService) All(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := cache.Remember(menuCategoriesKey, config.MenuCacheTTL(), &cats, func() (interface{}, error) {
		return s.categories.All(ctx)
	})
	if err != nil {
		return nil, fault(ctx, "category.all", nil, err)
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	cat, err := s.categories.FindByID(ctx, id)
	if orm.IsNotFound(err) {
		return nil, notFound("Category not found.")
	}
	if err != nil {
		return nil, fault(ctx, "category.get", id, err)
	}
	return &cat, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	taken, err := s.categories.NameTaken(ctx, name, 0)
	if err != nil {
		return nil, fault(ctx, "category.create", name, err)
	}
	if taken {
		return nil, invalidData("A category named %q already exists.", name)
	}

	order := in.DisplayOrder
	if order == 0 {
		if order, err = s.categories.NextDisplayOrder(ctx); err != nil {
			return nil, fault(ctx, "category.create", name, err)
		}
	}

	cat := &models.Category{
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		DisplayOrder: order,
		IsActive:     in.IsActive == nil || *in.IsActive,
	}
	if err := s.categories.Create(ctx, cat); err != nil {
		return nil, fault(ctx, "category.create", name, err)
	}
	invalidateMenu(ctx)
	return cat, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	cat, err := s.categories.FindByID(ctx, id)
	if orm.IsNotFound(err) {
		return nil, invalidData("Category not found.")
	}
	if err != nil {
		return nil, fault(ctx, "category.update", id, err)
	}

	name := strings.TrimSpace(in.Name)
	taken, err := s.categories.NameTaken(ctx, name, id)
	if err != nil {
		return nil, fault(ctx, "category.update", id, err)
	}
	if taken {
		return nil, invalidData("A category named %q already exists.", name)
	}

	cat.Name = name
	cat.Description = strings.TrimSpace(in.Description)
	cat.DisplayOrder = in.DisplayOrder
	if in.IsActive != nil {
		cat.IsActive = *in.IsActive
	}
	if err := s.categories.Update(ctx, &cat); err != nil {
		return nil, fault(ctx, "category.update", id, err)
	}
	invalidateMenu(ctx)
	return &cat, nil
}

// Delete removes a category and its product links.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	ok, err := s.categories.Exists(ctx, id)
	if err != nil {
		return fault(ctx, "category.delete", id, err)
	}
	if !ok {
		return invalidData("Category not found.")
	}
	err = repositories.Transaction(ctx, func(tx *orm.Query) error {
		return s.categories.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return fault(ctx, "category.delete", id, err)
	}
	invalidateMenu(ctx)
	return nil
}

// Reorder assigns displayOrder = position (1-based) following ids.
func (s *CategoryService) Reorder(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return invalidData("No categories to reorder.")
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return invalidData("Category %d appears more than once.", id)
		}
		seen[id] = true
	}

	found, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return fault(ctx, "category.reorder", ids, err)
	}
	if len(found) != len(ids) {
		return invalidData("One or more categories do not exist.")
	}

	err = repositories.Transaction(ctx, func(tx *orm.Query) error {
		repo := s.categories.WithTx(tx)
		for i, id := range ids {
			if err := repo.SetDisplayOrder(ctx, id, i+1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fault(ctx, "category.reorder", ids, err)
	}
	invalidateMenu(ctx)
	return nil
}

// UpdateCategoryItemCount moves itemsCount by one. Decrements stop at 0.
func (s *CategoryService) UpdateCategoryItemCount(ctx context.Context, categoryID uint, increment bool) error {
	delta := -1
	if increment {
		delta = 1
	}
	if err := s.categories.AdjustItemsCount(ctx, categoryID, delta); err != nil {
		return fault(ctx, "category.items_count", categoryID, err)
	}
	return nil
}
