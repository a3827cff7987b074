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

type OptionInput struct {
	Name          string  `json:"name"`
	PriceModifier float64 `json:"priceModifier"`
	Description   string  `json:"description"`
	IsDefault     bool    `json:"isDefault"`
	DisplayOrder  int     `json:"displayOrder"`
}

// CustomizationInput is the body of AddCustomization / UpdateCustomization.
type CustomizationInput struct {
	Name         string        `json:"name"         validate:"required,max=100"`
	Type         string        `json:"type"         validate:"required,in=single_select,multi_select,quantity"`
	Required     bool          `json:"required"`
	DisplayOrder int           `json:"displayOrder" validate:"gte=0"`
	Description  string        `json:"description"  validate:"max=1000"`
	MaxQuantity  *int          `json:"maxQuantity"`
	PricePerUnit float64       `json:"pricePerUnit" validate:"gte=0"`
	Options      []OptionInput `json:"options"`
}

type CustomizationService struct {
	customizations *repositories.CustomizationRepository
}

func NewCustomizationService() *CustomizationService {
	return &CustomizationService{customizations: repositories.NewCustomizationRepository()}
}

func (s *CustomizationService) All(ctx context.Context) ([]models.Customization, error) {
	var out []models.Customization
	err := cache.Remember(menuCustomizationKey, config.MenuCacheTTL(), &out, func() (interface{}, error) {
		return s.customizations.All(ctx)
	})
	if err != nil {
		return nil, fault(ctx, "customization.all", nil, err)
	}
	return out, nil
}

func (s *CustomizationService) Get(ctx context.Context, id uint) (*models.Customization, error) {
	c, err := s.customizations.FindByID(ctx, id)
	if orm.IsNotFound(err) {
		return nil, notFound("Customization not found.")
	}
	if err != nil {
		return nil, fault(ctx, "customization.get", id, err)
	}
	return &c, nil
}

func (s *CustomizationService) Create(ctx context.Context, in CustomizationInput) (*models.Customization, error) {
	c, err := buildCustomization(in)
	if err != nil {
		return nil, err
	}
	err = repositories.Transaction(ctx, func(tx *orm.Query) error {
		return s.customizations.WithTx(tx).Create(ctx, c)
	})
	if err != nil {
		return nil, fault(ctx, "customization.create", c.Name, err)
	}
	invalidateMenu(ctx)
	return c, nil
}

// Update rewrites the customization and replaces all of its options.
func (s *CustomizationService) Update(ctx context.Context, id uint, in CustomizationInput) (*models.Customization, error) {
	ok, err := s.customizations.Exists(ctx, id)
	if err != nil {
		return nil, fault(ctx, "customization.update", id, err)
	}
	if !ok {
		return nil, invalidData("Customization not found.")
	}

	c, err := buildCustomization(in)
	if err != nil {
		return nil, err
	}
	c.ID = id

	err = repositories.Transaction(ctx, func(tx *orm.Query) error {
		return s.customizations.WithTx(tx).Update(ctx, c)
	})
	if err != nil {
		return nil, fault(ctx, "customization.update", id, err)
	}
	invalidateMenu(ctx)
	return s.Get(ctx, id)
}

func (s *CustomizationService) Delete(ctx context.Context, id uint) error {
	ok, err := s.customizations.Exists(ctx, id)
	if err != nil {
		return fault(ctx, "customization.delete", id, err)
	}
	if !ok {
		return invalidData("Customization not found.")
	}
	err = repositories.Transaction(ctx, func(tx *orm.Query) error {
		return s.customizations.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return fault(ctx, "customization.delete", id, err)
	}
	invalidateMenu(ctx)
	return nil
}

// buildCustomization checks the type-specific rules and maps the input.
// maxQuantity and pricePerUnit are dropped for select types.
func buildCustomization(in CustomizationInput) (*models.Customization, error) {
	typ := models.CustomizationType(in.Type)
	if !typ.Valid() {
		return nil, invalidData("Unknown customization type %q.", in.Type)
	}

	c := &models.Customization{
		Name:         strings.TrimSpace(in.Name),
		Type:         typ,
		Required:     in.Required,
		DisplayOrder: in.DisplayOrder,
		Description:  strings.TrimSpace(in.Description),
	}

	if typ == models.CustomizationQuantity {
		if in.MaxQuantity != nil && *in.MaxQuantity < 1 {
			return nil, invalidData("Max quantity must be at least 1.")
		}
		c.MaxQuantity = in.MaxQuantity
		c.PricePerUnit = in.PricePerUnit
	} else if len(in.Options) == 0 {
		return nil, invalidData("At least one option is required.")
	}

	defaults := 0
	for i, o := range in.Options {
		name := strings.TrimSpace(o.Name)
		if name == "" {
			return nil, invalidData("Option %d needs a name.", i+1)
		}
		if o.IsDefault {
			defaults++
		}
		order := o.DisplayOrder
		if order == 0 {
			order = i + 1
		}
		c.Options = append(c.Options, models.CustomizationOption{
			Name:          name,
			PriceModifier: o.PriceModifier,
			Description:   strings.TrimSpace(o.Description),
			IsDefault:     o.IsDefault,
			DisplayOrder:  order,
		})
	}
	if typ == models.CustomizationSingleSelect && defaults > 1 {
		return nil, invalidData("A single-select customization can have only one default option.")
	}
	return c, nil
}
