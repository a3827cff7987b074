package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/repositories"
	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/cache"
	"github.com/shashiranjanraj/cafe/pkg/logger"
	"github.com/shashiranjanraj/cafe/pkg/orm"
	"github.com/shashiranjanraj/cafe/pkg/storage"
)

// ProductInput is the body of AddProduct / UpdateProduct. Category and
// customization ids arrive as strings from the admin form.
type ProductInput struct {
	Name           string   `json:"name"         validate:"required,max=150"`
	Price          float64  `json:"price"        validate:"gte=0"`
	Description    string   `json:"description"  validate:"max=2000"`
	Status         string   `json:"status"       validate:"nullable,in=Available,OutOfStock,Unavailable"`
	Stock          int      `json:"stock"        validate:"gte=0"`
	ImageURL       string   `json:"imageUrl"`
	ImagePath      string   `json:"imagePath"`
	Categories     []string `json:"categories"`
	Customizations []string `json:"customizations"`
	DisplayOrder   int      `json:"displayOrder" validate:"gte=0"`
	IsActive       *bool    `json:"isActive"`
}

type CategoryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ProductView is a product as the menu shows it: the row plus its linked
// categories and customizations.
type ProductView struct {
	models.Product
	Categories     []CategoryRef          `json:"categories"`
	Customizations []models.Customization `json:"customizations"`
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type ProductService struct {
	products       *repositories.ProductRepository
	categories     *repositories.CategoryRepository
	customizations *repositories.CustomizationRepository
	disk           storage.Disk
}

func NewProductService() *ProductService {
	return &ProductService{
		products:       repositories.NewProductRepository(),
		categories:     repositories.NewCategoryRepository(),
		customizations: repositories.NewCustomizationRepository(),
	}
}

// WithDisk stores product images on d instead of the default disk.
func (s *ProductService) WithDisk(d storage.Disk) *ProductService {
	s.disk = d
	return s
}

func (s *ProductService) imageDisk() storage.Disk {
	if s.disk != nil {
		return s.disk
	}
	return storage.Default()
}

// All lists the menu. The listing is cached for MENU_CACHE_TTL and dropped
// on any menu mutation.
func (s *ProductService) All(ctx context.Context) ([]ProductView, error) {
	var out []ProductView
	err := cache.Remember(menuProductsKey, config.MenuCacheTTL(), &out, func() (interface{}, error) {
		products, err := s.products.All(ctx)
		if err != nil {
			return nil, err
		}
		views := make([]ProductView, 0, len(products))
		for _, p := range products {
			views = append(views, toProductView(p))
		}
		return views, nil
	})
	if err != nil {
		return nil, fault(ctx, "product.all", nil, err)
	}
	return out, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*ProductView, error) {
	p, err := s.products.FindByID(ctx, id)
	if orm.IsNotFound(err) {
		return nil, notFound("Product not found.")
	}
	if err != nil {
		return nil, fault(ctx, "product.get", id, err)
	}
	v := toProductView(p)
	return &v, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*ProductView, error) {
	catIDs, custIDs, err := s.resolveLinks(ctx, in)
	if err != nil {
		return nil, err
	}

	p := &models.Product{}
	applyProductInput(p, in)

	err = repositories.Transaction(ctx, func(tx *orm.Query) error {
		if err := s.products.WithTx(tx).Create(ctx, p); err != nil {
			return err
		}
		return s.syncLinks(ctx, tx, p.ID, nil, catIDs, nil, custIDs)
	})
	if err != nil {
		return nil, fault(ctx, "product.create", p.Name, err)
	}
	invalidateMenu(ctx)
	return s.Get(ctx, p.ID)
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*ProductView, error) {
	p, err := s.products.FindByID(ctx, id)
	if orm.IsNotFound(err) {
		return nil, invalidData("Product not found.")
	}
	if err != nil {
		return nil, fault(ctx, "product.update", id, err)
	}

	catIDs, custIDs, err := s.resolveLinks(ctx, in)
	if err != nil {
		return nil, err
	}

	applyProductInput(&p, in)
	p.ProductCategories = nil
	p.ProductCustomizations = nil

	err = repositories.Transaction(ctx, func(tx *orm.Query) error {
		repo := s.products.WithTx(tx)
		if err := repo.Update(ctx, &p); err != nil {
			return err
		}
		prevCats, err := repo.CategoryIDs(ctx, id)
		if err != nil {
			return err
		}
		prevCust, err := repo.CustomizationIDs(ctx, id)
		if err != nil {
			return err
		}
		return s.syncLinks(ctx, tx, id, prevCats, catIDs, prevCust, custIDs)
	})
	if err != nil {
		return nil, fault(ctx, "product.update", id, err)
	}
	invalidateMenu(ctx)
	return s.Get(ctx, id)
}

// Delete removes the product, its links and its stored image.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	p, err := s.products.FindByID(ctx, id)
	if orm.IsNotFound(err) {
		return invalidData("Product not found.")
	}
	if err != nil {
		return fault(ctx, "product.delete", id, err)
	}

	err = repositories.Transaction(ctx, func(tx *orm.Query) error {
		if err := s.syncLinks(ctx, tx, id, p.CategoryIDs(), nil, nil, nil); err != nil {
			return err
		}
		return s.products.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return fault(ctx, "product.delete", id, err)
	}

	if p.ImagePath != "" {
		s.removeImage(ctx, p.ImagePath)
	}
	invalidateMenu(ctx)
	return nil
}

// UploadImage stores an image for the product and returns its public URL.
// The previous image, if any, is removed.
func (s *ProductService) UploadImage(ctx context.Context, id uint, filename string, r io.Reader) (string, error) {
	p, err := s.products.FindByID(ctx, id)
	if orm.IsNotFound(err) {
		return "", invalidData("Product not found.")
	}
	if err != nil {
		return "", fault(ctx, "product.upload_image", id, err)
	}

	ext := strings.ToLower(path.Ext(filename))
	if !imageExtensions[ext] {
		return "", invalidData("Unsupported image type %q.", ext)
	}

	body := bufio.NewReaderSize(r, 512)
	head, _ := body.Peek(512)
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return "", invalidData("The uploaded file is not an image.")
	}

	disk := s.imageDisk()
	key := fmt.Sprintf("products/%d/%s%s", id, uuid.NewString(), ext)
	if err := disk.Put(ctx, key, body); err != nil {
		return "", fault(ctx, "product.upload_image", id, err)
	}
	url := disk.URL(key)

	if err := s.products.SetImage(ctx, id, url, key); err != nil {
		return "", fault(ctx, "product.upload_image", id, err)
	}
	if p.ImagePath != "" && p.ImagePath != key {
		s.removeImage(ctx, p.ImagePath)
	}
	invalidateMenu(ctx)
	return url, nil
}

func (s *ProductService) removeImage(ctx context.Context, key string) {
	if err := s.imageDisk().Delete(ctx, key); err != nil {
		logger.WithCtx(ctx).Warn("services: remove product image", "path", key, "error", err)
	}
}

// syncLinks applies one diff per link kind: links are inserted or deleted
// only for ids that enter or leave the set, and itemsCount moves with the
// category links.
func (s *ProductService) syncLinks(ctx context.Context, tx *orm.Query, productID uint, prevCats, nextCats, prevCust, nextCust []uint) error {
	repo := s.products.WithTx(tx)
	cats := s.categories.WithTx(tx)

	added, removed := diffIDs(prevCats, nextCats)
	if err := repo.UnlinkCategories(ctx, productID, removed); err != nil {
		return err
	}
	if err := repo.LinkCategories(ctx, productID, added); err != nil {
		return err
	}
	for _, id := range removed {
		if err := cats.AdjustItemsCount(ctx, id, -1); err != nil {
			return err
		}
	}
	for _, id := range added {
		if err := cats.AdjustItemsCount(ctx, id, 1); err != nil {
			return err
		}
	}

	added, removed = diffIDs(prevCust, nextCust)
	if err := repo.UnlinkCustomizations(ctx, productID, removed); err != nil {
		return err
	}
	return repo.LinkCustomizations(ctx, productID, added)
}

// resolveLinks parses the id lists and checks that every id exists.
func (s *ProductService) resolveLinks(ctx context.Context, in ProductInput) (cats, custs []uint, err error) {
	if cats, err = parseIDs(in.Categories, "category"); err != nil {
		return nil, nil, err
	}
	if custs, err = parseIDs(in.Customizations, "customization"); err != nil {
		return nil, nil, err
	}

	foundCats, err := s.categories.FindByIDs(ctx, cats)
	if err != nil {
		return nil, nil, fault(ctx, "product.resolve_links", cats, err)
	}
	if len(foundCats) != len(cats) {
		return nil, nil, invalidData("One or more categories do not exist.")
	}

	foundCust, err := s.customizations.FindByIDs(ctx, custs)
	if err != nil {
		return nil, nil, fault(ctx, "product.resolve_links", custs, err)
	}
	if len(foundCust) != len(custs) {
		return nil, nil, invalidData("One or more customizations do not exist.")
	}
	return cats, custs, nil
}

// parseIDs converts form ids to uints, dropping blanks and duplicates.
func parseIDs(raw []string, kind string) ([]uint, error) {
	seen := make(map[uint]bool, len(raw))
	ids := make([]uint, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		n, err := strconv.ParseUint(r, 10, 64)
		if err != nil || n == 0 {
			return nil, invalidData("Invalid %s id %q.", kind, r)
		}
		if !seen[uint(n)] {
			seen[uint(n)] = true
			ids = append(ids, uint(n))
		}
	}
	return ids, nil
}

func applyProductInput(p *models.Product, in ProductInput) {
	status := models.ProductStatus(in.Status)
	if status == "" {
		status = models.ProductAvailable
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.BasePrice = models.RoundMoney(in.Price)
	p.Status = status
	p.Stock = in.Stock
	p.DisplayOrder = in.DisplayOrder
	p.IsAvailable = in.IsActive == nil || *in.IsActive
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	if in.ImagePath != "" {
		p.ImagePath = in.ImagePath
	}
}

func toProductView(p models.Product) ProductView {
	v := ProductView{
		Product:        p,
		Categories:     make([]CategoryRef, 0, len(p.ProductCategories)),
		Customizations: make([]models.Customization, 0, len(p.ProductCustomizations)),
	}
	for _, l := range p.ProductCategories {
		v.Categories = append(v.Categories, CategoryRef{ID: l.CategoryID, Name: l.Category.Name})
	}
	for _, l := range p.ProductCustomizations {
		v.Customizations = append(v.Customizations, l.Customization)
	}
	return v
}
