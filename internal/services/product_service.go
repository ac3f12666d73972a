package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"chemstore/internal/models"
	"chemstore/internal/repositories"
	"chemstore/internal/upload"
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo     repositories.ProductRepository
	uploader upload.Uploader
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, uploader upload.Uploader) *ProductService {
	return &ProductService{
		repo:     repo,
		uploader: uploader,
	}
}

// ProductView is a catalog entry together with its public slug.
type ProductView struct {
	models.Product
	Slug string `json:"slug"`
}

func viewOf(p models.Product) ProductView {
	return ProductView{Product: p, Slug: Slug(p.Name, p.CASNumber)}
}

// CreateProductInput is the admin form for a new catalog entry.
type CreateProductInput struct {
	Name            string           `json:"name" form:"name" validate:"required"`
	Formula         string           `json:"formula" form:"formula" validate:"required"`
	CASNumber       string           `json:"casNumber" form:"casNumber" validate:"required,cas"`
	Category        string           `json:"category" form:"category" validate:"required"`
	Price           int64            `json:"price" form:"price" validate:"required,gt=0"`
	Quantity        string           `json:"quantity" form:"quantity" validate:"required"`
	Description     string           `json:"description" form:"description" validate:"required"`
	Purity          string           `json:"purity" form:"purity" validate:"required"`
	MolecularWeight float64          `json:"molecularWeight" form:"molecularWeight" validate:"required,gt=0"`
	Hazards         string           `json:"hazards" form:"hazards" validate:"required"`
	InStock         bool             `json:"inStock" form:"inStock"`
	StockLevel      int              `json:"stockLevel" form:"stockLevel" validate:"gte=0"`
	Image           *upload.Document `json:"image" form:"-" validate:"required"`
}

// UpdateProductInput holds the fields an admin may change on a product.
type UpdateProductInput struct {
	Price      int64  `json:"price" validate:"required,gt=0"`
	Quantity   string `json:"quantity" validate:"required"`
	InStock    *bool  `json:"inStock" validate:"required"`
	StockLevel *int   `json:"stockLevel" validate:"required,gte=0"`
}

// GetAllProducts retrieves the catalog, newest first.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]ProductView, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, internal(err, "Failed to fetch products")
	}
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, viewOf(p))
	}
	return views, nil
}

// GetProductBySlug retrieves a single product by its public slug.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*ProductView, error) {
	p, err := productBySlug(ctx, s.repo, slug)
	if err != nil {
		return nil, err
	}
	v := viewOf(*p)
	return &v, nil
}

// CreateProduct stores the image and adds a new product listed by sellerID.
func (s *ProductService) CreateProduct(ctx context.Context, sellerID string, in CreateProductInput) (*ProductView, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	hazards := ParseHazards(in.Hazards)
	if len(hazards) == 0 {
		return nil, &Error{Kind: KindInvalidInput, Message: "Invalid fields: hazards", Fields: []string{"hazards"}}
	}

	if _, err := s.repo.GetByCASNumber(ctx, in.CASNumber); err == nil {
		return nil, conflict("Product with CAS number %s already exists", in.CASNumber)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, internal(err, "Failed to create product")
	}

	imageURL, err := s.uploader.Upload(ctx, *in.Image)
	if err != nil {
		return nil, uploadFailed(err, "image", "Failed to upload product image")
	}

	product := &models.Product{
		Name:            in.Name,
		Formula:         in.Formula,
		CASNumber:       in.CASNumber,
		Category:        in.Category,
		Price:           in.Price,
		Image:           imageURL,
		Description:     in.Description,
		Purity:          in.Purity,
		MolecularWeight: in.MolecularWeight,
		Hazards:         hazards,
		InStock:         in.InStock,
		StockLevel:      in.StockLevel,
		Quantity:        in.Quantity,
		SellerID:        sellerID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, internal(err, "Failed to create product")
	}
	v := viewOf(*product)
	return &v, nil
}

// UpdateProduct changes price, quantity descriptor and stock of a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*ProductView, error) {
	if err := requireFields(map[string]string{"id": id}, "id"); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, internal(err, "Failed to update product")
	}

	product.Price = in.Price
	product.Quantity = in.Quantity
	product.InStock = *in.InStock
	product.StockLevel = *in.StockLevel
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, internal(err, "Failed to update product")
	}
	v := viewOf(*product)
	return &v, nil
}

// DeleteProduct deletes a product by its ID. Cart and order lines that still
// point at it are left in place and skipped when read.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := requireFields(map[string]string{"id": id}, "id"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Product not found")
		}
		return internal(err, "Failed to delete product")
	}
	return nil
}

// ParseHazards accepts a JSON array of strings or a comma separated list.
func ParseHazards(raw string) []string {
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		list = strings.Split(raw, ",")
	}
	hazards := make([]string, 0, len(list))
	for _, h := range list {
		if h = strings.TrimSpace(h); h != "" {
			hazards = append(hazards, h)
		}
	}
	return hazards
}
