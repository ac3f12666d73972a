package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"chemstore/internal/models"
	"chemstore/internal/services"
	"chemstore/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetAllProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, new(MockUploader))

	expectedProducts := []models.Product{
		{ID: "1", Name: "Sodium Chloride", CASNumber: "7647-14-5", Price: 850},
		{ID: "2", Name: "Acetone", CASNumber: "67-64-1", Price: 540},
	}

	mockRepo.On("GetAll", ctx).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(ctx)

	assert.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, expectedProducts[0], products[0].Product)
	assert.Equal(t, "sodium-chloride-7647-14-5", products[0].Slug)
	assert.Equal(t, "acetone-67-64-1", products[1].Slug)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductBySlug(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, new(MockUploader))

	expectedProduct := &models.Product{ID: "1", Name: "Sodium Chloride", CASNumber: "7647-14-5", Price: 850}

	// Test successful retrieval
	mockRepo.On("GetByCASNumber", ctx, "7647-14-5").Return(expectedProduct, nil).Once()
	product, err := service.GetProductBySlug(ctx, "sodium-chloride-7647-14-5")
	assert.NoError(t, err)
	assert.Equal(t, *expectedProduct, product.Product)
	mockRepo.AssertExpectations(t)

	// Test product not found
	mockRepo.On("GetByCASNumber", ctx, "1-1-1").Return(nil, notFoundErr("product")).Once()
	_, err = service.GetProductBySlug(ctx, "x-1-1-1")
	assert.Equal(t, services.KindNotFound, services.KindOf(err))
	mockRepo.AssertExpectations(t)

	// Test malformed slug
	_, err = service.GetProductBySlug(ctx, "sodium-chloride")
	assert.Equal(t, services.KindInvalidInput, services.KindOf(err))
}

func newProductInput() services.CreateProductInput {
	return services.CreateProductInput{
		Name:            "Sodium Chloride",
		Formula:         "NaCl",
		CASNumber:       "7647-14-5",
		Category:        "Salts",
		Price:           850,
		Quantity:        "500 g",
		Description:     "Analytical grade",
		Purity:          "99.5%",
		MolecularWeight: 58.44,
		Hazards:         `["Irritant", " Hygroscopic "]`,
		InStock:         true,
		StockLevel:      20,
		Image:           &upload.Document{Filename: "nacl.png", Body: strings.NewReader("png")},
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockUploader := new(MockUploader)
	service := services.NewProductService(mockRepo, mockUploader)

	mockRepo.On("GetByCASNumber", ctx, "7647-14-5").Return(nil, notFoundErr("product")).Once()
	mockUploader.On("Upload", ctx, mock.AnythingOfType("upload.Document")).Return("/uploads/nacl.png", nil).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.CreateProduct(ctx, "seller-1", newProductInput())
	require.NoError(t, err)
	assert.Equal(t, "/uploads/nacl.png", product.Image)
	assert.Equal(t, []string{"Irritant", "Hygroscopic"}, product.Hazards)
	assert.Equal(t, "seller-1", product.SellerID)
	assert.Equal(t, "sodium-chloride-7647-14-5", product.Slug)
	mockRepo.AssertExpectations(t)
	mockUploader.AssertExpectations(t)
}

func TestProductService_CreateProduct_Errors(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockUploader := new(MockUploader)
	service := services.NewProductService(mockRepo, mockUploader)

	// Test duplicate CAS number
	mockRepo.On("GetByCASNumber", ctx, "7647-14-5").Return(&models.Product{ID: "1"}, nil).Once()
	_, err := service.CreateProduct(ctx, "seller-1", newProductInput())
	assert.Equal(t, services.KindConflict, services.KindOf(err))

	// Test upload failure
	mockRepo.On("GetByCASNumber", ctx, "7647-14-5").Return(nil, notFoundErr("product")).Once()
	mockUploader.On("Upload", ctx, mock.Anything).Return("", errors.New("disk full")).Once()
	_, err = service.CreateProduct(ctx, "seller-1", newProductInput())
	assert.Equal(t, services.KindUploadFailed, services.KindOf(err))

	// Test image of an unsupported type
	mockRepo.On("GetByCASNumber", ctx, "7647-14-5").Return(nil, notFoundErr("product")).Once()
	mockUploader.On("Upload", ctx, mock.Anything).Return("", fmt.Errorf("%w: %q", upload.ErrUnsupportedType, "nacl.svg")).Once()
	_, err = service.CreateProduct(ctx, "seller-1", newProductInput())
	var typeErr *services.Error
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, services.KindInvalidInput, typeErr.Kind)
	assert.Equal(t, []string{"image"}, typeErr.Fields)

	// Test validation
	in := newProductInput()
	in.Name = ""
	in.CASNumber = "not-a-cas"
	in.Image = nil
	_, err = service.CreateProduct(ctx, "seller-1", in)
	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.ElementsMatch(t, []string{"name", "image", "casNumber"}, se.Fields)

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, new(MockUploader))

	existing := &models.Product{ID: "1", Name: "Acetone", CASNumber: "67-64-1", Price: 540, InStock: true, StockLevel: 3}
	inStock := false
	stock := 0

	mockRepo.On("GetByID", ctx, "1").Return(existing, nil).Once()
	mockRepo.On("Update", ctx, existing).Return(nil).Once()
	updated, err := service.UpdateProduct(ctx, "1", services.UpdateProductInput{
		Price: 600, Quantity: "1 L", InStock: &inStock, StockLevel: &stock,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(600), updated.Price)
	assert.False(t, updated.InStock)
	assert.Equal(t, 0, updated.StockLevel)

	// Test product not found
	mockRepo.On("GetByID", ctx, "99").Return(nil, notFoundErr("product")).Once()
	_, err = service.UpdateProduct(ctx, "99", services.UpdateProductInput{
		Price: 600, Quantity: "1 L", InStock: &inStock, StockLevel: &stock,
	})
	assert.Equal(t, services.KindNotFound, services.KindOf(err))

	// Test missing fields
	_, err = service.UpdateProduct(ctx, "1", services.UpdateProductInput{Price: 600})
	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.ElementsMatch(t, []string{"quantity", "inStock", "stockLevel"}, se.Fields)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, new(MockUploader))

	// Test successful deletion
	mockRepo.On("Delete", ctx, "1").Return(nil).Once()
	err := service.DeleteProduct(ctx, "1")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Test deletion of non-existent product
	mockRepo.On("Delete", ctx, "99").Return(notFoundErr("product")).Once()
	err = service.DeleteProduct(ctx, "99")
	assert.Equal(t, services.KindNotFound, services.KindOf(err))
	mockRepo.AssertExpectations(t)

	err = service.DeleteProduct(ctx, "")
	assert.Equal(t, services.KindInvalidInput, services.KindOf(err))
}

func TestParseHazards(t *testing.T) {
	assert.Equal(t, []string{"Flammable", "Toxic"}, services.ParseHazards(`["Flammable","Toxic"]`))
	assert.Equal(t, []string{"Flammable", "Toxic"}, services.ParseHazards("Flammable, Toxic,"))
	assert.Empty(t, services.ParseHazards(" , "))
}
