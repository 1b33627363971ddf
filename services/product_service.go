package services

import (
	"errors"
	"fmt"

	"pems_api_go/db"
	"pems_api_go/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductInput is the create payload for an inventory entry
type ProductInput struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	CategoryID  uint    `json:"category_id"`
}

// ProductUpdateInput carries the mutable stock fields; nil means unchanged
type ProductUpdateInput struct {
	Quantity *int     `json:"quantity"`
	Price    *float64 `json:"price"`
}

// ProductListResponse is the paginated inventory envelope
type ProductListResponse struct {
	TotalPages   int                       `json:"total_pages"`
	TotalRecords int64                     `json:"total_records"`
	Result       []models.ProductInventory `json:"result"`
}

// ListProducts pages through the tenant's inventory, newest first
func ListProducts(s *db.TenantSession, page, numOfRecords int) (*ProductListResponse, error) {
	if numOfRecords <= 0 {
		numOfRecords = DefaultPageSize
	}

	var totalRecords int64
	if err := s.Model(&models.ProductInventory{}).Count(&totalRecords).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	totalPages := int((totalRecords + int64(numOfRecords) - 1) / int64(numOfRecords))
	response := &ProductListResponse{
		TotalPages:   totalPages,
		TotalRecords: totalRecords,
		Result:       []models.ProductInventory{},
	}
	if page < 1 || (totalRecords > 0 && page > totalPages) {
		return response, nil
	}

	if err := s.Preload("Category").
		Order("created_on DESC").
		Offset((page - 1) * numOfRecords).
		Limit(numOfRecords).
		Find(&response.Result).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return response, nil
}

// CreateProduct adds an inventory entry with a generated product id. The
// category must already exist.
func CreateProduct(s *db.TenantSession, input *ProductInput) (*models.ProductInventory, error) {
	var category models.Category
	if err := s.First(&category, input.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound("Category", input.CategoryID)
		}
		return nil, fmt.Errorf("failed to look up category %d: %w", input.CategoryID, err)
	}

	product := models.ProductInventory{
		ProductID:   uuid.New(),
		ProductName: input.ProductName,
		Quantity:    input.Quantity,
		Price:       input.Price,
		Description: input.Description,
		CategoryID:  input.CategoryID,
	}
	if err := s.Create(&product).Error; err != nil {
		return nil, translateWriteError(err, "product")
	}
	product.Category = &category
	return &product, nil
}

// UpdateProductStock patches quantity and price for a product by its public id
func UpdateProductStock(s *db.TenantSession, productID uuid.UUID, input *ProductUpdateInput) (*models.ProductInventory, error) {
	var product models.ProductInventory
	if err := s.Where("product_id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound("Product", productID)
		}
		return nil, fmt.Errorf("failed to look up product %s: %w", productID, err)
	}

	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, models.NewValidation("quantity cannot be negative")
		}
		product.Quantity = *input.Quantity
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, models.NewValidation("price cannot be negative")
		}
		product.Price = *input.Price
	}

	if err := s.Save(&product).Error; err != nil {
		return nil, translateWriteError(err, "product")
	}
	return &product, nil
}

// ListCategories returns the tenant's category table
func ListCategories(s *db.TenantSession) ([]models.Category, error) {
	var categories []models.Category
	if err := s.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

// CreateCategory adds a category; duplicate names surface as conflicts
func CreateCategory(s *db.TenantSession, category *models.Category) error {
	if err := s.Create(category).Error; err != nil {
		return translateWriteError(err, "category")
	}
	return nil
}
