package handlers

import (
	"net/http"
	"strconv"

	"pems_api_go/db"
	"pems_api_go/middleware"
	"pems_api_go/models"
	"pems_api_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ListProducts pages through the tenant's inventory
func ListProducts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page == 0 {
		page = 1
	}
	numOfRecords, _ := strconv.Atoi(c.QueryParam("num_of_records"))

	var response *services.ProductListResponse
	err := db.WithTenant(c.Request().Context(), middleware.TenantFromContext(c), func(s *db.TenantSession) error {
		var err error
		response, err = services.ListProducts(s, page, numOfRecords)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateProduct adds an inventory entry
func CreateProduct(c echo.Context) error {
	var input services.ProductInput
	if err := c.Bind(&input); err != nil {
		return respondError(c, models.NewValidation("invalid product payload"))
	}
	if input.ProductName == "" {
		return respondError(c, models.NewValidation("product_name is required"))
	}

	var product *models.ProductInventory
	err := db.WithTenant(c.Request().Context(), middleware.TenantFromContext(c), func(s *db.TenantSession) error {
		var err error
		product, err = services.CreateProduct(s, &input)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct patches stock and price for a product by its public id
func UpdateProduct(c echo.Context) error {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		return respondError(c, models.NewValidation("invalid product id"))
	}

	var input services.ProductUpdateInput
	if err := c.Bind(&input); err != nil {
		return respondError(c, models.NewValidation("invalid product payload"))
	}

	var product *models.ProductInventory
	err = db.WithTenant(c.Request().Context(), middleware.TenantFromContext(c), func(s *db.TenantSession) error {
		var err error
		product, err = services.UpdateProductStock(s, productID, &input)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// ListCategories returns the tenant's category table
func ListCategories(c echo.Context) error {
	var categories []models.Category
	err := db.WithTenant(c.Request().Context(), middleware.TenantFromContext(c), func(s *db.TenantSession) error {
		var err error
		categories, err = services.ListCategories(s)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

// CreateCategory adds a category
func CreateCategory(c echo.Context) error {
	var category models.Category
	if err := c.Bind(&category); err != nil {
		return respondError(c, models.NewValidation("invalid category payload"))
	}
	if category.Name == "" {
		return respondError(c, models.NewValidation("name is required"))
	}

	err := db.WithTenant(c.Request().Context(), middleware.TenantFromContext(c), func(s *db.TenantSession) error {
		return services.CreateCategory(s, &category)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, category)
}
