package services_test

import (
	"context"
	"net/http"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rvd99/ali-baba/models"
	"github.com/Rvd99/ali-baba/services"
)

type mockCategoryRepo struct {
	byID      *models.Category
	byIDErr   error
	list      []models.Category
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	children  int64
}

func (m *mockCategoryRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Category, error) {
	return m.byID, m.byIDErr
}
func (m *mockCategoryRepo) FindBySlug(_ context.Context, _ string) (*models.Category, error) {
	return m.byID, m.byIDErr
}
func (m *mockCategoryRepo) List(_ context.Context, _ bool) ([]models.Category, error) {
	return m.list, m.listErr
}
func (m *mockCategoryRepo) Create(_ context.Context, _ *models.Category) error { return m.createErr }
func (m *mockCategoryRepo) Update(_ context.Context, _ *models.Category) error { return m.updateErr }
func (m *mockCategoryRepo) Delete(_ context.Context, _ uuid.UUID) error        { return m.deleteErr }
func (m *mockCategoryRepo) CountChildren(_ context.Context, _ uuid.UUID) (int64, error) {
	return m.children, nil
}

func newCatalog(productRepo *mockProductRepo, categoryRepo *mockCategoryRepo) *services.CatalogService {
	cache := services.NewProductCache(nil, zap.NewNop())
	return services.NewCatalogService(productRepo, categoryRepo, cache, zap.NewNop())
}

func TestGenerateSlug(t *testing.T) {
	slug := services.GenerateSlug("  Wireless Keyboard (2024)! ")
	assert.Regexp(t, regexp.MustCompile(`^wireless-keyboard-2024-[0-9a-z]+$`), slug)

	// Same name twice yields distinct slugs.
	other := services.GenerateSlug("Wireless Keyboard (2024)")
	assert.NotEqual(t, slug, other)
}

func TestGetProduct_NotFound(t *testing.T) {
	catalog := newCatalog(&mockProductRepo{byIDErr: gorm.ErrRecordNotFound}, &mockCategoryRepo{})

	_, svcErr := catalog.GetProduct(context.Background(), uuid.NewString())
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	catalog := newCatalog(&mockProductRepo{}, &mockCategoryRepo{byIDErr: gorm.ErrRecordNotFound})

	_, svcErr := catalog.CreateProduct(context.Background(), uuid.New(), &services.CreateProductRequest{
		Name:        "Desk",
		Description: "A desk",
		Price:       15000,
		CategoryID:  uuid.New(),
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
}

func TestCreateProduct_DefaultsAndOwnership(t *testing.T) {
	productRepo := &mockProductRepo{}
	catalog := newCatalog(productRepo, &mockCategoryRepo{byID: &models.Category{ID: uuid.New()}})

	sellerID := uuid.New()
	product, svcErr := catalog.CreateProduct(context.Background(), sellerID, &services.CreateProductRequest{
		Name:        "Standing Desk",
		Description: "Motorized",
		Price:       45000,
		CategoryID:  uuid.New(),
	})

	assert.Nil(t, svcErr)
	assert.Equal(t, sellerID, product.SellerID)
	assert.True(t, product.Published, "products default to published")
	assert.Equal(t, 1, product.MinOrder)
	assert.Contains(t, product.Slug, "standing-desk-")
}

func TestUpdateProduct_OnlyOwnerOrAdmin(t *testing.T) {
	ownerID := uuid.New()
	existing := &models.Product{
		ID:       uuid.New(),
		Name:     "Desk",
		SellerID: ownerID,
		Price:    15000,
	}
	productRepo := &mockProductRepo{byID: existing}
	catalog := newCatalog(productRepo, &mockCategoryRepo{})

	newName := "Desk v2"
	_, svcErr := catalog.UpdateProduct(context.Background(), uuid.New(), models.RoleSeller, existing.ID, &services.UpdateProductRequest{Name: &newName})
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.StatusCode)

	updated, svcErr := catalog.UpdateProduct(context.Background(), ownerID, models.RoleSeller, existing.ID, &services.UpdateProductRequest{Name: &newName})
	assert.Nil(t, svcErr)
	assert.Equal(t, "Desk v2", updated.Name)
	assert.Contains(t, updated.Slug, "desk-v2-")

	// Admin bypasses ownership.
	price := int64(16000)
	_, svcErr = catalog.UpdateProduct(context.Background(), uuid.New(), models.RoleAdmin, existing.ID, &services.UpdateProductRequest{Price: &price})
	assert.Nil(t, svcErr)
}

func TestUpdateProduct_RejectsNegativeStock(t *testing.T) {
	ownerID := uuid.New()
	productRepo := &mockProductRepo{byID: &models.Product{ID: uuid.New(), SellerID: ownerID}}
	catalog := newCatalog(productRepo, &mockCategoryRepo{})

	bad := -1
	_, svcErr := catalog.UpdateProduct(context.Background(), ownerID, models.RoleSeller, uuid.New(), &services.UpdateProductRequest{Stock: &bad})
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
}
