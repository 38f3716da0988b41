package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"supply-order-service/models"
	"supply-order-service/services"
)

func newProductService(products ...*models.Product) (*services.ProductService, *mockProductRepo) {
	repo := newMockProductRepo(products...)
	return services.NewProductService(repo, nil, zap.NewNop()), repo
}

func TestGetProduct_OwnerReads(t *testing.T) {
	supplier := primitive.NewObjectID()
	p := testProduct(supplier, 5, 3)
	svc, _ := newProductService(p)

	got, svcErr := svc.GetProduct(context.Background(), supplier.Hex(), p.ID.Hex())
	require.Nil(t, svcErr)
	assert.Equal(t, p.ID, got.ID)
}

func TestGetProduct_OtherSuppliersProductHidden(t *testing.T) {
	p := testProduct(primitive.NewObjectID(), 5, 3)
	svc, _ := newProductService(p)

	// Same answer a missing product would give; production prices do
	// not leak across suppliers.
	_, svcErr := svc.GetProduct(context.Background(), primitive.NewObjectID().Hex(), p.ID.Hex())
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestGetProduct_UnknownProduct(t *testing.T) {
	svc, _ := newProductService()

	_, svcErr := svc.GetProduct(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestAdjustStock_OtherSuppliersProductHidden(t *testing.T) {
	p := testProduct(primitive.NewObjectID(), 5, 3)
	svc, repo := newProductService(p)

	qty := 50
	_, svcErr := svc.AdjustStock(context.Background(), primitive.NewObjectID().Hex(), p.ID.Hex(),
		&models.AdjustStockRequest{Quantity: &qty})
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
	assert.Equal(t, 5, repo.products[p.ID].Quantity)
}
