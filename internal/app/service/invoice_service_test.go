package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/internal/db"
)

type invoiceServiceFixture struct {
	service  InvoiceService
	db       *gorm.DB
	admin    *model.User
	supplier *model.Supplier
	product  *model.Product
}

func setupInvoiceServiceTest(t *testing.T) *invoiceServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	invoiceRepo := repository.NewInvoiceRepository(testDB)
	supplierRepo := repository.NewSupplierRepository(testDB)
	invoiceService := NewInvoiceService(invoiceRepo, supplierRepo, testDB)

	admin := &model.User{
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Name:         "Admin",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	testDB.Create(admin)

	supplier := &model.Supplier{
		Name:  "Acme Wholesale",
		Email: "orders@acme.example.com",
	}
	testDB.Create(supplier)

	product := &model.Product{
		Name:          "Test Product",
		Price:         100,
		StockQuantity: 10,
		IsActive:      true,
	}
	testDB.Create(product)

	return &invoiceServiceFixture{
		service:  invoiceService,
		db:       testDB,
		admin:    admin,
		supplier: supplier,
		product:  product,
	}
}

func TestInvoiceService_CreateInvoice_Success(t *testing.T) {
	f := setupInvoiceServiceTest(t)

	invoice, err := f.service.CreateInvoice(CreateInvoiceInput{
		SupplierID:   f.supplier.ID,
		ReceivedByID: f.admin.ID,
		Items: []InvoiceItemInput{
			{ProductID: f.product.ID, Quantity: 5, UnitCost: 40},
		},
		Notes: "restock",
	})
	require.NoError(t, err)
	assert.NotZero(t, invoice.ID)
	assert.NotEmpty(t, invoice.InvoiceNumber)
	assert.Equal(t, f.supplier.ID, invoice.SupplierID)
	assert.Equal(t, f.admin.ID, invoice.ReceivedByID)
	assert.Equal(t, float64(200), invoice.Subtotal)
	assert.Equal(t, float64(200), invoice.TotalAmount)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, float64(200), invoice.Items[0].LineTotal)

	var updatedProduct model.Product
	f.db.First(&updatedProduct, f.product.ID)
	assert.Equal(t, 15, updatedProduct.StockQuantity)
}

func TestInvoiceService_CreateInvoice_ShippingAndTax(t *testing.T) {
	f := setupInvoiceServiceTest(t)

	invoice, err := f.service.CreateInvoice(CreateInvoiceInput{
		SupplierID:   f.supplier.ID,
		ReceivedByID: f.admin.ID,
		Items: []InvoiceItemInput{
			{ProductID: f.product.ID, Quantity: 3, UnitCost: 50},
		},
		ShippingCost: 25,
		TaxAmount:    15,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(150), invoice.Subtotal)
	assert.Equal(t, float64(25), invoice.ShippingCost)
	assert.Equal(t, float64(15), invoice.TaxAmount)
	assert.Equal(t, float64(190), invoice.TotalAmount)
}

func TestInvoiceService_CreateInvoice_EmptyItems(t *testing.T) {
	f := setupInvoiceServiceTest(t)

	invoice, err := f.service.CreateInvoice(CreateInvoiceInput{
		SupplierID:   f.supplier.ID,
		ReceivedByID: f.admin.ID,
	})
	assert.ErrorIs(t, err, ErrEmptyInvoice)
	assert.Nil(t, invoice)
}

func TestInvoiceService_CreateInvoice_InvalidQuantity(t *testing.T) {
	f := setupInvoiceServiceTest(t)

	invoice, err := f.service.CreateInvoice(CreateInvoiceInput{
		SupplierID:   f.supplier.ID,
		ReceivedByID: f.admin.ID,
		Items: []InvoiceItemInput{
			{ProductID: f.product.ID, Quantity: 0, UnitCost: 40},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Nil(t, invoice)
}

func TestInvoiceService_CreateInvoice_SupplierNotFound(t *testing.T) {
	f := setupInvoiceServiceTest(t)

	invoice, err := f.service.CreateInvoice(CreateInvoiceInput{
		SupplierID:   9999,
		ReceivedByID: f.admin.ID,
		Items: []InvoiceItemInput{
			{ProductID: f.product.ID, Quantity: 1, UnitCost: 40},
		},
	})
	assert.ErrorIs(t, err, ErrSupplierNotFound)
	assert.Nil(t, invoice)
}

func TestInvoiceService_CreateInvoice_ReportsAllUnknownProducts(t *testing.T) {
	f := setupInvoiceServiceTest(t)

	invoice, err := f.service.CreateInvoice(CreateInvoiceInput{
		SupplierID:   f.supplier.ID,
		ReceivedByID: f.admin.ID,
		Items: []InvoiceItemInput{
			{ProductID: f.product.ID, Quantity: 3, UnitCost: 40},
			{ProductID: 9998, Quantity: 1, UnitCost: 10},
			{ProductID: 9999, Quantity: 2, UnitCost: 20},
		},
	})
	require.Error(t, err)
	assert.Nil(t, invoice)

	var unknown *UnknownProductsError
	require.True(t, errors.As(err, &unknown))
	assert.ElementsMatch(t, []uint{9998, 9999}, unknown.ProductIDs)

	// The known product's stock must be untouched
	var updatedProduct model.Product
	f.db.First(&updatedProduct, f.product.ID)
	assert.Equal(t, 10, updatedProduct.StockQuantity)

	var invoiceCount int64
	f.db.Model(&model.PurchaseInvoice{}).Count(&invoiceCount)
	assert.Equal(t, int64(0), invoiceCount)
}

func TestInvoiceService_CreateInvoice_DeletedProductIsUnknown(t *testing.T) {
	f := setupInvoiceServiceTest(t)

	doomed := &model.Product{
		Name:          "Removed Product",
		Price:         10,
		StockQuantity: 0,
		IsActive:      true,
	}
	f.db.Create(doomed)
	require.NoError(t, f.db.Delete(doomed).Error)

	invoice, err := f.service.CreateInvoice(CreateInvoiceInput{
		SupplierID:   f.supplier.ID,
		ReceivedByID: f.admin.ID,
		Items: []InvoiceItemInput{
			{ProductID: doomed.ID, Quantity: 5, UnitCost: 10},
		},
	})
	assert.Nil(t, invoice)

	var unknown *UnknownProductsError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, []uint{doomed.ID}, unknown.ProductIDs)
}

func TestInvoiceService_GetInvoiceByID_NotFound(t *testing.T) {
	f := setupInvoiceServiceTest(t)

	invoice, err := f.service.GetInvoiceByID(9999)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
	assert.Nil(t, invoice)
}

func TestInvoiceService_ListInvoices(t *testing.T) {
	f := setupInvoiceServiceTest(t)

	for i := 0; i < 3; i++ {
		_, err := f.service.CreateInvoice(CreateInvoiceInput{
			SupplierID:   f.supplier.ID,
			ReceivedByID: f.admin.ID,
			Items: []InvoiceItemInput{
				{ProductID: f.product.ID, Quantity: 1, UnitCost: 10},
			},
		})
		require.NoError(t, err)
	}

	invoices, total, err := f.service.ListInvoices(2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, invoices, 2)
}

func TestInvoiceService_CancelInvoice_ReversesStock(t *testing.T) {
	f := setupInvoiceServiceTest(t)

	invoice, err := f.service.CreateInvoice(CreateInvoiceInput{
		SupplierID:   f.supplier.ID,
		ReceivedByID: f.admin.ID,
		Items: []InvoiceItemInput{
			{ProductID: f.product.ID, Quantity: 5, UnitCost: 40},
		},
	})
	require.NoError(t, err)

	var afterReceipt model.Product
	f.db.First(&afterReceipt, f.product.ID)
	require.Equal(t, 15, afterReceipt.StockQuantity)

	require.NoError(t, f.service.CancelInvoice(invoice.ID))

	var afterCancel model.Product
	f.db.First(&afterCancel, f.product.ID)
	assert.Equal(t, 10, afterCancel.StockQuantity)

	_, err = f.service.GetInvoiceByID(invoice.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestInvoiceService_CancelInvoice_ClampsStockAtZero(t *testing.T) {
	f := setupInvoiceServiceTest(t)

	invoice, err := f.service.CreateInvoice(CreateInvoiceInput{
		SupplierID:   f.supplier.ID,
		ReceivedByID: f.admin.ID,
		Items: []InvoiceItemInput{
			{ProductID: f.product.ID, Quantity: 5, UnitCost: 40},
		},
	})
	require.NoError(t, err)

	// Sales since receipt have driven stock below the invoiced quantity
	f.db.Model(&model.Product{}).Where("id = ?", f.product.ID).Update("stock_quantity", 3)

	require.NoError(t, f.service.CancelInvoice(invoice.ID))

	var updatedProduct model.Product
	f.db.First(&updatedProduct, f.product.ID)
	assert.Equal(t, 0, updatedProduct.StockQuantity)
}

func TestInvoiceService_CancelInvoice_NotFound(t *testing.T) {
	f := setupInvoiceServiceTest(t)

	err := f.service.CancelInvoice(9999)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}
