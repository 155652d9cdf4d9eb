package product_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"shopfront/dbtest"
	"shopfront/model"
	"shopfront/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	db := dbtest.Open(t)

	p, err := product.Create(db, product.CreateInput{Name: " Widget ", Price: "12.50", Description: "blue"})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, "12.5", p.Price.String())

	list, err := product.List(db)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
}

func TestCreateValidation(t *testing.T) {
	db := dbtest.Open(t)

	cases := map[string]product.CreateInput{
		"missing name":     {Price: "1"},
		"missing price":    {Name: "x"},
		"non-numeric":      {Name: "x", Price: "ten"},
		"negative price":   {Name: "x", Price: "-0.01"},
		"sub-cent price":   {Name: "x", Price: "0.005"},
		"price too large":  {Name: "x", Price: "10000000000"},
		"long name":        {Name: strings.Repeat("n", 151), Price: "1"},
		"long description": {Name: "x", Price: "1", Description: strings.Repeat("d", 251)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := product.Create(db, in)
			assert.True(t, model.IsValidation(err), "got %v", err)
		})
	}

	list, err := product.List(db)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestHandlers(t *testing.T) {
	db := dbtest.Open(t)

	form := url.Values{"name": {"Widget"}, "price": {"3"}}
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	product.CreateProductHandler(db)(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/products", strings.NewReader("name=Widget&price=-1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	product.CreateProductHandler(db)(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	product.ListProductsHandler(db)(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Widget"`)
}
