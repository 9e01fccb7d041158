package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"stockhub/internal/services"
)

func TestCreateProduct_ValidationMessages(t *testing.T) {
	e := newEnv(t)
	_, err := e.catalog.CreateProduct(context.Background(), services.ProductInput{
		Name:  strings.Repeat("x", 101),
		Price: decimal.Zero,
	})
	if !errors.Is(err, services.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	msg := services.Message(err)
	for _, want := range []string{
		"Name must be at most 100 characters.",
		"Price must be greater than 0.",
		"Category is required.",
		"SKU is required.",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
	if strings.Count(msg, "; ") != 3 {
		t.Errorf("want four messages joined by \"; \", got %q", msg)
	}
}

func TestProductLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.catalog.CreateProduct(ctx, services.ProductInput{
		Name: "Filter Papers", Price: decimal.RequireFromString("5.25"), Category: "Supplies", SKU: "SUP-FLT",
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := e.catalog.GetProduct(ctx, p.ID)
	if err != nil || got.SKU != "SUP-FLT" || !got.Price.Equal(decimal.RequireFromString("5.25")) {
		t.Fatalf("get: %+v %v", got, err)
	}

	in := services.ProductInput{ID: p.ID + 1, Name: "Filter Papers", Price: decimal.RequireFromString("6"), Category: "Supplies", SKU: "SUP-FLT"}
	if _, err := e.catalog.UpdateProduct(ctx, p.ID, in); services.Message(err) != services.MsgIDMismatch {
		t.Fatalf("id mismatch: %v", err)
	}
	in.ID = 0
	upd, err := e.catalog.UpdateProduct(ctx, p.ID, in)
	if err != nil || !upd.Price.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("update: %+v %v", upd, err)
	}
	if _, err := e.catalog.UpdateProduct(ctx, 999, in); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}

	if err := e.catalog.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := e.catalog.GetProduct(ctx, p.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("after delete: %v", err)
	}
	if err := e.catalog.DeleteProduct(ctx, p.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("delete twice: %v", err)
	}
}

func TestDeleteReferencedIsConflict(t *testing.T) {
	e := newEnv(t)
	s, p := e.store(t, "A"), e.product(t, "P1")
	e.stock(t, s, p, 1, 0)
	ctx := context.Background()

	if err := e.catalog.DeleteProduct(ctx, p); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("product: want ErrConflict, got %v", err)
	}
	if err := e.catalog.DeleteStore(ctx, s); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("store: want ErrConflict, got %v", err)
	}
}

func TestListProducts_Paging(t *testing.T) {
	e := newEnv(t)
	s := e.store(t, "A")
	for _, sku := range []string{"A1", "A2", "A3"} {
		e.product(t, sku)
	}
	e.stock(t, s, 2, 7, 0)
	ctx := context.Background()

	page, err := e.catalog.ListProducts(ctx, services.ProductQuery{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalItems != 3 || page.Page != 2 || len(page.Products) != 1 || page.Products[0].SKU != "A3" {
		t.Fatalf("unexpected page: %+v", page)
	}

	seven := 7
	page, err = e.catalog.ListProducts(ctx, services.ProductQuery{Stock: &seven, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalItems != 1 || page.Products[0].SKU != "A2" {
		t.Fatalf("stock filter: %+v", page)
	}

	_, err = e.catalog.ListProducts(ctx, services.ProductQuery{Page: 1, PageSize: 0})
	if services.Message(err) != services.MsgInvalidPage {
		t.Fatalf("want invalid page, got %v", err)
	}
}

func TestStoreLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.catalog.CreateStore(ctx, services.StoreInput{}); services.Message(err) != "Name is required." {
		t.Fatalf("validation: %v", err)
	}
	st, err := e.catalog.CreateStore(ctx, services.StoreInput{Name: "Harbor", Location: "Pier 3", ManagerName: "Tom"})
	if err != nil {
		t.Fatal(err)
	}
	st2, err := e.catalog.UpdateStore(ctx, st.ID, services.StoreInput{ID: st.ID, Name: "Harbor West", Location: "Pier 4"})
	if err != nil || st2.Name != "Harbor West" {
		t.Fatalf("update: %+v %v", st2, err)
	}
	page, err := e.catalog.ListStores(ctx, 1, 10)
	if err != nil || page.TotalItems != 1 || page.Stores[0].Location != "Pier 4" {
		t.Fatalf("list: %+v %v", page, err)
	}
	if err := e.catalog.DeleteStore(ctx, st.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := e.catalog.GetStore(ctx, st.ID); services.Message(err) != services.MsgStoreNotFound {
		t.Fatalf("after delete: %v", err)
	}
}
