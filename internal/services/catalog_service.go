package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockhub/internal/domain"
	"stockhub/internal/repos"
	"stockhub/internal/validate"
)

type CatalogService struct {
	DB     *repos.DB
	Prods  *repos.ProductRepo
	Stores *repos.StoreRepo
}

func NewCatalogService(db *repos.DB, prods *repos.ProductRepo, stores *repos.StoreRepo) *CatalogService {
	return &CatalogService{DB: db, Prods: prods, Stores: stores}
}

type ProductInput struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Category    string          `json:"category" validate:"required"`
	Description string          `json:"description"`
	SKU         string          `json:"sku" validate:"required,max=50"`
}

func (in ProductInput) product(id int64) domain.Product {
	return domain.Product{
		ID: id, Name: in.Name, Price: in.Price, Category: in.Category,
		Description: in.Description, SKU: in.SKU,
	}
}

type StoreInput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Location    string `json:"location" validate:"max=255"`
	ManagerName string `json:"managerName" validate:"max=100"`
}

func (in StoreInput) store(id int64) domain.Store {
	return domain.Store{ID: id, Name: in.Name, Location: in.Location, ManagerName: in.ManagerName}
}

type ProductQuery struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Stock    *int
	Page     int
	PageSize int
}

type ProductPage struct {
	TotalItems int              `json:"totalItems"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	Products   []domain.Product `json:"products"`
}

type StorePage struct {
	TotalItems int            `json:"totalItems"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Stores     []domain.Store `json:"stores"`
}

func checkInput(in any) error {
	if err := validate.Struct(in); err != nil {
		return invalid(err.Error())
	}
	return nil
}

// ---------- Products ----------

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (ProductPage, error) {
	if q.Page <= 0 || q.PageSize <= 0 {
		return ProductPage{}, invalid(MsgInvalidPage)
	}
	items, total, err := s.Prods.List(ctx, repos.ProductFilter{
		Category: q.Category,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Stock:    q.Stock,
		Limit:    q.PageSize,
		Offset:   (q.Page - 1) * q.PageSize,
	})
	if err != nil {
		return ProductPage{}, persistence("list products", err)
	}
	return ProductPage{TotalItems: total, Page: q.Page, PageSize: q.PageSize, Products: items}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, notFound(MsgProductNotFound)
	}
	return p, persistence("get product", err)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	if err := checkInput(in); err != nil {
		return domain.Product{}, err
	}
	p := in.product(0)
	if err := s.Prods.Create(ctx, &p); err != nil {
		return domain.Product{}, persistence("create product", err)
	}
	return p, nil
}

// UpdateProduct replaces the product's attributes. A non-zero body id must
// match id.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in ProductInput) (domain.Product, error) {
	if in.ID != 0 && in.ID != id {
		return domain.Product{}, invalid(MsgIDMismatch)
	}
	if err := checkInput(in); err != nil {
		return domain.Product{}, err
	}
	p := in.product(id)
	err := s.DB.InTx(ctx, func(tx *sqlx.Tx) error {
		prods := s.Prods.WithTx(tx)
		ok, err := prods.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(MsgProductNotFound)
		}
		return prods.Update(ctx, p)
	})
	if err != nil {
		return domain.Product{}, persistence("update product", err)
	}
	return p, nil
}

// DeleteProduct refuses to remove a product that inventory or movements reference.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	err := s.DB.InTx(ctx, func(tx *sqlx.Tx) error {
		prods := s.Prods.WithTx(tx)
		ok, err := prods.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(MsgProductNotFound)
		}
		used, err := prods.InUse(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return conflict(MsgProductInUse)
		}
		return prods.Delete(ctx, id)
	})
	return persistence("delete product", err)
}

// ---------- Stores ----------

func (s *CatalogService) ListStores(ctx context.Context, page, pageSize int) (StorePage, error) {
	if page <= 0 || pageSize <= 0 {
		return StorePage{}, invalid(MsgInvalidPage)
	}
	items, total, err := s.Stores.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return StorePage{}, persistence("list stores", err)
	}
	return StorePage{TotalItems: total, Page: page, PageSize: pageSize, Stores: items}, nil
}

func (s *CatalogService) GetStore(ctx context.Context, id int64) (domain.Store, error) {
	st, err := s.Stores.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Store{}, notFound(MsgStoreNotFound)
	}
	return st, persistence("get store", err)
}

func (s *CatalogService) CreateStore(ctx context.Context, in StoreInput) (domain.Store, error) {
	if err := checkInput(in); err != nil {
		return domain.Store{}, err
	}
	st := in.store(0)
	if err := s.Stores.Create(ctx, &st); err != nil {
		return domain.Store{}, persistence("create store", err)
	}
	return st, nil
}

func (s *CatalogService) UpdateStore(ctx context.Context, id int64, in StoreInput) (domain.Store, error) {
	if in.ID != 0 && in.ID != id {
		return domain.Store{}, invalid(MsgIDMismatch)
	}
	if err := checkInput(in); err != nil {
		return domain.Store{}, err
	}
	st := in.store(id)
	err := s.DB.InTx(ctx, func(tx *sqlx.Tx) error {
		stores := s.Stores.WithTx(tx)
		ok, err := stores.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(MsgStoreNotFound)
		}
		return stores.Update(ctx, st)
	})
	if err != nil {
		return domain.Store{}, persistence("update store", err)
	}
	return st, nil
}

func (s *CatalogService) DeleteStore(ctx context.Context, id int64) error {
	err := s.DB.InTx(ctx, func(tx *sqlx.Tx) error {
		stores := s.Stores.WithTx(tx)
		ok, err := stores.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(MsgStoreNotFound)
		}
		used, err := stores.InUse(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return conflict(MsgStoreInUse)
		}
		return stores.Delete(ctx, id)
	})
	return persistence("delete store", err)
}
