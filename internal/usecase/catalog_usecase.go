package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// CatalogUsecase is the read-only product surface the storefront pages use.
type CatalogUsecase struct {
	productRepo repo.ProductRepository
}

func NewCatalogUsecase(productRepo repo.ProductRepository) *CatalogUsecase {
	return &CatalogUsecase{productRepo: productRepo}
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, q repo.ProductListQuery) (ProductListOutput, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	items, total, err := u.productRepo.ListPublic(ctx, q)
	if err != nil {
		return ProductListOutput{}, errInternal()
	}

	return ProductListOutput{Items: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, errInternal()
	}
	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
	}
	return p, nil
}
