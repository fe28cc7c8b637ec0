package catalog

import (
	"context"
	"fmt"
)

// Service exposes the cashier-facing catalog operations.
type Service interface {
	ListProducts(ctx context.Context, limit int) ([]ProductWithStock, error)
	SearchProducts(ctx context.Context, term string, limit int) ([]ProductWithStock, error)
	LookupBarcode(ctx context.Context, barcode string) (*ProductWithStock, error)
}

type service struct {
	repo Repository
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, limit int) ([]ProductWithStock, error) {
	return s.repo.ListActiveWithStock(ctx, limit)
}

func (s *service) SearchProducts(ctx context.Context, term string, limit int) ([]ProductWithStock, error) {
	return s.repo.SearchActiveWithStock(ctx, term, limit)
}

func (s *service) LookupBarcode(ctx context.Context, barcode string) (*ProductWithStock, error) {
	return s.repo.FindActiveByBarcode(ctx, barcode)
}
