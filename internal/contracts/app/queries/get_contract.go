// Package queries holds the contract read-side use cases.
package queries

import (
	"context"

	"github.com/gestorhq/gestor/internal/contracts/domain"
	"github.com/gestorhq/gestor/internal/contracts/ports"
	"github.com/google/uuid"
)

type GetContractQuery struct {
	ContractID uuid.UUID
}

type GetContractQueryHandler struct {
	repo ports.ContractRepository
}

func NewGetContractQueryHandler(repo ports.ContractRepository) *GetContractQueryHandler {
	return &GetContractQueryHandler{repo: repo}
}

func (h *GetContractQueryHandler) Handle(ctx context.Context, query GetContractQuery) (*domain.Contract, error) {
	return h.repo.GetByID(ctx, query.ContractID)
}

type ListContractsQuery struct {
	Filter ports.ListFilter
}

type ListContractsQueryHandler struct {
	repo ports.ContractRepository
}

func NewListContractsQueryHandler(repo ports.ContractRepository) *ListContractsQueryHandler {
	return &ListContractsQueryHandler{repo: repo}
}

func (h *ListContractsQueryHandler) Handle(ctx context.Context, query ListContractsQuery) ([]domain.Contract, error) {
	return h.repo.List(ctx, query.Filter)
}
