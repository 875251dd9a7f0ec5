package app

import (
	"context"
	"errors"
	"fmt"

	"guest_beer/internal/domain"
	"guest_beer/internal/ingest"
)

const SourceMySQL = "mysql"

// RepositorySource serves the master data last stored by a sync run.
type RepositorySource struct {
	repo domain.MasterDataRepository
}

func NewRepositorySource(r domain.MasterDataRepository) *RepositorySource {
	return &RepositorySource{repo: r}
}

func (s *RepositorySource) Name() string { return SourceMySQL }

func (s *RepositorySource) Load(ctx context.Context) (domain.Batch, error) {
	md, err := s.repo.LoadMasterData(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// nothing synced yet
			return domain.Batch{Source: SourceMySQL, DropStoreless: true}, nil
		}
		return domain.Batch{}, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	return ingest.FromMasterData(md, SourceMySQL), nil
}
