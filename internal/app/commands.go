package app

import (
	"context"
	"fmt"

	"guest_beer/internal/domain"
)

type SyncResult struct {
	Beers  int
	Stores int
}

// SyncService copies the remote master data into the repository.
type SyncService struct {
	client domain.MasterDataClient
	repo   domain.MasterDataRepository
	cache  domain.Cache
}

func NewSyncService(c domain.MasterDataClient, r domain.MasterDataRepository, cache domain.Cache) *SyncService {
	return &SyncService{client: c, repo: r, cache: cache}
}

func (s *SyncService) Sync(ctx context.Context) (SyncResult, error) {
	md, err := s.client.FetchMasterData(ctx)
	if err != nil {
		// keep the previous snapshot and its cached menus
		return SyncResult{}, fmt.Errorf("fetch master data: %w", err)
	}
	if err := validateMasterData(md); err != nil {
		return SyncResult{}, err
	}
	if err := s.repo.ReplaceMasterData(ctx, md); err != nil {
		return SyncResult{}, fmt.Errorf("replace master data: %w", err)
	}
	invalidateMenus(ctx, s.cache, SourceMySQL)
	return SyncResult{Beers: len(md.Beers), Stores: len(md.Stores)}, nil
}

// validateMasterData rejects snapshots the repository cannot key.
func validateMasterData(md domain.MasterData) error {
	seen := make(map[int]struct{}, len(md.Beers))
	for i, b := range md.Beers {
		if b.NameJA == "" {
			return fmt.Errorf("%w: beer %d has no name_ja", domain.ErrMalformedRecord, i)
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("%w: duplicate beer id %d", domain.ErrMalformedRecord, b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}
