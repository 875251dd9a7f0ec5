package domain

import "context"

// MenuSource loads one batch of beer records.
type MenuSource interface {
	Load(ctx context.Context) (Batch, error)
	Name() string
}

type MasterDataRepository interface {
	ReplaceMasterData(ctx context.Context, md MasterData) error
	LoadMasterData(ctx context.Context) (MasterData, error)
}

type MasterDataClient interface {
	FetchMasterData(ctx context.Context) (MasterData, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
