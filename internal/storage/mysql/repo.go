package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"guest_beer/internal/domain"
)

// rows per multi-row INSERT
const batchSize = 200

func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

func valJSON(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ReplaceMasterData swaps the stored snapshot for md in one transaction.
func (r *Repo) ReplaceMasterData(ctx context.Context, md domain.MasterData) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, q := range []string{deleteBeerStoresSQL, deleteBeersSQL, deleteStoresSQL} {
		if _, err = tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	if err = insertStores(ctx, tx, md.Stores); err != nil {
		return fmt.Errorf("insert stores: %w", err)
	}
	if err = insertBeers(ctx, tx, md.Beers); err != nil {
		return fmt.Errorf("insert beers: %w", err)
	}
	if err = insertBeerStores(ctx, tx, md.Beers); err != nil {
		return fmt.Errorf("insert beer stores: %w", err)
	}
	if _, err = tx.ExecContext(ctx, insertSyncRunSQL, valTime(md.UpdatedAt), len(md.Beers), len(md.Stores)); err != nil {
		return err
	}
	return tx.Commit()
}

// execBatched runs prefix + rows in chunks of batchSize.
func execBatched(ctx context.Context, tx *sql.Tx, prefix, placeholders string, n, width int, arg func(i int) []any) error {
	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)
		values := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*width)
		for i := start; i < end; i++ {
			values = append(values, placeholders)
			args = append(args, arg(i)...)
		}
		if _, err := tx.ExecContext(ctx, prefix+strings.Join(values, ","), args...); err != nil {
			return err
		}
	}
	return nil
}

func insertStores(ctx context.Context, tx *sql.Tx, stores map[string]string) error {
	names := make([]string, 0, len(stores))
	for name := range stores {
		names = append(names, name)
	}
	return execBatched(ctx, tx, insertStoresPrefix, "(?,?)", len(names), 2, func(i int) []any {
		return []any{names[i], stores[names[i]]}
	})
}

func insertBeers(ctx context.Context, tx *sql.Tx, beers []domain.MasterBeer) error {
	return execBatched(ctx, tx, insertBeersPrefix, beerRowPlaceholders, len(beers), 16, func(i int) []any {
		b := beers[i]
		return []any{
			b.ID, b.NameJA, b.NameEN, b.Type, b.ABV, valInt(b.IBU),
			b.PriceUSPint, b.PriceUKHalfPint, valInt(b.PriceHappyHour),
			b.ProductionAreaJA, b.ProductionAreaEN, b.BreweryJA, b.BreweryEN,
			valJSON(b.FeaturesJA), valJSON(b.FeaturesEN), b.ImageURL,
		}
	})
}

func insertBeerStores(ctx context.Context, tx *sql.Tx, beers []domain.MasterBeer) error {
	type link struct {
		beer int
		pos  int
		name string
	}
	var links []link
	for _, b := range beers {
		for pos, name := range b.AvailableAt {
			links = append(links, link{b.ID, pos, name})
		}
	}
	return execBatched(ctx, tx, insertBeerStoresPrefix, "(?,?,?)", len(links), 3, func(i int) []any {
		return []any{links[i].beer, links[i].pos, links[i].name}
	})
}

// LoadMasterData returns the last stored snapshot, or domain.ErrNotFound
// when nothing was synced yet.
func (r *Repo) LoadMasterData(ctx context.Context) (domain.MasterData, error) {
	var syncedAt time.Time
	if err := r.db.QueryRowContext(ctx, lastSyncSQL).Scan(&syncedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MasterData{}, domain.ErrNotFound
		}
		return domain.MasterData{}, err
	}
	md := domain.MasterData{Stores: map[string]string{}, UpdatedAt: &syncedAt}

	srows, err := r.db.QueryContext(ctx, selectStoresSQL)
	if err != nil {
		return domain.MasterData{}, err
	}
	defer srows.Close()
	for srows.Next() {
		var name, url string
		if err := srows.Scan(&name, &url); err != nil {
			return domain.MasterData{}, err
		}
		md.Stores[name] = url
	}
	if err := srows.Err(); err != nil {
		return domain.MasterData{}, err
	}

	brows, err := r.db.QueryContext(ctx, selectBeersSQL)
	if err != nil {
		return domain.MasterData{}, err
	}
	defer brows.Close()
	index := map[int]int{}
	for brows.Next() {
		var b domain.MasterBeer
		var ibu, happy sql.NullInt64
		var featJA, featEN []byte
		if err := brows.Scan(
			&b.ID, &b.NameJA, &b.NameEN, &b.Type, &b.ABV, &ibu,
			&b.PriceUSPint, &b.PriceUKHalfPint, &happy,
			&b.ProductionAreaJA, &b.ProductionAreaEN, &b.BreweryJA, &b.BreweryEN,
			&featJA, &featEN, &b.ImageURL,
		); err != nil {
			return domain.MasterData{}, err
		}
		if ibu.Valid {
			x := int(ibu.Int64)
			b.IBU = &x
		}
		if happy.Valid {
			x := int(happy.Int64)
			b.PriceHappyHour = &x
		}
		_ = json.Unmarshal(featJA, &b.FeaturesJA)
		_ = json.Unmarshal(featEN, &b.FeaturesEN)
		index[b.ID] = len(md.Beers)
		md.Beers = append(md.Beers, b)
	}
	if err := brows.Err(); err != nil {
		return domain.MasterData{}, err
	}

	lrows, err := r.db.QueryContext(ctx, selectBeerStoresSQL)
	if err != nil {
		return domain.MasterData{}, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var beerID int
		var name string
		if err := lrows.Scan(&beerID, &name); err != nil {
			return domain.MasterData{}, err
		}
		if i, ok := index[beerID]; ok {
			md.Beers[i].AvailableAt = append(md.Beers[i].AvailableAt, name)
		}
	}
	if err := lrows.Err(); err != nil {
		return domain.MasterData{}, err
	}
	return md, nil
}
