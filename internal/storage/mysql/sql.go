package mysql

// Replacing a snapshot clears the child table first; beer_stores also
// cascades from beers.
const (
	deleteBeerStoresSQL = `DELETE FROM beer_stores`
	deleteBeersSQL      = `DELETE FROM beers`
	deleteStoresSQL     = `DELETE FROM stores`
)

const insertStoresPrefix = "INSERT INTO stores (name, url) VALUES "

const insertBeersPrefix = "INSERT INTO beers\n" +
	"  (id, name_ja, name_en, type, abv, ibu, price_us_pint, price_uk_half_pint, price_happy_hour,\n" +
	"   production_area_ja, production_area_en, brewery_ja, brewery_en, features_ja, features_en, image_url)\n" +
	"VALUES "

const beerRowPlaceholders = "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)"

const insertBeerStoresPrefix = "INSERT INTO beer_stores (beer_id, position, store_name) VALUES "

const insertSyncRunSQL = `
INSERT INTO sync_runs (source_at, beers, stores)
VALUES (?, ?, ?)
`

const lastSyncSQL = `
SELECT COALESCE(source_at, synced_at)
FROM sync_runs
ORDER BY id DESC
LIMIT 1
`

const selectStoresSQL = `SELECT name, url FROM stores`

const selectBeersSQL = `
SELECT
  id, name_ja, name_en, type, abv, ibu, price_us_pint, price_uk_half_pint, price_happy_hour,
  production_area_ja, production_area_en, brewery_ja, brewery_en, features_ja, features_en, image_url
FROM beers
ORDER BY id
`

const selectBeerStoresSQL = `
SELECT beer_id, store_name
FROM beer_stores
ORDER BY beer_id, position
`
