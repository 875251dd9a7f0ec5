//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "guest_beer/internal/adapters/http_server"
	"guest_beer/internal/adapters/masterapi"
	"guest_beer/internal/app"
	"guest_beer/internal/domain"
	mysqlrepo "guest_beer/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

const masterJSON = `{
  "stores": {
    "HUB浅草店": "https://example.com/asakusa",
    "８２神田店": "https://example.com/kanda",
    "閉店した店": ""
  },
  "beers": [
    {"id": 3, "name_ja": "パンクＩＰＡ", "abv": "5.6%", "price_us_pint": 1100, "price_uk_half_pint": 700,
     "price_us_pint_happy_hour": 900, "available_at": ["HUB浅草店", "８２神田店", "閉店した店"]},
    {"id": 1, "name_ja": "ギネス", "price_us_pint": 1000, "price_uk_half_pint": 650, "available_at": ["８２神田店"]},
    {"id": 2, "name_ja": "在庫なし", "price_us_pint": 900, "price_uk_half_pint": 600, "available_at": []}
  ]
}`

// Sync from a fake master data endpoint into MySQL, then serve the menu
// from the stored snapshot.
func TestHTTP_EndToEnd_SyncThenMenu(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=guestbeer",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/guestbeer?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(masterJSON))
	}))
	defer upstream.Close()

	client, err := masterapi.New(upstream.URL, "", 10, 5*time.Second)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	repo := mysqlrepo.New(db)
	if _, err := app.NewSyncService(client, repo, nil).Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	menus := app.NewMenuService(app.NewRepositorySource(repo), app.NewNormalizer(nil), nil, 0)
	srv := server.New(5 * time.Second)
	srv.MountHandlers(&server.Handlers{Menu: menus, DefaultLang: domain.LangJA})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/menu?lang=en")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}

	var body struct {
		Lang   string `json:"language"`
		Source string `json:"source"`
		Beers  []struct {
			ID       int    `json:"id"`
			Name     string `json:"name"`
			Stores82 []struct {
				Name string `json:"name"`
			} `json:"stores_82"`
			StoresHub []struct {
				Name string `json:"name"`
			} `json:"stores_hub"`
		} `json:"beers"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Lang != "en" || body.Source != app.SourceMySQL {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	// the store-less beer is dropped; order is by id
	if len(body.Beers) != 2 || body.Beers[0].ID != 1 || body.Beers[1].ID != 3 {
		t.Fatalf("unexpected beers: %+v", body.Beers)
	}
	if body.Beers[0].Name != "Guinness" {
		t.Fatalf("name = %q, want Guinness", body.Beers[0].Name)
	}
	ipa := body.Beers[1]
	if len(ipa.Stores82) != 1 || ipa.Stores82[0].Name != "82 Kanda branch" {
		t.Fatalf("82 stores: %+v", ipa.Stores82)
	}
	if len(ipa.StoresHub) != 1 {
		t.Fatalf("HUB stores (unmapped store must be dropped): %+v", ipa.StoresHub)
	}
}
