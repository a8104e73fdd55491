package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/internal/activity"
	"github.com/PSM90/fuorid20-arena-market/internal/actors"
	"github.com/PSM90/fuorid20-arena-market/internal/catalog"
	"github.com/PSM90/fuorid20-arena-market/internal/players"
	"github.com/PSM90/fuorid20-arena-market/internal/settings"
	"github.com/PSM90/fuorid20-arena-market/internal/shop"
	pkgauth "github.com/PSM90/fuorid20-arena-market/pkg/auth"
	"github.com/PSM90/fuorid20-arena-market/pkg/auth/session"
	"github.com/PSM90/fuorid20-arena-market/pkg/config"
	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
	"github.com/PSM90/fuorid20-arena-market/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubPlayersService struct{}

func (stubPlayersService) Login(ctx context.Context, req players.LoginRequest) (*players.LoginResponse, error) {
	return &players.LoginResponse{}, nil
}

func (stubPlayersService) GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	return &models.Player{ID: id}, nil
}

func (stubPlayersService) List(ctx context.Context) ([]players.PlayerSummary, error) {
	return nil, nil
}

func (stubPlayersService) Create(ctx context.Context, input players.CreateInput) (*models.Player, error) {
	return &models.Player{}, nil
}

func (stubPlayersService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return nil
}

type stubActorsService struct{}

func (s stubActorsService) WithTx(tx *gorm.DB) actors.Service {
	return s
}

func (stubActorsService) Get(ctx context.Context, id uuid.UUID) (*models.Actor, error) {
	return &models.Actor{ID: id}, nil
}

func (stubActorsService) List(ctx context.Context) ([]models.Actor, error) {
	return nil, nil
}

func (stubActorsService) ListPermitted(ctx context.Context, playerID uuid.UUID, role enums.PlayerRole) ([]models.Actor, error) {
	return nil, nil
}

func (stubActorsService) CanAct(ctx context.Context, playerID uuid.UUID, role enums.PlayerRole, actorID uuid.UUID) (bool, error) {
	return true, nil
}

func (stubActorsService) Create(ctx context.Context, input actors.CreateInput) (*models.Actor, error) {
	return &models.Actor{}, nil
}

func (stubActorsService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubActorsService) AssignOwner(ctx context.Context, actorID uuid.UUID, ownerID *uuid.UUID) error {
	return nil
}

func (stubActorsService) SetBalance(ctx context.Context, actorID uuid.UUID, balance int) error {
	return nil
}

func (stubActorsService) GrantItem(ctx context.Context, item models.ActorItem) error {
	return nil
}

func (stubActorsService) RemoveItem(ctx context.Context, actorID, itemID uuid.UUID) error {
	return nil
}

func (stubActorsService) OwnerName(ctx context.Context, actor *models.Actor) string {
	return actors.UnknownOwnerName
}

type stubCatalogService struct{}

func (s stubCatalogService) WithTx(tx *gorm.DB) catalog.Service {
	return s
}

func (stubCatalogService) ListSources(ctx context.Context) ([]models.CatalogSource, error) {
	return nil, nil
}

func (stubCatalogService) CreateSource(ctx context.Context, name string) (*models.CatalogSource, error) {
	return &models.CatalogSource{}, nil
}

func (stubCatalogService) DeleteSource(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubCatalogService) ListItems(ctx context.Context, sourceID uuid.UUID) ([]models.CatalogItem, error) {
	return nil, nil
}

func (stubCatalogService) CreateItem(ctx context.Context, input catalog.ItemInput) (*models.CatalogItem, error) {
	return &models.CatalogItem{}, nil
}

func (stubCatalogService) UpdateItem(ctx context.Context, id uuid.UUID, input catalog.ItemInput) (*models.CatalogItem, error) {
	return &models.CatalogItem{}, nil
}

func (stubCatalogService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubCatalogService) ResolveItem(ctx context.Context, itemRef uuid.UUID) (*models.CatalogItem, error) {
	return nil, nil
}

type stubShopService struct{}

func (s stubShopService) WithTx(tx *gorm.DB) shop.Service {
	return s
}

func (stubShopService) Config(ctx context.Context) (shop.Config, error) {
	return shop.Config{}, nil
}

func (stubShopService) ReplaceConfig(ctx context.Context, cfg shop.Config) error {
	return nil
}

func (stubShopService) Entry(ctx context.Context, itemRef uuid.UUID) (*shop.Entry, error) {
	return nil, nil
}

func (stubShopService) SetStock(ctx context.Context, itemRef uuid.UUID, stock int) error {
	return nil
}

func (stubShopService) DecrementStock(ctx context.Context, itemRef uuid.UUID) error {
	return nil
}

func (stubShopService) AddReservation(ctx context.Context, input shop.ReservationInput) (*models.Reservation, error) {
	return &models.Reservation{}, nil
}

func (stubShopService) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	return nil, nil
}

func (stubShopService) ListReservationsForItem(ctx context.Context, itemRef uuid.UUID) ([]models.Reservation, error) {
	return nil, nil
}

func (stubShopService) HasReservation(ctx context.Context, itemRef, actorID uuid.UUID) (bool, error) {
	return false, nil
}

func (stubShopService) DeleteReservation(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubShopService) Storefront(ctx context.Context) (*shop.StorefrontView, error) {
	return &shop.StorefrontView{Currency: settings.DefaultCurrencyName}, nil
}

type stubSettingsService struct{}

func (s stubSettingsService) WithTx(tx *gorm.DB) settings.Service {
	return s
}

func (stubSettingsService) CurrencyName(ctx context.Context) (string, error) {
	return settings.DefaultCurrencyName, nil
}

func (stubSettingsService) SetCurrencyName(ctx context.Context, name string) error {
	return nil
}

func (stubSettingsService) ShopOpen(ctx context.Context) (bool, error) {
	return true, nil
}

func (stubSettingsService) SetShopOpen(ctx context.Context, open bool) error {
	return nil
}

func (stubSettingsService) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	return false, nil
}

func (stubSettingsService) PutJSON(ctx context.Context, key string, value any) error {
	return nil
}

type stubActivityService struct{}

func (s stubActivityService) WithTx(tx *gorm.DB) activity.Service {
	return s
}

func (stubActivityService) Record(ctx context.Context, entry activity.Entry) error {
	return nil
}

func (stubActivityService) List(ctx context.Context, params pagination.Params) (*activity.Page, error) {
	return &activity.Page{}, nil
}

func (stubActivityService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubActivityService) Clear(ctx context.Context) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
			SessionTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       stubPinger{},
		Sessions: stubSessionChecker{},
		Players:  stubPlayersService{},
		Actors:   stubActorsService{},
		Catalog:  stubCatalogService{},
		Shop:     stubShopService{},
		Settings: stubSettingsService{},
		Activity: stubActivityService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.PlayerRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		PlayerID:    uuid.New(),
		DisplayName: "Test Player",
		Role:        role,
		JTI:         session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPlayerRoutesRejectMissingToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/shop", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPlayerRoutesSucceedWithToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	for _, path := range []string{"/api/v1/shop", "/api/v1/actors", "/api/v1/activity"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RolePlayer))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestAdminRoutesRequireGameMaster(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	player := httptest.NewRequest(http.MethodGet, "/api/v1/admin/players", nil)
	player.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RolePlayer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, player)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for player got %d", resp.Code)
	}

	gm := httptest.NewRequest(http.MethodGet, "/api/v1/admin/players", nil)
	gm.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleGameMaster))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, gm)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for game master got %d", resp.Code)
	}
}

func TestAdminReservationsVisibleToGameMasterOnly(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	player := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reservations", nil)
	player.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RolePlayer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, player)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for player got %d", resp.Code)
	}

	gm := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reservations", nil)
	gm.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleGameMaster))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, gm)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for game master got %d", resp.Code)
	}
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for health live got %d", resp.Code)
	}
}
