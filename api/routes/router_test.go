package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/internal/catalog"
	"github.com/simovate/simstack-backend/internal/orders"
	pkgAuth "github.com/simovate/simstack-backend/pkg/auth"
	"github.com/simovate/simstack-backend/pkg/config"
	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/enums"
	"github.com/simovate/simstack-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubOrders struct {
	listed []models.Order
}

func (s stubOrders) Create(context.Context, orders.OrderContext, orders.CreateInput) (*models.Order, error) {
	return nil, nil
}

func (s stubOrders) CreateReservation(context.Context, orders.OrderContext, orders.CreateInput) (*models.Order, error) {
	return nil, nil
}

func (s stubOrders) ConfirmReservation(context.Context, orders.OrderContext, string) (*models.Order, error) {
	return nil, nil
}

func (s stubOrders) UpdateReservationLine(context.Context, orders.OrderContext, string, uuid.UUID, int64, decimal.Decimal) (*models.OrderLineItem, error) {
	return nil, nil
}

func (s stubOrders) AddReservationLine(context.Context, orders.OrderContext, string, orders.LineInput) (*models.OrderLineItem, error) {
	return nil, nil
}

func (s stubOrders) DeleteLine(context.Context, orders.OrderContext, string, uuid.UUID) error {
	return nil
}

func (s stubOrders) Delete(context.Context, orders.OrderContext, string) error {
	return nil
}

func (s stubOrders) Get(context.Context, orders.OrderContext, string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s stubOrders) List(context.Context, uuid.UUID, pagination.Params) ([]models.Order, string, error) {
	return s.listed, "", nil
}

type stubCatalog struct{}

func (stubCatalog) ListVariants(context.Context, *models.Account) ([]catalog.PricedVariant, error) {
	return nil, nil
}

func (stubCatalog) GetVariant(context.Context, uuid.UUID, *models.Account) (*catalog.PricedVariant, error) {
	return nil, nil
}

func (stubCatalog) RegisterLot(context.Context, catalog.LotInput) (*models.StockLot, error) {
	return nil, nil
}

func (stubCatalog) ListLots(context.Context, uuid.UUID) ([]models.StockLot, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "simstack", AccessTTL: time.Hour},
	}
}

func mintToken(t *testing.T, cfg *config.Config, role enums.AccountRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		AccountID: uuid.New(),
		Role:      role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := NewRouter(testConfig(), nil, stubPinger{}, nil, Services{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReadyPingsDependencies(t *testing.T) {
	router := NewRouter(testConfig(), nil, stubPinger{}, nil, Services{})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := NewRouter(testConfig(), nil, stubPinger{}, nil, Services{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOrderListWithToken(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(cfg, nil, stubPinger{}, nil, Services{Orders: stubOrders{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.AccountRoleAgent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Data struct {
			Orders []json.RawMessage `json:"orders"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Data.Orders) != 0 {
		t.Fatalf("expected empty order page, got %d", len(body.Data.Orders))
	}
}

func TestLotIntakeIsHeadquarterOnly(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(cfg, nil, stubPinger{}, nil, Services{Catalog: stubCatalog{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/variants/"+uuid.NewString()+"/lots", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.AccountRoleAgent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	allowed := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/variants/"+uuid.NewString()+"/lots", nil)
	allowed.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.AccountRoleHeadquarter))
	ok := httptest.NewRecorder()
	router.ServeHTTP(ok, allowed)

	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", ok.Code, ok.Body.String())
	}
}
