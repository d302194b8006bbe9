package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	analyticsapp "github.com/stocktrack/backend/internal/application/analytics"
	catalogapp "github.com/stocktrack/backend/internal/application/catalog"
	inventoryapp "github.com/stocktrack/backend/internal/application/inventory"
	purchaseapp "github.com/stocktrack/backend/internal/application/purchase"
	"github.com/stocktrack/backend/internal/infrastructure/auth"
	"github.com/stocktrack/backend/internal/infrastructure/config"
	"github.com/stocktrack/backend/internal/interfaces/http/dto"
	"github.com/stocktrack/backend/internal/interfaces/http/middleware"
	"github.com/stocktrack/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stocktrack/backend/internal/infrastructure/persistence"
)

// testApp runs the full HTTP stack against an in-memory database: real
// repositories, real services, real auth. Only the event bus is absent.
type testApp struct {
	engine   *gin.Engine
	jwt      *auth.JWTService
	tenantID uuid.UUID
	actorID  uuid.UUID
	token    string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterCustomValidators())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, persistence.AutoMigrate(db))

	variantRepo := persistence.NewGormVariantRepository(db)
	movementRepo := persistence.NewGormStockMovementRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db)
	receiptRepo := persistence.NewGormReceiptRepository(db)

	stockService := inventoryapp.NewStockService(variantRepo, movementRepo, persistence.NewGormInventoryTransactionScope(db))
	orderService := purchaseapp.NewPurchaseOrderService(orderRepo, receiptRepo, variantRepo, persistence.NewGormPurchaseTransactionScope(db))
	productService := catalogapp.NewProductService(productRepo, variantRepo)
	analyticsService := analyticsapp.NewAnalyticsService(variantRepo, movementRepo, productRepo, orderRepo)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "handler-test-secret-32-characters!!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "stocktrack-test",
	})

	engine := gin.New()
	r := router.NewRouter(engine,
		router.WithGroupMiddleware(middleware.Authenticate(jwtService, zap.NewNop())),
	)
	r.Register(NewInventoryHandler(stockService)).
		Register(NewPurchaseOrderHandler(orderService)).
		Register(NewProductHandler(productService)).
		Register(NewAnalyticsHandler(analyticsService))
	r.Setup()

	app := &testApp{
		engine:   engine,
		jwt:      jwtService,
		tenantID: uuid.New(),
		actorID:  uuid.New(),
	}
	app.token = app.issueToken(t, app.tenantID)
	return app
}

func (a *testApp) issueToken(t *testing.T, tenantID uuid.UUID) string {
	t.Helper()
	token, _, err := a.jwt.GenerateAccessToken(auth.GenerateTokenInput{
		TenantID: tenantID,
		ActorID:  a.actorID,
		Role:     "manager",
	})
	require.NoError(t, err)
	return token
}

func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return a.doAs(t, a.token, method, path, body)
}

func (a *testApp) doAs(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// envelope mirrors dto.Response with the data left raw for per-test decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) (T, envelope) {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())

	var data T
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &data))
	}
	return data, env
}

// createProduct inserts a product through the API and returns it
func (a *testApp) createProduct(t *testing.T, code string) catalogapp.ProductResponse {
	t.Helper()
	w := a.do(t, "POST", "/products", gin.H{
		"product_code": code,
		"name":         "Crewneck Tee",
		"base_price":   "19.99",
	})
	require.Equal(t, 201, w.Code, w.Body.String())
	product, _ := decode[catalogapp.ProductResponse](t, w)
	return product
}

// createVariant inserts a variant through the API and returns it. The size
// reuses the SKU so several variants of one product keep distinct
// (size, color) identities.
func (a *testApp) createVariant(t *testing.T, productID uuid.UUID, sku string, initialStock int64) inventoryapp.VariantResponse {
	t.Helper()
	w := a.do(t, "POST", "/variants", gin.H{
		"product_id":    productID,
		"sku":           sku,
		"size":          sku,
		"color":         "black",
		"initial_stock": initialStock,
	})
	require.Equal(t, 201, w.Code, w.Body.String())
	variant, _ := decode[inventoryapp.VariantResponse](t, w)
	return variant
}
