package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/dispatchline/delivery-console/internal/assignments"
	"github.com/dispatchline/delivery-console/internal/orders"
	"github.com/dispatchline/delivery-console/internal/partners"
	pkgAuth "github.com/dispatchline/delivery-console/pkg/auth"
	"github.com/dispatchline/delivery-console/pkg/config"
	"github.com/dispatchline/delivery-console/pkg/db"
	"github.com/dispatchline/delivery-console/pkg/db/dbtest"
	"github.com/dispatchline/delivery-console/pkg/db/models"
	"github.com/dispatchline/delivery-console/pkg/enums"
	"github.com/dispatchline/delivery-console/pkg/logger"
	"github.com/dispatchline/delivery-console/pkg/outbox"
)

type testServer struct {
	handler http.Handler
	conn    *gorm.DB
}

func newTestServer(t *testing.T, cfg *config.Config) testServer {
	t.Helper()
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: io.Discard})
	client := db.NewFromConn(conn)
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)
	partnerRepo := partners.NewRepository(conn)

	partnerService, err := partners.NewService(partnerRepo, client, emitter, logg)
	if err != nil {
		t.Fatalf("partner service: %v", err)
	}
	orderService, err := orders.NewService(orders.NewRepository(conn), partnerRepo, client, emitter, logg)
	if err != nil {
		t.Fatalf("order service: %v", err)
	}
	assignmentService, err := assignments.NewService(assignments.NewRepository(conn), partnerRepo, client, emitter, logg)
	if err != nil {
		t.Fatalf("assignment service: %v", err)
	}

	handler := NewRouter(cfg, logg, prometheus.NewRegistry(), client, nil, partnerService, orderService, assignmentService)
	return testServer{handler: handler, conn: conn}
}

func defaultConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: "dev"},
		CORS: config.CORSConfig{ClientOrigin: "http://dashboard.test"},
	}
}

func (s testServer) do(t *testing.T, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return rec, decoded
}

const partnerPayload = `{
	"name": "Ravi",
	"email": "ravi@example.com",
	"phone": "9999999999",
	"status": "active",
	"areas": ["Indiranagar"],
	"shift": {"start": "09:00", "end": "17:00"}
}`

func orderPayload(partnerID string) string {
	return `{
		"customerDetails": {"name": "Asha", "phone": "8888888888", "address": "12 MG Road"},
		"area": "Indiranagar",
		"items": [{"name": "Rice", "quantity": 2, "price": 50}, {"name": "Dal", "quantity": 1, "price": 30}],
		"scheduledFor": "2024-05-01T10:00",
		"partnerId": "` + partnerID + `"
	}`
}

func addPartner(t *testing.T, s testServer) string {
	t.Helper()
	rec, body := s.do(t, http.MethodPost, "/api/v1/partner/addPartner", partnerPayload, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("addPartner: expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	partner := body["partner"].(map[string]any)
	return partner["_id"].(string)
}

func TestWelcomeAndHealth(t *testing.T) {
	s := newTestServer(t, defaultConfig())

	rec, body := s.do(t, http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK || body["clientUri"] != "http://dashboard.test" {
		t.Fatalf("unexpected welcome %d %v", rec.Code, body)
	}

	rec, _ = s.do(t, http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected ready 200 got %d", rec.Code)
	}
}

func TestAddPartnerDefaultsMetrics(t *testing.T) {
	s := newTestServer(t, defaultConfig())

	rec, body := s.do(t, http.MethodPost, "/api/v1/partner/addPartner", partnerPayload, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	partner := body["partner"].(map[string]any)
	metrics := partner["metrics"].(map[string]any)
	if metrics["rating"] != float64(0) || metrics["completedOrders"] != float64(0) || metrics["cancelledOrders"] != float64(0) {
		t.Fatalf("expected zero metrics got %v", metrics)
	}

	rec, _ = s.do(t, http.MethodPost, "/api/v1/partner/addPartner", partnerPayload, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected duplicate email 409 got %d", rec.Code)
	}
}

func TestCreateOrderFlow(t *testing.T) {
	s := newTestServer(t, defaultConfig())
	partnerID := addPartner(t, s)

	rec, body := s.do(t, http.MethodPost, "/api/v1/order/createOrder", orderPayload(partnerID), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	data := body["data"].(map[string]any)
	order := data["order"].(map[string]any)
	if order["totalAmount"] != float64(130) {
		t.Fatalf("expected total 130 got %v", order["totalAmount"])
	}
	if order["status"] != string(enums.OrderStatusPending) {
		t.Fatalf("expected pending got %v", order["status"])
	}
	if !strings.HasPrefix(order["orderNumber"].(string), "ORD") {
		t.Fatalf("unexpected order number %v", order["orderNumber"])
	}
	assignment := data["assignmentDoc"].(map[string]any)
	if assignment["status"] != string(enums.AssignmentStatusSuccess) {
		t.Fatalf("expected success assignment got %v", assignment["status"])
	}

	var count int64
	if err := s.conn.Model(&models.Assignment{}).Count(&count).Error; err != nil {
		t.Fatalf("count assignments: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 assignment got %d", count)
	}

	rec, body = s.do(t, http.MethodGet, "/api/v1/order/getAllOrders", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	list := body["orders"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected 1 order got %d", len(list))
	}
	assignedTo, ok := list[0].(map[string]any)["assignedTo"].(map[string]any)
	if !ok || assignedTo["_id"] != partnerID || assignedTo["name"] != "Ravi" {
		t.Fatalf("expected populated partner got %v", list[0].(map[string]any)["assignedTo"])
	}

	rec, body = s.do(t, http.MethodGet, "/api/v1/order/getAllAssignmentsDetails", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(body["assignments"].([]any)) != 1 {
		t.Fatalf("expected 1 assignment got %v", body["assignments"])
	}
}

func TestUpdateOrderRules(t *testing.T) {
	s := newTestServer(t, defaultConfig())
	partnerID := addPartner(t, s)

	_, body := s.do(t, http.MethodPost, "/api/v1/order/createOrder", orderPayload(partnerID), "")
	orderID := body["data"].(map[string]any)["order"].(map[string]any)["_id"].(string)
	path := "/api/v1/order/updateOrder/" + orderID

	rec, _ := s.do(t, http.MethodPost, path, `{"orderNumber":"ORD-forged"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected unknown key 400 got %d", rec.Code)
	}

	rec, _ = s.do(t, http.MethodPost, path, `{"items":[]}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected empty items 400 got %d: %s", rec.Code, rec.Body.String())
	}

	rec, body = s.do(t, http.MethodPost, path, `{"orderStatus":"assigned","assignmentStatus":"failed","reason":"late"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if body["order"].(map[string]any)["status"] != "assigned" {
		t.Fatalf("expected assigned got %v", body["order"])
	}
	assignment := body["assigment"].(map[string]any)
	if assignment["status"] != "failed" || assignment["reason"] != "late" {
		t.Fatalf("unexpected assignment %v", assignment)
	}

	rec, _ = s.do(t, http.MethodPost, path, `{"orderStatus":"pending"}`, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected backward transition 422 got %d: %s", rec.Code, rec.Body.String())
	}

	rec, body = s.do(t, http.MethodPost, path, `{"orderStatus":"delivered"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected forward skip 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if body["order"].(map[string]any)["status"] != "delivered" {
		t.Fatalf("expected delivered got %v", body["order"])
	}
}

func TestAuthRequiredWhenConfigured(t *testing.T) {
	cfg := defaultConfig()
	cfg.Auth = config.AuthConfig{JWTSecret: "secret", JWTIssuer: "delivery-console", ExpirationMinutes: 5}
	s := newTestServer(t, cfg)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/partner/getAllPartners", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}

	token, err := pkgAuth.MintAccessToken(cfg.Auth, time.Now(), pkgAuth.AccessTokenPayload{OperatorID: "op-1", Role: enums.OperatorRoleOperator})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	rec, _ = s.do(t, http.MethodGet, "/api/v1/partner/getAllPartners", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec, _ = s.do(t, http.MethodGet, "/health/live", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected health outside auth got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, defaultConfig())
	s.do(t, http.MethodGet, "/api/v1/partner/getAllPartners", "", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `route="/api/v1/partner/getAllPartners"`) {
		t.Fatalf("expected route label in metrics output")
	}
}
