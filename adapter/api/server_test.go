package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anandgupta07/coach-sub000/internal/access"
	checkoutApp "github.com/anandgupta07/coach-sub000/internal/checkout/application"
	"github.com/anandgupta07/coach-sub000/internal/checkout/infrastructure/handoff"
	"github.com/anandgupta07/coach-sub000/internal/checkout/infrastructure/sessionstore"
	identity "github.com/anandgupta07/coach-sub000/internal/identity/domain"
	identityInfra "github.com/anandgupta07/coach-sub000/internal/identity/infrastructure"
	promoApp "github.com/anandgupta07/coach-sub000/internal/promotions/application"
	promoPersistence "github.com/anandgupta07/coach-sub000/internal/promotions/infrastructure/persistence"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database/dbtest"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/eventbus"
	subscriptionsApp "github.com/anandgupta07/coach-sub000/internal/subscriptions/application"
	subscriptionPersistence "github.com/anandgupta07/coach-sub000/internal/subscriptions/infrastructure/persistence"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

const threeMonthPlanID = "6f1c2a8e-3b0d-4c55-9d1e-0a7f3e2b9c01"

type testServer struct {
	handler  http.Handler
	verifier *identityInfra.JWTVerifier
	broker   *eventbus.MemoryPublisher
	metrics  *observability.InMemoryMetrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	conn := dbtest.NewSQLite(t)
	metrics := observability.NewInMemoryMetrics()
	broker := eventbus.NewMemoryPublisher()
	events := eventbus.NewDomainPublisher(broker)

	subs := subscriptionsApp.NewService(
		subscriptionPersistence.NewSQLiteSubscriptionRepository(conn),
		subscriptionPersistence.NewPlanRepository(conn),
		logger,
		subscriptionsApp.WithEventPublisher(events),
		subscriptionsApp.WithMetrics(metrics),
	)
	promos := promoApp.NewService(promoPersistence.NewSQLitePromoRepository(conn), logger, promoApp.WithMetrics(metrics))
	checkout := checkoutApp.NewService(checkoutApp.Deps{
		Store:      sessionstore.NewMemoryStore(time.Hour),
		Plans:      subs,
		Promos:     promos,
		Activator:  subs,
		UnitOfWork: database.NewUnitOfWork(conn),
		Handoff:    handoff.NewChannel("+91 98765 43210", broker, handoff.DefaultBreakerConfig(), logger),
	}, logger, checkoutApp.WithEventPublisher(events), checkoutApp.WithMetrics(metrics))

	verifier := identityInfra.NewJWTVerifier("test-secret")
	gate := access.NewGate(subs, metrics, logger)
	server := NewServer(DefaultServerConfig(), ServerDeps{
		Handler: NewHandler(HandlerConfig{
			Subscriptions: subs,
			Promos:        promos,
			Checkout:      checkout,
			Gate:          gate.Middleware,
			Logger:        logger,
		}),
		Auth:    NewAuthenticator(verifier, logger),
		Timings: metrics,
	}, logger)

	return &testServer{handler: server.Handler(), verifier: verifier, broker: broker, metrics: metrics}
}

func (ts *testServer) token(t *testing.T, role identity.Role) string {
	t.Helper()
	token, err := ts.verifier.Sign(identity.Session{UserID: uuid.New(), Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestServer_ListPlansIsPublic(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/api/v1/plans", "", nil)

	require.Equal(t, http.StatusOK, status)
	plans := body["plans"].([]any)
	require.Len(t, plans, 3)
	assert.Equal(t, threeMonthPlanID, plans[0].(map[string]any)["id"])
	assert.Equal(t, "1799", plans[0].(map[string]any)["price"])
}

func TestServer_Authentication(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/api/v1/subscription/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["kind"])

	status, _ = ts.do(t, http.MethodGet, "/api/v1/subscription/status", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = ts.do(t, http.MethodGet, "/api/v1/subscription/status", ts.token(t, identity.RoleClient), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["isActive"])
	assert.Equal(t, subscriptionsApp.MessageNoSubscription, body["message"])
}

func TestServer_GatedContent(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/api/v1/workouts", ts.token(t, identity.RoleClient), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "subscription_required", body["kind"])

	status, _ = ts.do(t, http.MethodGet, "/api/v1/diets", ts.token(t, identity.RoleCoach), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_PromoCodes(t *testing.T) {
	ts := newTestServer(t)
	coach := ts.token(t, identity.RoleCoach)
	client := ts.token(t, identity.RoleClient)
	create := map[string]any{"code": "SAVE10", "discountType": "percentage", "discountValue": 10, "usageLimit": 5}

	status, body := ts.do(t, http.MethodPost, "/api/v1/promo/codes", client, create)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["kind"])

	status, body = ts.do(t, http.MethodPost, "/api/v1/promo/codes", coach, create)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "SAVE10", body["code"])

	status, body = ts.do(t, http.MethodPost, "/api/v1/promo/codes", coach, map[string]any{"code": "save10", "discountType": "fixed", "discountValue": 100, "usageLimit": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "validation_error", body["kind"])

	t.Run("validate quotes without consuming", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/v1/promo/validate", client, map[string]any{"code": "save10", "cartTotal": "1799"})
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, "179.9", body["discountAmount"])
		assert.Equal(t, "1619.1", body["finalAmount"])

		_, body = ts.do(t, http.MethodGet, "/api/v1/promo/codes", coach, nil)
		codes := body["promoCodes"].([]any)
		require.Len(t, codes, 1)
		assert.EqualValues(t, 0, codes[0].(map[string]any)["usageCount"])
	})

	t.Run("unknown code", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/v1/promo/validate", client, map[string]any{"code": "NOPE", "cartTotal": "1799"})
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "not_found", body["kind"])
	})

	t.Run("missing cart total", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/v1/promo/validate", client, map[string]any{"code": "SAVE10"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "bad_request", body["kind"])
	})

	t.Run("apply consumes a use", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/api/v1/promo/apply", coach, map[string]any{"code": "SAVE10"})
		require.Equal(t, http.StatusOK, status, body)
		assert.EqualValues(t, 1, body["usageCount"])
	})
}

func TestServer_CheckoutFlow(t *testing.T) {
	ts := newTestServer(t)
	coach := ts.token(t, identity.RoleCoach)
	client := ts.token(t, identity.RoleClient)

	status, _ := ts.do(t, http.MethodPost, "/api/v1/promo/codes", coach, map[string]any{"code": "SAVE10", "discountType": "percentage", "discountValue": 10, "usageLimit": 5})
	require.Equal(t, http.StatusCreated, status)

	status, body := ts.do(t, http.MethodPost, "/api/v1/checkout/sessions", client, nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "cart", body["state"])
	base := "/api/v1/checkout/sessions/" + body["id"].(string)

	status, body = ts.do(t, http.MethodPost, base+"/confirm", client, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_transition", body["kind"])

	status, body = ts.do(t, http.MethodPost, base+"/items", client, map[string]any{"planId": threeMonthPlanID})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "1799.00", body["subtotal"])

	status, body = ts.do(t, http.MethodPost, base+"/promo", client, map[string]any{"code": "save10"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "1619.10", body["finalAmount"])

	status, body = ts.do(t, http.MethodPost, base+"/next", client, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "details", body["state"])

	status, body = ts.do(t, http.MethodPost, base+"/next", client, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.NotEmpty(t, body["fields"])

	details := map[string]any{"details": map[string]any{
		"name":          "Asha",
		"contactNumber": "9876543210",
		"email":         "asha@example.com",
		"goal":          "strength",
	}}
	status, body = ts.do(t, http.MethodPost, base+"/details", client, details)
	require.Equal(t, http.StatusOK, status, body)

	status, body = ts.do(t, http.MethodPost, base+"/next", client, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "payment", body["state"])

	status, body = ts.do(t, http.MethodPost, base+"/confirm", client, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "success", body["state"])
	assert.Equal(t, "1619.10", body["finalAmount"])
	completion := body["completion"].(map[string]any)
	assert.Equal(t, "1619.10", completion["finalAmount"], "completion uses the same money format as the view")
	assert.NotEmpty(t, completion["subscriptionIds"])
	assert.Contains(t, completion["handoffLink"], "https://wa.me/919876543210?text=")

	status, body = ts.do(t, http.MethodGet, "/api/v1/subscription/status", client, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["isActive"])

	status, _ = ts.do(t, http.MethodGet, "/api/v1/workouts", client, nil)
	assert.Equal(t, http.StatusOK, status)

	_, body = ts.do(t, http.MethodGet, "/api/v1/promo/codes", coach, nil)
	assert.EqualValues(t, 1, body["promoCodes"].([]any)[0].(map[string]any)["usageCount"])

	var keys []string
	for _, msg := range ts.broker.Messages() {
		keys = append(keys, msg.RoutingKey)
	}
	assert.Contains(t, keys, "checkout.completed")
	assert.Contains(t, keys, "checkout.handoff")
	assert.Equal(t, int64(1), ts.metrics.GetCounter(observability.MetricCheckoutCompleted))
}

func TestServer_ConcurrentConfirmsCompleteOnce(t *testing.T) {
	ts := newTestServer(t)
	coach := ts.token(t, identity.RoleCoach)
	client := ts.token(t, identity.RoleClient)

	status, _ := ts.do(t, http.MethodPost, "/api/v1/promo/codes", coach, map[string]any{"code": "SAVE10", "discountType": "percentage", "discountValue": 10, "usageLimit": 5})
	require.Equal(t, http.StatusCreated, status)

	status, body := ts.do(t, http.MethodPost, "/api/v1/checkout/sessions", client, nil)
	require.Equal(t, http.StatusCreated, status)
	base := "/api/v1/checkout/sessions/" + body["id"].(string)

	steps := []struct {
		action string
		body   any
	}{
		{"items", map[string]any{"planId": threeMonthPlanID}},
		{"promo", map[string]any{"code": "SAVE10"}},
		{"next", nil},
		{"details", map[string]any{"details": map[string]any{
			"name":          "Asha",
			"contactNumber": "9876543210",
			"email":         "asha@example.com",
			"goal":          "strength",
		}}},
		{"next", nil},
	}
	for _, step := range steps {
		status, body := ts.do(t, http.MethodPost, base+"/"+step.action, client, step.body)
		require.Equal(t, http.StatusOK, status, "%s: %v", step.action, body)
	}

	const confirms = 16
	codes := make([]int, confirms)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < confirms; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, base+"/confirm", nil)
			req.Header.Set("Authorization", "Bearer "+client)
			rec := httptest.NewRecorder()
			<-start
			ts.handler.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	close(start)
	wg.Wait()

	completed := 0
	for _, code := range codes {
		if code == http.StatusOK {
			completed++
			continue
		}
		assert.Equal(t, http.StatusConflict, code)
	}
	assert.Equal(t, 1, completed, "confirm statuses: %v", codes)

	_, body = ts.do(t, http.MethodGet, "/api/v1/promo/codes", coach, nil)
	assert.EqualValues(t, 1, body["promoCodes"].([]any)[0].(map[string]any)["usageCount"])

	status, body = ts.do(t, http.MethodGet, "/api/v1/subscriptions", client, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["subscriptions"].([]any), 1)
	assert.Equal(t, int64(1), ts.metrics.GetCounter(observability.MetricCheckoutCompleted))
}

func TestServer_CheckoutSessionsArePrivate(t *testing.T) {
	ts := newTestServer(t)

	_, body := ts.do(t, http.MethodPost, "/api/v1/checkout/sessions", ts.token(t, identity.RoleClient), nil)
	path := "/api/v1/checkout/sessions/" + body["id"].(string)

	status, _ := ts.do(t, http.MethodGet, path, ts.token(t, identity.RoleClient), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_CheckoutBadRequests(t *testing.T) {
	ts := newTestServer(t)
	client := ts.token(t, identity.RoleClient)

	status, body := ts.do(t, http.MethodGet, "/api/v1/checkout/sessions/not-a-uuid", client, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad_request", body["kind"])

	_, body = ts.do(t, http.MethodPost, "/api/v1/checkout/sessions", client, nil)
	status, body = ts.do(t, http.MethodPost, "/api/v1/checkout/sessions/"+body["id"].(string)+"/teleport", client, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["kind"])
}

func TestServer_CancelSubscriptionOfAnotherUser(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodPost, "/api/v1/subscriptions/"+uuid.NewString()+"/cancel", ts.token(t, identity.RoleClient), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["kind"])
}

func TestServer_RequestIDs(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	req.Header.Set(HeaderCorrelationID, "corr-123")
	rec := httptest.NewRecorder()

	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "corr-123", rec.Header().Get(HeaderCorrelationID))
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	assert.Equal(t, int64(1), ts.metrics.GetCounter(observability.MetricHTTPRequests,
		observability.T("route", "GET /api/v1/plans"), observability.T("status", "200")))
}
