package routes

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ctrlroom/database/repository/memstore"
	"ctrlroom/handlers"
	"ctrlroom/models"
	"ctrlroom/services/auth"
	"ctrlroom/services/booking"
	"ctrlroom/services/engineer"
	"ctrlroom/services/files"
	"ctrlroom/services/payment"
	"ctrlroom/services/report"
	"ctrlroom/services/storage"
	"ctrlroom/services/studio"
	"ctrlroom/services/tasks"
	"ctrlroom/services/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const webhookSecret = "whsec_test"

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type gateway struct{}

func (gateway) CreatePaymentIntent(_ context.Context, p payment.IntentParams) (*payment.Intent, error) {
	return &payment.Intent{ID: "pi_" + p.BookingID, ClientSecret: "secret_" + p.BookingID, AmountMinor: p.AmountMinor, Currency: p.Currency}, nil
}

type server struct {
	t      *testing.T
	router *gin.Engine
	store  *memstore.Store
	queue  *tasks.Recorder
	jwt    *auth.JWTAuthenticator
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memstore.New()
	require.NoError(t, st.Engineers().Create(context.Background(), &models.Engineer{
		ID: "eng-1", UserID: "u-eng", Name: "Sam", Email: "sam@example.com",
		WorkingHours: models.WorkingHours{Default: models.MustInterval("08:00", "22:00"), DaysOff: []string{"sunday"}},
	}))

	jwt, err := auth.NewJWTAuthenticator("test-secret", time.Hour)
	require.NoError(t, err)
	queue := &tasks.Recorder{}

	users := user.NewUserService(st.Users(), jwt, []string{"admin@example.com"}, nil)
	bookings := booking.NewService(booking.Deps{
		Bookings:  st.Bookings(),
		Engineers: st.Engineers(),
		Schedules: st.Schedules(),
		Studio:    st.Studio(),
		Queue:     queue,
		Gateway:   gateway{},
		Policy: booking.Policy{
			StudioHourlyRate:    75,
			DefaultEngineerRate: 50,
			AllowedDurations:    []int{2, 3, 4, 6, 8},
			SlotMinutes:         120,
			Currency:            "usd",
		},
		Now: func() time.Time { return testNow },
	})

	hb := &handlers.HandlerBundle{
		Verifier:  jwt,
		Users:     &handlers.UserHandler{UserService: users},
		Engineers: &handlers.EngineerHandler{Engineers: engineer.NewService(st.Engineers(), users, nil)},
		Bookings:  &handlers.BookingHandler{Bookings: bookings},
		Webhooks: &handlers.WebhookHandler{
			Verifier:  payment.NewStripeVerifier(webhookSecret, zap.NewNop()),
			Events:    payment.NewMemoryEventLog(),
			Confirmer: bookings,
		},
		Files:  &handlers.FileHandler{Files: files.NewService(st.Files(), st.Bookings(), st.Engineers(), storage.NewMemoryStore(), nil)},
		Studio: &handlers.StudioHandler{Studio: studio.NewService(st.Studio(), studio.Defaults{HourlyRate: 75, EngineerRate: 50}, nil)},
		Export: &handlers.ExportHandler{Exporter: report.NewExporter(st.Bookings(), st.Engineers())},
	}
	r := gin.New()
	RegisterRoutes(r, hb, nil)
	return &server{t: t, router: r, store: st, queue: queue, jwt: jwt}
}

func (s *server) token(id string, role models.Role) string {
	tok, err := s.jwt.Issue(&models.User{ID: id, Email: id + "@example.com", Role: role})
	require.NoError(s.t, err)
	return tok
}

func (s *server) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// webhook posts a payment_intent.succeeded event signed like Stripe does.
func (s *server) webhook(eventID, bookingID, secret string) *httptest.ResponseRecorder {
	payload := []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":"payment_intent.succeeded",
		"data":{"object":{"id":"pi_%s","object":"payment_intent","metadata":{"bookingId":%q}}}}`, eventID, bookingID, bookingID))
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func bookingBody(start string, hours int) gin.H {
	return gin.H{"engineerId": "eng-1", "date": "2025-03-03", "startTime": start, "durationHours": hours}
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/metrics", "", nil).Code)
}

func TestBookingLifecycle(t *testing.T) {
	s := newServer(t)
	client := s.token("client-1", models.RoleClient)

	w := s.do(http.MethodPost, "/api/bookings", client, bookingBody("10:00", 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decode[models.Booking](t, w)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, 250.0, b.TotalAmount)

	other := s.token("client-2", models.RoleClient)
	w = s.do(http.MethodPost, "/api/bookings", other, bookingBody("11:00", 2))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "conflicts")

	w = s.do(http.MethodPost, "/api/bookings/"+b.ID+"/payment-intent", client, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	intent := decode[models.PaymentIntentResponse](t, w)
	assert.Equal(t, "secret_"+b.ID, intent.ClientSecret)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/bookings/"+b.ID+"/payment-intent", other, nil).Code)

	w = s.webhook("evt_1", b.ID, webhookSecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.webhook("evt_1", b.ID, webhookSecret)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate")

	w = s.do(http.MethodGet, "/api/bookings/"+b.ID, client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Booking](t, w)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, "pi_"+b.ID, got.PaymentReference)

	notified, _ := s.queue.Snapshot()
	assert.Equal(t, []string{b.ID}, notified)

	// Clients cannot cancel a paid booking; admins can.
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/bookings/"+b.ID+"/cancel", client, nil).Code)
	admin := s.token("admin-1", models.RoleAdmin)
	w = s.do(http.MethodPost, "/api/bookings/"+b.ID+"/cancel", admin, gin.H{"reason": "studio flooded"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/sessions?tab=cancelled", client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), b.ID)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodPost, "/api/bookings", s.token("client-1", models.RoleClient), bookingBody("10:00", 2))
	require.Equal(t, http.StatusCreated, w.Code)
	b := decode[models.Booking](t, w)

	assert.Equal(t, http.StatusBadRequest, s.webhook("evt_1", b.ID, "whsec_wrong").Code)

	stored, err := s.store.Bookings().GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestWebhookUnknownBookingIsSurfaced(t *testing.T) {
	s := newServer(t)
	w := s.webhook("evt_9", "missing", webhookSecret)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Not marked processed, so a redelivery is attempted again.
	assert.Equal(t, http.StatusNotFound, s.webhook("evt_9", "missing", webhookSecret).Code)
}

func TestAvailabilityRoutes(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/api/engineers/eng-1/availability?date=2025-03-03", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := decode[models.AvailabilitySnapshot](t, w)
	assert.Len(t, snap.Slots, 7)

	w = s.do(http.MethodPost, "/api/engineers/eng-1/availability/check", "", gin.H{"date": "2025-03-03", "startTime": "21:00", "durationHours": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"available":false}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/engineers/eng-1/availability", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/engineers/nobody/availability?date=2025-03-03", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/engineers/eng-1/schedule?date=2025-03-03", "", nil).Code)
}

func TestRoleGuards(t *testing.T) {
	s := newServer(t)
	in := gin.H{"name": "Alex", "email": "alex@example.com", "workingHours": gin.H{"default": gin.H{"start": "09:00", "end": "17:00"}}}

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/engineers", "", in).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/engineers", s.token("client-1", models.RoleClient), in).Code)
	w := s.do(http.MethodPost, "/api/engineers", s.token("admin-1", models.RoleAdmin), in)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/engineers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alex")

	eng := s.token("u-eng", models.RoleEngineer)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/bookings", eng, bookingBody("10:00", 2)).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, "/api/studio/settings", eng, gin.H{"name": "x"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/admin/bookings/export?from=2025-03-01&to=2025-03-31", eng, nil).Code)
}

func TestSignupAndDevice(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/auth/signup", "", gin.H{"email": "new@example.com", "password": "s3cretpass", "displayName": "New"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[models.AuthResponse](t, w)
	assert.Equal(t, models.RoleClient, resp.User.Role)

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/auth/signup", "", gin.H{"email": "new@example.com", "password": "s3cretpass", "displayName": "New"}).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "new@example.com", "password": "wrongpass1"}).Code)

	w = s.do(http.MethodPut, "/api/users/me/device", resp.Token, gin.H{"fcmToken": "tok-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	u, err := s.store.Users().GetByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", u.FCMToken)
}

func TestFileRoutes(t *testing.T) {
	s := newServer(t)
	client := s.token("client-1", models.RoleClient)
	w := s.do(http.MethodPost, "/api/bookings", client, bookingBody("10:00", 2))
	require.Equal(t, http.StatusCreated, w.Code)
	b := decode[models.Booking](t, w)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("sessionId", b.ID))
	part, err := mw.CreateFormFile("file", "vocals.wav")
	require.NoError(t, err)
	_, _ = part.Write([]byte("RIFF"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+client)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	f := decode[models.SessionFile](t, w)
	assert.True(t, strings.HasPrefix(f.StoragePath, "sessions/"+b.ID+"/users/client-1/"))

	w = s.do(http.MethodGet, "/api/files?sessionId="+b.ID, client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vocals.wav")

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/api/files/"+f.ID, s.token("client-2", models.RoleClient), nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/files/"+f.ID, client, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/files/"+f.ID, client, nil).Code)
}

func TestExportRoute(t *testing.T) {
	s := newServer(t)
	admin := s.token("admin-1", models.RoleAdmin)

	w := s.do(http.MethodGet, "/api/admin/bookings/export?from=2025-03-01&to=2025-03-31", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bookings_2025-03-01_2025-03-31.xlsx")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/admin/bookings/export?from=2025-03-31&to=2025-03-01", admin, nil).Code)
}
