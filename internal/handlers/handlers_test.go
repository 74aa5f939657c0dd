package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/munhub-dev/munhub/db"
	"github.com/munhub-dev/munhub/internal/auth"
	"github.com/munhub-dev/munhub/internal/handlers"
	"github.com/munhub-dev/munhub/internal/mailer"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/payments"
	"github.com/munhub-dev/munhub/internal/router"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/storage"
	"github.com/munhub-dev/munhub/internal/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// envelope mirrors the wire shape every endpoint responds with.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type testApp struct {
	engine *gin.Engine
	conn   *gorm.DB
	tokens *auth.TokenManager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	files, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	dispatcher := mailer.NewDispatcher(conn, nil)
	activity := services.NewActivityRecorder(conn)
	paymentSvc := services.NewPaymentService(conn, payments.Disabled{}, "")
	feed := handlers.NewCheckInFeed(func(*http.Request) bool { return true })

	engine := router.New(router.Deps{
		DB:            conn,
		Tokens:        tokens,
		UploadsDir:    t.TempDir(),
		Auth:          handlers.NewAuthHandler(conn, tokens),
		Users:         handlers.NewUserHandler(conn, activity),
		Registrations: handlers.NewRegistrationHandler(conn, files, dispatcher, activity),
		Committees:    handlers.NewCommitteeHandler(conn, activity),
		Pricing:       handlers.NewPricingHandler(conn, activity),
		Payments:      handlers.NewPaymentHandler(conn, paymentSvc, dispatcher, activity),
		CheckIns:      handlers.NewCheckInHandler(conn, feed, activity),
		Accommodation: handlers.NewAccommodationHandler(conn, activity),
		Events:        handlers.NewEventHandler(conn, activity),
		Attendance:    handlers.NewAttendanceHandler(conn, activity),
		Marks:         handlers.NewMarkHandler(conn, activity),
		Contact:       handlers.NewContactHandler(conn, activity),
		Notifications: handlers.NewNotificationHandler(conn, dispatcher, activity),
		Popups:        handlers.NewPopupHandler(conn, activity),
		Resources:     handlers.NewResourceHandler(conn, files, activity),
		ActivityLogs:  handlers.NewActivityLogHandler(conn),
		Dashboard:     handlers.NewDashboardHandler(conn),
		CheckInFeed:   feed,
	})

	return &testApp{engine: engine, conn: conn, tokens: tokens}
}

// createUser inserts a user directly and returns it with a valid token.
func (a *testApp) createUser(t *testing.T, email string, role types.Role) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: string(hash),
		Role:         string(role),
		Active:       true,
	}
	require.NoError(t, a.conn.Create(&user).Error)

	token, err := a.tokens.Issue(user.ID, role)
	require.NoError(t, err)

	return user, token
}

func (a *testApp) request(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	contentType := ""

	switch b := body.(type) {
	case nil:
	case *multipartBody:
		reader = b.buf
		contentType = b.contentType
	default:
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	}

	return w, env
}

type multipartBody struct {
	buf         *bytes.Buffer
	contentType string
}

// newMultipart builds a multipart form with string fields and optional file
// parts carrying an explicit Content-Type.
func newMultipart(t *testing.T, fields map[string]string, files map[string]filePart) *multipartBody {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}

	for field, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.name))
		header.Set("Content-Type", file.mime)

		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return &multipartBody{buf: buf, contentType: w.FormDataContentType()}
}

type filePart struct {
	name    string
	mime    string
	content []byte
}

func pdfPart(name string) filePart {
	return filePart{name: name, mime: "application/pdf", content: []byte("%PDF-1.4 test")}
}
