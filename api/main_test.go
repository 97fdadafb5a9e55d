package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgconn"

	db "github.com/huurnet/huurnet-BE/internal/db/sqlc"
	"github.com/huurnet/huurnet-BE/internal/event"
	"github.com/huurnet/huurnet-BE/internal/notification"
	"github.com/huurnet/huurnet-BE/internal/session"
	"github.com/huurnet/huurnet-BE/internal/token"
	"github.com/huurnet/huurnet-BE/internal/util"
	"github.com/huurnet/huurnet-BE/internal/worker"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]db.Notification
	users         map[string]db.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		notifications: make(map[uuid.UUID]db.Notification),
		users:         make(map[string]db.User),
	}
}

func (f *fakeStore) seedUser(t *testing.T, id string, role db.UserRole, password string) db.User {
	t.Helper()
	hashed, err := util.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	u := db.User{
		ID:             id,
		FullName:       "Test " + id,
		Email:          id + "@huurnet.nl",
		HashedPassword: hashed,
		Role:           role,
		CreatedAt:      time.Now(),
	}
	f.mu.Lock()
	f.users[id] = u
	f.mu.Unlock()
	return u
}

func (f *fakeStore) seedNotification(t *testing.T, recipientID string, read bool) db.Notification {
	t.Helper()
	n := db.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Category:    db.NotificationCategoryProfileMatch,
		Title:       "New match",
		Message:     "A property matches your profile",
		IsRead:      read,
		CreatedAt:   time.Now(),
	}
	f.mu.Lock()
	f.notifications[n.ID] = n
	f.mu.Unlock()
	return n
}

func (f *fakeStore) CreateNotification(_ context.Context, arg db.CreateNotificationParams) (db.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[arg.RecipientID]; !ok {
		return db.Notification{}, &pgconn.PgError{
			Code:           db.ForeignKeyViolationCode,
			ConstraintName: db.NotificationRecipientFKConstraint,
		}
	}
	n := db.Notification{
		ID:          uuid.New(),
		RecipientID: arg.RecipientID,
		Category:    arg.Category,
		Title:       arg.Title,
		Message:     arg.Message,
		RelatedID:   arg.RelatedID,
		RelatedType: arg.RelatedType,
		CreatedAt:   time.Now(),
	}
	f.notifications[n.ID] = n
	return n, nil
}

func (f *fakeStore) GetNotificationByID(_ context.Context, id uuid.UUID) (db.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return db.Notification{}, db.ErrRecordNotFound
	}
	return n, nil
}

func (f *fakeStore) GetNotificationForRecipient(_ context.Context, arg db.GetNotificationForRecipientParams) (db.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[arg.ID]
	if !ok || n.RecipientID != arg.RecipientID {
		return db.Notification{}, db.ErrRecordNotFound
	}
	return n, nil
}

func (f *fakeStore) ListNotifications(_ context.Context, arg db.ListNotificationsParams) ([]db.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := []db.Notification{}
	for _, n := range f.notifications {
		if n.RecipientID != arg.RecipientID {
			continue
		}
		if arg.Category != nil && n.Category != *arg.Category {
			continue
		}
		if arg.IsRead != nil && n.IsRead != *arg.IsRead {
			continue
		}
		items = append(items, n)
	}
	return items, nil
}

func (f *fakeStore) MarkNotificationRead(_ context.Context, arg db.MarkNotificationReadParams) (db.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[arg.ID]
	if !ok || n.RecipientID != arg.RecipientID {
		return db.Notification{}, db.ErrRecordNotFound
	}
	n.IsRead = true
	f.notifications[arg.ID] = n
	return n, nil
}

func (f *fakeStore) MarkAllNotificationsRead(_ context.Context, recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var changed int64
	for id, n := range f.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			f.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (f *fakeStore) DeleteNotification(_ context.Context, arg db.DeleteNotificationParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[arg.ID]
	if ok && n.RecipientID == arg.RecipientID {
		delete(f.notifications, arg.ID)
	}
	return nil
}

func (f *fakeStore) CountUnreadNotifications(_ context.Context, recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateUser(_ context.Context, arg db.CreateUserParams) (db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := db.User{ID: arg.ID, FullName: arg.FullName, Email: arg.Email, HashedPassword: arg.HashedPassword, Role: arg.Role, CreatedAt: time.Now()}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return db.User{}, db.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return db.User{}, db.ErrRecordNotFound
}

// fakeAuthService records sign-outs and keeps a revocation set in memory. It
// serves both the HTTP layer and the session engines.
type fakeAuthService struct {
	mu       sync.Mutex
	signOuts []string // "userID/trigger"
	revoked  map[string]bool
}

func newFakeAuthService() *fakeAuthService {
	return &fakeAuthService{revoked: make(map[string]bool)}
}

func (f *fakeAuthService) SignOut(_ context.Context, userID string, tokenID string, trigger string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts = append(f.signOuts, userID+"/"+trigger)
	f.revoked[tokenID] = true
	return nil
}

func (f *fakeAuthService) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[tokenID], nil
}

type fakeDistributor struct {
	mu       sync.Mutex
	payloads []*worker.PayloadDeliverNotification
}

func (f *fakeDistributor) DistributeTaskDeliverNotification(_ context.Context, payload *worker.PayloadDeliverNotification, _ ...asynq.Option) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return nil
}

type testEnv struct {
	server      *Server
	store       *fakeStore
	authService *fakeAuthService
	distributor *fakeDistributor
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	store := newFakeStore()
	authService := newFakeAuthService()
	distributor := &fakeDistributor{}

	sender := event.NewSSEServer()
	go sender.Run()

	sessionManager, err := session.NewManager(authService, 30*time.Minute)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	t.Cleanup(func() { _ = sessionManager.Stop() })

	config := &util.Config{
		AllowedOrigins:      []string{"http://localhost:3000"},
		TokenSecretKey:      util.RandomString(32),
		AccessTokenDuration: time.Hour,
		SessionIdleTimeout:  30 * time.Minute,
	}

	server, err := NewServer(store, config, authService, notification.NewService(store, sender), sessionManager, distributor, sender)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	return &testEnv{
		server:      server,
		store:       store,
		authService: authService,
		distributor: distributor,
	}
}

func performRequest(env *testEnv, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	env.server.router.ServeHTTP(recorder, request)
	return recorder
}

// setAuthorization signs a fresh token for the user and puts it on the request.
func setAuthorization(t *testing.T, request *http.Request, tokenMaker token.Maker, userID string, role db.UserRole) *token.Payload {
	t.Helper()
	accessToken, payload, err := tokenMaker.CreateToken(userID, string(role), time.Minute)
	if err != nil {
		t.Fatalf("failed to create access token: %v", err)
	}
	request.Header.Set(authorizationHeaderKey, authorizationTypeBearer+" "+accessToken)
	return payload
}
