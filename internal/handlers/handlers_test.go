package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"

	"bankbot/internal/corpus"
	"bankbot/internal/database"
	"bankbot/internal/middleware"
	"bankbot/internal/services"
	"bankbot/pkg/auth"
)

type testEnv struct {
	app         *fiber.App
	db          *database.DB
	jwtAuth     *auth.LocalJWTAuth
	userService *services.UserService
	corpusStore *corpus.Store
	queryLog    *services.QueryLogService
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	db, err := database.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	jwtAuth, err := auth.NewLocalJWTAuth("test-secret-key", 0, 0)
	if err != nil {
		t.Fatalf("Failed to create JWT auth: %v", err)
	}

	corpusStore := corpus.NewStore(filepath.Join(dir, "dataset.csv"))
	if err := corpusStore.Load(); err != nil {
		t.Fatalf("Failed to load corpus: %v", err)
	}

	contexts := services.NewUserContextService(filepath.Join(dir, "user_data.json"))
	if err := contexts.Load(); err != nil {
		t.Fatalf("Failed to load contexts: %v", err)
	}

	queryLog := services.NewQueryLogService(filepath.Join(dir, "queries.csv"))
	faqService := services.NewFAQService(filepath.Join(dir, "faq.json"))
	userService := services.NewUserService(db)
	chatService := services.NewChatService(corpusStore, contexts, queryLog)

	app := fiber.New()

	healthHandler := NewHealthHandler(corpusStore)
	authHandler := NewAuthHandler(jwtAuth, userService)
	accountHandler := NewAccountHandler(userService)
	chatHandler := NewChatHandler(chatService, userService)
	adminHandler := NewAdminHandler(corpusStore, queryLog, faqService, userService, contexts)

	app.Get("/health", healthHandler.Handle)

	authRoutes := app.Group("/api/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", middleware.LocalAuthMiddleware(jwtAuth), authHandler.GetCurrentUser)

	api := app.Group("/api", middleware.LocalAuthMiddleware(jwtAuth))
	api.Get("/dashboard", accountHandler.Dashboard)
	api.Post("/account", accountHandler.CreateAccount)
	api.Post("/account/balance", accountHandler.CheckBalance)
	api.Post("/chat", chatHandler.Chat)
	api.Get("/chat/history", chatHandler.History)

	admin := api.Group("/admin", middleware.AdminMiddleware())
	admin.Get("/corpus", adminHandler.ListCorpus)
	admin.Post("/corpus", adminHandler.AddCorpusRow)
	admin.Post("/corpus/upload", adminHandler.UploadCorpus)
	admin.Get("/stats", adminHandler.Stats)

	return &testEnv{
		app:         app,
		db:          db,
		jwtAuth:     jwtAuth,
		userService: userService,
		corpusStore: corpusStore,
		queryLog:    queryLog,
	}
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}

	var parsed map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("Failed to parse response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, parsed
}

// registerUser registers a user and returns their access token
func registerUser(t *testing.T, env *testEnv, username, email, password string) string {
	t.Helper()
	status, body := doRequest(t, env.app, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Register failed with status %d: %v", status, body)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatal("Register returned no access token")
	}
	return token
}

func TestHealthHandler(t *testing.T) {
	env := setupTestApp(t)

	status, body := doRequest(t, env.app, "GET", "/health", "", nil)
	if status != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", body["status"])
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestApp(t)

	token := registerUser(t, env, "alice", "alice@example.com", "password123")
	if token == "" {
		t.Fatal("Expected access token")
	}

	// duplicate email rejected
	status, _ := doRequest(t, env.app, "POST", "/api/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "password123",
	})
	if status != fiber.StatusConflict {
		t.Errorf("Expected 409 for duplicate email, got %d", status)
	}

	// login with right password
	status, body := doRequest(t, env.app, "POST", "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if status != fiber.StatusOK {
		t.Fatalf("Login failed with status %d: %v", status, body)
	}

	// login with wrong password
	status, _ = doRequest(t, env.app, "POST", "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrongpass1",
	})
	if status != fiber.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", status)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := setupTestApp(t)

	cases := []struct {
		name    string
		payload map[string]string
	}{
		{"missing username", map[string]string{"email": "a@b.com", "password": "password123"}},
		{"bad email", map[string]string{"username": "a", "email": "nope", "password": "password123"}},
		{"weak password", map[string]string{"username": "a", "email": "a@b.com", "password": "short"}},
		{"password without numbers", map[string]string{"username": "a", "email": "a@b.com", "password": "passwordonly"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := doRequest(t, env.app, "POST", "/api/auth/register", "", tc.payload)
			if status != fiber.StatusBadRequest {
				t.Errorf("Expected 400, got %d", status)
			}
		})
	}
}

func TestFirstUserBecomesAdmin(t *testing.T) {
	env := setupTestApp(t)

	adminToken := registerUser(t, env, "admin", "admin@example.com", "password123")
	userToken := registerUser(t, env, "bob", "bob@example.com", "password123")

	// first user can hit admin routes
	status, _ := doRequest(t, env.app, "GET", "/api/admin/stats", adminToken, nil)
	if status != fiber.StatusOK {
		t.Errorf("Expected 200 for admin, got %d", status)
	}

	// second user cannot
	status, _ = doRequest(t, env.app, "GET", "/api/admin/stats", userToken, nil)
	if status != fiber.StatusForbidden {
		t.Errorf("Expected 403 for non-admin, got %d", status)
	}
}

func TestAuthRequired(t *testing.T) {
	env := setupTestApp(t)

	for _, path := range []string{"/api/dashboard", "/api/chat/history"} {
		status, _ := doRequest(t, env.app, "GET", path, "", nil)
		if status != fiber.StatusUnauthorized {
			t.Errorf("GET %s without token: expected 401, got %d", path, status)
		}
	}

	status, _ := doRequest(t, env.app, "GET", "/api/dashboard", "not-a-token", nil)
	if status != fiber.StatusUnauthorized {
		t.Errorf("Expected 401 for garbage token, got %d", status)
	}
}

func TestCreateAccountAndBalance(t *testing.T) {
	env := setupTestApp(t)
	token := registerUser(t, env, "alice", "alice@example.com", "password123")

	status, body := doRequest(t, env.app, "POST", "/api/account", token, map[string]any{
		"account_number": "123456789",
		"account_type":   "savings",
		"balance":        2500.50,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Create account failed with status %d: %v", status, body)
	}

	// duplicate account number rejected for another user
	otherToken := registerUser(t, env, "bob", "bob@example.com", "password123")
	status, _ = doRequest(t, env.app, "POST", "/api/account", otherToken, map[string]any{
		"account_number": "123456789",
		"account_type":   "current",
		"balance":        10,
	})
	if status != fiber.StatusConflict {
		t.Errorf("Expected 409 for duplicate account number, got %d", status)
	}

	// balance lookup by account number
	status, body = doRequest(t, env.app, "POST", "/api/account/balance", token, map[string]string{
		"account_number": "123456789",
	})
	if status != fiber.StatusOK {
		t.Fatalf("Balance lookup failed with status %d: %v", status, body)
	}
	if body["balance"] != 2500.50 {
		t.Errorf("Expected balance 2500.50, got %v", body["balance"])
	}

	// unknown account is a 404
	status, _ = doRequest(t, env.app, "POST", "/api/account/balance", token, map[string]string{
		"account_number": "000000000",
	})
	if status != fiber.StatusNotFound {
		t.Errorf("Expected 404 for unknown account, got %d", status)
	}

	// dashboard reflects the account
	status, body = doRequest(t, env.app, "GET", "/api/dashboard", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("Dashboard failed with status %d", status)
	}
	if body["has_account"] != true {
		t.Errorf("Expected has_account true, got %v", body["has_account"])
	}
}

func TestChatEndpoint(t *testing.T) {
	env := setupTestApp(t)
	token := registerUser(t, env, "alice", "alice@example.com", "password123")

	if _, err := env.corpusStore.Append("hello", "greet", "Hi! How can I help you today?", ""); err != nil {
		t.Fatalf("Failed to seed corpus: %v", err)
	}

	status, body := doRequest(t, env.app, "POST", "/api/chat", token, map[string]string{
		"message": "Hello!",
	})
	if status != fiber.StatusOK {
		t.Fatalf("Chat failed with status %d: %v", status, body)
	}
	if body["intent"] != "greet" {
		t.Errorf("Expected greet intent, got %v", body["intent"])
	}
	if body["reply"] != "Hi! How can I help you today?" {
		t.Errorf("Unexpected reply %v", body["reply"])
	}

	// unmatched message falls back to the out-of-scope reply
	status, body = doRequest(t, env.app, "POST", "/api/chat", token, map[string]string{
		"message": "recommend me a movie",
	})
	if status != fiber.StatusOK {
		t.Fatalf("Chat failed with status %d", status)
	}
	if body["intent"] != services.OutOfScopeIntent {
		t.Errorf("Expected out_of_scope, got %v", body["intent"])
	}

	// both turns appear in the history
	status, body = doRequest(t, env.app, "GET", "/api/chat/history", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("History failed with status %d", status)
	}
	history, ok := body["history"].([]any)
	if !ok || len(history) != 2 {
		t.Errorf("Expected 2 history turns, got %v", body["history"])
	}
}

func TestAdminCorpusEndpoints(t *testing.T) {
	env := setupTestApp(t)
	adminToken := registerUser(t, env, "admin", "admin@example.com", "password123")

	status, body := doRequest(t, env.app, "POST", "/api/admin/corpus", adminToken, map[string]string{
		"text":     "what are your loan rates",
		"intent":   "loan_inquiry",
		"response": "Our loan rates start at 5% APR.",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Add corpus row failed with status %d: %v", status, body)
	}
	if body["added"] != true {
		t.Errorf("Expected added true, got %v", body["added"])
	}

	// missing required fields rejected
	status, _ = doRequest(t, env.app, "POST", "/api/admin/corpus", adminToken, map[string]string{
		"text": "no intent",
	})
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for missing intent, got %d", status)
	}

	status, body = doRequest(t, env.app, "GET", "/api/admin/corpus", adminToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("List corpus failed with status %d", status)
	}
	if body["count"] != float64(1) {
		t.Errorf("Expected 1 corpus row, got %v", body["count"])
	}
}

func TestAdminCorpusUpload(t *testing.T) {
	env := setupTestApp(t)
	adminToken := registerUser(t, env, "admin", "admin@example.com", "password123")

	// header row carries a UTF-8 BOM, as exports from spreadsheet tools do
	csvContent := "\uFEFFtext,intent,response,entities\n" +
		"hello,greet,Hi!,\n" +
		"what is my balance,check_balance,,\n"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "dataset.csv")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(csvContent)); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/admin/corpus/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)

	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("Upload failed with status %d: %s", resp.StatusCode, raw)
	}

	rows := env.corpusStore.Rows()
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows after upload, got %d", len(rows))
	}
	if rows[0].Text != "hello" || rows[1].Intent != "check_balance" {
		t.Errorf("Unexpected rows after upload: %+v", rows)
	}
}

func TestAdminStats(t *testing.T) {
	env := setupTestApp(t)
	adminToken := registerUser(t, env, "admin", "admin@example.com", "password123")

	if _, err := env.corpusStore.Append("hello", "greet", "Hi!", ""); err != nil {
		t.Fatalf("Failed to seed corpus: %v", err)
	}
	doRequest(t, env.app, "POST", "/api/chat", adminToken, map[string]string{"message": "hello"})

	status, body := doRequest(t, env.app, "GET", "/api/admin/stats", adminToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("Stats failed with status %d", status)
	}
	if body["total_queries"] != float64(1) {
		t.Errorf("Expected 1 logged query, got %v", body["total_queries"])
	}
	if body["corpus_rows"] != float64(1) {
		t.Errorf("Expected 1 corpus row, got %v", body["corpus_rows"])
	}
	if body["users"] != float64(1) {
		t.Errorf("Expected 1 registered user, got %v", body["users"])
	}
}
