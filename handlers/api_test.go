package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"taskdeck/handlers"
	"taskdeck/middleware"
	"taskdeck/models"
)

// newTestServer wires the real router, middleware and handlers over the
// in-memory stores, mirroring the wiring in main.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	users := newMemUserStore()
	tasks := newMemTaskStore()
	tokens := newTokenService(t)
	log := discardLogger()

	authHandler := handlers.NewAuthHandler(users, tokens, log)
	taskHandler := handlers.NewTaskHandler(tasks, log)
	requireUser := middleware.RequireUser(tokens, users, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", authHandler.Signup)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.Handle("POST /tasks", requireUser(http.HandlerFunc(taskHandler.Create)))
	mux.Handle("GET /tasks", requireUser(http.HandlerFunc(taskHandler.List)))
	mux.Handle("PUT /tasks/{id}", requireUser(http.HandlerFunc(taskHandler.Update)))
	mux.Handle("DELETE /tasks/{id}", requireUser(http.HandlerFunc(taskHandler.Delete)))
	mux.HandleFunc("GET /tasks/all", taskHandler.ListAll)

	srv := httptest.NewServer(middleware.RequestID(middleware.Logging(log)(middleware.Metrics(mux))))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, target, token, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return resp, data
}

func loginToken(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	resp, err := http.PostForm(srv.URL+"/login", form)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var tr struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		t.Fatalf("decoding token: %v", err)
	}
	if tr.TokenType != "bearer" {
		t.Fatalf("token_type = %q, want bearer", tr.TokenType)
	}
	return tr.AccessToken
}

func TestSignupLoginTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// signup("alice","pw1") -> {id:1, username:"alice"}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/signup", "", `{"username":"alice","password":"pw1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup status = %d, body %s", resp.StatusCode, body)
	}
	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		t.Fatalf("decoding signup response: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" {
		t.Fatalf("signup response = %+v, want id 1 username alice", user)
	}

	token := loginToken(t, srv, "alice", "pw1")

	// POST /tasks {title:"Buy milk"} -> {id:1, title:"Buy milk", description:null, owner_id:1}
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/tasks", token, `{"title":"Buy milk"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}
	var task models.Task
	if err := json.Unmarshal(body, &task); err != nil {
		t.Fatalf("decoding task: %v", err)
	}
	if task.ID != 1 || task.Title != "Buy milk" || task.Description != nil || task.OwnerID != 1 {
		t.Fatalf("created task = %+v", task)
	}

	// PUT /tasks/1 {description:"2%"} -> title unchanged, description set
	resp, body = doJSON(t, http.MethodPut, srv.URL+"/tasks/1", token, `{"description":"2%"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, body %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &task); err != nil {
		t.Fatalf("decoding task: %v", err)
	}
	if task.Title != "Buy milk" || task.Description == nil || *task.Description != "2%" {
		t.Fatalf("updated task = %+v", task)
	}

	// DELETE twice: 200 then 404
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/tasks/1", token, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/tasks/1", token, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestCrossUserMutationForbidden(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`{"username":"alice","password":"pw1"}`,
		`{"username":"bob","password":"pw2"}`,
	} {
		if resp, b := doJSON(t, http.MethodPost, srv.URL+"/signup", "", body); resp.StatusCode != http.StatusOK {
			t.Fatalf("signup status = %d, body %s", resp.StatusCode, b)
		}
	}

	aliceToken := loginToken(t, srv, "alice", "pw1")
	bobToken := loginToken(t, srv, "bob", "pw2")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/tasks", aliceToken, `{"title":"Buy milk"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/tasks/1", bobToken, `{"title":"hijacked"}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("cross-user update status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/tasks/1", bobToken, "")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("cross-user delete status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}

	// The task is intact and still alice's
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/tasks", aliceToken, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var tasks []models.Task
	if err := json.Unmarshal(body, &tasks); err != nil {
		t.Fatalf("decoding tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
		t.Fatalf("alice's tasks = %+v", tasks)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/tasks", "", `{"title":"x"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("create without token status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/tasks", "not-a-token", `{"title":"x"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("create with bad token status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	// /tasks/all stays open (flagged design gap)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/tasks/all", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("list-all status = %d, want %d, body %s", resp.StatusCode, http.StatusOK, body)
	}
}
