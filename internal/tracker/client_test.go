package tracker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stride-cli/stride/pkg/models"
)

func TestStartWork(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody StartWorkOptions

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(Item{ID: "f-1", Status: "in_progress"})
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPClientConfig{BaseURL: srv.URL})
	item, err := client.StartWork(models.ItemTypeFeature, "f-1", StartWorkOptions{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("StartWork returned error: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/v1/features/f-1/start" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotBody.SessionID != "sess-1" {
		t.Errorf("session id = %q", gotBody.SessionID)
	}
	if item.Status != "in_progress" {
		t.Errorf("item status = %q", item.Status)
	}
}

func TestCompleteWorkTaskPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(Item{ID: "t-9", Status: "done"})
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPClientConfig{BaseURL: srv.URL})
	if _, err := client.CompleteWork(models.ItemTypeTask, "t-9", CompleteWorkOptions{Summary: "done"}); err != nil {
		t.Fatalf("CompleteWork returned error: %v", err)
	}
	if gotPath != "/api/v1/tasks/t-9/complete" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestUpdateFeature(t *testing.T) {
	var gotMethod string
	var gotUpdate FeatureUpdate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotUpdate)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPClientConfig{BaseURL: srv.URL})
	if err := client.UpdateFeature("f-3", FeatureUpdate{StatusID: "done"}); err != nil {
		t.Fatalf("UpdateFeature returned error: %v", err)
	}
	if gotMethod != http.MethodPatch {
		t.Errorf("method = %q, want PATCH", gotMethod)
	}
	if gotUpdate.StatusID != "done" {
		t.Errorf("status id = %q", gotUpdate.StatusID)
	}
}

func TestListTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/features/f-2/tasks" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(TaskList{
			Data: []Item{{ID: "t-1"}, {ID: "t-2"}},
			Meta: ListMeta{Total: 2},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPClientConfig{BaseURL: srv.URL})
	list, err := client.ListTasks("f-2")
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(list.Data) != 2 || list.Meta.Total != 2 {
		t.Errorf("list = %+v", list)
	}
}

func TestServerErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPClientConfig{BaseURL: srv.URL})
	if err := client.EmitSessionEvent(SessionEvent{SessionID: "s", Type: "phase:start"}); err == nil {
		t.Fatal("expected error from 500 response")
	}
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPClientConfig{BaseURL: srv.URL, APIKey: "secret"})
	_ = client.LogProgress(models.ItemTypeTask, "t-1", ProgressOptions{Message: "halfway"})
	if gotAuth != "Bearer secret" {
		t.Errorf("auth header = %q", gotAuth)
	}
}
