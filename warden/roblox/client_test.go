package roblox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithClient(srv.Client(), srv.URL, srv.URL), srv
}

func TestResolveUsername(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/usernames/users":
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			var body struct {
				Usernames []string `json:"usernames"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode request body: %v", err)
			}
			if len(body.Usernames) != 1 || body.Usernames[0] != "builderman" {
				t.Errorf("unexpected usernames payload: %v", body.Usernames)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"id": 156, "name": "builderman"}},
			})
		case "/v1/users/156":
			json.NewEncoder(w).Encode(map[string]any{
				"id":          156,
				"name":        "builderman",
				"displayName": "Builderman",
				"description": "welcome to roblox",
				"created":     "2006-02-27T21:06:40.3Z",
				"isBanned":    false,
			})
		default:
			t.Errorf("unexpected request path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	profile, err := client.ResolveUsername(context.Background(), "builderman")
	if err != nil {
		t.Fatalf("ResolveUsername returned error: %v", err)
	}
	if profile.ID != 156 {
		t.Errorf("expected ID 156, got %d", profile.ID)
	}
	if profile.DisplayName != "Builderman" {
		t.Errorf("expected display name Builderman, got %q", profile.DisplayName)
	}
	if profile.Description != "welcome to roblox" {
		t.Errorf("unexpected description %q", profile.Description)
	}
	if profile.Created.Year() != 2006 {
		t.Errorf("expected created year 2006, got %d", profile.Created.Year())
	}
}

func TestResolveUsernameNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "empty data array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
			},
		},
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.handler)
			_, err := client.ResolveUsername(context.Background(), "nobody")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestGetUserNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	_, err := client.GetUser(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetGroupsCaches(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"group": map[string]any{"id": 7, "name": "Warden QA"},
					"role":  map[string]any{"name": "Tester", "rank": 10},
				},
			},
		})
	}))

	for i := 0; i < 3; i++ {
		groups, err := client.GetGroups(context.Background(), 156)
		if err != nil {
			t.Fatalf("GetGroups returned error: %v", err)
		}
		if len(groups) != 1 || groups[0].GroupName != "Warden QA" || groups[0].Rank != 10 {
			t.Errorf("unexpected groups: %+v", groups)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}

func TestTransportErrorIsNotNotFound(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := client.GetUser(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error after server shutdown")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("transport failure must not be reported as not found")
	}
}
