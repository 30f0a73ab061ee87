package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const pageJSON = `{
	"info": {"count": 2, "pages": 1, "next": null, "prev": null},
	"results": [
		{"id": 1, "name": "Rick Sanchez", "status": "Alive", "species": "Human", "gender": "Male",
		 "origin": {"name": "Earth (C-137)", "url": ""}, "location": {"name": "Citadel of Ricks", "url": ""},
		 "image": "https://rickandmortyapi.com/api/character/avatar/1.jpeg", "episode": ["e1"],
		 "url": "https://rickandmortyapi.com/api/character/1", "created": "2017-11-04T18:48:46.250Z"},
		{"id": 2, "name": "Morty Smith", "status": "Alive", "species": "Human", "gender": "Male"}
	]
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second)
}

func TestCharacters(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		search    string
		wantQuery string
	}{
		{name: "first page", page: 1, wantQuery: "page=1"},
		{name: "page below one", page: 0, wantQuery: "page=1"},
		{name: "trims name", page: 2, search: "  rick ", wantQuery: "name=rick&page=2"},
		{name: "blank name omitted", page: 3, search: "   ", wantQuery: "page=3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotQuery string
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.RawQuery
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(pageJSON))
			})

			page, err := client.Characters(context.Background(), tt.page, tt.search)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotPath != "/character" {
				t.Errorf("path = %q, want /character", gotPath)
			}
			if gotQuery != tt.wantQuery {
				t.Errorf("query = %q, want %q", gotQuery, tt.wantQuery)
			}
			if len(page.Results) != 2 || page.Results[0].Name != "Rick Sanchez" {
				t.Errorf("unexpected results: %+v", page.Results)
			}
			if page.Info.Count != 2 || page.Info.Next != nil {
				t.Errorf("unexpected info: %+v", page.Info)
			}
		})
	}
}

func TestCharacters_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantAPIMsg string
	}{
		{name: "no matches", status: http.StatusNotFound, body: `{"error":"There is nothing here"}`, wantErr: ErrNoResults},
		{name: "server error with JSON body", status: http.StatusInternalServerError, body: `{"error":"boom"}`, wantAPIMsg: "boom"},
		{name: "server error with text body", status: http.StatusBadGateway, body: "bad gateway", wantAPIMsg: "bad gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Characters(context.Background(), 1, "zzz")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Message != tt.wantAPIMsg {
				t.Errorf("unexpected APIError: %+v", apiErr)
			}
		})
	}
}

func TestCharacters_InvalidJSON(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info":`))
	})

	if _, err := client.Characters(context.Background(), 1, ""); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCharacters_EmptyResultsNotNil(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info":{"count":0,"pages":0}}`))
	})

	page, err := client.Characters(context.Background(), 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if page.Results == nil {
		t.Error("expected non-nil results slice")
	}
}

func TestCharacter(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/character/7" {
				t.Errorf("path = %q", r.URL.Path)
			}
			w.Write([]byte(`{"id":7,"name":"Abradolf Lincler","status":"unknown"}`))
		})

		c, err := client.Character(context.Background(), 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ID != 7 || c.Name != "Abradolf Lincler" {
			t.Errorf("unexpected character: %+v", c)
		}
	})

	t.Run("not found", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Character not found"}`))
		})

		if _, err := client.Character(context.Background(), 9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", 0)
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.httpClient.Timeout != defaultTimeout {
		t.Errorf("timeout = %v", c.httpClient.Timeout)
	}
}
