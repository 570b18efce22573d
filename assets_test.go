package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testDropboxServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer storage-token" {
			t.Errorf("auth = %q", got)
		}

		var payload struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}

		switch r.URL.Path {
		case "/2/files/list_folder":
			switch payload.Path {
			case "/photos/male":
				_ = json.NewEncoder(w).Encode(map[string]any{
					"entries": []map[string]string{{"name": "Bob.jpg"}, {"name": "Charlie Chaplin.jpg"}},
				})
			case "/photos/female":
				_ = json.NewEncoder(w).Encode(map[string]any{
					"entries": []map[string]string{{"name": "Alice.jpg"}},
				})
			default:
				http.Error(w, "unknown folder", http.StatusNotFound)
			}
		case "/2/files/get_temporary_link":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"link": "https://content.example.com" + payload.Path,
			})
		default:
			http.Error(w, "unknown endpoint", http.StatusNotFound)
		}
	}))
}

func TestDropboxListCategory(t *testing.T) {
	srv := testDropboxServer(t)
	defer srv.Close()

	client := newDropboxClient("storage-token", "/photos")
	client.apiURL = srv.URL

	names, err := client.ListCategory(context.Background(), CategoryMale)
	if err != nil {
		t.Fatalf("ListCategory: %v", err)
	}
	if len(names) != 2 || names[0] != "Bob.jpg" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestDropboxTemporaryLink(t *testing.T) {
	srv := testDropboxServer(t)
	defer srv.Close()

	client := newDropboxClient("storage-token", "/photos")
	client.apiURL = srv.URL

	link, err := client.TemporaryLink(context.Background(), Identity{Name: "Alice", Category: CategoryFemale})
	if err != nil {
		t.Fatalf("TemporaryLink: %v", err)
	}
	if link != "https://content.example.com/photos/female/Alice.jpg" {
		t.Fatalf("link = %q", link)
	}
}

func TestDropboxTemporaryLinkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newDropboxClient("storage-token", "/photos")
	client.apiURL = srv.URL

	_, err := client.TemporaryLink(context.Background(), Identity{Name: "Alice", Category: CategoryFemale})
	if !errors.Is(err, errAssetUnavailable) {
		t.Fatalf("err = %v, want errAssetUnavailable", err)
	}
}

func TestLoadRoster(t *testing.T) {
	srv := testDropboxServer(t)
	defer srv.Close()

	client := newDropboxClient("storage-token", "/photos")
	client.apiURL = srv.URL

	roster, err := loadRoster(context.Background(), client)
	if err != nil {
		t.Fatalf("loadRoster: %v", err)
	}
	if roster.Len() != 3 {
		t.Fatalf("roster size = %d, want 3", roster.Len())
	}

	byName := make(map[string]Category)
	for _, person := range roster.people {
		byName[person.Name] = person.Category
	}
	if byName["Bob"] != CategoryMale || byName["Alice"] != CategoryFemale {
		t.Fatalf("unexpected roster: %v", byName)
	}
	if _, ok := byName["Bob.jpg"]; ok {
		t.Fatal("file extension not stripped from identity name")
	}
}

func TestLoadRosterFailsWhenListingFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newDropboxClient("storage-token", "/photos")
	client.apiURL = srv.URL

	if _, err := loadRoster(context.Background(), client); err == nil {
		t.Fatal("expected error when a category listing fails")
	}
}
