package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handsign/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func seed(t *testing.T, s *store.Store, letters ...string) []*store.Detection {
	t.Helper()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var out []*store.Detection
	for i, l := range letters {
		d := &store.Detection{Alphabet: l, Hands: 1, Features: 42, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := s.Detections().Create(d); err != nil {
			t.Fatalf("failed to create detection: %v", err)
		}
		out = append(out, d)
	}
	return out
}

func TestDetectionsHandler_List(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, "A", "B", "", "C")
	h := NewDetectionsHandler(s)

	t.Run("newest first", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/detections", nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var resp listDetectionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		want := []string{"C", "", "B", "A"}
		if len(resp.Detections) != len(want) {
			t.Fatalf("got %d detections, want %d", len(resp.Detections), len(want))
		}
		for i, w := range want {
			if resp.Detections[i].Alphabet != w {
				t.Errorf("detections[%d].Alphabet = %q, want %q", i, resp.Detections[i].Alphabet, w)
			}
		}
	})

	t.Run("limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/detections?limit=2", nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		var resp listDetectionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Detections) != 2 {
			t.Errorf("got %d detections, want 2", len(resp.Detections))
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		for _, q := range []string{"0", "-1", "501", "abc"} {
			req := httptest.NewRequest(http.MethodGet, "/api/detections?limit="+q, nil)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("limit=%s: status = %d, want %d", q, rec.Code, http.StatusBadRequest)
			}
		}
	})
}

func TestDetectionsHandler_ListEmpty(t *testing.T) {
	h := NewDetectionsHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/detections", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if string(raw["detections"]) != "[]" {
		t.Errorf("detections = %s, want []", raw["detections"])
	}
}

func TestDetectionsHandler_Get(t *testing.T) {
	s := newTestStore(t)
	created := seed(t, s, "Q")
	h := NewDetectionsHandler(s)

	t.Run("existing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/detections/"+created[0].ID, nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var resp detectionResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.ID != created[0].ID || resp.Alphabet != "Q" || resp.Hands != 1 || resp.Features != 42 {
			t.Errorf("response = %+v", resp)
		}
		if resp.CreatedAt != "2026-01-01T12:00:00Z" {
			t.Errorf("CreatedAt = %q", resp.CreatedAt)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/detections/does-not-exist", nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}

		var resp ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Error == "" {
			t.Error("expected an error message")
		}
	})

	t.Run("delete on an item is not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/detections/"+created[0].ID, nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})
}

func TestDetectionsHandler_Clear(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, "A", "B")
	h := NewDetectionsHandler(s)

	req := httptest.NewRequest(http.MethodDelete, "/api/detections", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	n, err := s.Detections().Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d after clear, want 0", n)
	}
}

func TestDetectionsHandler_MethodNotAllowed(t *testing.T) {
	h := NewDetectionsHandler(newTestStore(t))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
		req := httptest.NewRequest(method, "/api/detections", nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: status = %d, want %d", method, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}
