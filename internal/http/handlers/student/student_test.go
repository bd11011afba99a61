package student

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-service/internal/storage/storagetest"
	"github.com/aanand-mishra/students-service/internal/types"
)

var errStore = errors.New("connection reset by peer")

func newRouter(fake *storagetest.Fake) *http.ServeMux {
	router := http.NewServeMux()
	Register(router, "/api", fake)
	return router
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []types.Student {
	t.Helper()
	var out []types.Student
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func decodeOne(t *testing.T, rec *httptest.ResponseRecorder) types.Student {
	t.Helper()
	var out types.Student
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestGetList(t *testing.T) {
	t.Run("200 with every record", func(t *testing.T) {
		fake := storagetest.NewFake(
			types.Student{Title: "A", Description: "a", Published: true},
			types.Student{Title: "B", Description: "b"},
		)

		rec := do(t, newRouter(fake), http.MethodGet, "/api/students", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		students := decodeList(t, rec)
		require.Len(t, students, 2)
		assert.Equal(t, "A", students[0].Title)
		assert.False(t, students[1].Published)
	})

	t.Run("204 when empty", func(t *testing.T) {
		rec := do(t, newRouter(storagetest.NewFake()), http.MethodGet, "/api/students", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("500 without body on store failure", func(t *testing.T) {
		fake := storagetest.NewFake()
		fake.Err = errStore

		rec := do(t, newRouter(fake), http.MethodGet, "/api/students", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestGetByID(t *testing.T) {
	fake := storagetest.NewFake(types.Student{ID: 10, Title: "Title", Description: "Desc", Published: true})
	router := newRouter(fake)

	t.Run("200 when found", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/students/10", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, types.Student{ID: 10, Title: "Title", Description: "Desc", Published: true}, decodeOne(t, rec))
	})

	for _, id := range []string{"0", "11", "-1", "9223372036854775807"} {
		t.Run("404 without body for absent id "+id, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, "/api/students/"+id, "")

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Empty(t, rec.Body.String())
		})
	}

	t.Run("400 for non-integer id", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/students/abc", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid id")
	})

	t.Run("500 on store failure", func(t *testing.T) {
		failing := storagetest.NewFake()
		failing.Err = errStore

		rec := do(t, newRouter(failing), http.MethodGet, "/api/students/1", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestNew(t *testing.T) {
	t.Run("201 and published forced to false", func(t *testing.T) {
		fake := storagetest.NewFake(types.Student{ID: 1, Title: "existing"})
		router := newRouter(fake)

		rec := do(t, router, http.MethodPost, "/api/students",
			`{"id": 1, "title": "New", "description": "NewDesc", "published": true}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		created := decodeOne(t, rec)
		assert.NotZero(t, created.ID)
		assert.NotEqual(t, int64(1), created.ID, "client id must be ignored")
		assert.Equal(t, "New", created.Title)
		assert.Equal(t, "NewDesc", created.Description)
		assert.False(t, created.Published)

		// Round trip: the stored record equals what was returned.
		rec = do(t, router, http.MethodGet, "/api/students/"+strconv.FormatInt(created.ID, 10), "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created, decodeOne(t, rec))

		// The pre-existing record is untouched.
		assert.Equal(t, "existing", fake.Records()[0].Title)
	})

	t.Run("every create gets a fresh id", func(t *testing.T) {
		router := newRouter(storagetest.NewFake())
		seen := map[int64]bool{}

		for i := 0; i < 5; i++ {
			rec := do(t, router, http.MethodPost, "/api/students", `{"title":"t","description":"d"}`)
			require.Equal(t, http.StatusCreated, rec.Code)
			id := decodeOne(t, rec).ID
			assert.False(t, seen[id], "id %d reused", id)
			seen[id] = true
		}
	})

	t.Run("400 on empty body", func(t *testing.T) {
		fake := storagetest.NewFake()

		rec := do(t, newRouter(fake), http.MethodPost, "/api/students", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "request body is empty")
		assert.Zero(t, fake.Calls["Save"])
	})

	t.Run("400 on malformed body", func(t *testing.T) {
		rec := do(t, newRouter(storagetest.NewFake()), http.MethodPost, "/api/students", `{"title":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("500 without body on store failure", func(t *testing.T) {
		fake := storagetest.NewFake()
		fake.Err = errStore

		rec := do(t, newRouter(fake), http.MethodPost, "/api/students", `{"title":"t"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestUpdate(t *testing.T) {
	t.Run("200 replaces every field of an existing record", func(t *testing.T) {
		fake := storagetest.NewFake(types.Student{ID: 5, Title: "Old", Description: "OldDesc"})

		rec := do(t, newRouter(fake), http.MethodPut, "/api/students/5",
			`{"id": 99, "title": "NewTitle", "description": "NewDesc", "published": true}`)

		require.Equal(t, http.StatusOK, rec.Code)
		want := types.Student{ID: 5, Title: "NewTitle", Description: "NewDesc", Published: true}
		assert.Equal(t, want, decodeOne(t, rec))
		assert.Equal(t, []types.Student{want}, fake.Records())
	})

	t.Run("published can be switched off", func(t *testing.T) {
		fake := storagetest.NewFake(types.Student{ID: 5, Title: "T", Published: true})

		rec := do(t, newRouter(fake), http.MethodPut, "/api/students/5",
			`{"title": "T", "description": "", "published": false}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decodeOne(t, rec).Published)
	})

	t.Run("404 leaves the store unchanged", func(t *testing.T) {
		fake := storagetest.NewFake(types.Student{ID: 5, Title: "Old"})
		before := fake.Records()

		rec := do(t, newRouter(fake), http.MethodPut, "/api/students/123",
			`{"title": "T", "description": "D", "published": true}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, before, fake.Records())
		assert.Zero(t, fake.Calls["Save"])
	})

	t.Run("400 on invalid id", func(t *testing.T) {
		rec := do(t, newRouter(storagetest.NewFake()), http.MethodPut, "/api/students/x", `{"title":"t"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("404 when the record is deleted concurrently", func(t *testing.T) {
		fake := storagetest.NewFake(types.Student{ID: 1, Title: "a"})
		router := http.NewServeMux()
		Register(router, "/api", deleteBeforeUpdate{fake})

		rec := do(t, router, http.MethodPut, "/api/students/1", `{"title": "b"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Empty(t, fake.Records(), "a deleted record must not come back")
		assert.Zero(t, fake.Calls["Save"])
	})

	t.Run("500 without body on store failure", func(t *testing.T) {
		fake := storagetest.NewFake(types.Student{ID: 5, Title: "Old"})
		fake.Err = errStore

		rec := do(t, newRouter(fake), http.MethodPut, "/api/students/5", `{"title": "T"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

// deleteBeforeUpdate removes the target record right before every Update,
// the way a DELETE racing a PUT would.
type deleteBeforeUpdate struct {
	*storagetest.Fake
}

func (s deleteBeforeUpdate) Update(ctx context.Context, student types.Student) (types.Student, bool, error) {
	if err := s.Fake.DeleteByID(ctx, student.ID); err != nil {
		return types.Student{}, false, err
	}
	return s.Fake.Update(ctx, student)
}

func TestDelete(t *testing.T) {
	t.Run("204 and record removed", func(t *testing.T) {
		fake := storagetest.NewFake(types.Student{ID: 7, Title: "T"})

		rec := do(t, newRouter(fake), http.MethodDelete, "/api/students/7", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Empty(t, fake.Records())
		assert.Equal(t, 1, fake.Calls["DeleteByID"])
	})

	t.Run("deleting twice is indistinguishable from once", func(t *testing.T) {
		fake := storagetest.NewFake(types.Student{ID: 7, Title: "T"}, types.Student{ID: 8, Title: "U"})
		router := newRouter(fake)

		first := do(t, router, http.MethodDelete, "/api/students/7", "")
		after := fake.Records()
		second := do(t, router, http.MethodDelete, "/api/students/7", "")

		assert.Equal(t, http.StatusNoContent, first.Code)
		assert.Equal(t, http.StatusNoContent, second.Code)
		assert.Equal(t, after, fake.Records())
	})

	t.Run("500 on store failure", func(t *testing.T) {
		fake := storagetest.NewFake()
		fake.Err = errStore

		rec := do(t, newRouter(fake), http.MethodDelete, "/api/students/7", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestDeleteAll(t *testing.T) {
	t.Run("followed by list answers 204", func(t *testing.T) {
		fake := storagetest.NewFake(types.Student{Title: "A"}, types.Student{Title: "B"})
		router := newRouter(fake)

		rec := do(t, router, http.MethodDelete, "/api/students", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 1, fake.Calls["DeleteAll"])

		rec = do(t, router, http.MethodGet, "/api/students", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("500 on store failure", func(t *testing.T) {
		fake := storagetest.NewFake()
		fake.Err = errStore

		rec := do(t, newRouter(fake), http.MethodDelete, "/api/students", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetPublished(t *testing.T) {
	t.Run("200 with only published records", func(t *testing.T) {
		fake := storagetest.NewFake(
			types.Student{Title: "P1", Published: true},
			types.Student{Title: "D1"},
			types.Student{Title: "P2", Published: true},
		)

		rec := do(t, newRouter(fake), http.MethodGet, "/api/students/published", "")

		require.Equal(t, http.StatusOK, rec.Code)
		students := decodeList(t, rec)
		require.Len(t, students, 2)
		for _, s := range students {
			assert.True(t, s.Published, s.Title)
		}
	})

	t.Run("204 when records exist but none is published", func(t *testing.T) {
		fake := storagetest.NewFake(types.Student{Title: "D1"}, types.Student{Title: "D2"})

		rec := do(t, newRouter(fake), http.MethodGet, "/api/students/published", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("500, not 204, on store failure", func(t *testing.T) {
		fake := storagetest.NewFake()
		fake.Err = errStore

		rec := do(t, newRouter(fake), http.MethodGet, "/api/students/published", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetByTitle(t *testing.T) {
	fake := storagetest.NewFake(
		types.Student{Title: "foo bar", Description: "x"},
		types.Student{Title: "baz", Description: "y", Published: true},
	)
	router := newRouter(fake)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantTitles []string
	}{
		{"substring match", "/api/student?title=foo", http.StatusOK, []string{"foo bar"}},
		{"no match", "/api/student?title=qux", http.StatusNoContent, nil},
		{"empty value matches all", "/api/student?title=", http.StatusOK, []string{"foo bar", "baz"}},
		{"missing parameter", "/api/student", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.target, "")

			require.Equal(t, tt.wantStatus, rec.Code)
			switch tt.wantStatus {
			case http.StatusOK:
				var titles []string
				for _, s := range decodeList(t, rec) {
					titles = append(titles, s.Title)
				}
				assert.ElementsMatch(t, tt.wantTitles, titles)
			case http.StatusNoContent:
				assert.Empty(t, rec.Body.String())
			case http.StatusBadRequest:
				assert.Contains(t, rec.Body.String(), "field Title is required")
			}
		})
	}

	t.Run("500 on store failure", func(t *testing.T) {
		failing := storagetest.NewFake()
		failing.Err = errStore

		rec := do(t, newRouter(failing), http.MethodGet, "/api/student?title=foo", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}
