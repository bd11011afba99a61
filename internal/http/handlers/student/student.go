// Package student contains the JSON handlers for the Student resource.
//
// HANDLER PATTERN: CLOSURE / FACTORY.
// Each exported function receives its dependency (the store) once at
// startup and returns the handler the router calls on every request:
//
//	router.HandleFunc("GET /api/students", student.GetList(storage))
//
// ERROR TRANSLATION:
// The inner handlers return an error only for unexpected store failures.
// handle() is the single place that turns such an error into a 500 with
// an empty body. Absence (404) and empty results (204) are ordinary
// outcomes written by the handlers themselves and never reach handle().
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/students-service/internal/storage"
	"github.com/aanand-mishra/students-service/internal/types"
	"github.com/aanand-mishra/students-service/internal/utils/response"
)

var validate = validator.New()

// handlerFunc is an http.HandlerFunc that may fail with a store error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle wraps fn in the error-translation boundary. fn must not have
// written anything when it returns a non-nil error.
func handle(op string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			slog.Error("store failure",
				slog.String("op", op),
				slog.String("error", err.Error()))
			response.WriteStatus(w, http.StatusInternalServerError)
		}
	}
}

// Register mounts every student route under prefix (e.g. "/api").
func Register(router *http.ServeMux, prefix string, storage storage.Storage) {
	router.HandleFunc("GET "+prefix+"/students", GetList(storage))
	router.HandleFunc("GET "+prefix+"/students/published", GetPublished(storage))
	router.HandleFunc("GET "+prefix+"/students/{id}", GetByID(storage))
	router.HandleFunc("POST "+prefix+"/students", New(storage))
	router.HandleFunc("PUT "+prefix+"/students/{id}", Update(storage))
	router.HandleFunc("DELETE "+prefix+"/students/{id}", Delete(storage))
	router.HandleFunc("DELETE "+prefix+"/students", DeleteAll(storage))
	router.HandleFunc("GET "+prefix+"/student", GetByTitle(storage))
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
//
//	200 OK          — JSON array of every student
//	204 No Content  — the store is empty
//	500 Internal    — store failure, empty body
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(storage storage.Storage) http.HandlerFunc {
	return handle("GetList", func(w http.ResponseWriter, r *http.Request) error {
		slog.Info("getting all students")

		students, err := storage.FindAll(r.Context())
		if err != nil {
			return err
		}

		writeList(w, students)
		return nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
//	200 OK           — the student
//	400 Bad Request  — id is not an integer
//	404 Not Found    — no student with that id, empty body
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.Storage) http.HandlerFunc {
	return handle("GetByID", func(w http.ResponseWriter, r *http.Request) error {
		id, ok := pathID(w, r)
		if !ok {
			return nil
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, found, err := storage.FindByID(r.Context(), id)
		if err != nil {
			return err
		}
		if !found {
			response.WriteStatus(w, http.StatusNotFound)
			return nil
		}

		writeJSON(w, http.StatusOK, student)
		return nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body:
//
//	{ "title": "Go", "description": "intro", "published": true }
//
// Any id in the body is ignored and the record is always created
// unpublished, whatever the client sent.
//
//	201 Created      — the persisted student, with its new id
//	400 Bad Request  — empty or malformed body
//	500 Internal     — store failure, empty body
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return handle("New", func(w http.ResponseWriter, r *http.Request) error {
		slog.Info("creating a student")

		body, ok := decodeBody(w, r)
		if !ok {
			return nil
		}

		saved, err := storage.Save(r.Context(), types.Student{
			Title:       body.Title,
			Description: body.Description,
			Published:   false,
		})
		if err != nil {
			return err
		}

		slog.Info("student created", slog.Int64("id", saved.ID))
		writeJSON(w, http.StatusCreated, saved)
		return nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces title, description and published of an existing student.
//
//	200 OK           — the updated student
//	400 Bad Request  — invalid id, empty or malformed body
//	404 Not Found    — no student with that id, or it was deleted while
//	                   the request ran; nothing is written
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.Storage) http.HandlerFunc {
	return handle("Update", func(w http.ResponseWriter, r *http.Request) error {
		id, ok := pathID(w, r)
		if !ok {
			return nil
		}
		slog.Info("updating a student", slog.Int64("id", id))

		body, ok := decodeBody(w, r)
		if !ok {
			return nil
		}

		// The id always comes from the path; any id in the body is ignored.
		updated, found, err := storage.Update(r.Context(), types.Student{
			ID:          id,
			Title:       body.Title,
			Description: body.Description,
			Published:   body.Published,
		})
		if err != nil {
			return err
		}
		if !found {
			response.WriteStatus(w, http.StatusNotFound)
			return nil
		}

		slog.Info("student updated", slog.Int64("id", id))
		writeJSON(w, http.StatusOK, updated)
		return nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
//	204 No Content   — deleted, or there was nothing to delete
//	400 Bad Request  — invalid id
//	500 Internal     — store failure, empty body
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.Storage) http.HandlerFunc {
	return handle("Delete", func(w http.ResponseWriter, r *http.Request) error {
		id, ok := pathID(w, r)
		if !ok {
			return nil
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		if err := storage.DeleteByID(r.Context(), id); err != nil {
			return err
		}

		response.WriteStatus(w, http.StatusNoContent)
		return nil
	})
}

// DeleteAll handles DELETE /api/students: 204, or 500 on store failure.
func DeleteAll(storage storage.Storage) http.HandlerFunc {
	return handle("DeleteAll", func(w http.ResponseWriter, r *http.Request) error {
		slog.Info("deleting all students")

		if err := storage.DeleteAll(r.Context()); err != nil {
			return err
		}

		response.WriteStatus(w, http.StatusNoContent)
		return nil
	})
}

// GetPublished handles GET /api/students/published with the same
// 200/204/500 contract as GetList.
func GetPublished(storage storage.Storage) http.HandlerFunc {
	return handle("GetPublished", func(w http.ResponseWriter, r *http.Request) error {
		slog.Info("getting published students")

		students, err := storage.FindByPublished(r.Context(), true)
		if err != nil {
			return err
		}

		writeList(w, students)
		return nil
	})
}

// titleQuery is bound from the query string of GET /api/student. Title is
// a pointer so that "?title=" (present, empty) passes while a missing
// parameter fails the required rule.
type titleQuery struct {
	Title *string `validate:"required"`
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByTitle handles GET /api/student?title=<substring>
//
//	200 OK           — students whose title contains the substring
//	204 No Content   — no match
//	400 Bad Request  — title parameter missing
//	500 Internal     — store failure, empty body
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByTitle(storage storage.Storage) http.HandlerFunc {
	return handle("GetByTitle", func(w http.ResponseWriter, r *http.Request) error {
		var q titleQuery
		if values := r.URL.Query(); values.Has("title") {
			title := values.Get("title")
			q.Title = &title
		}

		if err := validate.Struct(q); err != nil {
			var validateErrs validator.ValidationErrors
			if errors.As(err, &validateErrs) {
				writeJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
			} else {
				writeJSON(w, http.StatusBadRequest, response.GeneralError(err))
			}
			return nil
		}
		slog.Info("searching students by title", slog.String("title", *q.Title))

		students, err := storage.FindByTitleContaining(r.Context(), *q.Title)
		if err != nil {
			return err
		}

		writeList(w, students)
		return nil
	})
}

// pathID parses the {id} segment. On failure it writes a 400 and returns
// false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}

// decodeBody reads the JSON student payload. On failure it writes a 400
// and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request) (types.Student, bool) {
	var student types.Student

	err := json.NewDecoder(r.Body).Decode(&student)
	if errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return types.Student{}, false
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return types.Student{}, false
	}

	return student, true
}

// writeList answers 204 for an empty result and 200 with the list
// otherwise.
func writeList(w http.ResponseWriter, students []types.Student) {
	if len(students) == 0 {
		response.WriteStatus(w, http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

// writeJSON logs encoding failures; the status line is already sent by
// then, so there is nothing left to tell the client.
func writeJSON(w http.ResponseWriter, status int, data any) {
	if err := response.WriteJSON(w, status, data); err != nil {
		slog.Error("failed to write response", slog.String("error", err.Error()))
	}
}
