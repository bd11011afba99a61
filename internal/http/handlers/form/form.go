// Package form serves the server-rendered HTML views for managing
// students. Every data decision is delegated to the service layer; the
// handlers only pick a view or redirect back to the list.
package form

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/students-service/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// StudentService is what the views need from the service layer.
type StudentService interface {
	GetAllStudents(ctx context.Context) ([]types.Student, error)
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)
	Save(ctx context.Context, student types.Student) (types.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle is the boundary where service failures end up. The views do not
// distinguish kinds of failure: anything returned here, including a
// lookup of an unknown id, becomes a plain 500 page.
func handle(op string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			slog.Error("form request failed",
				slog.String("op", op),
				slog.String("error", err.Error()))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// Register mounts the HTML views at the root of router.
func Register(router *http.ServeMux, svc StudentService) {
	router.HandleFunc("GET /{$}", Home(svc))
	router.HandleFunc("GET /students/new", NewForm())
	router.HandleFunc("POST /students", CreateOrUpdate(svc))
	router.HandleFunc("GET /students/edit/{id}", EditForm(svc))
	router.HandleFunc("GET /students/delete/{id}", Delete(svc))
}

// Home renders the list of every student.
func Home(svc StudentService) http.HandlerFunc {
	return handle("Home", func(w http.ResponseWriter, r *http.Request) error {
		students, err := svc.GetAllStudents(r.Context())
		if err != nil {
			return err
		}
		return render(w, "index.html", map[string]any{"Students": students})
	})
}

// NewForm renders an empty student form.
func NewForm() http.HandlerFunc {
	return handle("NewForm", func(w http.ResponseWriter, r *http.Request) error {
		return render(w, "student_form.html", map[string]any{"Student": types.Student{}})
	})
}

// CreateOrUpdate saves the submitted form. A form carrying an id updates
// that record, one without creates a new record. The published checkbox
// is stored as submitted.
func CreateOrUpdate(svc StudentService) http.HandlerFunc {
	return handle("CreateOrUpdate", func(w http.ResponseWriter, r *http.Request) error {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil
		}

		student, err := studentFromForm(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil
		}

		saved, err := svc.Save(r.Context(), student)
		if err != nil {
			return err
		}
		slog.Info("student saved from form", slog.Int64("id", saved.ID))

		redirectHome(w, r)
		return nil
	})
}

// EditForm renders the form prefilled with an existing student.
func EditForm(svc StudentService) http.HandlerFunc {
	return handle("EditForm", func(w http.ResponseWriter, r *http.Request) error {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id: must be an integer", http.StatusBadRequest)
			return nil
		}

		student, err := svc.GetStudentByID(r.Context(), id)
		if err != nil {
			return err
		}
		return render(w, "student_form.html", map[string]any{"Student": student})
	})
}

// Delete removes a student and goes back to the list.
func Delete(svc StudentService) http.HandlerFunc {
	return handle("Delete", func(w http.ResponseWriter, r *http.Request) error {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id: must be an integer", http.StatusBadRequest)
			return nil
		}

		if err := svc.DeleteStudent(r.Context(), id); err != nil {
			return err
		}
		slog.Info("student deleted from form", slog.Int64("id", id))

		redirectHome(w, r)
		return nil
	})
}

// studentFromForm binds the posted fields. An empty or missing id means a
// new record. An unchecked checkbox is not sent at all, hence false.
func studentFromForm(r *http.Request) (types.Student, error) {
	student := types.Student{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
	}

	if raw := r.PostForm.Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return types.Student{}, err
		}
		student.ID = id
	}

	switch raw := r.PostForm.Get("published"); raw {
	case "", "off":
	case "on":
		student.Published = true
	default:
		published, err := strconv.ParseBool(raw)
		if err != nil {
			return types.Student{}, err
		}
		student.Published = published
	}

	return student, nil
}

// render executes the template into a buffer first so that a template
// error can still be reported as a 500 instead of a truncated page.
func render(w http.ResponseWriter, name string, data any) error {
	var buf bytes.Buffer
	if err := views.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	if err != nil {
		slog.Error("failed to write page", slog.String("error", err.Error()))
	}
	return nil
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
