// Package service is the business layer between the form views and the
// store.
//
// It differs from the JSON handlers in one respect: looking up a student
// that does not exist is an error (NotFoundError) instead of a status
// code, and records are saved exactly as submitted.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aanand-mishra/students-service/internal/storage"
	"github.com/aanand-mishra/students-service/internal/types"
)

// ErrNotFound matches every NotFoundError via errors.Is.
var ErrNotFound = errors.New("student not found")

// NotFoundError reports a by-id lookup for an id with no record.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("student not found: %d", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StudentService wraps a Storage. The zero value is not usable; build one
// with NewStudentService.
type StudentService struct {
	repo storage.Storage
}

// NewStudentService returns a service backed by repo.
func NewStudentService(repo storage.Storage) *StudentService {
	return &StudentService{repo: repo}
}

// GetAllStudents returns every stored student.
func (s *StudentService) GetAllStudents(ctx context.Context) ([]types.Student, error) {
	return s.repo.FindAll(ctx)
}

// GetStudentByID returns the student with the given id, or a
// *NotFoundError carrying that id.
func (s *StudentService) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	student, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return types.Student{}, err
	}
	if !found {
		slog.Debug("student lookup missed", slog.Int64("id", id))
		return types.Student{}, &NotFoundError{ID: id}
	}
	return student, nil
}

// Save persists student as given, including its id and published flag.
func (s *StudentService) Save(ctx context.Context, student types.Student) (types.Student, error) {
	return s.repo.Save(ctx, student)
}

// DeleteStudent removes the student with the given id, if any.
func (s *StudentService) DeleteStudent(ctx context.Context, id int64) error {
	return s.repo.DeleteByID(ctx, id)
}
