// Package storagetest provides an in-memory storage.Storage for tests of
// the layers above the store.
package storagetest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aanand-mishra/students-service/internal/storage"
	"github.com/aanand-mishra/students-service/internal/types"
)

var _ storage.Storage = (*Fake)(nil)

// Fake keeps records in a map and assigns ids from a counter. Setting Err
// makes every subsequent call fail with it, which is how tests simulate a
// store failure.
type Fake struct {
	mu      sync.Mutex
	records map[int64]types.Student
	nextID  int64

	Err error

	// Calls counts invocations per method name.
	Calls map[string]int
}

// NewFake returns an empty Fake seeded with students. Seeded records keep
// their ids when set; otherwise one is assigned.
func NewFake(students ...types.Student) *Fake {
	f := &Fake{
		records: make(map[int64]types.Student),
		Calls:   make(map[string]int),
	}
	for _, s := range students {
		f.put(s)
	}
	return f
}

// Records returns a copy of the stored records ordered by id.
func (f *Fake) Records() []types.Student {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(types.Student) bool { return true })
}

func (f *Fake) FindAll(_ context.Context) ([]types.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FindAll"); err != nil {
		return nil, err
	}
	return f.sorted(func(types.Student) bool { return true }), nil
}

func (f *Fake) FindByID(_ context.Context, id int64) (types.Student, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FindByID"); err != nil {
		return types.Student{}, false, err
	}
	s, ok := f.records[id]
	return s, ok, nil
}

func (f *Fake) Save(_ context.Context, student types.Student) (types.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("Save"); err != nil {
		return types.Student{}, err
	}
	if _, ok := f.records[student.ID]; !ok {
		student.ID = 0
	}
	return f.put(student), nil
}

func (f *Fake) Update(_ context.Context, student types.Student) (types.Student, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("Update"); err != nil {
		return types.Student{}, false, err
	}
	if _, ok := f.records[student.ID]; !ok || student.IsNew() {
		return types.Student{}, false, nil
	}
	f.records[student.ID] = student
	return student, true, nil
}

func (f *Fake) DeleteByID(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("DeleteByID"); err != nil {
		return err
	}
	delete(f.records, id)
	return nil
}

func (f *Fake) DeleteAll(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("DeleteAll"); err != nil {
		return err
	}
	f.records = make(map[int64]types.Student)
	return nil
}

func (f *Fake) FindByPublished(_ context.Context, published bool) ([]types.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FindByPublished"); err != nil {
		return nil, err
	}
	return f.sorted(func(s types.Student) bool { return s.Published == published }), nil
}

func (f *Fake) FindByTitleContaining(_ context.Context, substr string) ([]types.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FindByTitleContaining"); err != nil {
		return nil, err
	}
	return f.sorted(func(s types.Student) bool { return strings.Contains(s.Title, substr) }), nil
}

// call must be invoked with mu held.
func (f *Fake) call(name string) error {
	f.Calls[name]++
	return f.Err
}

func (f *Fake) put(s types.Student) types.Student {
	if s.IsNew() {
		f.nextID++
		s.ID = f.nextID
	} else if s.ID > f.nextID {
		f.nextID = s.ID
	}
	f.records[s.ID] = s
	return s
}

func (f *Fake) sorted(keep func(types.Student) bool) []types.Student {
	out := make([]types.Student, 0, len(f.records))
	for _, s := range f.records {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
