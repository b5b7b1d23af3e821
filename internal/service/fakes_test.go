package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
	"github.com/noah-isme/gema-assignment-hub/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fakeAssignmentStore struct {
	mu        sync.Mutex
	items     map[uint]models.Assignment
	nextID    uint
	listErr   error
	createErr error
	updateErr error
	creates   int
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{items: make(map[uint]models.Assignment), nextID: 1}
}

func (f *fakeAssignmentStore) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment, ok := f.items[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return cloneAssignment(assignment), nil
}

func (f *fakeAssignmentStore) List(_ context.Context, filter repository.AssignmentFilter) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	results := make([]models.Assignment, 0, len(f.items))
	for _, assignment := range f.items {
		if filter.StudentID != nil && assignment.StudentID != *filter.StudentID {
			continue
		}
		if filter.ParentID != nil && assignment.ParentID != *filter.ParentID {
			continue
		}
		if filter.Subject != "" && assignment.Subject != filter.Subject {
			continue
		}
		if filter.Status != nil && assignment.Status != *filter.Status {
			continue
		}
		results = append(results, cloneAssignment(assignment))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ID > results[j].ID })
	return results, nil
}

func (f *fakeAssignmentStore) Create(_ context.Context, assignment *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	assignment.ID = f.nextID
	if assignment.Version == 0 {
		assignment.Version = 1
	}
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = assignment.CreatedAt
	f.items[assignment.ID] = cloneAssignment(*assignment)
	f.nextID++
	f.creates++
	return nil
}

func (f *fakeAssignmentStore) Update(_ context.Context, id uint, version int, changes repository.AssignmentChanges) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	assignment, ok := f.items[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	if assignment.Version != version {
		return 0, repository.ErrVersionConflict
	}

	if changes.Questions != nil {
		assignment.Questions = append([]models.Question(nil), changes.Questions...)
	}
	if changes.Status != nil {
		assignment.Status = *changes.Status
	}
	if changes.Score != nil {
		score := *changes.Score
		assignment.Score = &score
	}
	if changes.AISuggestion != nil {
		suggestion := *changes.AISuggestion
		assignment.AISuggestion = &suggestion
	}
	if changes.ParentComment != nil {
		comment := *changes.ParentComment
		assignment.ParentComment = &comment
	}
	assignment.Version++
	assignment.UpdatedAt = time.Now()
	f.items[id] = assignment
	return assignment.Version, nil
}

func (f *fakeAssignmentStore) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeAssignmentStore) stored(id uint) models.Assignment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneAssignment(f.items[id])
}

func cloneAssignment(assignment models.Assignment) models.Assignment {
	assignment.Questions = append([]models.Question(nil), assignment.Questions...)
	return assignment
}

type fakeStudentStore struct {
	mu       sync.Mutex
	students map[uint]models.Student
	nextID   uint
	err      error
}

func newFakeStudentStore(students ...models.Student) *fakeStudentStore {
	store := &fakeStudentStore{students: make(map[uint]models.Student), nextID: 100}
	for _, student := range students {
		store.students[student.ID] = student
	}
	return store
}

func (f *fakeStudentStore) GetByID(_ context.Context, id uint) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Student{}, f.err
	}
	student, ok := f.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (f *fakeStudentStore) List(_ context.Context, filter repository.StudentFilter) ([]models.Student, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	results := make([]models.Student, 0, len(f.students))
	for _, student := range f.students {
		if filter.ParentID != nil && student.ParentID != *filter.ParentID {
			continue
		}
		if filter.Grade != "" && student.Grade != filter.Grade {
			continue
		}
		results = append(results, student)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, int64(len(results)), nil
}

func (f *fakeStudentStore) Create(_ context.Context, student *models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	student.ID = f.nextID
	f.nextID++
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentStore) Update(_ context.Context, id uint, updates map[string]interface{}) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	student, ok := f.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "first_name":
			student.FirstName = value.(string)
		case "last_name":
			student.LastName = value.(string)
		case "email":
			student.Email = value.(string)
		case "grade":
			student.Grade = value.(string)
		case "strengths":
			student.Strengths = value.(datatypes.JSONSlice[string])
		case "weaknesses":
			student.Weaknesses = value.(datatypes.JSONSlice[string])
		case "learning_styles":
			student.LearningStyles = value.(datatypes.JSONSlice[string])
		}
	}
	f.students[id] = student
	return student, nil
}

func (f *fakeStudentStore) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.students[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.students, id)
	return nil
}

// scriptedGenerator replays canned responses in order and records every prompt it receives.
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []scriptedResponse
	prompts   []string
}

type scriptedResponse struct {
	text string
	err  error
}

func newScriptedGenerator(responses ...scriptedResponse) *scriptedGenerator {
	return &scriptedGenerator{responses: responses}
}

func (g *scriptedGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if len(g.responses) == 0 {
		return "", context.DeadlineExceeded
	}
	next := g.responses[0]
	g.responses = g.responses[1:]
	return next.text, next.err
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func sampleStudent() models.Student {
	return models.Student{
		ID:             11,
		ParentID:       7,
		FirstName:      "Ada",
		Grade:          "5th Grade",
		Strengths:      []string{"Arithmetic"},
		Weaknesses:     []string{"Word problems"},
		LearningStyles: []string{"Visual"},
	}
}

// recordingTracer keeps every span it starts so tests can read back status and errors.
type recordingTracer struct {
	noop.Tracer

	mu    sync.Mutex
	spans []*recordingSpan
}

type recordingSpan struct {
	noop.Span

	name        string
	errs        []error
	code        codes.Code
	description string
}

func (t *recordingTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	span := &recordingSpan{name: name}
	t.mu.Lock()
	t.spans = append(t.spans, span)
	t.mu.Unlock()
	return trace.ContextWithSpan(ctx, span), span
}

func (t *recordingTracer) span(name string) *recordingSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.spans) - 1; i >= 0; i-- {
		if t.spans[i].name == name {
			return t.spans[i]
		}
	}
	return nil
}

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}

func (s *recordingSpan) SetStatus(code codes.Code, description string) {
	s.code = code
	s.description = description
}
