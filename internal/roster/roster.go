// Package roster implements the class roster: student records, their photos
// and the sticker chart.
package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/pocket-points/internal/config"
	"github.com/sevigo/pocket-points/internal/core"
	"github.com/sevigo/pocket-points/internal/storage"
)

// Service manages the class roster.
type Service interface {
	Create(ctx context.Context, name, imageName string) (*core.Student, error)
	Get(ctx context.Context, id int64) (*core.Student, error)
	List(ctx context.Context) ([]*core.Student, error)
	Update(ctx context.Context, student *core.Student) error
	Delete(ctx context.Context, id int64) error
	Edit(ctx context.Context, id int64, changes Changes) (*core.Student, error)
	AddSticker(ctx context.Context, id int64) (*core.Student, error)
	RemoveLastSticker(ctx context.Context, id int64) (*core.Student, error)
	ClearStickers(ctx context.Context, id int64) (*core.Student, error)
	Import(ctx context.Context, r io.Reader) (int, error)
	PhotoPath(student *core.Student) string
}

// Changes lists the fields an edit replaces. Nil fields are kept; an empty
// ImageName removes the photo.
type Changes struct {
	Name      *string `json:"name,omitempty"`
	ImageName *string `json:"image_name,omitempty"`
}

// service implements the Service interface.
type service struct {
	cfg    *config.Config
	store  storage.Store
	logger *slog.Logger
	locks  sync.Map // student ID -> *sync.Mutex
}

// New creates a roster Service backed by store.
func New(cfg *config.Config, store storage.Store, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
}

// normalize trims the name and image name of a student and checks the
// fields a stored student must satisfy.
func normalize(s *core.Student) error {
	s.Name = strings.TrimSpace(s.Name)
	s.ImageName = strings.TrimSpace(s.ImageName)
	if s.Name == "" {
		return ErrInvalidName
	}
	if s.NumStickers < 0 {
		return ErrNegativeStickers
	}
	return nil
}

func (s *service) Create(ctx context.Context, name, imageName string) (*core.Student, error) {
	student := &core.Student{ID: core.InvalidStudentID, Name: name, ImageName: imageName}
	if err := normalize(student); err != nil {
		return nil, err
	}
	if err := s.store.CreateStudent(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student %q: %w", student.Name, err)
	}
	s.logger.Info("student created", "id", student.ID, "name", student.Name)
	return student, nil
}

func (s *service) Get(ctx context.Context, id int64) (*core.Student, error) {
	student, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student %d: %w", id, err)
	}
	return student, nil
}

// List returns every student ordered by name.
func (s *service) List(ctx context.Context) ([]*core.Student, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *service) Update(ctx context.Context, student *core.Student) error {
	if err := normalize(student); err != nil {
		return err
	}
	if err := s.store.UpdateStudent(ctx, student); err != nil {
		return fmt.Errorf("failed to update student %d: %w", student.ID, err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteStudent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete student %d: %w", id, err)
	}
	s.locks.Delete(id)
	s.logger.Info("student deleted", "id", id)
	return nil
}

// Edit renames a student or replaces their photo.
func (s *service) Edit(ctx context.Context, id int64, changes Changes) (*core.Student, error) {
	return s.modify(ctx, id, func(student *core.Student) error {
		if changes.Name != nil {
			student.Name = *changes.Name
		}
		if changes.ImageName != nil {
			student.ImageName = *changes.ImageName
		}
		return normalize(student)
	})
}

func (s *service) AddSticker(ctx context.Context, id int64) (*core.Student, error) {
	return s.changeStickers(ctx, id, func(n int) (int, error) {
		return n + 1, nil
	})
}

func (s *service) RemoveLastSticker(ctx context.Context, id int64) (*core.Student, error) {
	return s.changeStickers(ctx, id, func(n int) (int, error) {
		if n <= 0 {
			return n, ErrNoStickers
		}
		return n - 1, nil
	})
}

func (s *service) ClearStickers(ctx context.Context, id int64) (*core.Student, error) {
	return s.changeStickers(ctx, id, func(int) (int, error) {
		return 0, nil
	})
}

func (s *service) changeStickers(ctx context.Context, id int64, change func(int) (int, error)) (*core.Student, error) {
	student, err := s.modify(ctx, id, func(student *core.Student) error {
		n, err := change(student.NumStickers)
		if err != nil {
			return err
		}
		student.NumStickers = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("stickers changed", "id", id, "stickers", student.NumStickers)
	return student, nil
}

// modify serializes read-modify-write cycles on a single student within this
// process.
func (s *service) modify(ctx context.Context, id int64, change func(*core.Student) error) (*core.Student, error) {
	val, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mux, ok := val.(*sync.Mutex)
	if !ok {
		return nil, fmt.Errorf("internal error: failed to assert mutex type")
	}
	mux.Lock()
	defer mux.Unlock()

	student, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student %d: %w", id, err)
	}
	if err := change(student); err != nil {
		return nil, err
	}
	if err := s.store.UpdateStudent(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to update student %d: %w", id, err)
	}
	return student, nil
}

type importFile struct {
	Students []*core.Student `yaml:"students"`
}

// Import reads a YAML roster and creates every student in it. The whole file
// is validated before anything is written.
func (s *service) Import(ctx context.Context, r io.Reader) (int, error) {
	var file importFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to parse roster file: %w", err)
	}

	for i, student := range file.Students {
		if student == nil {
			return 0, fmt.Errorf("entry %d: %w", i+1, ErrInvalidName)
		}
		if err := normalize(student); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	created := 0
	for _, student := range file.Students {
		student.ID = core.InvalidStudentID
		if err := s.store.CreateStudent(ctx, student); err != nil {
			return created, fmt.Errorf("failed to import student %q: %w", student.Name, err)
		}
		created++
	}
	s.logger.Info("roster imported", "students", created)
	return created, nil
}

// PhotoPath returns the locator of the student's photo, or "" when the
// student has none.
func (s *service) PhotoPath(student *core.Student) string {
	if student == nil || !student.HasImage() {
		return ""
	}
	return s.cfg.PhotoPath(student.ImageName)
}
