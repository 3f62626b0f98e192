package core

import (
	"context"
	"time"
)

// InvalidStudentID is the ID of a student that has not been stored yet.
const InvalidStudentID int64 = -1

// Student is a single member of the class roster.
type Student struct {
	ID          int64     `db:"id" json:"id" yaml:"-"`
	Name        string    `db:"name" json:"name" yaml:"name"`
	ImageName   string    `db:"image_name" json:"image_name,omitempty" yaml:"image,omitempty"`
	NumStickers int       `db:"num_stickers" json:"num_stickers" yaml:"stickers,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at" yaml:"-"`
}

// HasImage reports whether a photo is associated with the student.
func (s *Student) HasImage() bool {
	return s.ImageName != ""
}

// RosterStore defines the persistence operations for students.
type RosterStore interface {
	CreateStudent(ctx context.Context, student *Student) error
	GetStudent(ctx context.Context, id int64) (*Student, error)
	ListStudents(ctx context.Context) ([]*Student, error)
	UpdateStudent(ctx context.Context, student *Student) error
	DeleteStudent(ctx context.Context, id int64) error
}
