package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/turmas-api/internal/kvstore"
	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/storage"
)

// Store groups every repository over one key-value store and owns the operations
// that span several collections.
type Store struct {
	Users       UserRepository
	Classes     ClassRepository
	Enrollments EnrollmentRepository
	Attendances AttendanceRepository
	Grades      GradeRepository
	Comments    CommentRepository
	Session     SessionRepository

	kv     kvstore.Store
	keys   storage.Keys
	locker *storage.Locker
	logger zerolog.Logger

	classes     *storage.Collection[models.Class]
	enrollments *storage.Collection[models.Enrollment]
	attendances *storage.Collection[models.Attendance]
	grades      *storage.Collection[models.Grade]
	comments    *storage.Collection[models.Comment]
}

// Option customises NewStore.
type Option func(*storeOptions)

type storeOptions struct {
	now  func() time.Time
	keys storage.Keys
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) { o.now = now }
}

// WithKeys overrides the persisted key layout.
func WithKeys(keys storage.Keys) Option {
	return func(o *storeOptions) { o.keys = keys }
}

// Compile-time interface compliance checks
var (
	_ UserRepository       = (*userRepository)(nil)
	_ ClassRepository      = (*classRepository)(nil)
	_ EnrollmentRepository = (*enrollmentRepository)(nil)
	_ AttendanceRepository = (*attendanceRepository)(nil)
	_ GradeRepository      = (*gradeRepository)(nil)
	_ CommentRepository    = (*commentRepository)(nil)
	_ SessionRepository    = (*sessionRepository)(nil)
)

// NewStore builds all repositories over kv. Every collection shares one lock registry.
func NewStore(kv kvstore.Store, logger zerolog.Logger, opts ...Option) *Store {
	o := storeOptions{now: time.Now, keys: storage.DefaultKeys()}
	for _, opt := range opts {
		opt(&o)
	}

	locker := storage.NewLocker()
	log := logger.With().Str("component", "repository").Logger()

	users := storage.NewCollection[models.User](kv, locker, o.keys.Users, storage.MustSchema(storage.SchemaUsers), log)
	classes := storage.NewCollection[models.Class](kv, locker, o.keys.Classes, storage.MustSchema(storage.SchemaClasses), log)
	enrollments := storage.NewCollection[models.Enrollment](kv, locker, o.keys.Enrollments, storage.MustSchema(storage.SchemaEnrollments), log)
	attendances := storage.NewCollection[models.Attendance](kv, locker, o.keys.Attendances, storage.MustSchema(storage.SchemaAttendances), log)
	grades := storage.NewCollection[models.Grade](kv, locker, o.keys.Grades, storage.MustSchema(storage.SchemaGrades), log)
	comments := storage.NewCollection[models.Comment](kv, locker, o.keys.Comments, storage.MustSchema(storage.SchemaComments), log)
	session := storage.NewDocument[models.Session](kv, locker, o.keys.Session, storage.MustSchema(storage.SchemaSession), log)

	return &Store{
		Users:       &userRepository{newCollectionRepo[models.User, *models.User](users, o.now)},
		Classes:     &classRepository{newCollectionRepo[models.Class, *models.Class](classes, o.now)},
		Enrollments: &enrollmentRepository{newCollectionRepo[models.Enrollment, *models.Enrollment](enrollments, o.now)},
		Attendances: &attendanceRepository{newCollectionRepo[models.Attendance, *models.Attendance](attendances, o.now)},
		Grades:      &gradeRepository{newCollectionRepo[models.Grade, *models.Grade](grades, o.now)},
		Comments:    &commentRepository{newCollectionRepo[models.Comment, *models.Comment](comments, o.now)},
		Session:     &sessionRepository{doc: session},

		kv:          kv,
		keys:        o.keys,
		locker:      locker,
		logger:      log,
		classes:     classes,
		enrollments: enrollments,
		attendances: attendances,
		grades:      grades,
		comments:    comments,
	}
}

// Keys returns the persisted key layout.
func (s *Store) Keys() storage.Keys { return s.keys }

// Ping checks that the backing store answers reads.
func (s *Store) Ping(ctx context.Context) error {
	_, _, err := s.kv.Get(ctx, s.keys.Session)
	return err
}

// CascadeResult counts what DeleteClassCascade removed.
type CascadeResult struct {
	Classes     int `json:"classes"`
	Enrollments int `json:"enrollments"`
	Attendances int `json:"attendances"`
	Grades      int `json:"grades"`
	Comments    int `json:"comments"`
}

// DeleteClassCascade removes a class together with its enrollments, attendance, grades
// and comments while holding the locks of all five collections. Dependents are written
// before the class, so a failed batch leaves the class in place and can be retried.
// Deleting an absent class succeeds.
func (s *Store) DeleteClassCascade(ctx context.Context, classID string) (CascadeResult, error) {
	unlock := s.locker.LockAll(
		s.classes.Key(), s.enrollments.Key(), s.attendances.Key(), s.grades.Key(), s.comments.Key(),
	)
	defer unlock()

	var (
		result CascadeResult
		err    error
	)

	if result.Enrollments, err = dropWhere(ctx, s.enrollments, func(e models.Enrollment) bool { return e.ClassID == classID }); err != nil {
		return result, err
	}
	if result.Attendances, err = dropWhere(ctx, s.attendances, func(a models.Attendance) bool { return a.ClassID == classID }); err != nil {
		return result, err
	}
	if result.Grades, err = dropWhere(ctx, s.grades, func(g models.Grade) bool { return g.ClassID == classID }); err != nil {
		return result, err
	}
	if result.Comments, err = dropWhere(ctx, s.comments, func(c models.Comment) bool { return c.ClassID == classID }); err != nil {
		return result, err
	}
	if result.Classes, err = dropWhere(ctx, s.classes, func(c models.Class) bool { return c.ID == classID }); err != nil {
		return result, err
	}

	s.logger.Info().Str("class_id", classID).Interface("removed", result).Msg("class cascade delete")
	return result, nil
}

// Reset removes every persisted key, session included.
func (s *Store) Reset(ctx context.Context) error {
	keys := s.keys.All()
	unlock := s.locker.LockAll(keys...)
	defer unlock()

	return s.kv.RemoveMany(ctx, keys...)
}

func dropWhere[T any](ctx context.Context, col *storage.Collection[T], drop func(T) bool) (int, error) {
	removed := 0
	err := col.Apply(ctx, func(items []T) ([]T, error) {
		kept := items[:0]
		for _, item := range items {
			if drop(item) {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		return kept, nil
	})
	return removed, err
}
