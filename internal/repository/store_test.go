package repository

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/turmas-api/internal/kvstore"
	"github.com/noah-isme/turmas-api/internal/models"
)

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	kv := kvstore.NewRedisStore(client, "")
	t.Cleanup(func() { _ = kv.Close() })

	clock := &tickingClock{now: time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)}
	return NewStore(kv, zerolog.New(io.Discard), WithClock(clock.Now)), server
}

func TestClassRoundTripAndStamps(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	created, err := store.Classes.Create(ctx, models.Class{Name: "Turma A", Description: "desc", ProfessorID: "p1", MaxStudents: 30})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, created.CreatedAt, created.UpdatedAt)

	fetched, err := store.Classes.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, created.Name, fetched.Name)
	require.Equal(t, created.ProfessorID, fetched.ProfessorID)
	require.True(t, created.CreatedAt.Equal(fetched.CreatedAt))

	name := "Turma A2"
	updated, err := store.Classes.Update(ctx, created.ID, models.ClassPatch{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Turma A2", updated.Name)
	require.Equal(t, "desc", updated.Description)
	require.Equal(t, 30, updated.MaxStudents)
	require.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	_, err = store.Classes.Update(ctx, "missing", models.ClassPatch{Name: &name})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Classes.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStampsEvenWithFrozenClock(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	kv := kvstore.NewRedisStore(redis.NewClient(&redis.Options{Addr: server.Addr()}), "")
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewStore(kv, zerolog.New(io.Discard), WithClock(func() time.Time { return frozen }))
	ctx := context.Background()

	grade, err := store.Grades.Create(ctx, models.Grade{ClassID: "c", StudentID: "s", Grade: 7})
	require.NoError(t, err)

	value := 8.5
	updated, err := store.Grades.Update(ctx, grade.ID, models.GradePatch{Grade: &value})
	require.NoError(t, err)
	require.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	require.Equal(t, 8.5, updated.Grade)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	comment, err := store.Comments.Create(ctx, models.Comment{ClassID: "c1", Comment: "hi"})
	require.NoError(t, err)

	require.NoError(t, store.Comments.Delete(ctx, comment.ID))
	require.NoError(t, store.Comments.Delete(ctx, comment.ID))
	require.Empty(t, store.Comments.List(ctx))
}

func TestEnrollmentFilters(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	fixtures := []models.Enrollment{
		{StudentID: "s1", ClassID: "c1", Status: models.EnrollmentStatusActive},
		{StudentID: "s1", ClassID: "c2", Status: models.EnrollmentStatusActive},
		{StudentID: "s2", ClassID: "c1", Status: models.EnrollmentStatusInactive},
	}
	for _, e := range fixtures {
		_, err := store.Enrollments.Create(ctx, e)
		require.NoError(t, err)
	}

	for _, e := range store.Enrollments.List(ctx) {
		byStudent := store.Enrollments.ListByStudent(ctx, e.StudentID)
		require.Contains(t, byStudent, e)
		for _, other := range byStudent {
			require.Equal(t, e.StudentID, other.StudentID)
		}
	}

	byClass := store.Enrollments.ListByClass(ctx, "c1")
	require.Len(t, byClass, 2)

	found, err := store.Enrollments.Find(ctx, "s2", "c1")
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusInactive, found.Status)
	_, err = store.Enrollments.Find(ctx, "s3", "c1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEnrollChecksDuplicatesAndCapacity(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	first, err := store.Enrollments.Enroll(ctx, "s1", "c1", 2)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusActive, first.Status)

	_, err = store.Enrollments.Enroll(ctx, "s1", "c1", 2)
	require.ErrorIs(t, err, ErrConflict)

	_, err = store.Enrollments.Enroll(ctx, "s2", "c1", 2)
	require.NoError(t, err)

	_, err = store.Enrollments.Enroll(ctx, "s3", "c1", 2)
	require.ErrorIs(t, err, ErrCapacityReached)

	inactive := models.EnrollmentStatusInactive
	_, err = store.Enrollments.Update(ctx, first.ID, models.EnrollmentPatch{Status: &inactive}, 2)
	require.NoError(t, err)

	_, err = store.Enrollments.Enroll(ctx, "s3", "c1", 2)
	require.NoError(t, err, "an inactive enrollment frees its seat")
}

func TestEnrollmentReactivationConflict(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	old, err := store.Enrollments.Create(ctx, models.Enrollment{StudentID: "s1", ClassID: "c1", Status: models.EnrollmentStatusInactive})
	require.NoError(t, err)
	_, err = store.Enrollments.Enroll(ctx, "s1", "c1", 0)
	require.NoError(t, err)

	active := models.EnrollmentStatusActive
	_, err = store.Enrollments.Update(ctx, old.ID, models.EnrollmentPatch{Status: &active}, 0)
	require.ErrorIs(t, err, ErrConflict)
}

func TestConcurrentReactivationsRespectCapacity(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Enrollments.Enroll(ctx, "s1", "c1", 2)
	require.NoError(t, err)
	var ids []string
	for _, student := range []string{"s2", "s3"} {
		e, err := store.Enrollments.Create(ctx, models.Enrollment{StudentID: student, ClassID: "c1", Status: models.EnrollmentStatusInactive})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	active := models.EnrollmentStatusActive
	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = store.Enrollments.Update(ctx, id, models.EnrollmentPatch{Status: &active}, 2)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, ErrCapacityReached)
	}
	require.Equal(t, 1, succeeded)

	seated := 0
	for _, e := range store.Enrollments.ListByClass(ctx, "c1") {
		if e.Status == models.EnrollmentStatusActive {
			seated++
		}
	}
	require.Equal(t, 2, seated)
}

func TestConcurrentCreatesAreNotLost(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Grades.Create(ctx, models.Grade{ClassID: "c1", StudentID: "s1", Grade: 5})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, store.Grades.ListByClass(ctx, "c1"), 25)
}

func TestUserEmailUniqueness(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	ana, err := store.Users.Create(ctx, models.User{Name: "Ana", Email: " Ana@X.com ", PasswordHash: "h", Type: models.UserTypeStudent})
	require.NoError(t, err)
	require.Equal(t, "ana@x.com", ana.Email)

	_, err = store.Users.Create(ctx, models.User{Name: "Other", Email: "ana@x.com", PasswordHash: "h", Type: models.UserTypeProfessor})
	require.ErrorIs(t, err, ErrConflict)

	bob, err := store.Users.Create(ctx, models.User{Name: "Bob", Email: "bob@x.com", PasswordHash: "h", Type: models.UserTypeProfessor})
	require.NoError(t, err)

	taken := "ANA@x.com"
	_, err = store.Users.Update(ctx, bob.ID, models.UserPatch{Email: &taken})
	require.ErrorIs(t, err, ErrConflict)

	fetched, err := store.Users.GetByEmail(ctx, "ANA@x.com")
	require.NoError(t, err)
	require.Equal(t, ana.ID, fetched.ID)

	require.Len(t, store.Users.ListByType(ctx, models.UserTypeProfessor), 1)
}

func TestConcurrentDuplicateRegistrationsKeepOneUser(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		conflicts int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Users.Create(ctx, models.User{Name: "Dup", Email: "dup@x.com", PasswordHash: "h", Type: models.UserTypeStudent})
			if err != nil {
				assert.ErrorIs(t, err, ErrConflict)
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, store.Users.List(ctx), 1)
	require.Equal(t, 9, conflicts)
}

func TestAttendanceUpsertOverwritesPerDay(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	first, err := store.Attendances.UpsertMany(ctx, []models.Attendance{
		{ClassID: "c1", StudentID: "s1", Date: "2026-03-02", Status: models.AttendancePresent},
		{ClassID: "c1", StudentID: "s2", Date: "2026-03-02", Status: models.AttendanceAbsent},
	})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := store.Attendances.UpsertMany(ctx, []models.Attendance{
		{ClassID: "c1", StudentID: "s1", Date: "2026-03-02", Status: models.AttendanceLate},
		{ClassID: "c1", StudentID: "s1", Date: "2026-03-03", Status: models.AttendancePresent},
	})
	require.NoError(t, err)
	require.Equal(t, first[0].ID, second[0].ID, "same class, student and day keeps its record")
	require.Equal(t, models.AttendanceLate, second[0].Status)
	require.True(t, second[0].UpdatedAt.After(second[0].CreatedAt))

	require.Len(t, store.Attendances.ListByClass(ctx, "c1"), 3)
	require.Len(t, store.Attendances.ListByClassAndDate(ctx, "c1", "2026-03-02"), 2)
	require.Len(t, store.Attendances.ListByStudent(ctx, "s1"), 2)
}

func TestDeleteClassCascade(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	keep, err := store.Classes.Create(ctx, models.Class{Name: "Keep", ProfessorID: "p1", MaxStudents: 10})
	require.NoError(t, err)
	drop, err := store.Classes.Create(ctx, models.Class{Name: "Drop", ProfessorID: "p1", MaxStudents: 10})
	require.NoError(t, err)

	for _, classID := range []string{keep.ID, drop.ID} {
		_, err = store.Enrollments.Enroll(ctx, "s1", classID, 0)
		require.NoError(t, err)
		_, err = store.Attendances.Create(ctx, models.Attendance{ClassID: classID, StudentID: "s1", Date: "2026-03-02", Status: models.AttendancePresent})
		require.NoError(t, err)
		_, err = store.Grades.Create(ctx, models.Grade{ClassID: classID, StudentID: "s1", Grade: 9})
		require.NoError(t, err)
		_, err = store.Comments.Create(ctx, models.Comment{ClassID: classID, StudentID: "s1", Comment: "ok"})
		require.NoError(t, err)
	}

	result, err := store.DeleteClassCascade(ctx, drop.ID)
	require.NoError(t, err)
	require.Equal(t, CascadeResult{Classes: 1, Enrollments: 1, Attendances: 1, Grades: 1, Comments: 1}, result)

	_, err = store.Classes.GetByID(ctx, drop.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, store.Enrollments.ListByClass(ctx, drop.ID))
	require.Empty(t, store.Grades.ListByClass(ctx, drop.ID))
	require.Len(t, store.Enrollments.ListByClass(ctx, keep.ID), 1)
	require.Len(t, store.Comments.ListByClass(ctx, keep.ID), 1)

	again, err := store.DeleteClassCascade(ctx, drop.ID)
	require.NoError(t, err)
	require.Equal(t, CascadeResult{}, again)
}

func TestSessionRepository(t *testing.T) {
	store, server := setupStore(t)
	ctx := context.Background()

	current, err := store.Session.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, current)

	session := models.Session{
		User:      models.SessionUser{ID: "u1", Name: "Ana", Email: "ana@x.com", Type: models.UserTypeStudent},
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
	}
	require.NoError(t, store.Session.Save(ctx, session))
	require.True(t, server.Exists(store.Keys().Session))

	current, err = store.Session.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, session, *current)

	require.NoError(t, store.Session.Delete(ctx))
	require.NoError(t, store.Session.Delete(ctx))
	require.False(t, server.Exists(store.Keys().Session))
}

func TestResetRemovesEveryKey(t *testing.T) {
	store, server := setupStore(t)
	ctx := context.Background()

	_, err := store.Classes.Create(ctx, models.Class{Name: "A", ProfessorID: "p", MaxStudents: 1})
	require.NoError(t, err)
	require.NoError(t, store.Session.Save(ctx, models.Session{User: models.SessionUser{ID: "u", Email: "e", Type: models.UserTypeStudent}, Token: "t", ExpiresAt: 1}))

	require.NoError(t, store.Reset(ctx))
	for _, key := range store.Keys().All() {
		require.False(t, server.Exists(key), key)
	}
}

func TestReadsDegradeButWritesSurfaceStorageErrors(t *testing.T) {
	store, server := setupStore(t)
	ctx := context.Background()
	server.Close()

	require.Empty(t, store.Classes.List(ctx))
	_, err := store.Classes.GetByID(ctx, "any")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.Classes.Create(ctx, models.Class{Name: "A", ProfessorID: "p", MaxStudents: 1})
	require.ErrorIs(t, err, kvstore.ErrStorageIO)
	require.ErrorIs(t, store.Classes.Delete(ctx, "any"), kvstore.ErrStorageIO)
}
