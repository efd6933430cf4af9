package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/repository"
)

// Demo accounts written by the seed.
const (
	DemoProfessorEmail = "professor@teste.com"
	DemoStudentEmail   = "aluno@teste.com"
	DemoPassword       = "123456"
)

var seedNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("turmas.local"))

// SeedID derives the stable id of a seeded record from its natural key.
func SeedID(key string) string {
	return uuid.NewSHA1(seedNamespace, []byte(key)).String()
}

// SeedReport counts what a seed run wrote.
type SeedReport struct {
	Skipped     bool `json:"skipped"`
	Users       int  `json:"users"`
	Classes     int  `json:"classes"`
	Enrollments int  `json:"enrollments"`
}

// SeedService writes the demo data set.
type SeedService interface {
	// EnsureSeedData writes the demo users when no user exists yet.
	EnsureSeedData(ctx context.Context) (SeedReport, error)
	// ResetDemoData wipes every key and writes users, two classes and one enrollment.
	ResetDemoData(ctx context.Context) (SeedReport, error)
}

type seedService struct {
	store      *repository.Store
	bcryptCost int
	logger     zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(store *repository.Store, bcryptCost int, logger zerolog.Logger) SeedService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &seedService{
		store:      store,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) EnsureSeedData(ctx context.Context) (SeedReport, error) {
	if len(s.store.Users.List(ctx)) > 0 {
		s.logger.Debug().Msg("users present, seed skipped")
		return SeedReport{Skipped: true}, nil
	}

	created, err := s.seedUsers(ctx)
	if err != nil {
		return SeedReport{}, err
	}
	s.logger.Info().Int("users", created).Msg("demo users seeded")
	return SeedReport{Users: created}, nil
}

func (s *seedService) ResetDemoData(ctx context.Context) (SeedReport, error) {
	if err := s.store.Reset(ctx); err != nil {
		return SeedReport{}, fmt.Errorf("reset storage: %w", err)
	}

	report := SeedReport{}
	created, err := s.seedUsers(ctx)
	if err != nil {
		return report, err
	}
	report.Users = created

	professorID := SeedID(DemoProfessorEmail)
	studentID := SeedID(DemoStudentEmail)

	classes := []models.Class{
		{Base: models.Base{ID: SeedID("class:Turma A")}, Name: "Turma A", Description: "Turma de teste A", ProfessorID: professorID, MaxStudents: DefaultMaxStudents},
		{Base: models.Base{ID: SeedID("class:Turma B")}, Name: "Turma B", Description: "Turma de teste B", ProfessorID: professorID, MaxStudents: DefaultMaxStudents},
	}
	for _, class := range classes {
		if _, err := s.store.Classes.Create(ctx, class); err != nil {
			return report, fmt.Errorf("seed class %s: %w", class.Name, err)
		}
		report.Classes++
	}

	if _, err := s.store.Enrollments.Enroll(ctx, studentID, classes[0].ID, classes[0].MaxStudents); err != nil {
		return report, fmt.Errorf("seed enrollment: %w", err)
	}
	report.Enrollments++

	s.logger.Info().
		Int("users", report.Users).
		Int("classes", report.Classes).
		Int("enrollments", report.Enrollments).
		Msg("demo data reset")
	return report, nil
}

func (s *seedService) seedUsers(ctx context.Context) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash demo password: %w", err)
	}

	users := []models.User{
		{Base: models.Base{ID: SeedID(DemoProfessorEmail)}, Name: "Professor Teste", Email: DemoProfessorEmail, PasswordHash: string(hash), Type: models.UserTypeProfessor},
		{Base: models.Base{ID: SeedID(DemoStudentEmail)}, Name: "Aluno Teste", Email: DemoStudentEmail, PasswordHash: string(hash), Type: models.UserTypeStudent},
	}

	created := 0
	for _, user := range users {
		_, err := s.store.Users.Create(ctx, user)
		switch {
		case err == nil:
			created++
		case errors.Is(err, repository.ErrConflict):
			// a concurrent seed got there first
		default:
			return created, fmt.Errorf("seed user %s: %w", user.Email, err)
		}
	}
	return created, nil
}
