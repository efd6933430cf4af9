package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/turmas-api/internal/dto"
	"github.com/noah-isme/turmas-api/internal/models"
)

func TestGradeRecordRoundsAndValidates(t *testing.T) {
	f := newSchoolFixture(t)
	ctx := context.Background()
	class := f.createClass(t, "Turma A", 30)
	f.enroll(t, f.student, class.ID)

	grade, err := f.grades.Record(ctx, f.professor, class.ID, dto.CreateGradeRequest{StudentID: f.student.ID, Grade: floatPtr(7.456), Description: "Prova 1"})
	require.NoError(t, err)
	require.Equal(t, 7.46, grade.Grade)

	var verrs validator.ValidationErrors
	_, err = f.grades.Record(ctx, f.professor, class.ID, dto.CreateGradeRequest{StudentID: f.student.ID, Grade: floatPtr(10.5), Description: "x"})
	require.ErrorAs(t, err, &verrs)
	_, err = f.grades.Record(ctx, f.professor, class.ID, dto.CreateGradeRequest{StudentID: f.student.ID, Grade: floatPtr(-1), Description: "x"})
	require.ErrorAs(t, err, &verrs)
	_, err = f.grades.Record(ctx, f.professor, class.ID, dto.CreateGradeRequest{StudentID: f.student.ID, Grade: floatPtr(5), Description: "  "})
	require.ErrorAs(t, err, &verrs)
	_, err = f.grades.Record(ctx, f.professor, class.ID, dto.CreateGradeRequest{StudentID: f.student.ID, Description: "sem nota"})
	require.ErrorAs(t, err, &verrs)

	zero, err := f.grades.Record(ctx, f.professor, class.ID, dto.CreateGradeRequest{StudentID: f.student.ID, Grade: floatPtr(0), Description: "Faltou"})
	require.NoError(t, err)
	require.Equal(t, 0.0, zero.Grade)

	outsider := mustRegister(t, f.auth, "Fora", "fora@x.com", models.UserTypeStudent)
	_, err = f.grades.Record(ctx, f.professor, class.ID, dto.CreateGradeRequest{StudentID: outsider.ID, Grade: floatPtr(5), Description: "x"})
	require.ErrorIs(t, err, ErrNotEnrolled)

	_, err = f.grades.Record(ctx, f.student, class.ID, dto.CreateGradeRequest{StudentID: f.student.ID, Grade: floatPtr(10), Description: "auto"})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestGradeUpdateDeleteAndVisibility(t *testing.T) {
	f := newSchoolFixture(t)
	ctx := context.Background()
	bruno := mustRegister(t, f.auth, "Bruno", "bruno@x.com", models.UserTypeStudent)
	class := f.createClass(t, "Turma A", 30)
	f.enroll(t, f.student, class.ID)
	f.enroll(t, bruno, class.ID)

	anaGrade, err := f.grades.Record(ctx, f.professor, class.ID, dto.CreateGradeRequest{StudentID: f.student.ID, Grade: floatPtr(6), Description: "Prova"})
	require.NoError(t, err)
	_, err = f.grades.Record(ctx, f.professor, class.ID, dto.CreateGradeRequest{StudentID: bruno.ID, Grade: floatPtr(9), Description: "Prova"})
	require.NoError(t, err)

	updated, err := f.grades.Update(ctx, f.professor, anaGrade.ID, dto.UpdateGradeRequest{Grade: floatPtr(6.999)})
	require.NoError(t, err)
	require.Equal(t, 7.0, updated.Grade)
	require.Equal(t, "Prova", updated.Description)

	_, err = f.grades.Update(ctx, f.student, anaGrade.ID, dto.UpdateGradeRequest{Grade: floatPtr(10)})
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.grades.Update(ctx, f.professor, "missing", dto.UpdateGradeRequest{Grade: floatPtr(1)})
	require.ErrorIs(t, err, ErrGradeNotFound)

	all, err := f.grades.ListByClass(ctx, f.professor, class.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)

	own, err := f.grades.ListByClass(ctx, f.student, class.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, f.student.ID, own[0].StudentID)

	require.ErrorIs(t, f.grades.Delete(ctx, f.student, anaGrade.ID), ErrUnauthorized)
	require.NoError(t, f.grades.Delete(ctx, f.professor, anaGrade.ID))
	require.NoError(t, f.grades.Delete(ctx, f.professor, anaGrade.ID))
	require.Empty(t, f.grades.ListByStudent(ctx, f.student.ID))
	require.Len(t, f.grades.ListByStudent(ctx, bruno.ID), 1)
}
