package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/turmas-api/internal/dto"
)

func floatPtr(v float64) *float64 { return &v }

func TestAttendanceEndpoints(t *testing.T) {
	room, token := newClassroom(t)
	base := "/api/v1/classes/" + room.classID + "/attendance"

	status, env := room.api.do(t, http.MethodPost, base, token, dto.RecordAttendanceRequest{
		Date:    "2026-03-02",
		Entries: []dto.AttendanceEntry{{StudentID: room.studentID, Status: "present"}},
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var records []dto.AttendanceResponse
	decode(t, env, &records)
	require.Len(t, records, 1)

	status, env = room.api.do(t, http.MethodPost, base, token, dto.RecordAttendanceRequest{
		Date:    "2026-03-02",
		Entries: []dto.AttendanceEntry{{StudentID: room.studentID, Status: "late"}},
	})
	require.Equal(t, http.StatusOK, status)

	status, env = room.api.do(t, http.MethodGet, base+"?date=2026-03-02", token, nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, env, &records)
	require.Len(t, records, 1)
	require.Equal(t, "late", records[0].Status)

	status, env = room.api.do(t, http.MethodPost, base, token, dto.RecordAttendanceRequest{
		Date:    "02/03/2026",
		Entries: []dto.AttendanceEntry{{StudentID: room.studentID, Status: "present"}},
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, env.Details, "date")

	status, _ = room.api.do(t, http.MethodPost, base, token, dto.RecordAttendanceRequest{
		Date:    "2026-03-03",
		Entries: []dto.AttendanceEntry{{StudentID: "ghost", Status: "present"}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestGradeEndpoints(t *testing.T) {
	room, token := newClassroom(t)
	base := "/api/v1/classes/" + room.classID + "/grades"

	status, env := room.api.do(t, http.MethodPost, base, token, dto.CreateGradeRequest{
		StudentID: room.studentID, Grade: floatPtr(8.456), Description: "Prova 1",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var grade dto.GradeResponse
	decode(t, env, &grade)
	require.InDelta(t, 8.46, grade.Grade, 1e-9)

	status, env = room.api.do(t, http.MethodPost, base, token, dto.CreateGradeRequest{
		StudentID: room.studentID, Grade: floatPtr(11), Description: "Prova 2",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, env.Details, "grade")

	status, env = room.api.do(t, http.MethodPatch, "/api/v1/grades/"+grade.ID, token, dto.UpdateGradeRequest{Grade: floatPtr(9)})
	require.Equal(t, http.StatusOK, status)
	decode(t, env, &grade)
	require.Equal(t, 9.0, grade.Grade)

	status, _ = room.api.do(t, http.MethodPatch, "/api/v1/grades/missing", token, dto.UpdateGradeRequest{Grade: floatPtr(5)})
	require.Equal(t, http.StatusNotFound, status)

	status, _ = room.api.do(t, http.MethodDelete, "/api/v1/grades/missing", token, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestStudentSeesOwnRecords(t *testing.T) {
	room, token := newClassroom(t)
	classPath := "/api/v1/classes/" + room.classID

	status, _ := room.api.do(t, http.MethodPost, classPath+"/grades", token, dto.CreateGradeRequest{
		StudentID: room.studentID, Grade: floatPtr(7.5), Description: "Trabalho",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = room.api.do(t, http.MethodPost, classPath+"/attendance", token, dto.RecordAttendanceRequest{
		Date:    "2026-03-02",
		Entries: []dto.AttendanceEntry{{StudentID: room.studentID, Status: "absent"}},
	})
	require.Equal(t, http.StatusOK, status)

	token = room.api.login(t, "bia@escola.com")

	status, env := room.api.do(t, http.MethodGet, "/api/v1/me/grades", token, nil)
	require.Equal(t, http.StatusOK, status)
	var grades []dto.GradeResponse
	decode(t, env, &grades)
	require.Len(t, grades, 1)
	require.Equal(t, 7.5, grades[0].Grade)

	status, env = room.api.do(t, http.MethodGet, classPath+"/grades", token, nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, env, &grades)
	require.Len(t, grades, 1)

	status, env = room.api.do(t, http.MethodGet, "/api/v1/me/attendance", token, nil)
	require.Equal(t, http.StatusOK, status)
	var records []dto.AttendanceResponse
	decode(t, env, &records)
	require.Len(t, records, 1)
	require.Equal(t, "absent", records[0].Status)

	status, _ = room.api.do(t, http.MethodPost, classPath+"/grades", token, dto.CreateGradeRequest{
		StudentID: room.studentID, Grade: floatPtr(10), Description: "Auto",
	})
	require.Equal(t, http.StatusForbidden, status)

	status, _ = room.api.do(t, http.MethodPost, classPath+"/attendance", token, dto.RecordAttendanceRequest{
		Date:    "2026-03-03",
		Entries: []dto.AttendanceEntry{{StudentID: room.studentID, Status: "present"}},
	})
	require.Equal(t, http.StatusForbidden, status)
}

func TestCommentEndpoints(t *testing.T) {
	room, token := newClassroom(t)
	base := "/api/v1/classes/" + room.classID + "/comments"

	status, env := room.api.do(t, http.MethodPost, base, token, dto.CreateCommentRequest{
		Comment: "<b>Bom</b> trabalho", StudentID: room.studentID,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var comment dto.CommentResponse
	decode(t, env, &comment)
	require.Equal(t, "Bom trabalho", comment.Comment)
	require.Equal(t, room.professorID, comment.AuthorID)

	status, _ = room.api.do(t, http.MethodPost, base, token, dto.CreateCommentRequest{Comment: "<script>alert(1)</script>"})
	require.Equal(t, http.StatusBadRequest, status)

	token = room.api.login(t, "bia@escola.com")
	status, _ = room.api.do(t, http.MethodPost, base, token, dto.CreateCommentRequest{Comment: "Obrigada!"})
	require.Equal(t, http.StatusCreated, status)

	status, env = room.api.do(t, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, status)
	var comments []dto.CommentResponse
	decode(t, env, &comments)
	require.Len(t, comments, 2)
}
