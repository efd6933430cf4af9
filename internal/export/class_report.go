package export

import (
	"context"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/repository"
)

// ClassReport is everything recorded for one class.
type ClassReport struct {
	Class       models.Class
	Professor   models.User
	Students    map[string]models.User
	Enrollments []models.Enrollment
	Attendance  []models.Attendance
	Grades      []models.Grade
}

// StudentSummary aggregates one student's grades and attendance.
type StudentSummary struct {
	StudentID string
	Name      string
	Average   float64
	Grades    int
	Present   int
	Absent    int
	Late      int
}

// BuildClassReport collects a class and its records. It returns repository.ErrNotFound
// for an unknown class.
func BuildClassReport(ctx context.Context, store *repository.Store, classID string) (ClassReport, error) {
	class, err := store.Classes.GetByID(ctx, classID)
	if err != nil {
		return ClassReport{}, err
	}

	report := ClassReport{
		Class:       class,
		Students:    make(map[string]models.User),
		Enrollments: store.Enrollments.ListByClass(ctx, classID),
		Attendance:  store.Attendances.ListByClass(ctx, classID),
		Grades:      store.Grades.ListByClass(ctx, classID),
	}
	if professor, err := store.Users.GetByID(ctx, class.ProfessorID); err == nil {
		report.Professor = professor
	}
	for _, user := range store.Users.ListByType(ctx, models.UserTypeStudent) {
		report.Students[user.ID] = user
	}
	return report, nil
}

func (r ClassReport) studentName(id string) string {
	if user, ok := r.Students[id]; ok && user.Name != "" {
		return user.Name
	}
	return id
}

// Summaries returns one line per enrolled student, sorted by name.
func (r ClassReport) Summaries() []StudentSummary {
	index := make(map[string]*StudentSummary)
	order := make([]string, 0, len(r.Enrollments))
	for _, e := range r.Enrollments {
		if _, seen := index[e.StudentID]; seen {
			continue
		}
		index[e.StudentID] = &StudentSummary{StudentID: e.StudentID, Name: r.studentName(e.StudentID)}
		order = append(order, e.StudentID)
	}

	sums := make(map[string]float64)
	for _, g := range r.Grades {
		s, ok := index[g.StudentID]
		if !ok {
			continue
		}
		s.Grades++
		sums[g.StudentID] += g.Grade
	}
	for _, a := range r.Attendance {
		s, ok := index[a.StudentID]
		if !ok {
			continue
		}
		switch a.Status {
		case models.AttendancePresent:
			s.Present++
		case models.AttendanceAbsent:
			s.Absent++
		case models.AttendanceLate:
			s.Late++
		}
	}

	out := make([]StudentSummary, 0, len(order))
	for _, id := range order {
		s := index[id]
		if s.Grades > 0 {
			s.Average = math.Round(sums[id]/float64(s.Grades)*100) / 100
		}
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

type sheetSpec struct {
	title  string
	header []string
	rows   [][]interface{}
}

// Workbook renders the report as an xlsx file with summary, roster, grades and
// attendance sheets.
func (r ClassReport) Workbook() (*excelize.File, error) {
	sheets := []sheetSpec{r.summarySheet(), r.rosterSheet(), r.gradesSheet(), r.attendanceSheet()}

	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.title); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.title); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", s.title, err)
		}

		for col, h := range s.header {
			cell := fmt.Sprintf("%s1", colName(col+1))
			if err := f.SetCellStr(s.title, cell, h); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		end := colName(len(s.header)) + "1"
		_ = f.SetCellStyle(s.title, "A1", end, bold)
		_ = f.AutoFilter(s.title, "A1:"+end, nil)

		for row, values := range s.rows {
			for col, value := range values {
				cell := fmt.Sprintf("%s%d", colName(col+1), row+2)
				if err := f.SetCellValue(s.title, cell, value); err != nil {
					return nil, fmt.Errorf("set cell %s: %w", cell, err)
				}
			}
		}
		fitColumns(f, s)
	}
	return f, nil
}

// WriteTo streams the workbook to w.
func (r ClassReport) WriteTo(w io.Writer) (int64, error) {
	f, err := r.Workbook()
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.WriteTo(w)
}

func (r ClassReport) summarySheet() sheetSpec {
	sheet := sheetSpec{
		title:  "Summary",
		header: []string{"Student", "Average", "Grades", "Present", "Absent", "Late"},
	}
	for _, s := range r.Summaries() {
		sheet.rows = append(sheet.rows, []interface{}{s.Name, s.Average, s.Grades, s.Present, s.Absent, s.Late})
	}
	return sheet
}

func (r ClassReport) rosterSheet() sheetSpec {
	sheet := sheetSpec{
		title:  "Roster",
		header: []string{"Student", "Email", "Status", "Enrolled at"},
	}
	for _, e := range r.Enrollments {
		sheet.rows = append(sheet.rows, []interface{}{
			r.studentName(e.StudentID),
			r.Students[e.StudentID].Email,
			string(e.Status),
			e.CreatedAt.UTC().Format(models.DateLayout),
		})
	}
	return sheet
}

func (r ClassReport) gradesSheet() sheetSpec {
	sheet := sheetSpec{
		title:  "Grades",
		header: []string{"Student", "Grade", "Description", "Recorded at"},
	}
	grades := append([]models.Grade(nil), r.Grades...)
	sort.SliceStable(grades, func(i, j int) bool { return grades[i].CreatedAt.Before(grades[j].CreatedAt) })
	for _, g := range grades {
		sheet.rows = append(sheet.rows, []interface{}{
			r.studentName(g.StudentID),
			g.Grade,
			g.Description,
			g.CreatedAt.UTC().Format(models.DateLayout),
		})
	}
	return sheet
}

func (r ClassReport) attendanceSheet() sheetSpec {
	sheet := sheetSpec{
		title:  "Attendance",
		header: []string{"Date", "Student", "Status"},
	}
	records := append([]models.Attendance(nil), r.Attendance...)
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return r.studentName(records[i].StudentID) < r.studentName(records[j].StudentID)
	})
	for _, a := range records {
		sheet.rows = append(sheet.rows, []interface{}{a.Date, r.studentName(a.StudentID), string(a.Status)})
	}
	return sheet
}

func fitColumns(f *excelize.File, s sheetSpec) {
	for c := 1; c <= len(s.header); c++ {
		width := len([]rune(s.header[c-1]))
		for r := 0; r < len(s.rows) && r < 50; r++ {
			if l := len([]rune(fmt.Sprint(s.rows[r][c-1]))); l > width {
				width = l
			}
		}
		w := math.Min(math.Max(float64(width)*1.1, 12), 48)
		_ = f.SetColWidth(s.title, colName(c), colName(c), w)
	}
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

// Filename builds a safe file name for the class report.
func Filename(class models.Class) string {
	name := strings.Join(strings.Fields(class.Name), " ")
	if name == "" {
		name = class.ID
	}
	return invalidFileRe.ReplaceAllString("class report - "+name, "_") + ".xlsx"
}

func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}
