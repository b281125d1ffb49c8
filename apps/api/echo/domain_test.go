package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/alert"
	"github.com/trezcool/nabha/core/assignment"
	"github.com/trezcool/nabha/core/content"
	"github.com/trezcool/nabha/core/progress"
	"github.com/trezcool/nabha/core/user"
	"github.com/trezcool/nabha/tests"
)

func Test_contentApi(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, e.usrRepo, "Meera", "meera", "", "", user.TeacherRoles, true)
	student := testutil.CreateUser(t, e.usrRepo, "Asha", "asha", "", "", user.StudentRoles, true)

	cat, err := e.contRepo.CreateCategory(ctx, content.Category{Name: content.Multilingual{"en": "Maths"}, Subject: "maths", CreatedAt: core.NowFunc()})
	require.NoError(t, err)
	offline, err := e.contRepo.CreateItem(ctx, content.Item{CategoryID: cat.ID, Type: content.TypeText, IsOfflineAvailable: true, Status: content.StatusPublished})
	require.NoError(t, err)
	_, err = e.contRepo.CreateItem(ctx, content.Item{CategoryID: cat.ID, Type: content.TypeVideo, Status: content.StatusPublished})
	require.NoError(t, err)
	_, err = e.contRepo.CreateItem(ctx, content.Item{CategoryID: cat.ID, Type: content.TypeText, IsOfflineAvailable: true, Status: content.StatusDraft})
	require.NoError(t, err)

	var items []content.Item
	rec := e.do(t, http.MethodGet, "/api/content", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &items)
	assert.Len(t, items, 2)

	rec = e.do(t, http.MethodGet, "/api/content?offline=true&category="+cat.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, offline.ID, items[0].ID)

	newItem := content.NewItem{CategoryID: cat.ID, Type: content.TypeQuiz, Title: content.Multilingual{"en": "Fractions", "pa": "ਭਿੰਨ"}}
	runCodeTests(t, e, []httpTest{
		{name: "get", path: "/api/content/" + offline.ID, wantCode: http.StatusOK},
		{name: "get unknown", path: "/api/content/lol", wantCode: http.StatusNotFound},
		{name: "create: auth required", method: http.MethodPost, path: "/api/content", body: newItem, wantCode: http.StatusUnauthorized},
		{name: "create: teacher required", method: http.MethodPost, path: "/api/content", body: newItem, token: e.token(t, student), wantCode: http.StatusForbidden},
		{name: "create: invalid", method: http.MethodPost, path: "/api/content", body: content.NewItem{CategoryID: cat.ID}, token: e.token(t, teacher), wantCode: http.StatusBadRequest},
		{name: "create: unknown category", method: http.MethodPost, path: "/api/content", body: content.NewItem{CategoryID: "lol", Type: content.TypeText, Title: content.Multilingual{"en": "x"}}, token: e.token(t, teacher), wantCode: http.StatusBadRequest},
		{name: "create", method: http.MethodPost, path: "/api/content", body: newItem, token: e.token(t, teacher), wantCode: http.StatusCreated},
		{name: "categories", path: "/api/content/categories", wantCode: http.StatusOK},
	})
}

func Test_progressApi(t *testing.T) {
	e := setup(t)
	student := testutil.CreateUser(t, e.usrRepo, "Asha", "asha", "", "", user.StudentRoles, true)
	other := testutil.CreateUser(t, e.usrRepo, "Ravi", "ravi", "", "", user.StudentRoles, true)
	teacher := testutil.CreateUser(t, e.usrRepo, "Meera", "meera", "", "", user.TeacherRoles, true)
	token := e.token(t, student)

	body := map[string]interface{}{
		"student_id":          other.ID, // ignored
		"content_item_id":     "c1",
		"progress_percentage": 50,
		"time_spent":          12,
	}

	rec := e.do(t, http.MethodPost, "/api/progress", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var first progress.Progress
	decode(t, rec, &first)
	assert.Equal(t, student.ID, first.StudentID)
	assert.Equal(t, 50, first.ProgressPercentage)
	assert.Nil(t, first.CompletedAt)

	// replay and completion update the same record
	body["progress_percentage"] = 100
	rec = e.do(t, http.MethodPost, "/api/progress", token, body)
	require.Equal(t, http.StatusOK, rec.Code)
	var second progress.Progress
	decode(t, rec, &second)
	assert.Equal(t, first.ID, second.ID)
	assert.NotNil(t, second.CompletedAt)

	runCodeTests(t, e, []httpTest{
		{name: "record: auth required", method: http.MethodPost, path: "/api/progress", body: body, wantCode: http.StatusUnauthorized},
		{name: "record: student required", method: http.MethodPost, path: "/api/progress", body: body, token: e.token(t, teacher), wantCode: http.StatusForbidden},
		{name: "record: invalid", method: http.MethodPost, path: "/api/progress", body: map[string]interface{}{"progress_percentage": 101}, token: token, wantCode: http.StatusBadRequest},
		{name: "list: other student", path: "/api/progress/student/" + other.ID, token: token, wantCode: http.StatusForbidden},
		{name: "list: own", path: "/api/progress/student/" + student.ID, token: token, wantCode: http.StatusOK},
		{name: "list: teacher", path: "/api/progress/student/" + student.ID, token: e.token(t, teacher), wantCode: http.StatusOK},
	})

	rec = e.do(t, http.MethodGet, "/api/progress/student/"+student.ID+"/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum progress.Summary
	decode(t, rec, &sum)
	assert.Equal(t, progress.Summary{StudentID: student.ID, ItemsStarted: 1, ItemsCompleted: 1, TotalTimeSpent: 12, ActiveDays: 1}, sum)
}

func Test_assignmentApi(t *testing.T) {
	e := setup(t)
	student := testutil.CreateUser(t, e.usrRepo, "Asha", "asha", "", "", user.StudentRoles, true)
	teacher := testutil.CreateUser(t, e.usrRepo, "Meera", "meera", "", "", user.TeacherRoles, true)
	sToken, tToken := e.token(t, student), e.token(t, teacher)

	rec := e.do(t, http.MethodPost, "/api/assignments", tToken, assignment.NewAssignment{Title: " Fractions quiz "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a assignment.Assignment
	decode(t, rec, &a)
	assert.Equal(t, teacher.ID, a.TeacherID)
	assert.Equal(t, "Fractions quiz", a.Title)

	submission := map[string]interface{}{"assignment_id": a.ID, "answers": map[string]string{"q1": "1/2"}}

	rec = e.do(t, http.MethodPost, "/api/assignments/submit", sToken, map[string]interface{}{"assignment_id": "lol", "answers": map[string]string{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	decode(t, rec, &fields)
	assert.Equal(t, map[string]string{"assignment_id": assignment.ErrNotFound.Error()}, fields)

	rec = e.do(t, http.MethodPost, "/api/assignments/submit", sToken, submission)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sub assignment.Submission
	decode(t, rec, &sub)
	assert.Equal(t, student.ID, sub.StudentID)
	assert.Equal(t, assignment.StatusSubmitted, sub.Status)

	// replayed submissions replace the first one
	rec = e.do(t, http.MethodPost, "/api/assignments/submit", sToken, submission)
	require.Equal(t, http.StatusCreated, rec.Code)
	var again assignment.Submission
	decode(t, rec, &again)
	assert.Equal(t, sub.ID, again.ID)

	runCodeTests(t, e, []httpTest{
		{name: "create: teacher required", method: http.MethodPost, path: "/api/assignments", body: assignment.NewAssignment{Title: "x"}, token: sToken, wantCode: http.StatusForbidden},
		{name: "submit: student required", method: http.MethodPost, path: "/api/assignments/submit", body: submission, token: tToken, wantCode: http.StatusForbidden},
		{name: "list", path: "/api/assignments", token: sToken, wantCode: http.StatusOK},
		{name: "submissions: teacher required", path: "/api/assignments/" + a.ID + "/submissions", token: sToken, wantCode: http.StatusForbidden},
		{name: "submissions: unknown", path: "/api/assignments/lol/submissions", token: tToken, wantCode: http.StatusNotFound},
		{name: "grade: invalid", method: http.MethodPost, path: "/api/assignments/submissions/" + sub.ID + "/grade", body: assignment.Grade{Score: 120}, token: tToken, wantCode: http.StatusBadRequest},
	})

	rec = e.do(t, http.MethodGet, "/api/assignments/"+a.ID+"/submissions", tToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var subs []assignment.Submission
	decode(t, rec, &subs)
	assert.Len(t, subs, 1)

	rec = e.do(t, http.MethodPost, "/api/assignments/submissions/"+sub.ID+"/grade", tToken, assignment.Grade{Score: 90, Feedback: "good"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var graded assignment.Submission
	decode(t, rec, &graded)
	assert.Equal(t, assignment.StatusGraded, graded.Status)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 90, *graded.Score)
}

func Test_alertApi(t *testing.T) {
	e := setup(t)
	student := testutil.CreateUser(t, e.usrRepo, "Asha", "asha", "", "", user.StudentRoles, true)
	teacher := testutil.CreateUser(t, e.usrRepo, "Meera", "meera", "meera@school.in", "", user.TeacherRoles, true)
	testutil.CreateUser(t, e.usrRepo, "Away", "away", "away@school.in", "", user.TeacherRoles, false)
	sToken, tToken := e.token(t, student), e.token(t, teacher)

	runCodeTests(t, e, []httpTest{
		{name: "raise: student required", method: http.MethodPost, path: "/api/emergency-alert", body: alert.NewAlert{Message: "help"}, token: tToken, wantCode: http.StatusForbidden},
		{name: "raise: invalid", method: http.MethodPost, path: "/api/emergency-alert", body: alert.NewAlert{Message: "  "}, token: sToken, wantCode: http.StatusBadRequest},
		{name: "list: teacher required", path: "/api/emergency-alerts", token: sToken, wantCode: http.StatusForbidden},
		{name: "resolve: unknown", method: http.MethodPost, path: "/api/emergency-alerts/lol/resolve", token: tToken, wantCode: http.StatusNotFound},
	})

	rec := e.do(t, http.MethodPost, "/api/emergency-alert", sToken, alert.NewAlert{Message: "I need help"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var raised alert.Alert
	decode(t, rec, &raised)
	assert.Equal(t, alert.StatusActive, raised.Status)
	assert.Equal(t, student.ID, raised.StudentID)

	sent := e.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	require.Len(t, sent[0].To, 1)
	assert.Equal(t, "meera@school.in", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "I need help")

	var active []alert.Alert
	rec = e.do(t, http.MethodGet, "/api/emergency-alerts", tToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &active)
	assert.Len(t, active, 1)

	for i := 0; i < 2; i++ {
		rec = e.do(t, http.MethodPost, "/api/emergency-alerts/"+raised.ID+"/resolve", tToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resolved alert.Alert
		decode(t, rec, &resolved)
		assert.Equal(t, alert.StatusResolved, resolved.Status)
		require.NotNil(t, resolved.ResolvedBy)
		assert.Equal(t, teacher.ID, *resolved.ResolvedBy)
	}

	rec = e.do(t, http.MethodGet, "/api/emergency-alerts", tToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &active)
	assert.Empty(t, active)
}
