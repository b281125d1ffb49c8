package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/nabha/apps/api/echo"
	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/assignment"
	"github.com/trezcool/nabha/core/progress"
	"github.com/trezcool/nabha/core/school"
	"github.com/trezcool/nabha/core/user"
	"github.com/trezcool/nabha/tests"
)

func (e *env) createSchool(t *testing.T, name string) school.School {
	t.Helper()
	s, err := e.schRepo.CreateSchool(context.Background(), school.School{Name: name, Status: school.StatusActive, CreatedAt: core.NowFunc()})
	require.NoError(t, err)
	return s
}

func (e *env) registerStudent(t *testing.T, ns user.NewStudent) user.User {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/users/register/student", "", ns)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var usr user.User
	decode(t, rec, &usr)
	return usr
}

func Test_schoolApi(t *testing.T) {
	e := setup(t)
	admin := testutil.CreateUser(t, e.usrRepo, "Owner", "owner", "", "", []string{user.RoleAdminOwner}, true)
	teacher := testutil.CreateUser(t, e.usrRepo, "Meera", "meera", "", "", user.TeacherRoles, true)
	aToken := e.token(t, admin)

	newSchool := school.NewSchool{Name: " Sunrise Public School ", Location: "Nabha", ContactNumber: "+911765000000"}
	runCodeTests(t, e, []httpTest{
		{name: "list: auth required", path: "/api/schools", wantCode: http.StatusUnauthorized},
		{name: "list: admin required", path: "/api/schools", token: e.token(t, teacher), wantCode: http.StatusForbidden},
		{name: "create: admin required", method: http.MethodPost, path: "/api/schools", body: newSchool, token: e.token(t, teacher), wantCode: http.StatusForbidden},
		{name: "create: invalid", method: http.MethodPost, path: "/api/schools", body: school.NewSchool{Name: "x"}, token: aToken, wantCode: http.StatusBadRequest},
		{name: "create: bad contact", method: http.MethodPost, path: "/api/schools", body: school.NewSchool{Name: "x", Location: "y", ContactNumber: "call me"}, token: aToken, wantCode: http.StatusBadRequest},
	})

	rec := e.do(t, http.MethodPost, "/api/schools", aToken, newSchool)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created school.School
	decode(t, rec, &created)
	assert.Equal(t, "Sunrise Public School", created.Name)
	assert.Equal(t, school.StatusActive, created.Status)

	e.createSchool(t, "Govt. Senior Secondary")

	rec = e.do(t, http.MethodGet, "/api/schools", aToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []school.School
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Govt. Senior Secondary", list[0].Name)
	assert.Equal(t, created.ID, list[1].ID)
}

func Test_userApi_student(t *testing.T) {
	e := setup(t)
	sch := e.createSchool(t, "Sunrise")
	teacher := testutil.CreateUser(t, e.usrRepo, "Meera", "meera", "", "", user.TeacherRoles, true)

	asha := e.registerStudent(t, user.NewStudent{Name: "Asha", SchoolID: sch.ID, ClassName: " 6A ", RollNumber: "2", Pin: "1234"})
	assert.Equal(t, user.StudentRoles, asha.Roles)
	assert.Equal(t, "6A", asha.ClassName)
	assert.Equal(t, sch.ID, asha.SchoolID)
	ravi := e.registerStudent(t, user.NewStudent{Name: "Ravi", SchoolID: sch.ID, ClassName: "6A", RollNumber: "1", Pin: "4321"})
	e.registerStudent(t, user.NewStudent{Name: "Meena", SchoolID: sch.ID, ClassName: "6B", RollNumber: "1", Pin: "4321"})

	t.Run("register", func(t *testing.T) {
		tests := []struct {
			name       string
			body       user.NewStudent
			wantFields []string
		}{
			{"pin too short", user.NewStudent{Name: "X", SchoolID: sch.ID, ClassName: "6A", RollNumber: "9", Pin: "12"}, []string{"pin"}},
			{"pin not numeric", user.NewStudent{Name: "X", SchoolID: sch.ID, ClassName: "6A", RollNumber: "9", Pin: "12ab"}, []string{"pin"}},
			{"missing class", user.NewStudent{Name: "X", SchoolID: sch.ID, RollNumber: "9", Pin: "1234"}, []string{"class_name"}},
			{"unknown school", user.NewStudent{Name: "X", SchoolID: "lol", ClassName: "6A", RollNumber: "9", Pin: "1234"}, []string{"school_id"}},
			{"roll taken", user.NewStudent{Name: "X", SchoolID: sch.ID, ClassName: "6A", RollNumber: "2", Pin: "1234"}, []string{"roll_number"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := e.do(t, http.MethodPost, "/api/users/register/student", "", tt.body)
				require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
				var fields map[string]string
				decode(t, rec, &fields)
				for _, f := range tt.wantFields {
					assert.Contains(t, fields, f)
				}
			})
		}
	})

	t.Run("login", func(t *testing.T) {
		creds := func(class, roll, pin string) user.StudentCredentials {
			return user.StudentCredentials{ClassRoll: user.ClassRoll{SchoolID: sch.ID, ClassName: class, RollNumber: roll}, Pin: pin}
		}
		tests := []struct {
			name     string
			body     interface{}
			wantCode int
		}{
			{"missing fields", map[string]string{}, http.StatusBadRequest},
			{"wrong pin", creds("6A", "2", "0000"), http.StatusBadRequest},
			{"wrong class", creds("6B", "2", "1234"), http.StatusBadRequest},
			{"ok", creds("6A", "2", "1234"), http.StatusOK},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := e.do(t, http.MethodPost, "/api/users/login/student", "", tt.body)
				require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
				if tt.wantCode != http.StatusOK {
					return
				}
				var res LoginResponse
				decode(t, rec, &res)
				assert.Equal(t, asha.ID, res.User.ID)

				cookies := rec.Result().Cookies()
				require.Len(t, cookies, 1)
				me := e.do(t, http.MethodGet, "/api/users/me", cookies[0].Value, nil)
				assert.Equal(t, http.StatusOK, me.Code)
			})
		}

		// password login never opens a PIN account
		rec := e.do(t, http.MethodPost, "/api/users/login", "", user.LoginCredentials{Username: "asha", Password: "1234"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("roster", func(t *testing.T) {
		path := "/api/students/class/" + sch.ID + "/6A"
		runCodeTests(t, e, []httpTest{
			{name: "auth required", path: path, wantCode: http.StatusUnauthorized},
			{name: "teacher required", path: path, token: e.token(t, asha), wantCode: http.StatusForbidden},
			{name: "unknown school", path: "/api/students/class/lol/6A", token: e.token(t, teacher), wantCode: http.StatusOK},
		})

		rec := e.do(t, http.MethodGet, path, e.token(t, teacher), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var students []user.User
		decode(t, rec, &students)
		require.Len(t, students, 2)
		assert.Equal(t, []string{ravi.ID, asha.ID}, []string{students[0].ID, students[1].ID}, "by roll number")
	})
}

func Test_assignmentApi_class(t *testing.T) {
	e := setup(t)
	sch := e.createSchool(t, "Sunrise")
	teacher := testutil.CreateUser(t, e.usrRepo, "Meera", "meera", "", "", user.TeacherRoles, true)
	colleague := testutil.CreateUser(t, e.usrRepo, "Kiran", "kiran", "", "", user.TeacherRoles, true)
	student := testutil.CreateUser(t, e.usrRepo, "Asha", "asha", "", "", user.StudentRoles, true)
	tToken := e.token(t, teacher)

	runCodeTests(t, e, []httpTest{
		{name: "create: unknown school", method: http.MethodPost, path: "/api/assignments", body: assignment.NewAssignment{Title: "x", SchoolID: "lol", ClassName: "6A"}, token: tToken, wantCode: http.StatusBadRequest},
		{name: "create: class without school", method: http.MethodPost, path: "/api/assignments", body: assignment.NewAssignment{Title: "x", ClassName: "6A"}, token: tToken, wantCode: http.StatusBadRequest},
		{name: "teacher: teacher required", path: "/api/assignments/teacher", token: e.token(t, student), wantCode: http.StatusForbidden},
	})

	rec := e.do(t, http.MethodPost, "/api/assignments", tToken, assignment.NewAssignment{Title: "Poems", SchoolID: sch.ID, ClassName: "6A"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var classwork assignment.Assignment
	decode(t, rec, &classwork)
	assert.Equal(t, "6A", classwork.ClassName)

	_, err := e.asgRepo.CreateAssignment(context.Background(), assignment.Assignment{TeacherID: colleague.ID, Title: "Plants", CreatedAt: core.NowFunc()})
	require.NoError(t, err)

	list := func(path string) []assignment.Assignment {
		rec := e.do(t, http.MethodGet, path, tToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got []assignment.Assignment
		decode(t, rec, &got)
		return got
	}

	got := list("/api/assignments/class/" + sch.ID + "/6A")
	require.Len(t, got, 1)
	assert.Equal(t, classwork.ID, got[0].ID)
	assert.Empty(t, list("/api/assignments/class/"+sch.ID+"/6B"))

	got = list("/api/assignments/teacher")
	require.Len(t, got, 1)
	assert.Equal(t, classwork.ID, got[0].ID)

	assert.Len(t, list("/api/assignments"), 2)
}

func Test_analyticsApi(t *testing.T) {
	e := setup(t)
	sch := e.createSchool(t, "Sunrise")
	teacher := testutil.CreateUser(t, e.usrRepo, "Meera", "meera", "", "", user.TeacherRoles, true)
	asha := e.registerStudent(t, user.NewStudent{Name: "Asha", SchoolID: sch.ID, ClassName: "6A", RollNumber: "1", Pin: "1234"})
	ravi := e.registerStudent(t, user.NewStudent{Name: "Ravi", SchoolID: sch.ID, ClassName: "6A", RollNumber: "2", Pin: "1234"})
	meena := e.registerStudent(t, user.NewStudent{Name: "Meena", SchoolID: sch.ID, ClassName: "6B", RollNumber: "1", Pin: "1234"})

	record := func(usr user.User, item string, pct int) {
		rec := e.do(t, http.MethodPost, "/api/progress", e.token(t, usr), map[string]interface{}{
			"content_item_id": item, "progress_percentage": pct, "time_spent": 10,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	record(asha, "c1", 100)
	record(asha, "c2", 40)
	record(ravi, "c1", 70)
	record(meena, "c1", 100)

	classPath := "/api/analytics/class/" + sch.ID + "/6A"
	runCodeTests(t, e, []httpTest{
		{name: "class: auth required", path: classPath, wantCode: http.StatusUnauthorized},
		{name: "class: teacher required", path: classPath, token: e.token(t, asha), wantCode: http.StatusForbidden},
		{name: "student: other student", path: "/api/analytics/student/" + ravi.ID, token: e.token(t, asha), wantCode: http.StatusForbidden},
		{name: "student: teacher", path: "/api/analytics/student/" + ravi.ID, token: e.token(t, teacher), wantCode: http.StatusOK},
	})

	rec := e.do(t, http.MethodGet, classPath, e.token(t, teacher), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sum progress.ClassSummary
	decode(t, rec, &sum)
	assert.Equal(t, progress.ClassSummary{
		SchoolID: sch.ID, ClassName: "6A", TotalStudents: 2, ActiveStudents: 2, AverageProgress: 70, LessonsCompleted: 1,
	}, sum)

	rec = e.do(t, http.MethodGet, "/api/analytics/class/"+sch.ID+"/7C", e.token(t, teacher), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &sum)
	assert.Equal(t, progress.ClassSummary{SchoolID: sch.ID, ClassName: "7C"}, sum)

	rec = e.do(t, http.MethodGet, "/api/analytics/student/"+asha.ID, e.token(t, asha), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var own progress.Summary
	decode(t, rec, &own)
	assert.Equal(t, progress.Summary{StudentID: asha.ID, ItemsStarted: 2, ItemsCompleted: 1, TotalTimeSpent: 20, ActiveDays: 1}, own)
}
