// Package repotest checks repository implementations against the behaviour the services rely on.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/alert"
	"github.com/trezcool/nabha/core/assignment"
	"github.com/trezcool/nabha/core/content"
	"github.com/trezcool/nabha/core/progress"
	"github.com/trezcool/nabha/core/school"
	"github.com/trezcool/nabha/core/user"
	testutil "github.com/trezcool/nabha/tests"
)

// Repositories is one backing store seen through every repository.
type Repositories struct {
	Schools     school.Repository
	Users       user.Repository
	Content     content.Repository
	Progress    progress.Repository
	Assignments assignment.Repository
	Alerts      alert.Repository
}

// Open returns repositories over an empty store.
type Open func(t *testing.T) Repositories

var (
	ctx  = context.Background()
	base = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
)

func Run(t *testing.T, open Open) {
	t.Run("schools", func(t *testing.T) { testSchools(t, open(t)) })
	t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("students", func(t *testing.T) { testStudents(t, open(t)) })
	t.Run("content", func(t *testing.T) { testContent(t, open(t)) })
	t.Run("progress upsert", func(t *testing.T) { testProgress(t, open(t)) })
	t.Run("assignments", func(t *testing.T) { testAssignments(t, open(t)) })
	t.Run("alerts", func(t *testing.T) { testAlerts(t, open(t)) })
}

func testUsers(t *testing.T, r Repositories) {
	asha := testutil.CreateUser(t, r.Users, "Asha Devi", "asha", "asha@school.in", "", user.StudentRoles, true, base)
	ravi := testutil.CreateUser(t, r.Users, "Ravi Kumar", "ravi", "", "", user.TeacherRoles, true, base.Add(time.Hour))
	_ = testutil.CreateUser(t, r.Users, "Old Admin", "oldadmin", "admin@school.in", "", []string{user.RoleAdminOwner}, false, base.Add(2*time.Hour))

	t.Run("uniqueness", func(t *testing.T) {
		err := r.Users.CheckUsernameUniqueness(ctx, "asha", "", nil)
		assert.Equal(t, user.ErrUserExists, errors.Cause(err))
		err = r.Users.CheckUsernameUniqueness(ctx, "", "asha@school.in", nil)
		assert.Equal(t, user.ErrUserExists, errors.Cause(err))
		assert.NoError(t, r.Users.CheckUsernameUniqueness(ctx, "asha", "asha@school.in", []user.User{asha}))
		assert.NoError(t, r.Users.CheckUsernameUniqueness(ctx, "meena", "meena@school.in", nil))
	})

	t.Run("get", func(t *testing.T) {
		tests := []struct {
			name   string
			filter user.GetFilter
			wantID string
		}{
			{"by id", user.GetFilter{ID: ravi.ID}, ravi.ID},
			{"by username", user.GetFilter{Username: "asha"}, asha.ID},
			{"by email", user.GetFilter{Email: "asha@school.in"}, asha.ID},
			{"username or email, username", user.GetFilter{UsernameOrEmail: []string{"ravi"}}, ravi.ID},
			{"username or email, email", user.GetFilter{UsernameOrEmail: []string{"asha@school.in"}}, asha.ID},
			{"username or email, pair", user.GetFilter{UsernameOrEmail: []string{"", "asha@school.in"}}, asha.ID},
			{"unknown", user.GetFilter{Username: "ghost"}, ""},
			{"malformed id", user.GetFilter{ID: "not-an-id"}, ""},
			{"empty", user.GetFilter{}, ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				usr, err := r.Users.GetUser(ctx, tt.filter)
				if tt.wantID == "" {
					assert.Equal(t, user.ErrNotFound, errors.Cause(err))
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, usr.ID)
			})
		}
	})

	t.Run("query", func(t *testing.T) {
		inactive := false
		tests := []struct {
			name     string
			filter   *user.QueryFilter
			ordering []core.DBOrdering
			want     []string
		}{
			{"all by creation", &user.QueryFilter{}, []core.DBOrdering{{Field: "created_at", Ascending: true}}, []string{"asha", "ravi", "oldadmin"}},
			{"search", &user.QueryFilter{Search: "KUMAR"}, nil, []string{"ravi"}},
			{"role prefix", &user.QueryFilter{Roles: []string{user.RoleAdmin}}, nil, []string{"oldadmin"}},
			{"roles or-ed", &user.QueryFilter{Roles: []string{user.RoleStudent, user.RoleTeacher}}, []core.DBOrdering{{Field: "username", Ascending: false}}, []string{"ravi", "asha"}},
			{"inactive", &user.QueryFilter{IsActive: &inactive}, nil, []string{"oldadmin"}},
			{"created range", &user.QueryFilter{CreatedFrom: base.Add(30 * time.Minute), CreatedTo: base.Add(90 * time.Minute)}, nil, []string{"ravi"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				usrs, err := r.Users.QueryUsers(ctx, tt.filter, tt.ordering)
				require.NoError(t, err)
				got := make([]string, 0, len(usrs))
				for _, u := range usrs {
					got = append(got, u.Username)
				}
				assert.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("update", func(t *testing.T) {
		asha.Name = "Asha D."
		asha.LastLogin = base.Add(24 * time.Hour)
		_, err := r.Users.UpdateUser(ctx, asha)
		require.NoError(t, err)

		got, err := r.Users.GetUser(ctx, user.GetFilter{ID: asha.ID})
		require.NoError(t, err)
		assert.Equal(t, "Asha D.", got.Name)
		assert.True(t, got.LastLogin.Equal(asha.LastLogin))
		assert.True(t, got.CreatedAt.Equal(base))

		ghost := asha
		ghost.ID = "00000000-0000-0000-0000-000000000000"
		_, err = r.Users.UpdateUser(ctx, ghost)
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	})

	t.Run("delete", func(t *testing.T) {
		n, err := r.Users.DeleteUsersByID(ctx, []string{ravi.ID, "00000000-0000-0000-0000-000000000000"})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		_, err = r.Users.GetUser(ctx, user.GetFilter{ID: ravi.ID})
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	})
}

func testSchools(t *testing.T, r Repositories) {
	sunrise, err := r.Schools.CreateSchool(ctx, school.School{Name: "Sunrise Public School", Location: "Nabha", Status: school.StatusActive, CreatedAt: base})
	require.NoError(t, err)
	require.NotEmpty(t, sunrise.ID)
	govt, err := r.Schools.CreateSchool(ctx, school.School{Name: "Govt. Senior Secondary", Location: "Patiala", ContactNumber: "+911752000000", Status: school.StatusActive, CreatedAt: base})
	require.NoError(t, err)

	list, err := r.Schools.QuerySchools(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, govt.ID, list[0].ID, "ordered by name")

	got, err := r.Schools.GetSchool(ctx, sunrise.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nabha", got.Location)
	assert.Equal(t, school.StatusActive, got.Status)

	_, err = r.Schools.GetSchool(ctx, "not-an-id")
	assert.Equal(t, school.ErrNotFound, errors.Cause(err))
	_, err = r.Schools.GetSchool(ctx, "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, school.ErrNotFound, errors.Cause(err))
}

func createStudent(t *testing.T, r Repositories, name, schoolID, class, roll string, isActive bool) user.User {
	t.Helper()
	usr := user.User{
		Name: name, IsActive: isActive, Roles: user.StudentRoles,
		SchoolID: schoolID, ClassName: class, RollNumber: roll,
		CreatedAt: base, UpdatedAt: base,
	}
	require.NoError(t, usr.SetPin("1234"))
	usr, err := r.Users.CreateUser(ctx, usr)
	require.NoError(t, err)
	return usr
}

func testStudents(t *testing.T, r Repositories) {
	sch, err := r.Schools.CreateSchool(ctx, school.School{Name: "Sunrise", Status: school.StatusActive, CreatedAt: base})
	require.NoError(t, err)
	other, err := r.Schools.CreateSchool(ctx, school.School{Name: "Govt.", Status: school.StatusActive, CreatedAt: base})
	require.NoError(t, err)

	asha := createStudent(t, r, "Asha", sch.ID, "6A", "2", true)
	ravi := createStudent(t, r, "Ravi", sch.ID, "6A", "1", false)
	_ = createStudent(t, r, "Meena", sch.ID, "6B", "1", true)
	_ = createStudent(t, r, "Gurpreet", other.ID, "6A", "1", true)
	_ = testutil.CreateUser(t, r.Users, "Teacher", "teacher", "", "", user.TeacherRoles, true)

	t.Run("get by class roll", func(t *testing.T) {
		tests := []struct {
			name   string
			roll   user.ClassRoll
			wantID string
		}{
			{"match", user.ClassRoll{SchoolID: sch.ID, ClassName: "6A", RollNumber: "2"}, asha.ID},
			{"other class", user.ClassRoll{SchoolID: sch.ID, ClassName: "6C", RollNumber: "2"}, ""},
			{"malformed school", user.ClassRoll{SchoolID: "lol", ClassName: "6A", RollNumber: "2"}, ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				roll := tt.roll
				usr, err := r.Users.GetUser(ctx, user.GetFilter{ClassRoll: &roll})
				if tt.wantID == "" {
					assert.Equal(t, user.ErrNotFound, errors.Cause(err))
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, usr.ID)
				assert.NoError(t, usr.CheckPin("1234"))
				assert.Error(t, usr.CheckPin("4321"))
			})
		}
	})

	t.Run("class roster", func(t *testing.T) {
		usrs, err := r.Users.QueryUsers(ctx,
			&user.QueryFilter{Roles: user.StudentRoles, SchoolID: sch.ID, ClassName: "6A"},
			[]core.DBOrdering{{Field: "roll_number", Ascending: true}})
		require.NoError(t, err)
		require.Len(t, usrs, 2)
		assert.Equal(t, []string{ravi.ID, asha.ID}, []string{usrs[0].ID, usrs[1].ID})
		assert.Equal(t, "6A", usrs[0].ClassName)

		usrs, err = r.Users.QueryUsers(ctx, &user.QueryFilter{SchoolID: "lol"}, nil)
		require.NoError(t, err)
		assert.Empty(t, usrs)
	})

	t.Run("update keeps the credential", func(t *testing.T) {
		asha.RollNumber = "3"
		_, err := r.Users.UpdateUser(ctx, asha)
		require.NoError(t, err)

		got, err := r.Users.GetUser(ctx, user.GetFilter{ID: asha.ID})
		require.NoError(t, err)
		assert.Equal(t, "3", got.RollNumber)
		assert.Equal(t, sch.ID, got.SchoolID)
		assert.NoError(t, got.CheckPin("1234"))
	})
}

func testContent(t *testing.T, r Repositories) {
	math, err := r.Content.CreateCategory(ctx, content.Category{
		Name: content.Multilingual{"en": "Mathematics", "pa": "ਗਣਿਤ"}, Subject: "math", GradeLevel: 6, CreatedAt: base,
	})
	require.NoError(t, err)
	science, err := r.Content.CreateCategory(ctx, content.Category{
		Name: content.Multilingual{"en": "Science"}, Subject: "science", GradeLevel: 5, CreatedAt: base,
	})
	require.NoError(t, err)

	cats, err := r.Content.QueryCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, science.ID, cats[0].ID, "ordered by grade level")
	assert.Equal(t, "ਗਣਿਤ", cats[1].Name["pa"])

	got, err := r.Content.GetCategory(ctx, math.ID)
	require.NoError(t, err)
	assert.Equal(t, "math", got.Subject)

	newItem := func(cat content.Category, typ string, offlineOK bool, status string) content.Item {
		item, err := r.Content.CreateItem(ctx, content.Item{
			CategoryID: cat.ID, Type: typ, Title: content.Multilingual{"en": typ}, Difficulty: "beginner",
			IsOfflineAvailable: offlineOK, Status: status, CreatedAt: base, UpdatedAt: base,
		})
		require.NoError(t, err)
		return item
	}
	video := newItem(math, content.TypeVideo, true, content.StatusPublished)
	quiz := newItem(math, content.TypeQuiz, false, content.StatusPublished)
	text := newItem(science, content.TypeText, true, content.StatusPublished)
	_ = newItem(science, content.TypeAudio, true, content.StatusDraft)

	tests := []struct {
		name   string
		filter content.QueryFilter
		want   []string
	}{
		{"category", content.QueryFilter{CategoryID: math.ID, Status: content.StatusPublished}, sortedIDs(video.ID, quiz.ID)},
		{"offline only", content.QueryFilter{OfflineOnly: true, Status: content.StatusPublished}, sortedIDs(video.ID, text.ID)},
		{"all statuses", content.QueryFilter{CategoryID: science.ID}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := r.Content.QueryItems(ctx, tt.filter)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Len(t, items, 2)
				return
			}
			got := make([]string, 0, len(items))
			for _, item := range items {
				got = append(got, item.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	item, err := r.Content.GetItem(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, "video", item.Title["en"])
	assert.True(t, item.IsOfflineAvailable)

	_, err = r.Content.GetItem(ctx, "not-an-id")
	assert.Equal(t, content.ErrNotFound, errors.Cause(err))
	_, err = r.Content.GetCategory(ctx, "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, content.ErrCategoryNotFound, errors.Cause(err))
}

func sortedIDs(a, b string) []string {
	if a < b {
		return []string{a, b}
	}
	return []string{b, a}
}

func testProgress(t *testing.T, r Repositories) {
	s1 := testutil.CreateUser(t, r.Users, "S1", "s1", "", "", user.StudentRoles, true)

	first, err := r.Progress.UpsertProgress(ctx, progress.Progress{
		StudentID: s1.ID, ContentItemID: "c1", ProgressPercentage: 50,
		LastAccessedAt: base, CreatedAt: base, UpdatedAt: base,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	// replaying the same write and a later one never duplicates the record
	for _, pct := range []int{50, 80} {
		_, err = r.Progress.UpsertProgress(ctx, progress.Progress{
			StudentID: s1.ID, ContentItemID: "c1", ProgressPercentage: pct,
			LastAccessedAt: base.Add(time.Hour), CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour),
		})
		require.NoError(t, err)
	}
	_, err = r.Progress.UpsertProgress(ctx, progress.Progress{
		StudentID: s1.ID, ContentItemID: "c2", ProgressPercentage: 10,
		LastAccessedAt: base.Add(2 * time.Hour), CreatedAt: base, UpdatedAt: base,
	})
	require.NoError(t, err)

	got, err := r.Progress.GetProgress(ctx, s1.ID, "c1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, 80, got.ProgressPercentage)
	assert.True(t, got.CreatedAt.Equal(base), "created_at is kept")

	recs, err := r.Progress.QueryProgress(ctx, s1.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c2", recs[0].ContentItemID, "most recently accessed first")

	_, err = r.Progress.GetProgress(ctx, s1.ID, "c9")
	assert.Equal(t, progress.ErrNotFound, errors.Cause(err))
	recs, err = r.Progress.QueryProgress(ctx, "not-an-id")
	require.NoError(t, err)
	assert.Empty(t, recs)

	s2 := testutil.CreateUser(t, r.Users, "S2", "s2", "", "", user.StudentRoles, true)
	s3 := testutil.CreateUser(t, r.Users, "S3", "s3", "", "", user.StudentRoles, true)
	for _, id := range []string{s2.ID, s3.ID} {
		_, err = r.Progress.UpsertProgress(ctx, progress.Progress{
			StudentID: id, ContentItemID: "c1", ProgressPercentage: 30,
			LastAccessedAt: base, CreatedAt: base, UpdatedAt: base,
		})
		require.NoError(t, err)
	}
	recs, err = r.Progress.QueryProgressForStudents(ctx, []string{s1.ID, s2.ID, "not-an-id"})
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	for _, rec := range recs {
		assert.NotEqual(t, s3.ID, rec.StudentID)
	}
	recs, err = r.Progress.QueryProgressForStudents(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func testAssignments(t *testing.T, r Repositories) {
	teacher := testutil.CreateUser(t, r.Users, "T1", "t1", "", "", user.TeacherRoles, true)
	s1 := testutil.CreateUser(t, r.Users, "S1", "s1", "", "", user.StudentRoles, true)
	s2 := testutil.CreateUser(t, r.Users, "S2", "s2", "", "", user.StudentRoles, true)

	older, err := r.Assignments.CreateAssignment(ctx, assignment.Assignment{TeacherID: teacher.ID, Title: "Fractions", CreatedAt: base})
	require.NoError(t, err)
	newer, err := r.Assignments.CreateAssignment(ctx, assignment.Assignment{TeacherID: teacher.ID, Title: "Plants", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)

	colleague := testutil.CreateUser(t, r.Users, "T2", "t2", "", "", user.TeacherRoles, true)
	classwork, err := r.Assignments.CreateAssignment(ctx, assignment.Assignment{
		TeacherID: colleague.ID, Title: "Poems", SchoolID: "00000000-0000-0000-0000-00000000000a", ClassName: "6A", CreatedAt: base.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	listIDs := func(filter assignment.Filter) []string {
		list, err := r.Assignments.QueryAssignments(ctx, filter)
		require.NoError(t, err)
		ids := make([]string, 0, len(list))
		for _, a := range list {
			ids = append(ids, a.ID)
		}
		return ids
	}
	assert.Equal(t, []string{classwork.ID, newer.ID, older.ID}, listIDs(assignment.Filter{}), "newest first")
	assert.Equal(t, []string{newer.ID, older.ID}, listIDs(assignment.Filter{TeacherID: teacher.ID}))
	assert.Equal(t, []string{classwork.ID}, listIDs(assignment.Filter{SchoolID: classwork.SchoolID, ClassName: "6A"}))
	assert.Empty(t, listIDs(assignment.Filter{SchoolID: classwork.SchoolID, ClassName: "6B"}))
	assert.Empty(t, listIDs(assignment.Filter{TeacherID: "not-an-id"}))

	got, err := r.Assignments.GetAssignment(ctx, classwork.ID)
	require.NoError(t, err)
	assert.Equal(t, "6A", got.ClassName)

	got, err = r.Assignments.GetAssignment(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fractions", got.Title)
	_, err = r.Assignments.GetAssignment(ctx, "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, assignment.ErrNotFound, errors.Cause(err))

	submit := func(studentID string, answers assignment.Answers, at time.Time) assignment.Submission {
		sub, err := r.Assignments.UpsertSubmission(ctx, assignment.Submission{
			AssignmentID: older.ID, StudentID: studentID, Answers: answers,
			Status: assignment.StatusSubmitted, SubmittedAt: at,
		})
		require.NoError(t, err)
		return sub
	}
	first := submit(s1.ID, assignment.Answers{"q1": "3"}, base)
	replayed := submit(s1.ID, assignment.Answers{"q1": "4"}, base.Add(time.Minute))
	assert.Equal(t, first.ID, replayed.ID, "one submission per student and assignment")
	other := submit(s2.ID, assignment.Answers{"q1": "4"}, base.Add(2*time.Minute))

	subs, err := r.Assignments.QuerySubmissions(ctx, assignment.SubmissionFilter{AssignmentID: older.ID})
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, first.ID, subs[0].ID)
	assert.Equal(t, assignment.Answers{"q1": "4"}, subs[0].Answers)

	subs, err = r.Assignments.QuerySubmissions(ctx, assignment.SubmissionFilter{StudentID: s2.ID})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, other.ID, subs[0].ID)

	score := 9
	graded := other
	graded.Score = &score
	graded.Feedback = "well done"
	graded.Status = assignment.StatusGraded
	_, err = r.Assignments.UpdateSubmission(ctx, graded)
	require.NoError(t, err)

	sub, err := r.Assignments.GetSubmission(ctx, other.ID)
	require.NoError(t, err)
	require.NotNil(t, sub.Score)
	assert.Equal(t, 9, *sub.Score)
	assert.Equal(t, assignment.StatusGraded, sub.Status)
	assert.Equal(t, "well done", sub.Feedback)

	graded.ID = "00000000-0000-0000-0000-000000000000"
	_, err = r.Assignments.UpdateSubmission(ctx, graded)
	assert.Equal(t, assignment.ErrSubmissionNotFound, errors.Cause(err))
}

func testAlerts(t *testing.T, r Repositories) {
	s1 := testutil.CreateUser(t, r.Users, "S1", "s1", "", "", user.StudentRoles, true)
	teacher := testutil.CreateUser(t, r.Users, "T1", "t1", "", "", user.TeacherRoles, true)

	older, err := r.Alerts.CreateAlert(ctx, alert.Alert{StudentID: s1.ID, Message: "help", Status: alert.StatusActive, CreatedAt: base})
	require.NoError(t, err)
	newer, err := r.Alerts.CreateAlert(ctx, alert.Alert{StudentID: s1.ID, Message: "again", Status: alert.StatusActive, CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)

	active, err := r.Alerts.QueryAlerts(ctx, alert.StatusActive)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, newer.ID, active[0].ID, "newest first")

	resolvedAt := base.Add(time.Hour)
	older.Status = alert.StatusResolved
	older.ResolvedBy = &teacher.ID
	older.ResolvedAt = &resolvedAt
	_, err = r.Alerts.UpdateAlert(ctx, older)
	require.NoError(t, err)

	got, err := r.Alerts.GetAlert(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.StatusResolved, got.Status)
	require.NotNil(t, got.ResolvedBy)
	assert.Equal(t, teacher.ID, *got.ResolvedBy)

	active, err = r.Alerts.QueryAlerts(ctx, alert.StatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, newer.ID, active[0].ID)

	all, err := r.Alerts.QueryAlerts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = r.Alerts.GetAlert(ctx, "not-an-id")
	assert.Equal(t, alert.ErrNotFound, errors.Cause(err))
	older.ID = "00000000-0000-0000-0000-000000000000"
	_, err = r.Alerts.UpdateAlert(ctx, older)
	assert.Equal(t, alert.ErrNotFound, errors.Cause(err))
}
