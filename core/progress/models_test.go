package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/nabha/core/user"
)

func TestSummarize(t *testing.T) {
	day := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	score := func(v int) *int { return &v }

	sum := Summarize("s1", []Progress{
		{ProgressPercentage: 100, Score: score(90), TimeSpent: 10, LastAccessedAt: day},
		{ProgressPercentage: 40, Score: score(61), TimeSpent: 5, LastAccessedAt: day.Add(3 * time.Hour)},
		{ProgressPercentage: 10, TimeSpent: 1, LastAccessedAt: day.Add(24 * time.Hour)},
	})
	assert.Equal(t, Summary{StudentID: "s1", ItemsStarted: 3, ItemsCompleted: 1, TotalTimeSpent: 16, AverageScore: score(75), ActiveDays: 2}, sum)

	assert.Equal(t, Summary{StudentID: "s2"}, Summarize("s2", nil))
}

func TestSummarizeClass(t *testing.T) {
	roster := []user.User{{ID: "s1", IsActive: true}, {ID: "s2", IsActive: true}, {ID: "s3"}}

	tests := []struct {
		name    string
		records []Progress
		want    ClassSummary
	}{
		{
			name: "no records",
			want: ClassSummary{SchoolID: "sch", ClassName: "6A", TotalStudents: 3, ActiveStudents: 2},
		},
		{
			name: "rounded average",
			records: []Progress{
				{StudentID: "s1", ProgressPercentage: 100},
				{StudentID: "s1", ProgressPercentage: 50},
				{StudentID: "s2", ProgressPercentage: 51},
			},
			want: ClassSummary{SchoolID: "sch", ClassName: "6A", TotalStudents: 3, ActiveStudents: 2, AverageProgress: 67, LessonsCompleted: 1},
		},
		{
			name: "outsiders ignored",
			records: []Progress{
				{StudentID: "s3", ProgressPercentage: 20},
				{StudentID: "x9", ProgressPercentage: 100},
			},
			want: ClassSummary{SchoolID: "sch", ClassName: "6A", TotalStudents: 3, ActiveStudents: 2, AverageProgress: 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SummarizeClass("sch", "6A", roster, tt.records))
		})
	}
}
