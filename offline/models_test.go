package offline_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/offline"
)

func TestProgressRecord_Keyed(t *testing.T) {
	tests := []struct {
		name string
		rec  offline.ProgressRecord
		want string
	}{
		{name: "derived", rec: offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1"}, want: "s1:c1"},
		{name: "explicit", rec: offline.ProgressRecord{ID: "p-9", StudentID: "s1", ContentItemID: "c1"}, want: "p-9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Keyed().ID)
		})
	}
}

func TestProgressRecord_Validate(t *testing.T) {
	zero, hundred, over := 0, 100, 101
	tests := []struct {
		name    string
		rec     offline.ProgressRecord
		wantErr []string
	}{
		{name: "minimal", rec: offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1"}},
		{name: "bounds", rec: offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1", ProgressPercentage: 100, Score: &hundred}},
		{name: "zero score", rec: offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1", Score: &zero}},
		{name: "empty", rec: offline.ProgressRecord{}, wantErr: []string{"student_id", "content_item_id"}},
		{name: "out of range", rec: offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1", ProgressPercentage: -1, Score: &over, TimeSpent: -3},
			wantErr: []string{"progress_percentage", "score", "time_spent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, offline.ErrInvalidRecord), "got %v", err)
			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr))
			fields := verr.FieldMap()
			assert.Len(t, fields, len(tt.wantErr))
			for _, f := range tt.wantErr {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	typ, data, err := offline.EncodePayload(offline.Submission{AssignmentID: "a1", Answers: map[string]string{"q1": "b"}})
	require.NoError(t, err)
	assert.Equal(t, offline.EntryAssignmentSubmission, typ)
	assert.JSONEq(t, `{"assignment_id":"a1","student_id":"","answers":{"q1":"b"},"submitted_at":"0001-01-01T00:00:00Z"}`, string(data))

	p, err := offline.DecodePayload(typ, data)
	require.NoError(t, err)
	assert.IsType(t, offline.Submission{}, p)

	_, err = offline.DecodePayload("badge", data)
	assert.True(t, errors.Is(err, offline.ErrUnknownEntryType))

	_, err = offline.DecodePayload(offline.EntryProgress, []byte("{"))
	assert.Error(t, err)
}

func TestError(t *testing.T) {
	cause := errors.New("boom")
	err := errors.Wrap(offline.LocalPersistenceFailed("storing progress", cause), "saving")

	assert.True(t, errors.Is(err, offline.ErrLocalPersistenceFailed))
	assert.False(t, errors.Is(err, offline.ErrRemoteDeliveryFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "saving: storing progress: local persistence failed: boom", err.Error())
}
