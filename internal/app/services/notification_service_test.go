package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/workflow"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
)

func TestSelectTemplate(t *testing.T) {
	tests := []struct {
		track  models.Track
		status models.ApplicationStatus
		target models.Track
		want   TemplateID
	}{
		{models.TrackMember, models.StatusPassed, "", TemplateMemberAccepted},
		{models.TrackMember, models.StatusFailed, "", TemplateMemberRejected},
		{models.TrackCommittee, models.StatusEvaluating, "", TemplateCommitteeEvaluating},
		{models.TrackCommittee, models.StatusPassed, "", TemplateCommitteeAccepted},
		{models.TrackCommittee, models.StatusFailed, "", TemplateCommitteeRejected},
		{models.TrackCommittee, models.StatusRedirected, models.TrackCommittee, TemplateCommitteeRedirected},
		{models.TrackCommittee, models.StatusRedirected, models.TrackMember, TemplateCommitteeRedirectedMember},
		{models.TrackCommittee, models.StatusRedirected, models.TrackEA, TemplateCommitteeRedirectedEA},
		{models.TrackEA, models.StatusEvaluating, "", TemplateEAEvaluating},
		{models.TrackEA, models.StatusPassed, "", TemplateEAAccepted},
		{models.TrackEA, models.StatusFailed, "", TemplateEARejected},
		{models.TrackEA, models.StatusRedirected, models.TrackEA, TemplateEARedirected},
		{models.TrackEA, models.StatusRedirected, models.TrackCommittee, TemplateEARedirectedCommittee},
		{models.TrackEA, models.StatusRedirected, models.TrackMember, TemplateEARedirectedMember},
	}
	for _, tt := range tests {
		got, ok := SelectTemplate(tt.track, tt.status, tt.target)
		assert.True(t, ok, "%s/%s/%s", tt.track, tt.status, tt.target)
		assert.Equal(t, tt.want, got)
	}

	for _, status := range []models.ApplicationStatus{models.StatusPending, models.StatusEvaluating} {
		_, ok := SelectTemplate(models.TrackMember, status, "")
		assert.False(t, ok, "member %s", status)
	}
	_, ok := SelectTemplate(models.TrackMember, models.StatusRedirected, models.TrackCommittee)
	assert.False(t, ok)
}

func TestEveryTemplateRenders(t *testing.T) {
	data := mailData{
		Organization: "Test Org",
		PortalURL:    "http://portal.test",
		Name:         "Ada <script>",
		Track:        "Committee Staff",
		Position:     "Finance Committee",
		Target:       "Marketing Committee",
		Day:          "2026-03-10",
		StartTime:    "10:00",
		EndTime:      "10:30",
		MeetingLink:  "https://meet.example/x",
		Interviewer:  "Treasurer",
		Applicant:    "Ada",
	}
	for id := range templateSubjects {
		subject, body, err := render(id, data)
		require.NoError(t, err, id)
		assert.NotEmpty(t, subject)
		assert.Contains(t, body, "Test Org")
		assert.NotContains(t, body, "<script>", "%s must escape input", id)
	}
	assert.Len(t, templateSubjects, 16)

	_, _, err := render("nope", data)
	assert.Error(t, err)
}

func TestNotifyReportsMailError(t *testing.T) {
	env := newTestEnv(t)
	env.sender.err = errors.New("connection refused")
	app := newApplication(models.TrackCommittee, models.StatusPassed, "finance")

	err := env.notifier.Notify(context.Background(), &app, workflow.Outcome{
		Track:     models.TrackCommittee,
		OldStatus: models.StatusEvaluating,
		NewStatus: models.StatusPassed,
	})
	assert.ErrorIs(t, err, apperrors.ErrMail)
}

func TestNotifySkipsTransitionsWithoutTemplate(t *testing.T) {
	env := newTestEnv(t)
	app := newApplication(models.TrackMember, models.StatusPending, "")

	err := env.notifier.Notify(context.Background(), &app, workflow.Outcome{Track: models.TrackMember, NewStatus: models.StatusPending})
	assert.NoError(t, err)
	assert.Empty(t, env.sender.messages())
}

func TestNotifyRedirectWithoutTemplateIsMailError(t *testing.T) {
	env := newTestEnv(t)
	app := newApplication(models.TrackMember, models.StatusRedirected, "")

	err := env.notifier.Notify(context.Background(), &app, workflow.Outcome{
		Track:       models.TrackMember,
		NewStatus:   models.StatusRedirected,
		Redirection: "finance",
		TargetTrack: models.TrackCommittee,
	})
	assert.ErrorIs(t, err, apperrors.ErrMail)
	assert.Empty(t, env.sender.messages())
}

func TestNotifyWithoutRecipientIsMailError(t *testing.T) {
	env := newTestEnv(t)
	app := newApplication(models.TrackMember, models.StatusPassed, "")
	app.ApplicantEmail = ""

	err := env.notifier.Notify(context.Background(), &app, workflow.Outcome{Track: models.TrackMember, NewStatus: models.StatusPassed})
	assert.ErrorIs(t, err, apperrors.ErrMail)
}

func TestNotifyInterviewAttemptsBothRecipients(t *testing.T) {
	env := newTestEnv(t)
	app := newApplication(models.TrackEA, models.StatusEvaluating, "treasurer")
	app.ApplicantEmail = ""

	err := env.notifier.NotifyInterview(context.Background(), &app, InterviewNotice{
		Slot:             models.InterviewSlot{Day: "2026-03-10", StartTime: "10:00", EndTime: "10:30", InterviewerRef: "treasurer"},
		InterviewerTitle: "Treasurer",
		InterviewerEmail: "treasurer@org.example",
	})
	assert.ErrorIs(t, err, apperrors.ErrMail)

	sent := env.sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "treasurer@org.example", sent[0].To)
}
