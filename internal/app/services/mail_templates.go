package services

import (
	"html/template"

	"github.com/yigit/recruitportal/internal/app/models"
)

// TemplateID names one notification email variant
type TemplateID string

const (
	TemplateMemberAccepted            TemplateID = "member_accepted"
	TemplateMemberRejected            TemplateID = "member_rejected"
	TemplateCommitteeEvaluating       TemplateID = "committee_evaluating"
	TemplateCommitteeAccepted         TemplateID = "committee_accepted"
	TemplateCommitteeRejected         TemplateID = "committee_rejected"
	TemplateCommitteeRedirected       TemplateID = "committee_redirected"
	TemplateCommitteeRedirectedMember TemplateID = "committee_redirected_member"
	TemplateCommitteeRedirectedEA     TemplateID = "committee_redirected_ea"
	TemplateEAEvaluating              TemplateID = "ea_evaluating"
	TemplateEAAccepted                TemplateID = "ea_accepted"
	TemplateEARejected                TemplateID = "ea_rejected"
	TemplateEARedirected              TemplateID = "ea_redirected"
	TemplateEARedirectedCommittee     TemplateID = "ea_redirected_committee"
	TemplateEARedirectedMember        TemplateID = "ea_redirected_member"
	TemplateInterviewApplicant        TemplateID = "interview_scheduled_applicant"
	TemplateInterviewInterviewer      TemplateID = "interview_scheduled_interviewer"
)

type statusKey struct {
	track  models.Track
	status models.ApplicationStatus
}

type redirectKey struct {
	track  models.Track
	target models.Track
}

var statusTemplates = map[statusKey]TemplateID{
	{models.TrackMember, models.StatusPassed}:        TemplateMemberAccepted,
	{models.TrackMember, models.StatusFailed}:        TemplateMemberRejected,
	{models.TrackCommittee, models.StatusEvaluating}: TemplateCommitteeEvaluating,
	{models.TrackCommittee, models.StatusPassed}:     TemplateCommitteeAccepted,
	{models.TrackCommittee, models.StatusFailed}:     TemplateCommitteeRejected,
	{models.TrackEA, models.StatusEvaluating}:        TemplateEAEvaluating,
	{models.TrackEA, models.StatusPassed}:            TemplateEAAccepted,
	{models.TrackEA, models.StatusFailed}:            TemplateEARejected,
}

// Every track pair a redirect can resolve to needs an entry here
var redirectTemplates = map[redirectKey]TemplateID{
	{models.TrackCommittee, models.TrackCommittee}: TemplateCommitteeRedirected,
	{models.TrackCommittee, models.TrackMember}:    TemplateCommitteeRedirectedMember,
	{models.TrackCommittee, models.TrackEA}:        TemplateCommitteeRedirectedEA,
	{models.TrackEA, models.TrackEA}:               TemplateEARedirected,
	{models.TrackEA, models.TrackCommittee}:        TemplateEARedirectedCommittee,
	{models.TrackEA, models.TrackMember}:           TemplateEARedirectedMember,
}

// SelectTemplate picks the applicant email for a committed transition.
// ok is false when the transition sends no mail.
func SelectTemplate(track models.Track, newStatus models.ApplicationStatus, targetTrack models.Track) (TemplateID, bool) {
	if newStatus == models.StatusRedirected {
		id, ok := redirectTemplates[redirectKey{track, targetTrack}]
		return id, ok
	}
	id, ok := statusTemplates[statusKey{track, newStatus}]
	return id, ok
}

var templateSubjects = map[TemplateID]string{
	TemplateMemberAccepted:            "Welcome aboard, your membership is confirmed",
	TemplateMemberRejected:            "Update on your membership application",
	TemplateCommitteeEvaluating:       "Your committee staff application is under evaluation",
	TemplateCommitteeAccepted:         "Congratulations, you are joining the committee",
	TemplateCommitteeRejected:         "Update on your committee staff application",
	TemplateCommitteeRedirected:       "Your committee staff application has been redirected",
	TemplateCommitteeRedirectedMember: "We would like to welcome you as a member",
	TemplateCommitteeRedirectedEA:     "An offer to join as executive assistant",
	TemplateEAEvaluating:              "Your executive assistant application is under evaluation",
	TemplateEAAccepted:                "Congratulations, you are our new executive assistant",
	TemplateEARejected:                "Update on your executive assistant application",
	TemplateEARedirected:              "Your executive assistant application has been redirected",
	TemplateEARedirectedCommittee:     "An offer to join as committee staff",
	TemplateEARedirectedMember:        "We would like to welcome you as a member",
	TemplateInterviewApplicant:        "Your interview has been scheduled",
	TemplateInterviewInterviewer:      "New interview on your calendar",
}

// mailData is the view model shared by every template
type mailData struct {
	Organization string
	PortalURL    string
	Name         string
	Track        string
	Position     string
	Target       string
	Day          string
	StartTime    string
	EndTime      string
	MeetingLink  string
	Interviewer  string
	Applicant    string
}

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "header"}}<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;color:#222">
<h2 style="color:#1f3a93">{{.Organization}}</h2>
<p>Hi {{.Name}},</p>{{end}}

{{define "footer"}}<p>You can follow your application on <a href="{{.PortalURL}}">the recruitment portal</a>.</p>
<p>Best regards,<br>{{.Organization}} Recruitment Team</p></div>{{end}}

{{define "member_accepted"}}{{template "header" .}}
<p>Your membership application has been accepted. Welcome to the organization!</p>
{{template "footer" .}}{{end}}

{{define "member_rejected"}}{{template "header" .}}
<p>Thank you for applying for membership. Unfortunately we are unable to accept your application this term.</p>
{{template "footer" .}}{{end}}

{{define "committee_evaluating"}}{{template "header" .}}
<p>Your {{.Track}} application for <strong>{{.Position}}</strong> has moved to evaluation. We will contact you about the next steps.</p>
{{template "footer" .}}{{end}}

{{define "committee_accepted"}}{{template "header" .}}
<p>We are happy to tell you that you have been accepted as {{.Track}} for <strong>{{.Position}}</strong>.</p>
{{template "footer" .}}{{end}}

{{define "committee_rejected"}}{{template "header" .}}
<p>Thank you for applying as {{.Track}} for <strong>{{.Position}}</strong>. After careful review we will not be moving forward with your application.</p>
{{template "footer" .}}{{end}}

{{define "committee_redirected"}}{{template "header" .}}
<p>After reviewing your {{.Track}} application, the board believes you would be a great fit for <strong>{{.Target}}</strong> and has redirected your application there.</p>
{{template "footer" .}}{{end}}

{{define "committee_redirected_member"}}{{template "header" .}}
<p>While we could not offer you a {{.Track}} position for <strong>{{.Position}}</strong>, we would love to have you with us as a member.</p>
{{template "footer" .}}{{end}}

{{define "committee_redirected_ea"}}{{template "header" .}}
<p>The board was impressed by your {{.Track}} application and would like to offer you an Executive Assistant position with <strong>{{.Target}}</strong>.</p>
<p>The executive board member you would assist will reach out to you about the next steps.</p>
{{template "footer" .}}{{end}}

{{define "ea_evaluating"}}{{template "header" .}}
<p>Your {{.Track}} application for <strong>{{.Position}}</strong> has moved to evaluation. We will contact you about the next steps.</p>
{{template "footer" .}}{{end}}

{{define "ea_accepted"}}{{template "header" .}}
<p>Congratulations! You have been selected as {{.Track}} to <strong>{{.Position}}</strong>.</p>
{{template "footer" .}}{{end}}

{{define "ea_rejected"}}{{template "header" .}}
<p>Thank you for applying as {{.Track}} to <strong>{{.Position}}</strong>. After careful review we will not be moving forward with your application.</p>
{{template "footer" .}}{{end}}

{{define "ea_redirected"}}{{template "header" .}}
<p>After reviewing your {{.Track}} application, the board has redirected you to assist <strong>{{.Target}}</strong> instead.</p>
{{template "footer" .}}{{end}}

{{define "ea_redirected_committee"}}{{template "header" .}}
<p>The board was impressed by your {{.Track}} application and would like to offer you a Committee Staff position in <strong>{{.Target}}</strong>.</p>
<p>No further action is needed, the committee will reach out to you directly.</p>
{{template "footer" .}}{{end}}

{{define "ea_redirected_member"}}{{template "header" .}}
<p>While we could not offer you a {{.Track}} position for <strong>{{.Position}}</strong>, we would love to have you with us as a member.</p>
{{template "footer" .}}{{end}}

{{define "interview_scheduled_applicant"}}{{template "header" .}}
<p>Your interview for <strong>{{.Position}}</strong> is scheduled on <strong>{{.Day}}</strong> from {{.StartTime}} to {{.EndTime}} with the {{.Interviewer}}.</p>
{{if .MeetingLink}}<p>Join here: <a href="{{.MeetingLink}}">{{.MeetingLink}}</a></p>{{end}}
{{template "footer" .}}{{end}}

{{define "interview_scheduled_interviewer"}}{{template "header" .}}
<p>{{.Applicant}} ({{.Track}}, {{.Position}}) has an interview with you on <strong>{{.Day}}</strong> from {{.StartTime}} to {{.EndTime}}.</p>
{{if .MeetingLink}}<p>Meeting link: <a href="{{.MeetingLink}}">{{.MeetingLink}}</a></p>{{end}}
{{template "footer" .}}{{end}}
`))
