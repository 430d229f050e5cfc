package models

// RoleType defines the user role type
type RoleType string

const (
	RoleApplicant  RoleType = "applicant"
	RoleAdmin      RoleType = "admin"
	RoleSuperAdmin RoleType = "super_admin"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	switch r {
	case RoleApplicant, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsReviewer reports whether the role may act on applications
func (r RoleType) IsReviewer() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Track is one of the three application categories
type Track string

const (
	TrackMember    Track = "member"
	TrackCommittee Track = "committee"
	TrackEA        Track = "ea"
)

// Tracks lists every track in display order
var Tracks = []Track{TrackCommittee, TrackEA, TrackMember}

// Valid reports whether t is a known track
func (t Track) Valid() bool {
	switch t {
	case TrackMember, TrackCommittee, TrackEA:
		return true
	}
	return false
}

// Title is the human-readable track name used in emails
func (t Track) Title() string {
	switch t {
	case TrackMember:
		return "Member"
	case TrackCommittee:
		return "Committee Staff"
	case TrackEA:
		return "Executive Assistant"
	}
	return string(t)
}

// ApplicationStatus is the unified review status shared by all tracks
type ApplicationStatus string

const (
	StatusPending    ApplicationStatus = "pending"
	StatusEvaluating ApplicationStatus = "evaluating"
	StatusPassed     ApplicationStatus = "passed"
	StatusFailed     ApplicationStatus = "failed"
	StatusRedirected ApplicationStatus = "redirected"
)

// Statuses lists every status
var Statuses = []ApplicationStatus{StatusPending, StatusEvaluating, StatusPassed, StatusFailed, StatusRedirected}

// Valid reports whether s is a known status
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusEvaluating, StatusPassed, StatusFailed, StatusRedirected:
		return true
	}
	return false
}

// IsTerminal reports whether no ordinary transition leaves s
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusRedirected
}

// Action is an admin decision applied to an application
type Action string

const (
	ActionEvaluate Action = "evaluate"
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionRedirect Action = "redirect"
)

// Actions lists every admin action
var Actions = []Action{ActionEvaluate, ActionAccept, ActionReject, ActionRedirect}

// MemberTarget is the redirection target that routes an applicant into the Member track
const MemberTarget = "member"
