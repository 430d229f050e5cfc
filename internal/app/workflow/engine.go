// Package workflow implements the application review state machine.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
)

// TargetResolver maps a redirection target to the track it routes into
type TargetResolver interface {
	ResolveTarget(target string) (models.Track, bool)
}

// Params carries action-specific input
type Params struct {
	RedirectTarget string
}

// Outcome describes a legal transition for persistence and notification
type Outcome struct {
	ApplicationID uuid.UUID
	Track         models.Track
	Action        models.Action
	OldStatus     models.ApplicationStatus
	NewStatus     models.ApplicationStatus
	Redirection   string
	// TargetTrack is set for redirects only
	TargetTrack models.Track
	CrossTrack  bool
}

type edge struct {
	from   models.ApplicationStatus
	action models.Action
}

var reviewGraph = map[edge]models.ApplicationStatus{
	{models.StatusPending, models.ActionEvaluate}:    models.StatusEvaluating,
	{models.StatusEvaluating, models.ActionAccept}:   models.StatusPassed,
	{models.StatusEvaluating, models.ActionReject}:   models.StatusFailed,
	{models.StatusEvaluating, models.ActionRedirect}: models.StatusRedirected,
}

// Member applications skip evaluation and cannot be redirected
var memberGraph = map[edge]models.ApplicationStatus{
	{models.StatusPending, models.ActionAccept}: models.StatusPassed,
	{models.StatusPending, models.ActionReject}: models.StatusFailed,
}

func graphFor(track models.Track) map[edge]models.ApplicationStatus {
	if track == models.TrackMember {
		return memberGraph
	}
	return reviewGraph
}

// Next returns the status action leads to from status on track, if legal
func Next(track models.Track, status models.ApplicationStatus, action models.Action) (models.ApplicationStatus, bool) {
	next, ok := graphFor(track)[edge{status, action}]
	return next, ok
}

// AllowedActions lists the actions legal from the application's current status
func AllowedActions(track models.Track, status models.ApplicationStatus) []models.Action {
	var out []models.Action
	for _, a := range models.Actions {
		if _, ok := Next(track, status, a); ok {
			out = append(out, a)
		}
	}
	return out
}

// Apply validates action against app's current status and returns the mutated copy.
// app itself is never modified; on error the returned application is the zero value.
func Apply(app models.Application, action models.Action, params Params, resolver TargetResolver, now time.Time) (models.Application, Outcome, error) {
	if !app.Track.Valid() {
		return models.Application{}, Outcome{}, apperrors.NewBadRequestError(fmt.Sprintf("unknown track %q", app.Track))
	}

	outcome := Outcome{
		ApplicationID: app.ID,
		Track:         app.Track,
		Action:        action,
		OldStatus:     app.Status,
	}

	var target string
	if action == models.ActionRedirect {
		target = strings.TrimSpace(params.RedirectTarget)
		if target == "" {
			return models.Application{}, Outcome{}, apperrors.NewInvalidTargetError("redirection target is required")
		}
		track, ok := resolver.ResolveTarget(target)
		if !ok {
			return models.Application{}, Outcome{}, apperrors.NewInvalidTargetError(fmt.Sprintf("unknown redirection target %q", target))
		}
		outcome.TargetTrack = track
		outcome.CrossTrack = track != app.Track
	}

	next, ok := Next(app.Track, app.Status, action)
	if !ok {
		return models.Application{}, Outcome{}, apperrors.NewIllegalTransitionError(
			fmt.Sprintf("cannot %s a %s application in status %s", action, app.Track, app.Status),
			map[string]interface{}{
				"track":  app.Track,
				"status": app.Status,
				"action": action,
			},
		)
	}

	updated := app
	updated.Status = next
	updated.Redirection = nil
	if next == models.StatusRedirected {
		updated.Redirection = &target
		outcome.Redirection = target
	}
	updated.UpdatedAt = now

	outcome.NewStatus = next
	return updated, outcome, nil
}
