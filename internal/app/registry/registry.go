// Package registry holds the static committee and Executive Board role tables.
package registry

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/recruitportal/internal/app/models"
)

// Entry is a committee or EB role as displayed to applicants and admins
type Entry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageRef    string `json:"imageRef"`
}

// Purview is the set of committees whose applications an admin may review.
// All means every committee and EA application.
type Purview struct {
	All        bool
	Committees []string
	// Positions are EB role IDs visible to the admin in the EA listing
	Positions []string
}

// Contains reports whether id falls inside the purview
func (p Purview) Contains(id string) bool {
	if p.All {
		return true
	}
	for _, c := range p.Committees {
		if c == id {
			return true
		}
	}
	for _, r := range p.Positions {
		if r == id {
			return true
		}
	}
	return false
}

// IDs returns every committee and role ID inside a restricted purview
func (p Purview) IDs() []string {
	out := make([]string, 0, len(p.Committees)+len(p.Positions))
	out = append(out, p.Committees...)
	out = append(out, p.Positions...)
	return out
}

// Registry is the read-only lookup shared by the transition engine and the API
type Registry struct {
	committees    map[string]Entry
	roles         map[string]Entry
	fallbackEmail string
	logger        zerolog.Logger
}

// New builds the registry. fallbackEmail receives mail for roles without a mapping.
func New(fallbackEmail string, logger zerolog.Logger) *Registry {
	r := &Registry{
		committees:    make(map[string]Entry, len(committees)),
		roles:         make(map[string]Entry, len(roles)),
		fallbackEmail: fallbackEmail,
		logger:        logger,
	}
	for _, c := range committees {
		r.committees[c.ID] = c
	}
	for _, role := range roles {
		r.roles[role.ID] = role
	}
	return r
}

// Committees returns all committees in display order
func (r *Registry) Committees() []Entry {
	out := make([]Entry, len(committees))
	copy(out, committees)
	return out
}

// Roles returns all EB roles in display order
func (r *Registry) Roles() []Entry {
	out := make([]Entry, len(roles))
	copy(out, roles)
	return out
}

// Committee looks up a committee by ID
func (r *Registry) Committee(id string) (Entry, bool) {
	e, ok := r.committees[id]
	return e, ok
}

// Role looks up an EB role by ID
func (r *Registry) Role(id string) (Entry, bool) {
	e, ok := r.roles[id]
	return e, ok
}

// Title returns the display title for a committee, role or the member target
func (r *Registry) Title(id string) string {
	if id == models.MemberTarget {
		return models.TrackMember.Title()
	}
	if e, ok := r.committees[id]; ok {
		return e.Title
	}
	if e, ok := r.roles[id]; ok {
		return e.Title
	}
	return id
}

// ValidChoice reports whether id is a selectable position for the track
func (r *Registry) ValidChoice(track models.Track, id string) bool {
	switch track {
	case models.TrackCommittee:
		_, ok := r.committees[id]
		return ok
	case models.TrackEA:
		_, ok := r.roles[id]
		return ok
	}
	return false
}

// ResolveTarget maps a redirection target onto the track it routes the applicant to
func (r *Registry) ResolveTarget(target string) (models.Track, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false
	}
	if target == models.MemberTarget {
		return models.TrackMember, true
	}
	if _, ok := r.committees[target]; ok {
		return models.TrackCommittee, true
	}
	if _, ok := r.roles[target]; ok {
		return models.TrackEA, true
	}
	return "", false
}

// EmailFor returns the mailbox of an EB role, falling back to the admin address
func (r *Registry) EmailFor(roleID string) string {
	if email, ok := roleEmails[roleID]; ok {
		return email
	}
	r.logger.Warn().
		Str("role", roleID).
		Str("fallback", r.fallbackEmail).
		Msg("No email mapping for EB role, using fallback")
	return r.fallbackEmail
}

// PurviewFor computes which applications an admin holding position may review.
// Super-admins see everything; an admin without a position sees nothing.
func (r *Registry) PurviewFor(role models.RoleType, position string) Purview {
	if role == models.RoleSuperAdmin || fullPurviewRoles[position] {
		return Purview{All: true}
	}
	if _, ok := r.roles[position]; !ok {
		return Purview{}
	}

	p := Purview{Positions: []string{position}}
	p.Committees = append(p.Committees, committeePurview[position]...)
	return p
}
