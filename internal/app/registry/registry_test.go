package registry

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/recruitportal/internal/app/models"
)

func newTestRegistry(buf *bytes.Buffer) *Registry {
	return New("admin@org.example", zerolog.New(buf))
}

func TestTablesAreComplete(t *testing.T) {
	r := newTestRegistry(&bytes.Buffer{})

	assert.Len(t, r.Committees(), 10)
	assert.Len(t, r.Roles(), 16)

	for _, role := range r.Roles() {
		_, ok := roleEmails[role.ID]
		assert.True(t, ok, "missing email for %s", role.ID)
	}
	for _, c := range r.Committees() {
		_, ok := r.Role("director-" + c.ID)
		assert.True(t, ok, "missing director for %s", c.ID)
	}
}

func TestResolveTarget(t *testing.T) {
	r := newTestRegistry(&bytes.Buffer{})

	cases := []struct {
		target string
		track  models.Track
		ok     bool
	}{
		{"member", models.TrackMember, true},
		{"technology", models.TrackCommittee, true},
		{"treasurer", models.TrackEA, true},
		{" finance ", models.TrackCommittee, true},
		{"", "", false},
		{"   ", "", false},
		{"unknown-committee", "", false},
	}
	for _, tc := range cases {
		track, ok := r.ResolveTarget(tc.target)
		assert.Equal(t, tc.ok, ok, tc.target)
		assert.Equal(t, tc.track, track, tc.target)
	}
}

func TestEmailForFallsBack(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRegistry(&buf)

	assert.Equal(t, "president@org.example", r.EmailFor("president"))
	assert.Empty(t, buf.String())

	assert.Equal(t, "admin@org.example", r.EmailFor("ghost-role"))
	assert.Contains(t, buf.String(), "ghost-role")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestPurviewFor(t *testing.T) {
	r := newTestRegistry(&bytes.Buffer{})

	assert.True(t, r.PurviewFor(models.RoleSuperAdmin, "").All)
	assert.True(t, r.PurviewFor(models.RoleAdmin, "president").All)
	assert.True(t, r.PurviewFor(models.RoleAdmin, "internal-vice-president").All)

	evp := r.PurviewFor(models.RoleAdmin, "external-vice-president")
	require.False(t, evp.All)
	assert.ElementsMatch(t, []string{"external-relations", "marketing", "publications"}, evp.Committees)
	assert.True(t, evp.Contains("marketing"))
	assert.True(t, evp.Contains("external-vice-president"))
	assert.False(t, evp.Contains("finance"))

	dir := r.PurviewFor(models.RoleAdmin, "director-technology")
	assert.Equal(t, []string{"technology"}, dir.Committees)
	assert.ElementsMatch(t, []string{"technology", "director-technology"}, dir.IDs())

	none := r.PurviewFor(models.RoleAdmin, "")
	assert.False(t, none.All)
	assert.Empty(t, none.IDs())
}

func TestValidChoiceAndTitle(t *testing.T) {
	r := newTestRegistry(&bytes.Buffer{})

	assert.True(t, r.ValidChoice(models.TrackCommittee, "logistics"))
	assert.False(t, r.ValidChoice(models.TrackCommittee, "treasurer"))
	assert.True(t, r.ValidChoice(models.TrackEA, "treasurer"))
	assert.False(t, r.ValidChoice(models.TrackMember, "logistics"))

	assert.Equal(t, "Member", r.Title("member"))
	assert.Equal(t, "Finance Committee", r.Title("finance"))
	assert.Equal(t, "Auditor", r.Title("auditor"))
	assert.Equal(t, "mystery", r.Title("mystery"))
}
