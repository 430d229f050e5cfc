package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/recruitportal/internal/app/auth"
	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/registry"
	"github.com/yigit/recruitportal/internal/app/repositories"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
	"github.com/yigit/recruitportal/internal/pkg/cache"
	"github.com/yigit/recruitportal/internal/pkg/email"
	"github.com/yigit/recruitportal/internal/pkg/filestorage"
)

// fakeAppStore keeps applications in memory and honours the conditional write
type fakeAppStore struct {
	mu   sync.Mutex
	apps map[uuid.UUID]models.Application

	// afterRead runs after GetByID has copied the row
	afterRead func()
}

func newFakeAppStore(apps ...models.Application) *fakeAppStore {
	s := &fakeAppStore{apps: make(map[uuid.UUID]models.Application)}
	for _, a := range apps {
		s.apps[a.ID] = a
	}
	return s
}

func (s *fakeAppStore) get(id uuid.UUID) models.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apps[id]
}

func (s *fakeAppStore) GetByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	s.mu.Lock()
	app, ok := s.apps[id]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	if s.afterRead != nil {
		s.afterRead()
	}
	return &app, nil
}

func (s *fakeAppStore) List(_ context.Context, filter repositories.ApplicationFilter) ([]*models.Application, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Application{}
	for _, a := range s.apps {
		a := a
		if filter.Track != "" && a.Track != filter.Track {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, &a)
	}
	return out, int64(len(out)), nil
}

func (s *fakeAppStore) Search(_ context.Context, _ string, _ registry.Purview) (*repositories.SearchResult, error) {
	return &repositories.SearchResult{}, nil
}

func (s *fakeAppStore) UpdateStatus(_ context.Context, id uuid.UUID, expected models.ApplicationStatus, expectedVersion int64, next *models.Application) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	if cur.Status != expected || cur.Version != expectedVersion {
		return nil, apperrors.NewConflictError("application was modified by another reviewer")
	}
	cur.Status = next.Status
	cur.Redirection = next.Redirection
	cur.UpdatedAt = next.UpdatedAt
	cur.Version++
	s.apps[id] = cur
	return &cur, nil
}

func (s *fakeAppStore) SetInterviewSlot(_ context.Context, id uuid.UUID, expectedVersion int64, slot models.InterviewSlot, at time.Time) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	if cur.Version != expectedVersion || cur.Status.IsTerminal() {
		return nil, apperrors.NewConflictError("application was modified by another reviewer")
	}
	cur.InterviewSlot = &slot
	cur.UpdatedAt = at
	cur.Version++
	s.apps[id] = cur
	return &cur, nil
}

func (s *fakeAppStore) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.apps {
		if a.ApplicantID == app.ApplicantID && a.Track == app.Track {
			return apperrors.ErrApplicationExists
		}
	}
	s.apps[app.ID] = *app
	return nil
}

func (s *fakeAppStore) DeleteUnscheduled(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.apps[id]
	if !ok {
		return apperrors.ErrApplicationNotFound
	}
	if cur.InterviewSlot != nil {
		return apperrors.ErrDeleteNotAllowed
	}
	delete(s.apps, id)
	return nil
}

type fakeProfileStore struct {
	mu       sync.Mutex
	profiles map[string]models.EBProfile
	lookups  atomic.Int32
}

func newFakeProfileStore(profiles ...models.EBProfile) *fakeProfileStore {
	s := &fakeProfileStore{profiles: make(map[string]models.EBProfile)}
	for _, p := range profiles {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		s.profiles[p.Position] = p
	}
	return s
}

func (s *fakeProfileStore) GetByID(_ context.Context, id uuid.UUID) (*models.EBProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, apperrors.ErrEBProfileNotFound
}

func (s *fakeProfileStore) GetByPosition(_ context.Context, position string) (*models.EBProfile, error) {
	s.lookups.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[position]
	if !ok {
		return nil, apperrors.ErrEBProfileNotFound
	}
	return &p, nil
}

func (s *fakeProfileStore) Upsert(_ context.Context, profile *models.EBProfile) (*models.EBProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *profile
	if existing, ok := s.profiles[p.Position]; ok {
		p.ID = existing.ID
	} else {
		p.ID = uuid.New()
	}
	s.profiles[p.Position] = p
	return &p, nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uuid.UUID]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) EnsureUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email == user.Email {
			u.Name = user.Name
			s.users[id] = u
			return &u, nil
		}
	}
	u := *user
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Role = models.RoleApplicant
	s.users[u.ID] = u
	return &u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (s *fakeUserStore) List(_ context.Context, role models.RoleType, _, _ int) ([]*models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.User{}
	for _, u := range s.users {
		u := u
		if role == "" || u.Role == role {
			out = append(out, &u)
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakeUserStore) UpdateRole(_ context.Context, id uuid.UUID, role models.RoleType, position string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u.Role = role
	u.Position = position
	s.users[id] = u
	return &u, nil
}

func (s *fakeUserStore) UpdateRoleByEmail(_ context.Context, email string, role models.RoleType) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email == email {
			u.Role = role
			s.users[id] = u
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// fakeSender records outgoing mail and fails when err is set
type fakeSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg email.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return uuid.NewString(), nil
}

func (s *fakeSender) messages() []email.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]email.Message(nil), s.sent...)
}

type fakeUploader struct {
	mu      sync.Mutex
	stored  map[string]bool
	failFor string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{stored: make(map[string]bool)}
}

func (u *fakeUploader) Upload(_ context.Context, fh *multipart.FileHeader, folder string) (string, error) {
	if fh == nil {
		return "", nil
	}
	if fh.Filename == u.failFor {
		return "", errors.New("disk full")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	url := "http://files.test/uploads/" + folder + "/" + fh.Filename
	u.stored[url] = true
	return url, nil
}

func (u *fakeUploader) Delete(_ context.Context, url string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.stored, url)
	return nil
}

type readSeekNopCloser struct{ *bytes.Reader }

func (readSeekNopCloser) Close() error { return nil }

// Open returns the stored URL itself as the file content
func (u *fakeUploader) Open(_ context.Context, url string) (io.ReadSeekCloser, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.stored[url] {
		return nil, fmt.Errorf("%w: %s", filestorage.ErrFileNotFound, url)
	}
	return readSeekNopCloser{bytes.NewReader([]byte(url))}, nil
}

func (u *fakeUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.stored)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ApplicationEvent
}

func (p *recordingPublisher) Publish(event models.ApplicationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) all() []models.ApplicationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.ApplicationEvent(nil), p.events...)
}

// testEnv wires every service against in-memory collaborators
type testEnv struct {
	registry *registry.Registry
	apps     *fakeAppStore
	profiles *fakeProfileStore
	users    *fakeUserStore
	sender   *fakeSender
	uploader *fakeUploader
	events   *recordingPublisher
	sessions *cache.SessionCache[*models.EBProfile]
	authz    *auth.AuthorizationService
	appSvc   ApplicationService
	notifier NotificationService
	profSvc  EBProfileService
	userSvc  UserService
}

func newTestEnv(t *testing.T, apps ...models.Application) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	env := &testEnv{
		registry: registry.New("admin@org.example", logger),
		apps:     newFakeAppStore(apps...),
		profiles: newFakeProfileStore(models.EBProfile{
			Position:    "director-finance",
			Name:        "Dana Director",
			Email:       "dana@org.example",
			MeetingLink: "https://meet.example/finance",
		}),
		users:    newFakeUserStore(),
		sender:   &fakeSender{},
		uploader: newFakeUploader(),
		events:   &recordingPublisher{},
		sessions: cache.NewSessionCache[*models.EBProfile](5 * time.Minute),
	}
	env.authz = auth.NewAuthorizationService(env.users, env.registry)
	env.notifier = NewNotificationService(env.sender, env.registry, "Test Org", "http://portal.test", logger)
	env.appSvc = NewApplicationService(env.apps, env.profiles, env.authz, env.registry, env.notifier, env.uploader, env.events, logger)
	env.profSvc = NewEBProfileService(env.profiles, env.registry, env.sessions, logger)
	env.userSvc = NewUserService(env.users, env.profSvc, env.registry, logger)
	return env
}

func superAdmin() *auth.Actor {
	return &auth.Actor{UserID: uuid.New(), Email: "root@org.example", Role: models.RoleSuperAdmin, SessionID: "sess-root"}
}

func financeDirector() *auth.Actor {
	return &auth.Actor{UserID: uuid.New(), Email: "dana@org.example", Role: models.RoleAdmin, Position: "director-finance", SessionID: "sess-dana"}
}

func applicantActor() *auth.Actor {
	return &auth.Actor{UserID: uuid.New(), Email: "ada@student.example", Name: "Ada", Role: models.RoleApplicant, SessionID: "sess-ada"}
}

func newApplication(track models.Track, status models.ApplicationStatus, first string) models.Application {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return models.Application{
		ID:             uuid.New(),
		Track:          track,
		ApplicantID:    uuid.New(),
		StudentNumber:  "20231234",
		Section:        "CS-2A",
		FirstChoice:    first,
		Status:         status,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
		ApplicantName:  "Ada Lovelace",
		ApplicantEmail: "ada@student.example",
	}
}
