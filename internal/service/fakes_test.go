package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/communitysquad/eventhub/internal/model"
	"github.com/communitysquad/eventhub/internal/repository"
)

// In-memory store fakes. They mimic the repository contracts closely enough
// for service tests, including the not-found sentinels and the uniqueness
// guards on (user, role) and (user, event).

type fakeUserStore struct {
	users       map[string]*model.User
	activeUsers []model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) add(u model.User) {
	f.users[u.ID] = &u
}

func (f *fakeUserStore) CreateWithRole(_ context.Context, user *model.User, roleID int64) (*model.UserRole, error) {
	user.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	user.Status = model.StatusActive
	copied := *user
	f.users[user.ID] = &copied
	return &model.UserRole{
		ID:     int64(len(f.users)),
		UserID: user.ID,
		RoleID: roleID,
		Status: model.StatusActive,
	}, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) CountActiveByUserName(_ context.Context, userName string) (int, error) {
	n := 0
	for _, u := range f.users {
		if u.UserName == userName && u.Status.IsActive() {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserStore) ListActiveWithRoles(context.Context) ([]model.User, error) {
	return f.activeUsers, nil
}

type fakeRoleStore struct {
	roles       map[int64]*model.Role
	assignments []model.UserRole
	nextID      int64
}

func newFakeRoleStore(roles ...model.Role) *fakeRoleStore {
	f := &fakeRoleStore{roles: make(map[int64]*model.Role)}
	for _, r := range roles {
		copied := r
		f.roles[r.ID] = &copied
	}
	return f
}

func (f *fakeRoleStore) GetByID(_ context.Context, id int64) (*model.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRoleStore) GetByTitle(_ context.Context, title string) (*model.Role, error) {
	for _, r := range f.roles {
		if r.Title == title {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRoleStore) ActiveTitlesForUser(_ context.Context, userID string) ([]string, error) {
	var titles []string
	for _, a := range f.assignments {
		if a.UserID == userID && a.Status.IsActive() {
			if r, ok := f.roles[a.RoleID]; ok {
				titles = append(titles, r.Title)
			}
		}
	}
	return titles, nil
}

func (f *fakeRoleStore) AssignmentsForUser(_ context.Context, userID string) ([]model.UserRole, error) {
	var out []model.UserRole
	for _, a := range f.assignments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRoleStore) CreateAssignment(_ context.Context, a *model.UserRole) error {
	for _, existing := range f.assignments {
		if existing.UserID == a.UserID && existing.RoleID == a.RoleID {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	a.ID = f.nextID
	f.assignments = append(f.assignments, *a)
	return nil
}

func (f *fakeRoleStore) SaveAssignment(_ context.Context, a *model.UserRole) error {
	for i := range f.assignments {
		if f.assignments[i].ID == a.ID {
			f.assignments[i] = *a
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeCategoryStore struct {
	categories map[int64]*model.Category
	nextID     int64
}

func newFakeCategoryStore(categories ...model.Category) *fakeCategoryStore {
	f := &fakeCategoryStore{categories: make(map[int64]*model.Category)}
	for _, c := range categories {
		copied := c
		f.categories[c.ID] = &copied
		if c.ID > f.nextID {
			f.nextID = c.ID
		}
	}
	return f
}

func (f *fakeCategoryStore) Create(_ context.Context, c *model.Category) error {
	f.nextID++
	c.ID = f.nextID
	c.Status = model.StatusActive
	copied := *c
	f.categories[c.ID] = &copied
	return nil
}

func (f *fakeCategoryStore) Save(_ context.Context, c *model.Category) error {
	if _, ok := f.categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *c
	f.categories[c.ID] = &copied
	return nil
}

func (f *fakeCategoryStore) GetByID(_ context.Context, id int64) (*model.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCategoryStore) ListActive(context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range f.categories {
		if c.Status.IsActive() {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCategoryStore) SummariesByIDs(_ context.Context, ids []int64) (map[int64]model.CategorySummary, error) {
	out := make(map[int64]model.CategorySummary)
	for _, id := range ids {
		if c, ok := f.categories[id]; ok {
			out[id] = model.CategorySummary{ID: c.ID, Title: c.Title, Color: c.Color}
		}
	}
	return out, nil
}

type savedWithDocsCall struct {
	event    *model.Event
	retained []string
	docs     []model.EventDocument
}

type fakeEventStore struct {
	events map[int64]*model.Event
	nextID int64

	lastPublished *bool
	lastLimit     int
	lastOffset    int
	savedPlain    bool
	savedWithDocs *savedWithDocsCall
	createdDocs   []model.EventDocument
}

func newFakeEventStore(events ...model.Event) *fakeEventStore {
	f := &fakeEventStore{events: make(map[int64]*model.Event)}
	for _, e := range events {
		copied := e
		f.events[e.ID] = &copied
		if e.ID > f.nextID {
			f.nextID = e.ID
		}
	}
	return f
}

func (f *fakeEventStore) Create(_ context.Context, event *model.Event, docs []model.EventDocument) error {
	f.nextID++
	event.ID = f.nextID
	event.Status = model.StatusActive
	copied := *event
	f.events[event.ID] = &copied
	f.createdDocs = docs
	return nil
}

func (f *fakeEventStore) GetByID(_ context.Context, id int64) (*model.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeEventStore) Save(_ context.Context, event *model.Event) error {
	if _, ok := f.events[event.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *event
	f.events[event.ID] = &copied
	f.savedPlain = true
	return nil
}

func (f *fakeEventStore) SaveWithDocuments(_ context.Context, event *model.Event, retainedNames []string, docs []model.EventDocument) error {
	if _, ok := f.events[event.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *event
	f.events[event.ID] = &copied
	f.savedWithDocs = &savedWithDocsCall{event: event, retained: retainedNames, docs: docs}
	return nil
}

func (f *fakeEventStore) List(_ context.Context, published *bool, limit, offset int) ([]model.Event, error) {
	f.lastPublished = published
	f.lastLimit = limit
	f.lastOffset = offset

	var out []model.Event
	for _, e := range f.events {
		if !e.Status.IsActive() {
			continue
		}
		if published != nil && e.Published != *published {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fakeEnrollmentStore struct {
	rows           map[string]model.Enrollment
	nextID         int64
	attendedEvents []model.Event
	rosters        map[int64][]model.EnrolledUser
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{
		rows:    make(map[string]model.Enrollment),
		rosters: make(map[int64][]model.EnrolledUser),
	}
}

func enrollmentKey(eventID int64, userID string) string {
	return fmt.Sprintf("%d|%s", eventID, userID)
}

func (f *fakeEnrollmentStore) seed(e model.Enrollment) {
	f.nextID++
	e.ID = f.nextID
	f.rows[enrollmentKey(e.EventID, e.UserID)] = e
}

func (f *fakeEnrollmentStore) Get(_ context.Context, eventID int64, userID string) (*model.Enrollment, error) {
	e, ok := f.rows[enrollmentKey(eventID, userID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEnrollmentStore) Create(_ context.Context, e *model.Enrollment) error {
	key := enrollmentKey(e.EventID, e.UserID)
	if _, ok := f.rows[key]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	e.ID = f.nextID
	f.rows[key] = *e
	return nil
}

func (f *fakeEnrollmentStore) Save(_ context.Context, e *model.Enrollment) error {
	for key, existing := range f.rows {
		if existing.ID == e.ID {
			f.rows[key] = *e
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeEnrollmentStore) CountActiveByEvents(_ context.Context, eventIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int)
	for _, id := range eventIDs {
		for _, e := range f.rows {
			if e.EventID == id && e.Status.IsActive() {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (f *fakeEnrollmentStore) ActiveEventIDsForUser(_ context.Context, userID string, eventIDs []int64) (map[int64]bool, error) {
	enrolled := make(map[int64]bool)
	for _, id := range eventIDs {
		if e, ok := f.rows[enrollmentKey(id, userID)]; ok && e.Status.IsActive() {
			enrolled[id] = true
		}
	}
	return enrolled, nil
}

func (f *fakeEnrollmentStore) ListActiveUsers(_ context.Context, eventID int64) ([]model.EnrolledUser, error) {
	return f.rosters[eventID], nil
}

func (f *fakeEnrollmentStore) ListAttendedEvents(context.Context, string, time.Time) ([]model.Event, error) {
	return f.attendedEvents, nil
}

type fakeDocumentStore struct {
	docs map[int64][]model.EventDocument
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: make(map[int64][]model.EventDocument)}
}

func (f *fakeDocumentStore) ListActiveByEvent(_ context.Context, eventID int64) ([]model.EventDocument, error) {
	return f.docs[eventID], nil
}

func (f *fakeDocumentStore) ListActiveByEvents(_ context.Context, eventIDs []int64) (map[int64][]model.EventDocument, error) {
	out := make(map[int64][]model.EventDocument)
	for _, id := range eventIDs {
		if d, ok := f.docs[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}
