// Package session holds the per-user state that sits between the HTTP API
// and the application repository: who is signed in, their last fetched list
// and stats, the in-progress edit, per-operation status and pending delete
// confirmations.
package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/internal/repository"
	"github.com/scholaco/tracker/internal/service"
)

const DefaultDeleteConfirmWindow = 3 * time.Second

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

type Operation string

const (
	OpList          Operation = "list"
	OpCreate        Operation = "create"
	OpUpdate        Operation = "update"
	OpDelete        Operation = "delete"
	OpClearReminder Operation = "clear_reminder"
)

type OpStatus string

const (
	OpIdle    OpStatus = "idle"
	OpPending OpStatus = "pending"
	OpSettled OpStatus = "settled"
	OpFailed  OpStatus = "failed"
)

type OpState struct {
	Status OpStatus `json:"status"`
	Error  string   `json:"error,omitempty"`
}

// DeleteOutcome reports what a delete trigger did.
type DeleteOutcome string

const (
	DeleteArmed DeleteOutcome = "armed"
	DeleteDone  DeleteOutcome = "deleted"
)

var ErrNoEdit = fmt.Errorf("%w: no edit in progress", domain.ErrValidation)

// Resolver is the identity provider as seen by a controller.
type Resolver interface {
	CurrentUser(ctx context.Context, sessionID uuid.UUID) (*domain.User, error)
	Profile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
}

type Config struct {
	DeleteConfirmWindow time.Duration
}

// Controller is the state of one signed-in session. It is safe for
// concurrent use; mutations are not serialized against each other, and each
// one ends by re-fetching the full list so the held list converges on the
// store.
type Controller struct {
	sessionID uuid.UUID
	resolver  Resolver
	apps      *service.ApplicationService
	mailer    service.Mailer
	window    time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	gen      uint64
	user     *domain.User
	greeting string
	list     []*domain.Application
	stats    *domain.Stats
	ops      map[Operation]OpState
	editing  *domain.Application
	armed    map[uuid.UUID]*time.Timer
}

func NewController(sessionID uuid.UUID, store repository.ApplicationStore, resolver Resolver, mailer service.Mailer, cfg Config, logger *zap.Logger) *Controller {
	window := cfg.DeleteConfirmWindow
	if window <= 0 {
		window = DefaultDeleteConfirmWindow
	}

	c := &Controller{
		sessionID: sessionID,
		resolver:  resolver,
		mailer:    mailer,
		window:    window,
		logger:    logger.With(zap.String("session_id", sessionID.String())),
		ops:       map[Operation]OpState{},
		armed:     map[uuid.UUID]*time.Timer{},
	}
	c.apps = service.NewApplicationService(store, c, c.logger)
	return c
}

// Init resolves the persisted session. An unresolvable session leaves the
// controller Anonymous and is not an error.
func (c *Controller) Init(ctx context.Context) error {
	user, err := c.resolver.CurrentUser(ctx, c.sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return nil
		}
		return err
	}
	c.SignedIn(ctx, user)
	return nil
}

// SignedIn moves to Authenticated, loads the list and stats and looks up the
// greeting name.
func (c *Controller) SignedIn(ctx context.Context, user *domain.User) {
	c.mu.Lock()
	c.gen++
	c.user = user
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("initial refresh failed", zap.Error(err))
	}

	name := ""
	profile, err := c.resolver.Profile(ctx, user.ID)
	if err != nil {
		c.logger.Warn("display name lookup failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else if fields := strings.Fields(profile.FullName); len(fields) > 0 {
		name = fields[0]
	}

	c.mu.Lock()
	if c.user == user {
		c.greeting = name
	}
	c.mu.Unlock()
}

// SignedOut clears everything held for the user and disarms pending deletes.
func (c *Controller) SignedOut() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.user = nil
	c.greeting = ""
	c.list = nil
	c.stats = nil
	c.editing = nil
	clear(c.ops)
	for id, t := range c.armed {
		t.Stop()
		delete(c.armed, id)
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return Anonymous
	}
	return Authenticated
}

// CurrentUser implements service.Identity.
func (c *Controller) CurrentUser(context.Context) (*domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return c.user, nil
}

func (c *Controller) Greeting() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.greeting
}

// Applications returns the last successfully fetched list, newest first. A
// failed fetch keeps the previous list.
func (c *Controller) Applications() []*domain.Application {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.list)
}

// Stats returns the last computed stats, nil if the last fetch failed.
func (c *Controller) Stats() *domain.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats == nil {
		return nil
	}
	s := *c.stats
	return &s
}

// Operations returns a copy of every operation's last known state.
func (c *Controller) Operations() map[Operation]OpState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.ops)
}

func (c *Controller) Operation(op Operation) OpState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.ops[op]; ok {
		return s
	}
	return OpState{Status: OpIdle}
}

// Refresh re-fetches the list and recomputes stats from that same snapshot.
// On failure the stats are dropped so no stale totals are served.
func (c *Controller) Refresh(ctx context.Context) error {
	gen := c.begin(OpList)

	list, err := c.apps.ListForCurrentUser(ctx)

	c.mu.Lock()
	if c.gen == gen {
		if err != nil {
			c.stats = nil
		} else {
			c.list = list
			c.stats = domain.ComputeStats(list)
		}
	}
	c.mu.Unlock()

	c.finish(gen, OpList, err)
	return err
}

func (c *Controller) Create(ctx context.Context, fields domain.ApplicationFields) (*domain.Application, error) {
	gen := c.begin(OpCreate)

	app, err := c.apps.Create(ctx, fields)
	c.finish(gen, OpCreate, err)
	if err != nil {
		return nil, err
	}

	c.refreshAfter(ctx)
	return app, nil
}

// Update applies patch. Moving a record to awaiting sends the submission
// confirmation email; a failed send does not fail the update.
func (c *Controller) Update(ctx context.Context, id uuid.UUID, patch domain.ApplicationPatch) (*domain.Application, error) {
	gen := c.begin(OpUpdate)

	app, err := c.apps.Update(ctx, id, patch)
	c.finish(gen, OpUpdate, err)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && *patch.Status == domain.StatusAwaiting {
		c.notifySubmitted(ctx, app)
	}

	c.refreshAfter(ctx)
	return app, nil
}

func (c *Controller) Delete(ctx context.Context, id uuid.UUID) error {
	gen := c.begin(OpDelete)

	err := c.apps.Delete(ctx, id)
	c.finish(gen, OpDelete, err)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.editing != nil && c.editing.ID == id {
		c.editing = nil
	}
	c.mu.Unlock()

	c.refreshAfter(ctx)
	return nil
}

func (c *Controller) ClearReminder(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	gen := c.begin(OpClearReminder)

	app, err := c.apps.ClearReminder(ctx, id)
	c.finish(gen, OpClearReminder, err)
	if err != nil {
		return nil, err
	}

	c.refreshAfter(ctx)
	return app, nil
}

// ConfirmDelete is the two-step delete. The first trigger arms the record
// for the confirmation window; a second trigger inside the window deletes
// it. If the window lapses the record is disarmed and left alone.
func (c *Controller) ConfirmDelete(ctx context.Context, id uuid.UUID) (DeleteOutcome, error) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return "", domain.ErrUnauthenticated
	}

	if t, ok := c.armed[id]; ok {
		t.Stop()
		delete(c.armed, id)
		c.mu.Unlock()

		if err := c.Delete(ctx, id); err != nil {
			return "", err
		}
		return DeleteDone, nil
	}

	var timer *time.Timer
	timer = time.AfterFunc(c.window, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.armed[id] == timer {
			delete(c.armed, id)
		}
	})
	c.armed[id] = timer
	c.mu.Unlock()

	return DeleteArmed, nil
}

func (c *Controller) IsArmed(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.armed[id]
	return ok
}

// BeginEdit starts editing a record from the held list.
func (c *Controller) BeginEdit(id uuid.UUID) (*domain.Application, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return nil, domain.ErrUnauthenticated
	}
	for _, app := range c.list {
		if app.ID == id {
			c.editing = app
			return app, nil
		}
	}
	return nil, fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
}

// Editing returns the record being edited, or nil.
func (c *Controller) Editing() *domain.Application {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing
}

// SaveEdit applies patch to the record being edited. The edit stays open if
// the update fails.
func (c *Controller) SaveEdit(ctx context.Context, patch domain.ApplicationPatch) (*domain.Application, error) {
	c.mu.Lock()
	editing := c.editing
	c.mu.Unlock()

	if editing == nil {
		return nil, ErrNoEdit
	}

	app, err := c.Update(ctx, editing.ID, patch)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.editing == editing {
		c.editing = nil
	}
	c.mu.Unlock()
	return app, nil
}

func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.editing = nil
	c.mu.Unlock()
}

func (c *Controller) begin(op Operation) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops[op] = OpState{Status: OpPending}
	return c.gen
}

// finish records the outcome unless the user signed out meanwhile.
func (c *Controller) finish(gen uint64, op Operation, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	if err != nil {
		c.ops[op] = OpState{Status: OpFailed, Error: err.Error()}
		return
	}
	c.ops[op] = OpState{Status: OpSettled}
}

func (c *Controller) refreshAfter(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("refresh after mutation failed", zap.Error(err))
	}
}

func (c *Controller) notifySubmitted(ctx context.Context, app *domain.Application) {
	if c.mailer == nil {
		return
	}
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return
	}
	if _, err := c.mailer.SendApplicationSubmitted(ctx, user.Email, app.Name); err != nil {
		c.logger.Warn("submission confirmation not sent", zap.String("application_id", app.ID.String()), zap.Error(err))
	}
}
