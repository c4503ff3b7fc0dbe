package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"microcredit-api/internal/core/domain"
	"microcredit-api/internal/core/wizard"
	"microcredit-api/internal/pkg/logger"

	"go.uber.org/zap"
)

// DefaultWizardIdleTTL is how long an untouched application form is kept
const DefaultWizardIdleTTL = 2 * time.Hour

// WizardState is the client view of an application form
type WizardState struct {
	Step          wizard.Step             `json:"step"`
	EntryStep     wizard.Step             `json:"entryStep"`
	Steps         []wizard.Step           `json:"steps"`
	CanGoBack     bool                    `json:"canGoBack"`
	Authenticated bool                    `json:"authenticated"`
	Verified      bool                    `json:"verified"`
	Values        map[string]interface{}  `json:"values"`
	Product       *domain.ProductSnapshot `json:"product,omitempty"`
	Location      *domain.Location        `json:"location,omitempty"`
	FieldErrors   map[string]string       `json:"fieldErrors,omitempty"`
	SubmitError   string                  `json:"submitError,omitempty"`
	ApplicationID string                  `json:"applicationId,omitempty"`
	Complete      bool                    `json:"complete"`
}

type wizardSession struct {
	mu      sync.Mutex
	ctrl    *wizard.Controller
	touched time.Time
}

// WizardService keeps one in-progress application form per user
type WizardService struct {
	auth    *AuthService
	catalog *CatalogService
	apps    *ApplicationService
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[uint]*wizardSession
}

// NewWizardService creates a wizard service and subscribes it to bus
func NewWizardService(auth *AuthService, catalog *CatalogService, apps *ApplicationService, bus *StatusBus, idleTTL time.Duration) *WizardService {
	if idleTTL <= 0 {
		idleTTL = DefaultWizardIdleTTL
	}
	s := &WizardService{
		auth:     auth,
		catalog:  catalog,
		apps:     apps,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[uint]*wizardSession),
	}
	if bus != nil {
		bus.Subscribe(s.onStatusChanged)
	}
	return s
}

// Start opens a form for the user, or returns the one already in progress.
// Users with an application under evaluation cannot start another.
func (s *WizardService) Start(ctx context.Context, userID uint) (*WizardState, error) {
	if sess := s.session(userID); sess != nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		if !sess.ctrl.IsComplete() {
			sess.touched = s.now()
			return stateOf(sess.ctrl), nil
		}
	}

	user, err := s.auth.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	open, err := s.apps.HasOpenApplication(ctx, user.TenantID, user.ID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, domain.ErrPendingApplication
	}

	ctrl := wizard.NewController(nil, user.TenantID, statusOf(user))
	prefill := map[string]string{
		"firstName":   user.FirstName,
		"lastName":    user.LastName,
		"mobilePhone": user.Phone,
		"email":       user.Email,
	}
	for name, value := range prefill {
		if err := ctrl.Set(name, value); err != nil {
			return nil, err
		}
	}

	sess := &wizardSession{ctrl: ctrl, touched: s.now()}
	s.mu.Lock()
	s.sessions[userID] = sess
	s.mu.Unlock()

	logger.Info(ctx, "📝 Application form started",
		zap.Uint("user_id", userID),
		zap.String("tenant", user.TenantID),
		zap.String("step", string(ctrl.Current())))

	return stateOf(ctrl), nil
}

// Get returns the form in progress
func (s *WizardService) Get(ctx context.Context, userID uint) (*WizardState, error) {
	var state *WizardState
	err := s.with(userID, func(c *wizard.Controller) error {
		state = stateOf(c)
		return nil
	})
	return state, err
}

// Patch sets draft fields. Unknown fields and bad value types are rejected
// and stop the patch.
func (s *WizardService) Patch(ctx context.Context, userID uint, values map[string]interface{}) (*WizardState, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	return s.apply(userID, func(c *wizard.Controller) error {
		for _, name := range names {
			if err := c.Set(name, values[name]); err != nil {
				return err
			}
		}
		return nil
	})
}

// SelectProduct binds the form to one of the tenant's active products
func (s *WizardService) SelectProduct(ctx context.Context, userID uint, productID uint) (*WizardState, error) {
	return s.apply(userID, func(c *wizard.Controller) error {
		product, err := s.catalog.GetProduct(ctx, c.TenantID(), productID)
		if err != nil {
			return err
		}
		return c.SelectProduct(product.Snapshot())
	})
}

// SetLocation records the applicant's coordinates
func (s *WizardService) SetLocation(ctx context.Context, userID uint, lat, long float64) (*WizardState, error) {
	return s.apply(userID, func(c *wizard.Controller) error {
		return c.SetLocation(lat, long)
	})
}

// Next validates the current step and advances
func (s *WizardService) Next(ctx context.Context, userID uint) (*WizardState, error) {
	return s.apply(userID, func(c *wizard.Controller) error {
		_, err := c.Next()
		return err
	})
}

// Previous goes back one step
func (s *WizardService) Previous(ctx context.Context, userID uint) (*WizardState, error) {
	return s.apply(userID, func(c *wizard.Controller) error {
		_, err := c.Previous()
		return err
	})
}

// Submit sends the finished form for evaluation
func (s *WizardService) Submit(ctx context.Context, userID uint) (*WizardState, error) {
	return s.apply(userID, func(c *wizard.Controller) error {
		_, err := c.Submit(ctx, s.apps)
		if err != nil {
			logger.Warn(ctx, "application submit refused",
				zap.Uint("user_id", userID),
				zap.String("step", string(c.Current())),
				zap.Error(err))
		}
		return err
	})
}

// Discard drops the form in progress
func (s *WizardService) Discard(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[userID]; !ok {
		return domain.ErrNoActiveWizard
	}
	delete(s.sessions, userID)
	return nil
}

// PurgeIdle drops forms untouched for longer than the idle TTL
func (s *WizardService) PurgeIdle(ctx context.Context) int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for userID, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.touched.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, userID)
			purged++
		}
	}
	return purged
}

// Active returns the number of forms in memory
func (s *WizardService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *WizardService) onStatusChanged(status domain.AuthStatus) {
	sess := s.session(status.UserID)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	sess.ctrl.OnAuthStatusChanged(status)
	sess.mu.Unlock()
}

func (s *WizardService) session(userID uint) *wizardSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID]
}

func (s *WizardService) with(userID uint, fn func(c *wizard.Controller) error) error {
	sess := s.session(userID)
	if sess == nil {
		return domain.ErrNoActiveWizard
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touched = s.now()
	return fn(sess.ctrl)
}

// apply runs fn and returns the resulting state even when fn fails, so
// callers can render field errors.
func (s *WizardService) apply(userID uint, fn func(c *wizard.Controller) error) (*WizardState, error) {
	var state *WizardState
	err := s.with(userID, func(c *wizard.Controller) error {
		err := fn(c)
		state = stateOf(c)
		return err
	})
	return state, err
}

func stateOf(c *wizard.Controller) *WizardState {
	status := c.Status()
	draft := c.Draft()
	return &WizardState{
		Step:          c.Current(),
		EntryStep:     c.Entry(),
		Steps:         c.Steps(),
		CanGoBack:     c.CanGoBack(),
		Authenticated: status.Authenticated,
		Verified:      status.Verified,
		Values:        draft.Values(),
		Product:       draft.Product(),
		Location:      draft.Location(),
		FieldErrors:   c.FieldErrors(),
		SubmitError:   c.SubmitError(),
		ApplicationID: c.ApplicationID(),
		Complete:      c.IsComplete(),
	}
}
