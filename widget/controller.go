package widget

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"chem-purchase-assistant/models"
	"chem-purchase-assistant/summary"
	"chem-purchase-assistant/utils"
)

// User-facing messages
const (
	MsgLoginRequired    = "Please log in to start a purchase."
	MsgAuthGate         = "Please log in to use the purchasing assistant."
	MsgEmptyList        = "Please enter the chemical list!"
	MsgPurchaseErrorFmt = "Error during purchase: %s"
	msgPreparing        = "Preparing purchase process..."

	pctPreparing = 5

	assistantRole = "assistant"
	assistantName = "System"
)

var (
	ErrBusy             = errors.New("widget: a purchase is already in progress")
	ErrNotAuthenticated = errors.New("widget: user is not logged in")
	ErrEmptyInput       = errors.New("widget: chemical list is empty")
)

// State is the observable state of the purchase assistant
type State struct {
	Open               bool
	LoggedIn           bool
	Username           string
	Busy               bool
	SubmitDisabled     bool
	AuthDisabled       bool
	AuthMessageVisible bool
	ProgressVisible    bool
	Progress           models.ProgressState
	// LastSummary is the HTML of the most recently rendered order summary
	LastSummary string
}

// AuthChecker reports who is logged in
type AuthChecker interface {
	CurrentUser(ctx context.Context) (models.CurrentUserResponse, error)
}

// Controller owns the assistant state and drives a purchase from the raw
// chemical list to the posted summary. At most one purchase runs at a time.
type Controller struct {
	mu    sync.Mutex
	state State

	auth     AuthChecker
	flow     *PurchaseFlow
	notifier Notifier
	sink     MessageSink
	fallback MessageSink
	sleep    Sleeper
	now      func() time.Time
	rng      *rand.Rand
	logger   *zap.Logger

	onProgress ProgressFunc
}

// ControllerOption customizes a Controller
type ControllerOption func(*Controller)

// WithNotifier sets where notifications go
func WithNotifier(n Notifier) ControllerOption {
	return func(c *Controller) { c.notifier = n }
}

// WithMessageSink sets the conversation view the summary is posted to
func WithMessageSink(s MessageSink) ControllerOption {
	return func(c *Controller) { c.sink = s }
}

// WithFallbackSink sets the surface used when the primary sink fails
func WithFallbackSink(s MessageSink) ControllerOption {
	return func(c *Controller) { c.fallback = s }
}

// WithRand sets the random source used for local fallbacks
func WithRand(rng *rand.Rand) ControllerOption {
	return func(c *Controller) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithControllerClock sets the clock used for the order date
func WithControllerClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithControllerSleeper sets how the summary and settle delays are awaited
func WithControllerSleeper(s Sleeper) ControllerOption {
	return func(c *Controller) {
		if s != nil {
			c.sleep = s
		}
	}
}

// WithProgressListener receives a copy of every progress update
func WithProgressListener(fn ProgressFunc) ControllerOption {
	return func(c *Controller) { c.onProgress = fn }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a Controller. Until CheckLoginStatus runs the
// submit control is enabled and the auth lock is off.
func NewController(auth AuthChecker, flow *PurchaseFlow, opts ...ControllerOption) *Controller {
	c := &Controller{
		auth:   auth,
		flow:   flow,
		sleep:  SleepContext,
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetOpen shows or hides the assistant panel
func (c *Controller) SetOpen(open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Open = open
}

// CheckLoginStatus refreshes the login state. A failed check counts as
// logged out and locks the assistant.
func (c *Controller) CheckLoginStatus(ctx context.Context) bool {
	resp, err := c.auth.CurrentUser(ctx)
	if err != nil {
		c.logger.Warn("login status check failed", zap.Error(err))
	}
	loggedIn := err == nil && resp.LoggedIn()

	c.mu.Lock()
	defer c.mu.Unlock()

	if loggedIn {
		c.state.LoggedIn = true
		c.state.Username = *resp.Username
		c.state.AuthMessageVisible = false
		if c.state.AuthDisabled {
			c.state.AuthDisabled = false
			if !c.state.Busy {
				c.state.SubmitDisabled = false
			}
		}
		return true
	}

	c.state.LoggedIn = false
	c.state.Username = ""
	c.state.AuthDisabled = true
	c.state.SubmitDisabled = true
	c.state.AuthMessageVisible = true
	return false
}

// AuthMessage returns the gate text shown while the assistant is locked
func (c *Controller) AuthMessage() string {
	if c.Snapshot().AuthMessageVisible {
		return MsgAuthGate
	}
	return ""
}

// Submit runs one purchase for the raw chemical list against supplierCode.
// It returns ErrBusy if a run is active, ErrNotAuthenticated if the user is
// logged out and ErrEmptyInput for a blank list. A backend failure is
// reported through the notifier and returned.
func (c *Controller) Submit(ctx context.Context, supplierCode, rawText string) error {
	if !c.acquire() {
		return ErrBusy
	}

	if !c.CheckLoginStatus(ctx) {
		c.notify(MsgLoginRequired, NotifyError)
		c.mu.Lock()
		c.state.Open = true
		c.state.AuthMessageVisible = true
		c.mu.Unlock()
		c.reset()
		return ErrNotAuthenticated
	}

	text := strings.TrimSpace(rawText)
	if text == "" {
		c.notify(MsgEmptyList, NotifyError)
		c.reset()
		return ErrEmptyInput
	}

	c.mu.Lock()
	c.state.ProgressVisible = true
	c.mu.Unlock()
	c.setProgress(models.ProgressState{
		Step:       1,
		TotalSteps: TotalSteps,
		Percentage: pctPreparing,
		Message:    msgPreparing,
		ETA:        ETACalculating,
	})

	items := utils.ParseLines(text)
	supplierName := utils.SupplierName(supplierCode)
	c.logger.Info("purchase started",
		zap.String("supplier", supplierCode),
		zap.Int("items", len(items)),
	)

	result, err := c.flow.Run(ctx, supplierCode, supplierName, items, c.setProgress)
	if err != nil {
		c.notify(formatPurchaseError(err), NotifyError)
		c.reset()
		return err
	}

	if err := c.sleep(ctx, c.flow.Timings().Summary); err != nil {
		c.reset()
		return err
	}
	c.presentSummary(supplierCode, supplierName, result)

	err = c.sleep(ctx, c.flow.Timings().Settle)
	c.reset()
	return err
}

func (c *Controller) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Busy {
		return false
	}
	c.state.Busy = true
	c.state.SubmitDisabled = true
	return true
}

// reset clears the progress display and releases the run. Submit stays
// disabled while the auth lock is on and the user is logged out.
func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Busy = false
	c.state.ProgressVisible = false
	c.state.Progress = models.ProgressState{}
	c.state.SubmitDisabled = c.state.AuthDisabled && !c.state.LoggedIn
}

func (c *Controller) setProgress(p models.ProgressState) {
	c.mu.Lock()
	c.state.Progress = p
	c.mu.Unlock()

	if c.onProgress != nil {
		c.onProgress(p)
	}
}

func (c *Controller) presentSummary(supplierCode, supplierName string, result *models.PurchaseOrderResult) {
	data := summary.Build(supplierCode, supplierName, result, c.now(), c.rng)
	html, err := summary.Render(data)
	if err != nil {
		c.logger.Error("failed to render order summary", zap.Error(err))
		c.notify(summary.NotificationText(data), NotifySuccess)
		return
	}

	c.mu.Lock()
	c.state.LastSummary = html
	c.mu.Unlock()

	for _, sink := range []MessageSink{c.sink, c.fallback} {
		if sink == nil {
			continue
		}
		if err := sink.AddMessage(assistantRole, assistantName, html); err != nil {
			c.logger.Warn("failed to post order summary", zap.Error(err))
			continue
		}
		c.logger.Info("order summary posted", zap.String("order_id", data.OrderID))
		return
	}
	c.notify(summary.NotificationText(data), NotifySuccess)
}

func (c *Controller) notify(message string, kind NotificationKind) {
	if c.notifier != nil {
		c.notifier.Notify(message, kind)
	}
}

func formatPurchaseError(err error) string {
	return fmt.Sprintf(MsgPurchaseErrorFmt, err.Error())
}
