package widget

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"chem-purchase-assistant/models"
)

// TotalSteps is the number of purchase stages: connect/login, cart, checkout, confirm
const TotalSteps = 4

const (
	stepConnect  = 1
	stepCart     = 2
	stepCheckout = 3
	stepConfirm  = 4

	pctConnecting = 5
	pctLoggingIn  = 15
	pctCartStart  = 25
	pctCartEnd    = 65
	pctVerify     = 70
	pctPayment    = 80
	pctConfirm    = 90
	pctComplete   = 100
)

// Timings are the fixed delays of the staged playback
type Timings struct {
	CartStart  time.Duration // before the first item is added
	PerItem    time.Duration // after each item
	VerifyCart time.Duration
	Payment    time.Duration
	Confirm    time.Duration
	Summary    time.Duration // between completion and the summary
	Settle     time.Duration // between the summary and the UI reset
}

// DefaultTimings returns the delays used by the assistant UI
func DefaultTimings() Timings {
	return Timings{
		CartStart:  1000 * time.Millisecond,
		PerItem:    600 * time.Millisecond,
		VerifyCart: 1200 * time.Millisecond,
		Payment:    1000 * time.Millisecond,
		Confirm:    800 * time.Millisecond,
		Summary:    1000 * time.Millisecond,
		Settle:     1000 * time.Millisecond,
	}
}

// Sleeper waits for d, returning early with ctx.Err() if ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper backed by a timer
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ProgressFunc receives every progress update of a run
type ProgressFunc func(models.ProgressState)

// OrderSubmitter sends the single purchase request of a run
type OrderSubmitter interface {
	SubmitPurchase(ctx context.Context, supplier string, items []string) (*models.PurchaseOrderResult, error)
}

// PurchaseFlow plays back the staged purchase progress around one real
// submission. Only the submission touches the network; every later stage is
// a locally timed update.
type PurchaseFlow struct {
	submitter OrderSubmitter
	timings   Timings
	sleep     Sleeper
	now       func() time.Time
	logger    *zap.Logger
}

// FlowOption customizes a PurchaseFlow
type FlowOption func(*PurchaseFlow)

// WithTimings overrides the stage delays
func WithTimings(t Timings) FlowOption {
	return func(f *PurchaseFlow) { f.timings = t }
}

// WithSleeper overrides how delays are awaited
func WithSleeper(s Sleeper) FlowOption {
	return func(f *PurchaseFlow) {
		if s != nil {
			f.sleep = s
		}
	}
}

// WithClock overrides the wall clock used for ETA labels
func WithClock(now func() time.Time) FlowOption {
	return func(f *PurchaseFlow) {
		if now != nil {
			f.now = now
		}
	}
}

// WithFlowLogger sets the logger
func WithFlowLogger(logger *zap.Logger) FlowOption {
	return func(f *PurchaseFlow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewPurchaseFlow creates a PurchaseFlow with the default timings
func NewPurchaseFlow(submitter OrderSubmitter, opts ...FlowOption) *PurchaseFlow {
	f := &PurchaseFlow{
		submitter: submitter,
		timings:   DefaultTimings(),
		sleep:     SleepContext,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Timings returns the delays this flow uses
func (f *PurchaseFlow) Timings() Timings {
	return f.timings
}

// Run submits the order and plays back the four stages. The returned result
// is never nil on success. Any error aborts the run; nothing is retried.
func (f *PurchaseFlow) Run(ctx context.Context, supplierCode, supplierName string, items []models.ChemicalLineItem, progress ProgressFunc) (*models.PurchaseOrderResult, error) {
	run := &progressRun{start: f.now(), now: f.now, emit: progress}
	rawTexts := models.RawTexts(items)

	run.update(stepConnect, pctConnecting, fmt.Sprintf("Connecting to %s...", supplierName))

	f.logger.Info("submitting purchase",
		zap.String("supplier", supplierCode),
		zap.Int("items", len(rawTexts)),
	)
	result, err := f.submitter.SubmitPurchase(ctx, supplierCode, rawTexts)
	if err != nil {
		f.logger.Warn("purchase submission failed", zap.String("supplier", supplierCode), zap.Error(err))
		return nil, err
	}
	if result == nil {
		result = &models.PurchaseOrderResult{}
	}

	run.update(stepConnect, pctLoggingIn, fmt.Sprintf("Logging into %s system...", supplierName))

	run.update(stepCart, pctCartStart, "Preparing to add items to cart...")
	if err := f.sleep(ctx, f.timings.CartStart); err != nil {
		return nil, err
	}

	names := CartItemNames(result, rawTexts)
	for i, name := range names {
		run.update(stepCart, CartPercentage(i+1, len(names)), fmt.Sprintf("Adding %s to cart...", name))
		if err := f.sleep(ctx, f.timings.PerItem); err != nil {
			return nil, err
		}
	}

	run.update(stepCheckout, pctVerify, "Verifying cart items...")
	if err := f.sleep(ctx, f.timings.VerifyCart); err != nil {
		return nil, err
	}
	run.update(stepCheckout, pctPayment, "Processing payment information...")
	if err := f.sleep(ctx, f.timings.Payment); err != nil {
		return nil, err
	}

	run.update(stepConfirm, pctConfirm, "Confirming order details...")
	if err := f.sleep(ctx, f.timings.Confirm); err != nil {
		return nil, err
	}
	run.complete(stepConfirm, "Order Complete!")

	f.logger.Info("purchase playback completed",
		zap.String("supplier", supplierCode),
		zap.String("order_id", result.OrderID),
		zap.Duration("elapsed", f.now().Sub(run.start)),
	)
	return result, nil
}

// CartItemNames lists the names shown in the cart stage: the response items
// when the response has an items field, else the submitted lines.
func CartItemNames(result *models.PurchaseOrderResult, submitted []string) []string {
	if result == nil || result.Items == nil {
		names := make([]string, len(submitted))
		copy(names, submitted)
		return names
	}
	names := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		names = append(names, item.DisplayName())
	}
	return names
}

// CartPercentage is the progress after adding item i (1-based) of n.
// Values are spread over (25, 65] and reach 65 only at i == n.
func CartPercentage(i, n int) float64 {
	if n <= 0 {
		return pctCartEnd
	}
	pct := pctCartStart + float64(i)/float64(n)*(pctCartEnd-pctCartStart)
	return math.Min(pct, pctCartEnd)
}

type progressRun struct {
	start   time.Time
	now     func() time.Time
	emit    ProgressFunc
	lastPct float64
}

func (r *progressRun) update(step int, pct float64, message string) {
	pct = r.clamp(pct)
	r.send(models.ProgressState{
		Step:       step,
		TotalSteps: TotalSteps,
		Percentage: pct,
		Message:    message,
		ETA:        FormatETA(r.now().Sub(r.start), pct),
	})
}

func (r *progressRun) complete(step int, message string) {
	r.send(models.ProgressState{
		Step:       step,
		TotalSteps: TotalSteps,
		Percentage: r.clamp(pctComplete),
		Message:    message,
		ETA:        ETACompleted,
	})
}

// clamp keeps the percentage inside 0..100 and non-decreasing
func (r *progressRun) clamp(pct float64) float64 {
	pct = math.Max(0, math.Min(pct, 100))
	if pct < r.lastPct {
		pct = r.lastPct
	}
	r.lastPct = pct
	return pct
}

func (r *progressRun) send(state models.ProgressState) {
	if r.emit != nil {
		r.emit(state)
	}
}
