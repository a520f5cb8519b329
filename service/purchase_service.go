package service

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
	"chem-purchase-assistant/utils"
)

const (
	// StatusSimulated marks orders produced without a supplier integration
	StatusSimulated = "success_simulated"
	simulatedNote   = "Simulated response, no supplier integration."

	minItemPrice    = 10.0
	maxItemPrice    = 100.0
	minDeliveryDays = 3
	maxDeliveryDays = 7
)

// ErrInvalidPurchase is returned when the supplier or the item list is missing
var ErrInvalidPurchase = errors.New("supplier and item list are required")

// PurchaseService produces simulated orders for submitted chemical lists
type PurchaseService struct {
	mu         sync.Mutex
	rng        *rand.Rand
	now        func() time.Time
	minLatency time.Duration
	maxLatency time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *zap.Logger
}

// PurchaseServiceOptions configures a PurchaseService. Zero values use the defaults.
type PurchaseServiceOptions struct {
	MinLatency time.Duration
	MaxLatency time.Duration
	Rand       *rand.Rand
	Now        func() time.Time
	Sleep      func(ctx context.Context, d time.Duration) error
	Logger     *zap.Logger
}

// NewPurchaseService creates a PurchaseService
func NewPurchaseService(opts PurchaseServiceOptions) *PurchaseService {
	s := &PurchaseService{
		rng:        opts.Rand,
		now:        opts.Now,
		minLatency: opts.MinLatency,
		maxLatency: opts.MaxLatency,
		sleep:      opts.Sleep,
		logger:     opts.Logger,
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sleep == nil {
		s.sleep = sleepContext
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxLatency < s.minLatency {
		s.maxLatency = s.minLatency
	}
	return s
}

// Ensure PurchaseService implements PurchaseServiceInterface
var _ PurchaseServiceInterface = (*PurchaseService)(nil)

// PlaceOrder validates the request, waits the simulated processing latency
// and returns a simulated order for the submitted lines.
func (s *PurchaseService) PlaceOrder(ctx context.Context, req models.PurchaseRequest) (*models.PurchaseOrderResult, error) {
	supplier := strings.TrimSpace(req.Supplier)
	lines := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if line := strings.TrimSpace(item); line != "" {
			lines = append(lines, line)
		}
	}
	if supplier == "" || len(lines) == 0 {
		return nil, ErrInvalidPurchase
	}

	if d := s.latency(); d > 0 {
		if err := s.sleep(ctx, d); err != nil {
			return nil, fmt.Errorf("purchase canceled: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.OrderItem, 0, len(lines))
	total := 0.0
	for _, line := range lines {
		item := s.simulateItem(line)
		total += *item.Price
		items = append(items, item)
	}

	days := minDeliveryDays + s.rng.Intn(maxDeliveryDays-minDeliveryDays+1)
	eta := s.now().AddDate(0, 0, days).Format("2006-01-02")

	result := &models.PurchaseOrderResult{
		Status:            StatusSimulated,
		Supplier:          supplier,
		OrderID:           fmt.Sprintf("ORD-SIM-%d", 10000+s.rng.Intn(90000)),
		Items:             items,
		TotalPrice:        models.NewAmount(utils.RoundCents(total)),
		EstimatedDelivery: fmt.Sprintf("%s (Est. %s)", utils.FormatBusinessDays(days), eta),
		Note:              simulatedNote,
	}

	s.logger.Info("simulated order placed",
		zap.String("supplier", supplier),
		zap.String("order_id", result.OrderID),
		zap.Int("items", len(items)),
		zap.Float64("total", utils.RoundCents(total)),
	)
	return result, nil
}

// SplitOrderLine splits a raw line on its first space into quantity and
// name. A line without a space is one unit of itself.
func SplitOrderLine(line string) (quantity, name string) {
	line = strings.TrimSpace(line)
	if qty, rest, found := strings.Cut(line, " "); found && strings.TrimSpace(rest) != "" {
		return qty, strings.TrimSpace(rest)
	}
	return "1", line
}

func (s *PurchaseService) simulateItem(line string) models.OrderItem {
	qty, name := SplitOrderLine(line)
	price := utils.RoundCents(minItemPrice + s.rng.Float64()*(maxItemPrice-minItemPrice))
	return models.OrderItem{
		Name:     name,
		Quantity: qty,
		CAS:      fmt.Sprintf("%d-%d-%d", 100+s.rng.Intn(900), 10+s.rng.Intn(90), s.rng.Intn(10)),
		Price:    &price,
	}
}

func (s *PurchaseService) latency() time.Duration {
	if s.maxLatency <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	spread := s.maxLatency - s.minLatency
	if spread <= 0 {
		return s.minLatency
	}
	return s.minLatency + time.Duration(s.rng.Int63n(int64(spread)+1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
