package widget

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chem-purchase-assistant/models"
)

type capturedNotification struct {
	message string
	kind    NotificationKind
}

type notificationLog struct {
	mu    sync.Mutex
	items []capturedNotification
}

func (l *notificationLog) Notify(message string, kind NotificationKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, capturedNotification{message: message, kind: kind})
}

func (l *notificationLog) All() []capturedNotification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]capturedNotification(nil), l.items...)
}

type captureSink struct {
	mu       sync.Mutex
	err      error
	messages []string
}

func (s *captureSink) AddMessage(role, displayName, htmlContent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, htmlContent)
	return nil
}

func (s *captureSink) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

type backend struct {
	srv           *httptest.Server
	purchaseCalls atomic.Int32
	lastRequest   models.PurchaseRequest
	mu            sync.Mutex
}

func newBackend(t *testing.T, username string, purchaseStatus int, purchaseBody string) *backend {
	t.Helper()

	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc(PathCurrentUser, func(w http.ResponseWriter, r *http.Request) {
		if username == "" {
			writeJSON(w, http.StatusUnauthorized, `{"username":null}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"username":"`+username+`"}`)
	})
	mux.HandleFunc(PathPurchase, func(w http.ResponseWriter, r *http.Request) {
		b.purchaseCalls.Add(1)
		var req models.PurchaseRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.lastRequest = req
		b.mu.Unlock()
		writeJSON(w, purchaseStatus, purchaseBody)
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) LastRequest() models.PurchaseRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastRequest
}

func newTestController(t *testing.T, b *backend, opts ...ControllerOption) (*Controller, *notificationLog, *recordingSleeper) {
	t.Helper()

	client := NewClient(b.srv.URL, nil)
	sleeper := &recordingSleeper{}
	flow := NewPurchaseFlow(client, WithSleeper(sleeper.Sleep))
	notes := &notificationLog{}

	base := []ControllerOption{
		WithNotifier(notes),
		WithControllerSleeper(sleeper.Sleep),
		WithRand(rand.New(rand.NewSource(7))),
		WithControllerClock(func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }),
	}
	return NewController(client, flow, append(base, opts...)...), notes, sleeper
}

func TestController_Submit_PostsSummaryAndResets(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice", http.StatusOK, `{"order_id":"X","items":["A","B"],"total_price":12.5}`)
	sink := &captureSink{}
	var progress []models.ProgressState
	ctrl, notes, sleeper := newTestController(t, b,
		WithMessageSink(sink),
		WithProgressListener(func(p models.ProgressState) { progress = append(progress, p) }),
	)

	err := ctrl.Submit(t.Context(), "sigma", "  500g Sodium Chloride (NaCl)\n\n1L Methanol  ")
	require.NoError(t, err)

	require.EqualValues(t, 1, b.purchaseCalls.Load())
	require.Equal(t, models.PurchaseRequest{
		Supplier: "sigma",
		Items:    []string{"500g Sodium Chloride (NaCl)", "1L Methanol"},
	}, b.LastRequest())

	messages := sink.Messages()
	require.Len(t, messages, 1)
	html := messages[0]
	require.Contains(t, html, "Order ID: X")
	require.Contains(t, html, "<li>A</li>")
	require.Contains(t, html, "<li>B</li>")
	require.Contains(t, html, "¥12.50")
	require.Contains(t, html, "Sigma-Aldrich")
	require.Empty(t, notes.All())

	require.NotEmpty(t, progress)
	require.Equal(t, models.ProgressState{
		Step:       1,
		TotalSteps: TotalSteps,
		Percentage: 5,
		Message:    "Preparing purchase process...",
		ETA:        ETACalculating,
	}, progress[0])
	require.Equal(t, 100.0, progress[len(progress)-1].Percentage)
	require.Contains(t, progress[4].Message, "Adding A to cart")

	delays := sleeper.Delays()
	timings := DefaultTimings()
	require.Equal(t, []time.Duration{timings.Summary, timings.Settle}, delays[len(delays)-2:])

	state := ctrl.Snapshot()
	require.False(t, state.Busy)
	require.False(t, state.SubmitDisabled)
	require.False(t, state.ProgressVisible)
	require.Equal(t, models.ProgressState{}, state.Progress)
	require.True(t, state.LoggedIn)
	require.Equal(t, "alice", state.Username)
	require.Equal(t, html, state.LastSummary)
}

func TestController_Submit_Unauthenticated(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "", http.StatusOK, `{}`)
	ctrl, notes, _ := newTestController(t, b)

	err := ctrl.Submit(t.Context(), "sigma", "NaCl")
	require.ErrorIs(t, err, ErrNotAuthenticated)
	require.Zero(t, b.purchaseCalls.Load())

	require.Equal(t, []capturedNotification{{message: MsgLoginRequired, kind: NotifyError}}, notes.All())

	state := ctrl.Snapshot()
	require.True(t, state.SubmitDisabled)
	require.True(t, state.AuthDisabled)
	require.True(t, state.AuthMessageVisible)
	require.True(t, state.Open)
	require.False(t, state.Busy)
	require.Equal(t, MsgAuthGate, ctrl.AuthMessage())
}

func TestController_Submit_EmptyInput(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice", http.StatusOK, `{}`)
	ctrl, notes, _ := newTestController(t, b)

	err := ctrl.Submit(t.Context(), "sigma", " \n\t ")
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Zero(t, b.purchaseCalls.Load())
	require.Equal(t, []capturedNotification{{message: MsgEmptyList, kind: NotifyError}}, notes.All())
	require.False(t, ctrl.Snapshot().SubmitDisabled)
}

func TestController_Submit_BackendError(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice", http.StatusBadRequest, `{"error":"Supplier and item list are required"}`)
	sink := &captureSink{}
	ctrl, notes, _ := newTestController(t, b, WithMessageSink(sink))

	err := ctrl.Submit(t.Context(), "sigma", "NaCl")
	require.True(t, IsStatus(err, http.StatusBadRequest))
	require.Equal(t, []capturedNotification{{
		message: "Error during purchase: Supplier and item list are required",
		kind:    NotifyError,
	}}, notes.All())
	require.Empty(t, sink.Messages())

	state := ctrl.Snapshot()
	require.False(t, state.Busy)
	require.False(t, state.SubmitDisabled)
	require.False(t, state.ProgressVisible)
}

func TestController_Submit_SinkFallbacks(t *testing.T) {
	t.Parallel()

	body := `{"order_id":"X","items":["A","B"],"total_price":12.5}`

	t.Run("fallback sink", func(t *testing.T) {
		t.Parallel()

		b := newBackend(t, "alice", http.StatusOK, body)
		primary := &captureSink{err: errors.New("view closed")}
		fallback := &captureSink{}
		ctrl, notes, _ := newTestController(t, b, WithMessageSink(primary), WithFallbackSink(fallback))

		require.NoError(t, ctrl.Submit(t.Context(), "sigma", "A\nB"))
		require.Len(t, fallback.Messages(), 1)
		require.Empty(t, notes.All())
	})

	t.Run("notification", func(t *testing.T) {
		t.Parallel()

		b := newBackend(t, "alice", http.StatusOK, body)
		ctrl, notes, _ := newTestController(t, b,
			WithMessageSink(&captureSink{err: errors.New("view closed")}),
		)

		require.NoError(t, ctrl.Submit(t.Context(), "sigma", "A\nB"))
		require.Equal(t, []capturedNotification{{
			message: "Order placed! ID: X. Total: ¥12.50",
			kind:    NotifySuccess,
		}}, notes.All())
	})
}

func TestController_Submit_GeneratesMissingOrderID(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice", http.StatusOK, `{}`)
	sink := &captureSink{}
	ctrl, _, _ := newTestController(t, b, WithMessageSink(sink))

	require.NoError(t, ctrl.Submit(t.Context(), "alfa", "1L Acetone"))
	require.Len(t, sink.Messages(), 1)
	require.Contains(t, sink.Messages()[0], "Order ID: ALF-261016-")
	require.Contains(t, sink.Messages()[0], "¥0.00")
}

func TestController_Submit_RejectsConcurrentRun(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice", http.StatusOK, `{"order_id":"X"}`)
	client := NewClient(b.srv.URL, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	blocking := func(ctx context.Context, d time.Duration) error {
		once.Do(func() { close(started) })
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	flow := NewPurchaseFlow(client, WithSleeper(blocking))
	ctrl := NewController(client, flow, WithControllerSleeper(func(context.Context, time.Duration) error { return nil }))

	done := make(chan error, 1)
	go func() { done <- ctrl.Submit(context.Background(), "sigma", "NaCl") }()

	<-started
	state := ctrl.Snapshot()
	require.True(t, state.Busy)
	require.True(t, state.SubmitDisabled)
	require.True(t, state.ProgressVisible)

	require.ErrorIs(t, ctrl.Submit(context.Background(), "sigma", "NaCl"), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	require.EqualValues(t, 1, b.purchaseCalls.Load())
	require.False(t, ctrl.Snapshot().Busy)
}

func TestController_CheckLoginStatus_UnlocksAfterLogin(t *testing.T) {
	t.Parallel()

	var loggedIn atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !loggedIn.Load() {
			writeJSON(w, http.StatusUnauthorized, `{"username":null}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"username":"bob"}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, nil)
	ctrl := NewController(client, NewPurchaseFlow(client))

	require.False(t, ctrl.CheckLoginStatus(t.Context()))
	require.True(t, ctrl.Snapshot().SubmitDisabled)
	require.True(t, ctrl.Snapshot().AuthDisabled)

	loggedIn.Store(true)
	require.True(t, ctrl.CheckLoginStatus(t.Context()))
	state := ctrl.Snapshot()
	require.False(t, state.SubmitDisabled)
	require.False(t, state.AuthDisabled)
	require.False(t, state.AuthMessageVisible)
	require.Equal(t, "bob", state.Username)
	require.Empty(t, ctrl.AuthMessage())
}

func TestController_CheckLoginStatus_NetworkFailureLocks(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, nil)
	ctrl := NewController(client, NewPurchaseFlow(client))

	require.False(t, ctrl.CheckLoginStatus(t.Context()))
	require.True(t, ctrl.Snapshot().SubmitDisabled)
	require.True(t, strings.HasPrefix(ctrl.AuthMessage(), "Please log in"))
}
