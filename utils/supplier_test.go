package utils

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chem-purchase-assistant/models"
)

func TestGenerateOrderID(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(7))
	pattern := regexp.MustCompile(`^([A-Z]{3})-(\d{6})-(\d{5})$`)

	cases := map[string]string{
		"sigma":   "SIG",
		"fisher":  "FSH",
		"bideph":  "BDP",
		"SIGMA":   "SIG",
		"unknown": "ORD",
		"":        "ORD",
	}
	for code, prefix := range cases {
		id := GenerateOrderID(code, now, rng)
		m := pattern.FindStringSubmatch(id)
		require.NotNil(t, m, "unexpected id %q", id)
		require.Equal(t, prefix, m[1])
		require.Equal(t, "261016", m[2])
	}
}

func TestEstimatedDeliveryDays(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	for _, s := range Suppliers {
		seen := map[int]bool{}
		for i := 0; i < 500; i++ {
			days := EstimatedDeliveryDays(s.Code, rng)
			require.GreaterOrEqual(t, days, s.MinDays, s.Code)
			require.LessOrEqual(t, days, s.MaxDays, s.Code)
			seen[days] = true
		}
		require.Len(t, seen, s.MaxDays-s.MinDays+1, "every day in range should be reachable for %s", s.Code)
	}

	for i := 0; i < 200; i++ {
		days := EstimatedDeliveryDays("nobody", rng)
		require.GreaterOrEqual(t, days, 3)
		require.LessOrEqual(t, days, 7)
	}
}

func TestSupplierName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Sigma-Aldrich", SupplierName("sigma"))
	require.Equal(t, "J.T.Baker", SupplierName(" JT "))
	require.Equal(t, "Merck", SupplierName("merck"))
}

func TestFormatters(t *testing.T) {
	t.Parallel()

	require.Equal(t, "¥12.50", FormatYuan(12.5))
	require.Equal(t, "12.50", FormatAmount(models.NewAmount(12.5)))
	require.Equal(t, "about 30", FormatAmount(&models.Amount{Text: "about 30"}))
	require.Equal(t, "0.00", FormatAmount(nil))
	require.Equal(t, 10.35, RoundCents(10.349))
	require.Equal(t, "2026-10-16 (Friday)", FormatOrderDate(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "4 business days", FormatBusinessDays(4))
}
