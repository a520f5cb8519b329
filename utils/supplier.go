package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Supplier describes a chemical vendor known to the assistant
type Supplier struct {
	Code        string
	Name        string
	OrderPrefix string
	MinDays     int
	MaxDays     int
}

const (
	defaultOrderPrefix = "ORD"
	defaultMinDays     = 3
	defaultMaxDays     = 7
)

// Suppliers lists the vendors in the order they are offered
var Suppliers = []Supplier{
	{Code: "sigma", Name: "Sigma-Aldrich", OrderPrefix: "SIG", MinDays: 3, MaxDays: 5},
	{Code: "fisher", Name: "Fisher Scientific", OrderPrefix: "FSH", MinDays: 2, MaxDays: 4},
	{Code: "vwr", Name: "VWR International", OrderPrefix: "VWR", MinDays: 2, MaxDays: 5},
	{Code: "alfa", Name: "Alfa Aesar", OrderPrefix: "ALF", MinDays: 3, MaxDays: 6},
	{Code: "acros", Name: "Acros Organics", OrderPrefix: "ACR", MinDays: 4, MaxDays: 7},
	{Code: "tci", Name: "TCI Chemicals", OrderPrefix: "TCI", MinDays: 5, MaxDays: 10},
	{Code: "jt", Name: "J.T.Baker", OrderPrefix: "JTB", MinDays: 3, MaxDays: 5},
	{Code: "aladdin", Name: "Aladdin", OrderPrefix: "ALD", MinDays: 1, MaxDays: 3},
	{Code: "macklin", Name: "Macklin", OrderPrefix: "MCK", MinDays: 1, MaxDays: 3},
	{Code: "bideph", Name: "Bide Pharmatech", OrderPrefix: "BDP", MinDays: 2, MaxDays: 4},
}

// LookupSupplier finds a supplier by code (case-insensitive)
func LookupSupplier(code string) (Supplier, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, s := range Suppliers {
		if s.Code == code {
			return s, true
		}
	}
	return Supplier{}, false
}

// SupplierName returns the display name for a supplier code.
// Unknown codes are title-cased.
func SupplierName(code string) string {
	if s, ok := LookupSupplier(code); ok {
		return s.Name
	}
	return cases.Title(language.English).String(strings.TrimSpace(code))
}

// GenerateOrderID builds a fallback order ID: <PREFIX>-<YYMMDD>-<5 digits>.
// Used only when the purchase response has no order_id. A nil rng uses the shared source.
func GenerateOrderID(supplierCode string, now time.Time, rng *rand.Rand) string {
	prefix := defaultOrderPrefix
	if s, ok := LookupSupplier(supplierCode); ok {
		prefix = s.OrderPrefix
	}
	randomNum := 10000 + intn(rng, 90000)
	return fmt.Sprintf("%s-%s-%d", prefix, now.UTC().Format("060102"), randomNum)
}

// EstimatedDeliveryDays picks a day count inside the supplier's delivery range
// (inclusive). Unknown suppliers use 3-7 days.
func EstimatedDeliveryDays(supplierCode string, rng *rand.Rand) int {
	minDays, maxDays := defaultMinDays, defaultMaxDays
	if s, ok := LookupSupplier(supplierCode); ok {
		minDays, maxDays = s.MinDays, s.MaxDays
	}
	return minDays + intn(rng, maxDays-minDays+1)
}

// intn draws from rng, or from the shared source when rng is nil
func intn(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.Intn(n)
	}
	return rng.Intn(n)
}

// FormatBusinessDays formats a delivery estimate, e.g. "4 business days"
func FormatBusinessDays(days int) string {
	return fmt.Sprintf("%d business days", days)
}
