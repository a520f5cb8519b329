package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chem-purchase-assistant/app"
	"chem-purchase-assistant/config"
	"chem-purchase-assistant/repository"
)

type stubRenderer struct{}

func (stubRenderer) PrintPDF(_ context.Context, _ string) ([]byte, error) {
	return []byte("%PDF-1.7 stub"), nil
}

func (stubRenderer) Screenshot(_ context.Context, _, _ string) ([]byte, error) {
	return []byte("png-stub"), nil
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newCommand(strings.NewReader(stdin), &stdout, &stderr)
	err := cmd.Run(t.Context(), append([]string{"chemcart"}, args...))
	return stdout.String(), stderr.String(), err
}

func newBackend(t *testing.T) string {
	t.Helper()

	a, err := app.Initialize(t.Context(), config.Config{SessionHashKey: []byte(strings.Repeat("c", 32))}, nil, app.Dependencies{
		Users:      repository.NewMemoryUserRepository(),
		Renderer:   stubRenderer{},
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestSuppliersCommand(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "", "suppliers")
	require.NoError(t, err)
	require.Contains(t, out, "sigma")
	require.Contains(t, out, "Sigma-Aldrich")
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "", "parse", "--text", "500g Sodium Chloride (H2O)\n\n1L Methanol")
	require.NoError(t, err)
	require.Equal(t, "1. 500g Sodium Chloride (H₂O)\n2. 1L Methanol\n", out)

	out, _, err = run(t, "Acetone\n", "parse", "--file", "-")
	require.NoError(t, err)
	require.Equal(t, "1. Acetone\n", out)

	_, _, err = run(t, "", "parse")
	require.Error(t, err)
}

func TestFormulaCommand(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "", "formula", "--text", "Sulfuric acid ", "H2SO4")
	require.NoError(t, err)
	require.Equal(t, "Sulfuric acid H₂SO₄\n", out)

	_, _, err = run(t, "", "formula")
	require.Error(t, err)
}

func TestBuyCommand(t *testing.T) {
	t.Parallel()

	url := newBackend(t)
	out, _, err := run(t, "", "--url", url, "register", "--username", "carol", "--password", "pipette9")
	require.NoError(t, err)
	require.Equal(t, "Registered carol\n", out)

	exportPath := filepath.Join(t.TempDir(), "summary.pdf")
	out, progress, err := run(t, "",
		"--url", url, "buy",
		"--username", "carol", "--password", "pipette9",
		"--supplier", "fisher",
		"--text", "500g Sodium Chloride (NaCl)\n1L Methanol",
		"--no-delay",
		"--export", "pdf", "--output", exportPath,
	)
	require.NoError(t, err)
	require.Contains(t, out, "System:\n")
	require.Contains(t, out, "Fisher Scientific")
	require.Contains(t, out, "Order ID: ORD-SIM-")
	require.Contains(t, out, "Saved "+exportPath)
	require.Contains(t, progress, "100% Order Complete!")

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7 stub", string(data))
}

func TestBuyCommand_NotLoggedIn(t *testing.T) {
	t.Parallel()

	url := newBackend(t)
	_, notices, err := run(t, "", "--url", url, "buy", "--text", "1L Methanol", "--no-delay")
	require.EqualError(t, err, "Please log in to use the purchasing assistant.")
	require.Contains(t, notices, "[error] Please log in to start a purchase.")
}
