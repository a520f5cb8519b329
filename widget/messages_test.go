package widget

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"chem-purchase-assistant/summary"
)

func TestTextMessageSink_StripsMarkup(t *testing.T) {
	t.Parallel()

	html, err := summary.Render(summary.Data{
		SupplierName: "Fisher Scientific",
		OrderDate:    "2026-10-16 (Friday)",
		Items:        []string{"500g NaCl & KCl"},
		TotalPrice:   "9.99",
		OrderID:      "FSH-1",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewTextMessageSink(&buf).AddMessage("assistant", "System", html))

	out := buf.String()
	require.NotContains(t, out, "<")
	require.Contains(t, out, "System:\n")
	require.Contains(t, out, "Fisher Scientific")
	require.Contains(t, out, "500g NaCl & KCl")
	require.Contains(t, out, "Order ID: FSH-1")
	require.NotContains(t, out, "\n\n")
}

func TestTextMessageSink_Unavailable(t *testing.T) {
	t.Parallel()

	var sink *TextMessageSink
	require.ErrorIs(t, sink.AddMessage("assistant", "System", "<p>x</p>"), ErrSinkUnavailable)
}

func TestWriterNotifier(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n := NewWriterNotifier(&buf)
	n.Notify("Please enter the chemical list!", NotifyError)
	n.Notify("Order placed! ID: X. Total: ¥1.00", NotifySuccess)

	require.Equal(t, "[error] Please enter the chemical list!\n[success] Order placed! ID: X. Total: ¥1.00\n", buf.String())
}
