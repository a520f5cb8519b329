package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertFormula(t *testing.T) {
	t.Parallel()

	require.Equal(t, "H₂SO₄", InsertFormula("H2SO4"))
	require.Equal(t, "C₁₂H₂₂O₁₁", InsertFormula("C12H22O11"))
	require.Equal(t, "NaCl", InsertFormula("NaCl"))
	require.Equal(t, "₀₁₂₃₄₅₆₇₈₉", InsertFormula("0123456789"))
	require.Equal(t, "CH₃OH", InsertFormula("CH₃OH"))
	require.Empty(t, InsertFormula(""))
}

func TestInsertFormula_PreservesLength(t *testing.T) {
	t.Parallel()

	for _, formula := range QuickPickFormulas {
		require.Equal(t, len([]rune(formula)), len([]rune(InsertFormula(formula))), formula)
	}
}

func TestInsertAt(t *testing.T) {
	t.Parallel()

	text, cursor := InsertAt("500g Sodium Chloride ()", 22, "NaCl")
	require.Equal(t, "500g Sodium Chloride (NaCl)", text)
	require.Equal(t, 26, cursor)

	text, cursor = InsertAt("Sulfuric Acid ", 100, "H2SO4")
	require.Equal(t, "Sulfuric Acid H₂SO₄", text)
	require.Equal(t, 19, cursor)

	text, cursor = InsertAt("x", -3, "KMnO4")
	require.Equal(t, "KMnO₄x", text)
	require.Equal(t, 5, cursor)
}
