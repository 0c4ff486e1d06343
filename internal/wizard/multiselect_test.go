package wizard_test

import (
	"testing"

	"applybrain-backend/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var languages = []string{"Go", "Python", "Rust", "TypeScript", "JavaScript"}

func TestMultiSelect_ToggleTwiceRestores(t *testing.T) {
	m := wizard.NewMultiSelect(languages, []string{"Rust"}, false)
	before := m.Selected()

	_, err := m.Toggle("Go")
	require.NoError(t, err)
	after, err := m.Toggle("Go")
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestMultiSelect_NoDuplicates(t *testing.T) {
	m := wizard.NewMultiSelect(languages, []string{"go", "Go"}, true)
	assert.Equal(t, []string{"go"}, m.Selected())

	for i := 0; i < 5; i++ {
		_, _ = m.Toggle("Python")
		_, _ = m.Add("python")
		_, _ = m.Add("PYTHON")
	}

	seen := map[string]bool{}
	for _, s := range m.Selected() {
		assert.False(t, seen[s], "duplicate %q", s)
		seen[s] = true
	}
}

func TestMultiSelect_SortedIndependentOfOrder(t *testing.T) {
	a := wizard.NewMultiSelect(languages, nil, false)
	_, _ = a.Toggle("TypeScript")
	_, _ = a.Toggle("go")
	_, _ = a.Toggle("Python")

	b := wizard.NewMultiSelect(languages, nil, false)
	_, _ = b.Toggle("Python")
	_, _ = b.Toggle("TypeScript")
	_, _ = b.Toggle("Go")

	assert.Equal(t, []string{"Go", "Python", "TypeScript"}, a.Selected())
	assert.Equal(t, a.Selected(), b.Selected())
}

func TestMultiSelect_FixedVocabulary(t *testing.T) {
	m := wizard.NewMultiSelect([]string{"On-site", "Remote", "Hybrid"}, nil, false)

	_, err := m.Toggle("Underwater")
	assert.ErrorIs(t, err, wizard.ErrNotInVocabulary)

	_, err = m.Add("Moon base")
	assert.ErrorIs(t, err, wizard.ErrNotInVocabulary)

	_, err = m.Add("  ")
	assert.ErrorIs(t, err, wizard.ErrEmptyTag)

	res := m.Filter("moon")
	assert.Empty(t, res.Matches)
	assert.Empty(t, res.AddSuggestion)
}

func TestMultiSelect_FreeText(t *testing.T) {
	m := wizard.NewMultiSelect([]string{"Bengaluru", "Pune"}, nil, true)

	res := m.Filter("Kochi")
	assert.Empty(t, res.Matches)
	assert.Equal(t, "Kochi", res.AddSuggestion)

	selected, err := m.Add("Kochi")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kochi"}, selected)

	selected, err = m.Add("pune")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kochi", "Pune"}, selected)

	assert.Equal(t, []string{"Pune"}, m.Remove("kochi"))
	assert.Equal(t, []string{"Pune"}, m.Remove("Nowhere"))
}

func TestMultiSelect_Filter(t *testing.T) {
	m := wizard.NewMultiSelect(languages, []string{"JavaScript"}, true)

	res := m.Filter("SCRIPT")
	require.Len(t, res.Matches, 2)
	assert.Equal(t, wizard.Option{Value: "TypeScript", Selected: false}, res.Matches[0])
	assert.Equal(t, wizard.Option{Value: "JavaScript", Selected: true}, res.Matches[1])
	assert.Empty(t, res.AddSuggestion)

	assert.Len(t, m.Filter("").Matches, len(languages))
}
