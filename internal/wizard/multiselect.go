package wizard

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotInVocabulary = errors.New("value is not one of the available options")
	ErrEmptyTag        = errors.New("tag cannot be empty")
)

// MultiSelect is a set of tags chosen from a vocabulary, optionally
// extended with free text. Selected never holds two values that differ only
// by case.
type MultiSelect struct {
	items    []string
	selected []string
	allowAdd bool
}

type Option struct {
	Value    string
	Selected bool
}

// FilterResult is the pick list for a query. AddSuggestion is set when
// nothing matches and free text is allowed.
type FilterResult struct {
	Query         string
	Matches       []Option
	AddSuggestion string
}

func NewMultiSelect(items, selected []string, allowAdd bool) *MultiSelect {
	m := &MultiSelect{items: items, allowAdd: allowAdd}
	for _, s := range selected {
		s = strings.TrimSpace(s)
		if s != "" && m.indexOf(s) < 0 {
			m.selected = append(m.selected, s)
		}
	}
	return m
}

func (m *MultiSelect) AllowsAdd() bool { return m.allowAdd }

// Selected returns the selection in display order: case-insensitive
// lexicographic, independent of the order values were picked.
func (m *MultiSelect) Selected() []string {
	out := make([]string, len(m.selected))
	copy(out, m.selected)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i]), strings.ToLower(out[j])
		if a == b {
			return out[i] < out[j]
		}
		return a < b
	})
	return out
}

func (m *MultiSelect) IsSelected(value string) bool {
	return m.indexOf(value) >= 0
}

// Toggle selects a vocabulary item or deselects a selected value.
func (m *MultiSelect) Toggle(value string) ([]string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return m.Selected(), ErrEmptyTag
	}
	if i := m.indexOf(value); i >= 0 {
		m.removeAt(i)
		return m.Selected(), nil
	}
	item, ok := m.lookup(value)
	if !ok {
		return m.Selected(), ErrNotInVocabulary
	}
	m.selected = append(m.selected, item)
	return m.Selected(), nil
}

// Add selects value, taking the vocabulary spelling when it matches an item.
// Values outside the vocabulary need allowAdd. Adding a selected value is a
// no-op.
func (m *MultiSelect) Add(value string) ([]string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return m.Selected(), ErrEmptyTag
	}
	if m.indexOf(value) >= 0 {
		return m.Selected(), nil
	}
	if item, ok := m.lookup(value); ok {
		value = item
	} else if !m.allowAdd {
		return m.Selected(), ErrNotInVocabulary
	}
	m.selected = append(m.selected, value)
	return m.Selected(), nil
}

// Remove deselects value if present.
func (m *MultiSelect) Remove(value string) []string {
	if i := m.indexOf(strings.TrimSpace(value)); i >= 0 {
		m.removeAt(i)
	}
	return m.Selected()
}

// Filter returns the vocabulary items containing query, case-insensitively,
// in vocabulary order. An empty query lists everything.
func (m *MultiSelect) Filter(query string) FilterResult {
	query = strings.TrimSpace(query)
	needle := strings.ToLower(query)

	res := FilterResult{Query: query, Matches: []Option{}}
	for _, item := range m.items {
		if strings.Contains(strings.ToLower(item), needle) {
			res.Matches = append(res.Matches, Option{Value: item, Selected: m.IsSelected(item)})
		}
	}
	if len(res.Matches) == 0 && m.allowAdd && query != "" && !m.IsSelected(query) {
		res.AddSuggestion = query
	}
	return res
}

func (m *MultiSelect) indexOf(value string) int {
	for i, s := range m.selected {
		if strings.EqualFold(s, value) {
			return i
		}
	}
	return -1
}

func (m *MultiSelect) lookup(value string) (string, bool) {
	for _, item := range m.items {
		if strings.EqualFold(item, value) {
			return item, true
		}
	}
	return "", false
}

func (m *MultiSelect) removeAt(i int) {
	m.selected = append(m.selected[:i], m.selected[i+1:]...)
}
