package dashboard

import "github.com/rflorenc/lxd-resource-dashboard/internal/models"

// Overview empty-state copy.
const (
	EmptyStateTitle   = "No LXD resources discovered yet"
	EmptyStateMessage = "Run a discovery scan against your LXD hosts to populate this dashboard."
)

// View is everything needed to render one tab.
type View struct {
	Tab            Tab          `json:"tab"`
	Tabs           []TabLink    `json:"tabs"`
	Summary        Summary      `json:"summary"`
	ShowEmptyState bool         `json:"show_empty_state"`
	ShowSummary    bool         `json:"show_summary"`
	Loading        bool         `json:"loading"`
	Table          *Table       `json:"table,omitempty"`
	Errors         []FetchError `json:"errors,omitempty"`
}

// TabLink is one entry of the tab bar.
type TabLink struct {
	Tab    Tab    `json:"tab"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Summary holds the per-category counts of the filtered collections.
type Summary struct {
	Containers   int           `json:"containers"`
	VMs          int           `json:"vms"`
	StoragePools int           `json:"storage_pools"`
	Networks     int           `json:"networks"`
	Total        int           `json:"total"`
	Cards        []SummaryCard `json:"cards"`
}

// SummaryCard is one tile of the Overview grid.
type SummaryCard struct {
	Category models.Category `json:"category"`
	Tab      Tab             `json:"tab"`
	Label    string          `json:"label"`
	Count    int             `json:"count"`
	Loading  bool            `json:"loading"`
}

// Table is a category listing.
type Table struct {
	Category     models.Category `json:"category"`
	Title        string          `json:"title"`
	Columns      []string        `json:"columns"`
	Rows         [][]string      `json:"rows"`
	Empty        bool            `json:"empty"`
	EmptyMessage string          `json:"empty_message,omitempty"`
}

// FetchError reports a category whose last fetch failed.
type FetchError struct {
	Category models.Category `json:"category"`
	Label    string          `json:"label"`
	Message  string          `json:"message"`
}

// Build derives the view for a tab from per-category fetch states. Categories
// missing from states were never fetched and count as empty and idle.
func Build(tab Tab, states map[models.Category]models.FetchState) View {
	v := View{Tab: tab}
	for _, t := range Tabs {
		v.Tabs = append(v.Tabs, TabLink{Tab: t, Label: t.Label(), Active: t == tab})
	}

	filtered := make(map[models.Category][]models.Resource, len(models.Categories))
	anyPending := false
	for _, c := range models.Categories {
		s := states[c]
		items := FilterCategory(c, s.Items)
		filtered[c] = items
		if s.Pending() {
			anyPending = true
		}
		v.Summary.Cards = append(v.Summary.Cards, SummaryCard{
			Category: c,
			Tab:      TabFor(c),
			Label:    c.Label(),
			Count:    len(items),
			Loading:  s.Pending(),
		})
	}
	v.Summary.Containers = len(filtered[models.CategoryContainers])
	v.Summary.VMs = len(filtered[models.CategoryVMs])
	v.Summary.StoragePools = len(filtered[models.CategoryStoragePools])
	v.Summary.Networks = len(filtered[models.CategoryNetworks])
	v.Summary.Total = v.Summary.Containers + v.Summary.VMs + v.Summary.StoragePools + v.Summary.Networks

	for _, c := range EnabledCategories(tab) {
		if s := states[c]; s.Status == models.FetchFailed {
			v.Errors = append(v.Errors, FetchError{Category: c, Label: c.Label(), Message: s.Error})
		}
	}

	c, ok := tab.Category()
	if !ok {
		v.ShowEmptyState = v.Summary.Total == 0 && !anyPending
		v.ShowSummary = !v.ShowEmptyState
		return v
	}

	v.Loading = states[c].Pending()
	v.Table = buildTable(c, filtered[c], v.Loading)
	return v
}

func buildTable(c models.Category, items []models.Resource, loading bool) *Table {
	def := categories[c]
	t := &Table{
		Category: c,
		Title:    c.Label(),
		Rows:     make([][]string, 0, len(items)),
	}
	for _, col := range def.columns {
		t.Columns = append(t.Columns, col.Header)
	}
	if len(items) == 0 && !loading {
		t.Empty = true
		t.EmptyMessage = EmptyMessage(c)
		return t
	}
	for _, r := range items {
		row := make([]string, len(def.columns))
		for i, col := range def.columns {
			row[i] = col.Value(r)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// TabFor returns the tab that lists a category.
func TabFor(c models.Category) Tab {
	for t, tc := range tabCategories {
		if tc == c {
			return t
		}
	}
	return TabOverview
}
