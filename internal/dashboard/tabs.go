package dashboard

import (
	"strings"

	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

// Tab is the active dashboard section.
type Tab string

const (
	TabOverview     Tab = "overview"
	TabContainers   Tab = "containers"
	TabVMs          Tab = "vms"
	TabStoragePools Tab = "storage-pools"
	TabNetworks     Tab = "networks"
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabOverview, TabContainers, TabVMs, TabStoragePools, TabNetworks}

var tabCategories = map[Tab]models.Category{
	TabContainers:   models.CategoryContainers,
	TabVMs:          models.CategoryVMs,
	TabStoragePools: models.CategoryStoragePools,
	TabNetworks:     models.CategoryNetworks,
}

// ParseTab maps a query value to a Tab. Category names are accepted as
// aliases; anything unknown selects the Overview.
func ParseTab(s string) Tab {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	for _, t := range Tabs {
		if string(t) == s {
			return t
		}
	}
	return TabOverview
}

// Label is the tab caption.
func (t Tab) Label() string {
	switch t {
	case TabContainers:
		return "Containers"
	case TabVMs:
		return "VMs"
	case TabStoragePools:
		return "Storage Pools"
	case TabNetworks:
		return "Networks"
	default:
		return "Overview"
	}
}

// Category returns the collection a tab displays. Overview has none.
func (t Tab) Category() (models.Category, bool) {
	c, ok := tabCategories[t]
	return c, ok
}

// EnabledCategories returns the categories whose fetch is enabled while the
// tab is active: all of them on the Overview, otherwise just the tab's own.
func EnabledCategories(t Tab) []models.Category {
	if c, ok := t.Category(); ok {
		return []models.Category{c}
	}
	return models.Categories
}
