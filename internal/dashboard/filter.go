package dashboard

import (
	"context"

	"github.com/rflorenc/lxd-resource-dashboard/internal/inventory"
	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

// entityTypeCompute is the inventory entity type LXD instances are filed under.
const entityTypeCompute = "compute"

// Predicate selects resources from a fetched collection.
type Predicate func(models.Resource) bool

// SubTypeIs keeps resources with the given sub_type.
func SubTypeIs(subType string) Predicate {
	return func(r models.Resource) bool { return r.SubType == subType }
}

// TaggedWith keeps resources carrying the given tag.
func TaggedWith(tag string) Predicate {
	return func(r models.Resource) bool { return r.HasTag(tag) }
}

// Filter returns the resources kept by the predicate in source order. The
// input is not modified and the result is never nil.
func Filter(items []models.Resource, keep Predicate) []models.Resource {
	out := make([]models.Resource, 0, len(items))
	for _, r := range items {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// category bundles how a collection is fetched, filtered and shown.
type category struct {
	fetch        func(ctx context.Context, src inventory.Source) ([]models.Resource, error)
	keep         Predicate
	emptyMessage string
	columns      []Column
}

var categories = map[models.Category]category{
	models.CategoryContainers: {
		fetch: func(ctx context.Context, src inventory.Source) ([]models.Resource, error) {
			return src.GetEntities(ctx, inventory.EntityQuery{EntityType: entityTypeCompute, SubType: inventory.SubTypeContainer})
		},
		keep:         SubTypeIs(inventory.SubTypeContainer),
		emptyMessage: "No LXD containers found",
		columns:      instanceColumns,
	},
	models.CategoryVMs: {
		fetch: func(ctx context.Context, src inventory.Source) ([]models.Resource, error) {
			return src.GetEntities(ctx, inventory.EntityQuery{EntityType: entityTypeCompute, SubType: inventory.SubTypeVM})
		},
		keep:         SubTypeIs(inventory.SubTypeVM),
		emptyMessage: "No LXD virtual machines found",
		columns:      instanceColumns,
	},
	models.CategoryStoragePools: {
		fetch: func(ctx context.Context, src inventory.Source) ([]models.Resource, error) {
			return src.GetDataStores(ctx, inventory.DataStoreQuery{StorageType: inventory.TagLXD})
		},
		keep:         TaggedWith(inventory.TagLXD),
		emptyMessage: "No LXD storage pools found",
		columns:      storagePoolColumns,
	},
	models.CategoryNetworks: {
		fetch: func(ctx context.Context, src inventory.Source) ([]models.Resource, error) {
			return src.ListNetworks(ctx, inventory.NetworkQuery{NetworkType: inventory.TagLXD})
		},
		keep:         TaggedWith(inventory.TagLXD),
		emptyMessage: "No LXD networks found",
		columns:      networkColumns,
	},
}

// FilterCategory applies the category's predicate to a fetched collection.
func FilterCategory(c models.Category, items []models.Resource) []models.Resource {
	def, ok := categories[c]
	if !ok {
		return []models.Resource{}
	}
	return Filter(items, def.keep)
}

// EmptyMessage is the empty-state text of a category table.
func EmptyMessage(c models.Category) string {
	return categories[c].emptyMessage
}
