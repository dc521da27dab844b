package dashboard

import (
	"time"

	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

const missingValue = "-"

// Column is one fixed table column.
type Column struct {
	Header string
	Value  func(models.Resource) string
}

var (
	colName    = Column{"Name", func(r models.Resource) string { return orMissing(r.Name) }}
	colID      = Column{"ID", func(r models.Resource) string { return orMissing(r.ID) }}
	colOrg     = Column{"Organization", func(r models.Resource) string { return orMissing(r.OrganizationID) }}
	colCreated = Column{"Created", func(r models.Resource) string { return formatTime(r.CreatedAt) }}

	instanceColumns = []Column{
		colName,
		colID,
		colOrg,
		{"Region", func(r models.Resource) string { return orMissing(firstNonEmpty(r.Region, r.LocationRegion)) }},
		colCreated,
	}
	storagePoolColumns = []Column{
		colName,
		{"Storage Type", func(r models.Resource) string { return orMissing(r.StorageType) }},
		{"Region", func(r models.Resource) string { return orMissing(r.LocationRegion) }},
		colCreated,
	}
	networkColumns = []Column{
		colName,
		{"Network Type", func(r models.Resource) string { return orMissing(r.NetworkType) }},
		{"Region", func(r models.Resource) string { return orMissing(r.Region) }},
		colCreated,
	}
)

func orMissing(s string) string {
	if s == "" {
		return missingValue
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return missingValue
	}
	return t.UTC().Format("2006-01-02 15:04")
}
