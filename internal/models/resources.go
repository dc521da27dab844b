package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Resource is a discovered infrastructure record as returned by the inventory API.
// Optional fields are omitted by the backend when unknown.
type Resource struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	SubType        string     `json:"sub_type"`
	OrganizationID string     `json:"organization_id,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	StorageType    string     `json:"storage_type,omitempty"`
	LocationRegion string     `json:"location_region,omitempty"`
	NetworkType    string     `json:"network_type,omitempty"`
	Region         string     `json:"region,omitempty"`
}

// UnmarshalJSON accepts string or numeric ids and loosely formatted
// timestamps. A created_at that matches no known layout is left nil.
func (r *Resource) UnmarshalJSON(b []byte) error {
	type plain Resource
	aux := struct {
		*plain
		ID             json.RawMessage `json:"id"`
		OrganizationID json.RawMessage `json:"organization_id"`
		CreatedAt      json.RawMessage `json:"created_at"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.ID = scalarText(aux.ID)
	r.OrganizationID = scalarText(aux.OrganizationID)
	r.CreatedAt = parseTimestamp(aux.CreatedAt)
	return nil
}

// scalarText renders a JSON string, number or bool as text. Anything else
// (null, objects, arrays) yields "".
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	default:
		return string(raw)
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02",
}

// parseTimestamp reads a created_at value. Zone-less layouts are taken as UTC
// and a bare number as unix seconds.
func parseTimestamp(raw json.RawMessage) *time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] != '"' {
		secs, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return nil
		}
		t := time.Unix(0, int64(secs*float64(time.Second))).UTC()
		return &t
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// HasTag reports whether the resource carries the given tag (exact match).
func (r Resource) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Category identifies one of the resource collections shown on the dashboard.
type Category string

const (
	CategoryContainers   Category = "containers"
	CategoryVMs          Category = "vms"
	CategoryStoragePools Category = "storage_pools"
	CategoryNetworks     Category = "networks"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryContainers,
	CategoryVMs,
	CategoryStoragePools,
	CategoryNetworks,
}

// Label returns the human-readable name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryContainers:
		return "Containers"
	case CategoryVMs:
		return "Virtual Machines"
	case CategoryStoragePools:
		return "Storage Pools"
	case CategoryNetworks:
		return "Networks"
	default:
		return string(c)
	}
}

// ParseCategory validates a category name from a URL or flag.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}
