package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

// collectionEnvelope covers both shapes the inventory API answers with:
//
//	{"items": [...]}  (entities)
//	{"data":  [...]}  (datastores, networks on older deployments)
type collectionEnvelope struct {
	Items json.RawMessage `json:"items"`
	Data  json.RawMessage `json:"data"`
}

// ParseCollection decodes a collection response body. "items" wins over "data"
// when both are present; a body with neither yields an empty collection. A bare
// JSON array is accepted as the collection itself. Records that cannot be
// decoded are dropped; use ParseCollectionReport to learn how many.
func ParseCollection(body []byte) ([]models.Resource, error) {
	items, _, err := ParseCollectionReport(body)
	return items, err
}

// ParseCollectionReport is ParseCollection that also returns the number of
// records that were skipped because they did not decode.
func ParseCollectionReport(body []byte) ([]models.Resource, int, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []models.Resource{}, 0, nil
	}
	if trimmed[0] == '[' {
		return decodeItems(trimmed)
	}

	var env collectionEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, 0, fmt.Errorf("parsing collection: %w", err)
	}
	switch {
	case present(env.Items):
		return decodeItems(env.Items)
	case present(env.Data):
		return decodeItems(env.Data)
	default:
		return []models.Resource{}, 0, nil
	}
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeItems(raw json.RawMessage) ([]models.Resource, int, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, 0, fmt.Errorf("parsing collection items: %w", err)
	}
	items := make([]models.Resource, 0, len(records))
	skipped := 0
	for _, rec := range records {
		var r models.Resource
		if err := json.Unmarshal(rec, &r); err != nil {
			skipped++
			continue
		}
		items = append(items, r)
	}
	return items, skipped, nil
}
