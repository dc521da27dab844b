package inventory

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

// Source is the read-only inventory contract the dashboard depends on.
type Source interface {
	GetEntities(ctx context.Context, q EntityQuery) ([]models.Resource, error)
	GetDataStores(ctx context.Context, q DataStoreQuery) ([]models.Resource, error)
	ListNetworks(ctx context.Context, q NetworkQuery) ([]models.Resource, error)
	Ping(ctx context.Context) error
	Describe() string
}

// EntityQuery filters getEntities.
type EntityQuery struct {
	EntityType string
	SubType    string
}

func (q EntityQuery) values() url.Values {
	v := url.Values{}
	if q.EntityType != "" {
		v.Set("entity_type", q.EntityType)
	}
	if q.SubType != "" {
		v.Set("sub_type", q.SubType)
	}
	return v
}

// DataStoreQuery filters getDataStores.
type DataStoreQuery struct {
	StorageType string
}

func (q DataStoreQuery) values() url.Values {
	v := url.Values{}
	if q.StorageType != "" {
		v.Set("storage_type", q.StorageType)
	}
	return v
}

// NetworkQuery filters listNetworks.
type NetworkQuery struct {
	NetworkType string
}

func (q NetworkQuery) values() url.Values {
	v := url.Values{}
	if q.NetworkType != "" {
		v.Set("network_type", q.NetworkType)
	}
	return v
}

// NewSource creates the Source implementation for a connection.
func NewSource(conn *models.Connection, timeout time.Duration, logger *zap.Logger) (Source, error) {
	switch conn.Type {
	case "", "inventory":
		return NewClient(conn, timeout, logger), nil
	case "incus", "lxd":
		src, err := ConnectIncus(conn.Socket, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown source type %q", conn.Type)
	}
}
