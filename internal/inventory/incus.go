package inventory

import (
	"context"
	"fmt"
	"time"

	incuscli "github.com/lxc/incus/client"
	"github.com/lxc/incus/shared/api"
	"go.uber.org/zap"

	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

// Sub-types and tags produced for LXD/Incus resources. They match what the
// inventory service records for discovered LXD hosts.
const (
	SubTypeContainer = "lxd_container"
	SubTypeVM        = "lxd_vm"
	TagLXD           = "lxd"
)

// IncusSource reads resources straight from a local LXD/Incus daemon.
type IncusSource struct {
	c      incuscli.InstanceServer
	socket string
	log    *zap.Logger
}

// ConnectIncus connects over the UNIX socket. An empty path uses the default
// socket location.
func ConnectIncus(socket string, logger *zap.Logger) (*IncusSource, error) {
	c, err := incuscli.ConnectIncusUnix(socket, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to incus: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncusSource{c: c, socket: socket, log: logger}, nil
}

func (s *IncusSource) GetEntities(ctx context.Context, q EntityQuery) ([]models.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	instanceType := api.InstanceTypeAny
	switch q.SubType {
	case SubTypeContainer:
		instanceType = api.InstanceTypeContainer
	case SubTypeVM:
		instanceType = api.InstanceTypeVM
	}
	instances, err := s.c.GetInstances(instanceType)
	if err != nil {
		return nil, fmt.Errorf("listing instances: %w", err)
	}
	out := make([]models.Resource, 0, len(instances))
	for _, inst := range instances {
		out = append(out, instanceToResource(inst))
	}
	s.log.Debug("incus instances listed", zap.String("type", string(instanceType)), zap.Int("count", len(out)))
	return out, nil
}

func (s *IncusSource) GetDataStores(ctx context.Context, q DataStoreQuery) ([]models.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pools, err := s.c.GetStoragePools()
	if err != nil {
		return nil, fmt.Errorf("listing storage pools: %w", err)
	}
	out := make([]models.Resource, 0, len(pools))
	for _, p := range pools {
		// "lxd" selects every pool; anything else narrows to one driver.
		if q.StorageType != "" && q.StorageType != TagLXD && q.StorageType != p.Driver {
			continue
		}
		out = append(out, poolToResource(p))
	}
	return out, nil
}

func (s *IncusSource) ListNetworks(ctx context.Context, q NetworkQuery) ([]models.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	networks, err := s.c.GetNetworks()
	if err != nil {
		return nil, fmt.Errorf("listing networks: %w", err)
	}
	out := make([]models.Resource, 0, len(networks))
	for _, n := range networks {
		if !n.Managed {
			continue
		}
		if q.NetworkType != "" && q.NetworkType != TagLXD && q.NetworkType != n.Type {
			continue
		}
		out = append(out, networkToResource(n))
	}
	return out, nil
}

func (s *IncusSource) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := s.c.GetServer(); err != nil {
		return fmt.Errorf("incus server: %w", err)
	}
	return nil
}

func (s *IncusSource) Describe() string {
	if s.socket == "" {
		return "incus (local socket)"
	}
	return "incus " + s.socket
}

func instanceToResource(inst api.Instance) models.Resource {
	subType := SubTypeContainer
	if inst.Type == string(api.InstanceTypeVM) {
		subType = SubTypeVM
	}
	project := inst.Project
	if project == "" {
		project = "default"
	}
	return models.Resource{
		ID:             project + "/" + inst.Name,
		Name:           inst.Name,
		SubType:        subType,
		OrganizationID: project,
		CreatedAt:      timePtr(inst.CreatedAt),
		Tags:           []string{TagLXD, "project:" + project, "status:" + inst.Status},
		Region:         inst.Location,
		LocationRegion: inst.Location,
	}
}

func poolToResource(p api.StoragePool) models.Resource {
	return models.Resource{
		ID:             "pool/" + p.Name,
		Name:           p.Name,
		SubType:        "lxd_storage_pool",
		Tags:           []string{TagLXD, "driver:" + p.Driver},
		StorageType:    p.Driver,
		LocationRegion: firstLocation(p.Locations),
	}
}

func networkToResource(n api.Network) models.Resource {
	return models.Resource{
		ID:          "network/" + n.Name,
		Name:        n.Name,
		SubType:     "lxd_network",
		Tags:        []string{TagLXD, "type:" + n.Type},
		NetworkType: n.Type,
		Region:      firstLocation(n.Locations),
	}
}

func firstLocation(locations []string) string {
	for _, l := range locations {
		if l != "" && l != "none" {
			return l
		}
	}
	return ""
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
