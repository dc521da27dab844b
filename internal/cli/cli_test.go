package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rflorenc/lxd-resource-dashboard/internal/dashboard"
	"github.com/rflorenc/lxd-resource-dashboard/internal/inventory"
	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

func useFakeSource(t *testing.T, src *inventory.FakeSource) {
	t.Helper()
	prev := openSource
	openSource = func(*models.Connection, time.Duration, *zap.Logger) (inventory.Source, error) {
		return src, nil
	}
	t.Cleanup(func() { openSource = prev })
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	_, err := cmd.ExecuteC()
	return out.String(), errOut.String(), err
}

func TestShow_OverviewEmpty(t *testing.T) {
	useFakeSource(t, inventory.NewFake())
	out, _, err := run(t, "show", "--host", "inventory.local", "--log-level", "error")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, dashboard.EmptyStateTitle) {
		t.Errorf("output = %q, want empty-state text", out)
	}
}

func TestShow_OverviewSummary(t *testing.T) {
	src := inventory.NewFake()
	src.Entities[inventory.SubTypeVM] = []models.Resource{{ID: "v1", Name: "win", SubType: inventory.SubTypeVM}}
	src.Networks = []models.Resource{{ID: "n1", Name: "lxdbr0", Tags: []string{"lxd"}}}
	useFakeSource(t, src)

	out, _, err := run(t, "show", "--host", "inventory.local", "--log-level", "error")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "CATEGORY") || !strings.Contains(out, "Virtual Machines") {
		t.Fatalf("missing summary table: %q", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if last := strings.Fields(lines[len(lines)-1]); len(last) != 2 || last[0] != "Total" || last[1] != "2" {
		t.Errorf("total line = %q", lines[len(lines)-1])
	}
}

func TestShow_ContainersTable(t *testing.T) {
	src := inventory.NewFake()
	src.Entities[inventory.SubTypeContainer] = []models.Resource{
		{ID: "c1", Name: "web", SubType: inventory.SubTypeContainer},
		{ID: "c2", Name: "db", SubType: inventory.SubTypeContainer},
	}
	useFakeSource(t, src)

	out, _, err := run(t, "show", "containers", "--host", "inventory.local", "--log-level", "error")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "NAME") {
		t.Fatalf("table = %q, want header plus two rows", out)
	}
	if !strings.HasPrefix(lines[1], "web") || !strings.HasPrefix(lines[2], "db") {
		t.Errorf("rows out of source order: %q", out)
	}
	if src.Calls("GetDataStores") != 0 {
		t.Error("containers tab should not fetch storage pools")
	}
}

func TestShow_VMsEmptyJSON(t *testing.T) {
	useFakeSource(t, inventory.NewFake())
	out, _, err := run(t, "show", "vms", "-o", "json", "--host", "inventory.local", "--log-level", "error")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var v dashboard.View
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if v.Table == nil || !v.Table.Empty || v.Table.EmptyMessage != "No LXD virtual machines found" {
		t.Errorf("view = %+v", v)
	}
}

func TestShow_FetchErrorWarns(t *testing.T) {
	src := inventory.NewFake()
	src.NetworksErr = errors.New("HTTP 503")
	useFakeSource(t, src)

	_, errOut, err := run(t, "show", "networks", "--host", "inventory.local", "--log-level", "error")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut, "failed to load networks: HTTP 503") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestShow_BadOutput(t *testing.T) {
	useFakeSource(t, inventory.NewFake())
	if _, _, err := run(t, "show", "-o", "yaml", "--host", "inventory.local"); err == nil {
		t.Fatal("expected error for unsupported output")
	}
}

func TestShow_InvalidConfig(t *testing.T) {
	useFakeSource(t, inventory.NewFake())
	_, _, err := run(t, "show")
	if err == nil || !strings.Contains(err.Error(), "source.host") {
		t.Fatalf("err = %v, want missing host", err)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "lxd-dashboard dev") {
		t.Errorf("version output = %q", out)
	}
}
