package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

func newTestClient(ts *httptest.Server) *Client {
	return &Client{
		baseURL:    ts.URL,
		token:      "secret",
		httpClient: ts.Client(),
		log:        zap.NewNop(),
	}
}

func TestClient_Get_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	body, err := c.Get(context.Background(), "/api/v1/health", nil)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(body) != `{"status":"ok"}` {
		t.Errorf("body = %q, want {\"status\":\"ok\"}", string(body))
	}
}

func TestClient_Get_AuthHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer secret")
		}
		w.Write([]byte("{}"))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if _, err := c.Get(context.Background(), "/test", nil); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
}

func TestClient_Get_NoTokenNoHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
		w.Write([]byte("{}"))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	c.token = ""
	if _, err := c.Get(context.Background(), "/test", nil); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
}

func TestClient_Get_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid token"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.Get(context.Background(), "/api/v1/entities", nil)
	if err == nil {
		t.Fatal("Get should return error for 401")
	}
	if !strings.Contains(err.Error(), "HTTP 401") {
		t.Errorf("error = %q, want it to mention HTTP 401", err)
	}
}

func TestClient_Get_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	c := newTestClient(ts)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Get(ctx, "/slow", nil); err == nil {
		t.Fatal("Get should fail once the context expires")
	}
}

func TestClient_GetEntities_QueryParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/entities" {
			t.Errorf("path = %s, want /api/v1/entities", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("entity_type") != "compute" || q.Get("sub_type") != "lxd_container" {
			t.Errorf("query = %v", q)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"id": "c1", "name": "web", "sub_type": "lxd_container"},
				map[string]interface{}{"id": "c2", "name": "db", "sub_type": "lxd_container"},
			},
		})
	}))
	defer ts.Close()

	c := newTestClient(ts)
	items, err := c.GetEntities(context.Background(), EntityQuery{EntityType: "compute", SubType: "lxd_container"})
	if err != nil {
		t.Fatalf("GetEntities returned error: %v", err)
	}
	if len(items) != 2 || items[0].Name != "web" || items[1].ID != "c2" {
		t.Errorf("items = %+v", items)
	}
}

func TestClient_GetDataStores_DataEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("storage_type") != "lxd" {
			t.Errorf("storage_type = %q, want lxd", r.URL.Query().Get("storage_type"))
		}
		w.Write([]byte(`{"data":[{"id":"p1","name":"default","tags":["lxd"],"storage_type":"zfs"}]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	items, err := c.GetDataStores(context.Background(), DataStoreQuery{StorageType: "lxd"})
	if err != nil {
		t.Fatalf("GetDataStores returned error: %v", err)
	}
	if len(items) != 1 || items[0].StorageType != "zfs" || !items[0].HasTag("lxd") {
		t.Errorf("items = %+v", items)
	}
}

func TestClient_ListNetworks_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": "not a list"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if _, err := c.ListNetworks(context.Background(), NetworkQuery{NetworkType: "lxd"}); err == nil {
		t.Fatal("ListNetworks should fail on a malformed collection")
	}
}

func TestClient_Ping(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/health" {
			t.Errorf("path = %s, want /api/v1/health", r.URL.Path)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		expect string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"empty", "", 5, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.input, tc.maxLen)
			if got != tc.expect {
				t.Errorf("truncate(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.expect)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	conn := &models.Connection{
		Scheme:   "https",
		Host:     "example.com",
		Port:     443,
		Token:    "tok",
		Insecure: true,
	}
	c := NewClient(conn, 5*time.Second, nil)
	if c.baseURL != "https://example.com:443" {
		t.Errorf("baseURL = %q, want https://example.com:443", c.baseURL)
	}
	if c.token != "tok" {
		t.Error("token not set correctly")
	}
	if c.httpClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", c.httpClient.Timeout)
	}
	if c.Describe() != "inventory https://example.com:443" {
		t.Errorf("Describe() = %q", c.Describe())
	}
}

func TestNewSource_UnknownType(t *testing.T) {
	_, err := NewSource(&models.Connection{Type: "vsphere"}, time.Second, zap.NewNop())
	if err == nil {
		t.Fatal("NewSource should reject unknown types")
	}
}

func TestNewSource_Inventory(t *testing.T) {
	src, err := NewSource(&models.Connection{Type: "inventory", Scheme: "http", Host: "localhost", Port: 80}, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSource returned error: %v", err)
	}
	if _, ok := src.(*Client); !ok {
		t.Errorf("NewSource(inventory) = %T, want *Client", src)
	}
}

func TestClient_GetEntities_NumericIDsKeepCollection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[
			{"id":1,"name":"web","sub_type":"lxd_container","organization_id":3,"created_at":"2024-01-15T10:30:00.123456"},
			{"id":2,"name":"db","sub_type":"lxd_container"},
			{"id":3,"name":42,"sub_type":"lxd_container"}
		]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	items, err := c.GetEntities(context.Background(), EntityQuery{EntityType: "compute", SubType: "lxd_container"})
	if err != nil {
		t.Fatalf("GetEntities returned error: %v", err)
	}
	if len(items) != 2 || items[0].ID != "1" || items[1].ID != "2" {
		t.Errorf("items = %+v", items)
	}
	if items[0].CreatedAt == nil {
		t.Error("zone-less created_at should parse")
	}
}
