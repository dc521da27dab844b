package models

import (
	"fmt"
	"sync"
	"time"
)

// Connection describes how the dashboard reaches its inventory source.
type Connection struct {
	Name     string `json:"name"`
	Type     string `json:"type"`   // "inventory" or "incus"
	Scheme   string `json:"scheme"` // "http" or "https"
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Token    string `json:"-"`
	Insecure bool   `json:"insecure"` // skip TLS verification
	CACert   string `json:"-"`        // PEM bundle for private CAs
	Socket   string `json:"socket,omitempty"`
}

// BaseURL returns the full base URL for this connection.
func (c *Connection) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", c.Scheme, c.Host, c.Port)
}

// MaskedToken returns a placeholder for display when a token is configured.
func (c *Connection) MaskedToken() string {
	if c.Token == "" {
		return ""
	}
	return "••••••••"
}

// ApplyDefaults fills in type, scheme and port when left unset.
func (c *Connection) ApplyDefaults() {
	if c.Type == "" {
		c.Type = "inventory"
	}
	if c.Scheme == "" {
		c.Scheme = "https"
	}
	if c.Port == 0 {
		if c.Scheme == "https" {
			c.Port = 443
		} else {
			c.Port = 80
		}
	}
}

// Health is a snapshot of the last reachability check.
type Health struct {
	Status      string     `json:"status"` // "unknown", "ok", "error"
	Error       string     `json:"error,omitempty"`
	LastChecked *time.Time `json:"last_checked,omitempty"`
}

// HealthTracker holds the latest reachability result for a source. Safe for
// concurrent use.
type HealthTracker struct {
	mu          sync.RWMutex
	pingStatus  string
	pingError   string
	lastChecked *time.Time
}

// SetHealth records the outcome of a reachability check.
func (c *HealthTracker) SetHealth(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	c.lastChecked = &now
	if err != nil {
		c.pingStatus = "error"
		c.pingError = err.Error()
		return
	}
	c.pingStatus = "ok"
	c.pingError = ""
}

// Health returns the last recorded reachability state.
func (c *HealthTracker) Health() Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	status := c.pingStatus
	if status == "" {
		status = "unknown"
	}
	return Health{Status: status, Error: c.pingError, LastChecked: c.lastChecked}
}
