package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// client is a thin wrapper over the gateway's admin HTTP API.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// call issues one request and decodes the JSON response into out (if non-nil).
func (c *client) call(method, path string, out interface{}) error {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, payload.Error)
		}
		return fmt.Errorf("unexpected response: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func runStatus(c *client) error {
	var status struct {
		Status        string            `json:"status"`
		UptimeSeconds int64             `json:"uptime_seconds"`
		GoVersion     string            `json:"go_version"`
		CPUPercent    float64           `json:"cpu_percent"`
		RAMPercent    float64           `json:"ram_percent"`
		CacheEntries  int64             `json:"cache_entries"`
		CacheSizeMB   float64           `json:"cache_size_mb"`
		Breakers      map[string]string `json:"breakers"`
		Backends      map[string]bool   `json:"backends"`
	}
	if err := c.call(http.MethodGet, "/api/system/status", &status); err != nil {
		return err
	}

	fmt.Println("Gateway Status")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("  Status:        %s\n", status.Status)
	fmt.Printf("  Uptime:        %s\n", (time.Duration(status.UptimeSeconds) * time.Second).String())
	fmt.Printf("  Go version:    %s\n", status.GoVersion)
	fmt.Printf("  CPU:           %.1f%%\n", status.CPUPercent)
	fmt.Printf("  RAM:           %.1f%%\n", status.RAMPercent)
	fmt.Printf("  Cache entries: %d (%.2f MB)\n", status.CacheEntries, status.CacheSizeMB)

	if len(status.Backends) > 0 {
		fmt.Println("\nBackends:")
		for _, name := range sortedKeys(status.Backends) {
			verdict := "healthy"
			if !status.Backends[name] {
				verdict = "DOWN"
			}
			fmt.Printf("  %-20s %s\n", name, verdict)
		}
	}
	return nil
}

func runBreakers(c *client) error {
	var payload struct {
		Breakers map[string]string `json:"breakers"`
	}
	if err := c.call(http.MethodGet, "/api/admin/breakers", &payload); err != nil {
		return err
	}

	if len(payload.Breakers) == 0 {
		fmt.Println("No breakers created yet")
		return nil
	}

	names := make([]string, 0, len(payload.Breakers))
	for name := range payload.Breakers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("  %-20s %s\n", name, payload.Breakers[name])
	}
	return nil
}

func runInvalidate(c *client, accountID string) error {
	if err := c.call(http.MethodDelete, "/api/admin/cache/"+accountID, nil); err != nil {
		return err
	}
	fmt.Printf("Invalidated cache entry for %s\n", accountID)
	return nil
}

func runInvalidateAll(c *client) error {
	if err := c.call(http.MethodDelete, "/api/admin/cache", nil); err != nil {
		return err
	}
	fmt.Println("Cache fully invalidated")
	return nil
}

func runBackup(c *client) error {
	fmt.Println("Triggering backup...")
	if err := c.call(http.MethodPost, "/api/admin/backup", nil); err != nil {
		return err
	}
	fmt.Println("Backup completed")
	return nil
}

func runBackups(c *client) error {
	var payload struct {
		Backups []struct {
			Filename  string    `json:"filename"`
			Timestamp time.Time `json:"timestamp"`
			SizeBytes int64     `json:"size_bytes"`
			AgeHours  int64     `json:"age_hours"`
		} `json:"backups"`
	}
	if err := c.call(http.MethodGet, "/api/admin/backups", &payload); err != nil {
		return err
	}

	if len(payload.Backups) == 0 {
		fmt.Println("No backups stored")
		return nil
	}

	for _, b := range payload.Backups {
		fmt.Printf("  %-45s %8.2f MB  %dh old\n", b.Filename, float64(b.SizeBytes)/1024/1024, b.AgeHours)
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
