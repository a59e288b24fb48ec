package dashactyl

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient starts an httptest server for handler and returns a
// client pointed at it. The server is closed with the test.
func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(server.URL, "test-key", opts...)
	if !client.IsValid() {
		t.Fatalf("test client configuration invalid: %v", client.ValidationError())
	}
	return client
}

// serverAttrJSON renders the panel's server attribute shape.
func serverAttrJSON(id int, uid, identifier, name string, owner int, ram, disk, cpu int64) string {
	return fmt.Sprintf(`{
		"id": %d, "uuid": %q, "identifier": %q, "name": %q,
		"description": "", "status": null, "suspended": false,
		"limits": {"ram": %d, "swap": 0, "disk": %d, "io": 500, "cpu": %d},
		"feature_limits": {"databases": 1, "allocations": 1, "backups": 1},
		"user": %d, "node": 1, "allocation": 3, "nest": 1, "egg": 7,
		"container": {"image": "ghcr.io/pterodactyl/yolks:java_17"},
		"created_at": "2022-01-10T05:00:00+00:00", "updated_at": null
	}`, id, uid, identifier, name, ram, disk, cpu, owner)
}

// userInfoJSON renders a GET /api/userinfo payload embedding the given
// server attribute documents.
func userInfoJSON(id int, uid, username, email string, coins int64, serverAtts ...string) string {
	servers := make([]string, len(serverAtts))
	for i, att := range serverAtts {
		servers[i] = `{"attributes":` + att + `}`
	}
	return fmt.Sprintf(`{
		"status": "success",
		"userinfo": {"attributes": {
			"id": %d, "uuid": %q, "username": %q, "email": %q,
			"first_name": "Test", "last_name": "User", "root_admin": false,
			"language": "en", "2fa": false,
			"created_at": "2022-01-08T12:00:00+00:00", "updated_at": null,
			"relationships": {"servers": {"data": [%s]}}
		}},
		"coins": %d,
		"package": {"ram": 4096, "disk": 10240, "cpu": 200, "servers": 2},
		"extra": {"ram": 1024, "disk": 0, "cpu": 0, "servers": 0}
	}`, id, uid, username, email, strings.Join(servers, ","), coins)
}

func writeJSON(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("failed to write response: %v", err)
	}
}
