package dashactyl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// ServerManager owns the manager-wide server cache: every server the
// client has seen, whether from a create call or from a user's embedded
// relationship data. Per-user views (UserServerManager) share the same
// *Server entries, so both scopes stay consistent across create and
// delete.
type ServerManager struct {
	client *Client
	store  *store[*Server]
}

func newServerManager(c *Client) *ServerManager {
	return &ServerManager{client: c, store: newStore[*Server]()}
}

// Get looks a server up in the cache. There is no reliable single-server
// fetch endpoint, so a miss is a miss; servers enter the cache via Create
// or a user fetch.
func (m *ServerManager) Get(ref Ref) (*Server, bool) {
	var (
		s  *Server
		ok bool
	)
	if ref.Numeric() {
		s, ok = m.store.Find(func(s *Server) bool { return s.ID == ref.ID() })
	} else {
		s, ok = m.store.Match(ref.Key())
	}

	if ok {
		m.client.metrics.RecordCacheHit("server")
	} else {
		m.client.metrics.RecordCacheMiss("server")
	}
	return s, ok
}

// Find scans the cache for the first server satisfying pred.
func (m *ServerManager) Find(pred func(*Server) bool) (*Server, bool) {
	return m.store.Find(pred)
}

// Cached returns a snapshot of every cached server.
func (m *ServerManager) Cached() []*Server {
	return m.store.All()
}

// CreateServerOptions are the parameters for ServerManager.Create. RAM
// and disk are in MB, CPU in percent; Egg and Location are panel ids.
type CreateServerOptions struct {
	Name     string
	RAM      int64
	Disk     int64
	CPU      int64
	Egg      string
	Location string
}

// Create provisions a new server. Parameters are validated before any
// network call; on remote failure no cache entry is created. On success
// the new server lands in the manager-wide cache and, when the owner is
// already cached, in that user's view as well.
func (m *ServerManager) Create(ctx context.Context, opts CreateServerOptions) (*Server, error) {
	const op = "servers.Create"

	if opts.Name == "" {
		return nil, errValidation(op, "name must not be empty")
	}
	for name, v := range map[string]int64{"ram": opts.RAM, "disk": opts.Disk, "cpu": opts.CPU} {
		if v < 1 || v > MaxAmount {
			return nil, errValidation(op, "%s must be between 1 and %d", name, MaxAmount)
		}
	}
	if opts.Egg == "" || opts.Location == "" {
		return nil, errValidation(op, "egg and location must not be empty")
	}

	q := url.Values{}
	q.Set("name", opts.Name)
	q.Set("ram", strconv.FormatInt(opts.RAM, 10))
	q.Set("disk", strconv.FormatInt(opts.Disk, 10))
	q.Set("cpu", strconv.FormatInt(opts.CPU, 10))
	q.Set("egg", opts.Egg)
	q.Set("location", opts.Location)

	payload, err := m.client.request(ctx, http.MethodGet, "/create?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var p serverPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Attributes.UUID == "" {
		return nil, errMalformed(op, "server attributes missing from response")
	}

	s, err := m.materialize(&p.Attributes)
	if err != nil {
		return nil, err
	}

	if owner, ok := m.client.Users.Find(func(u *User) bool { return u.ID == s.UserID }); ok && owner.servers != nil {
		owner.servers.store.Upsert(s.UUID, s)
	}
	return s, nil
}

// Delete removes a server by reference. A cached entity is deleted
// through its owner-scoped endpoint; a bare identifier with no cached
// entity gets a best-effort delete by id alone, reporting whatever the
// panel answers.
func (m *ServerManager) Delete(ctx context.Context, ref Ref) error {
	if s, ok := m.Get(ref); ok {
		return s.Delete(ctx)
	}

	_, err := m.client.request(ctx, http.MethodDelete, "/api/deleteserver/"+url.PathEscape(ref.String()), nil)
	return err
}

// resolve extracts the embedded server list from a user payload's
// relationship data and builds the per-user view. Absent relationship
// structure is a contract mismatch with the panel, not a normal miss.
func (m *ServerManager) resolve(owner *User, raw json.RawMessage) (*UserServerManager, error) {
	const op = "servers.resolve"

	if len(raw) == 0 || string(raw) == "null" {
		return nil, errMalformed(op, "relationships missing from user payload")
	}

	var rel struct {
		Servers *struct {
			Data []serverPayload `json:"data"`
		} `json:"servers"`
	}
	if err := json.Unmarshal(raw, &rel); err != nil {
		return nil, errMalformed(op, "decode relationships: "+err.Error())
	}
	if rel.Servers == nil {
		return nil, errMalformed(op, "server relationship missing from user payload")
	}

	view := &UserServerManager{client: m.client, user: owner, store: newStore[*Server]()}
	for i := range rel.Servers.Data {
		s, err := m.materialize(&rel.Servers.Data[i].Attributes)
		if err != nil {
			return nil, err
		}
		view.store.Upsert(s.UUID, s)
	}
	return view, nil
}

// materialize builds or refreshes the cached *Server for fresh
// attributes, keyed by uuid with in-place patching like the user cache.
func (m *ServerManager) materialize(att *serverAttributes) (*Server, error) {
	if att.UUID == "" {
		return nil, errMalformed("servers", "server attributes missing uuid")
	}

	s, ok := m.store.Get(att.UUID)
	if !ok {
		s = &Server{client: m.client, ID: att.ID, UUID: att.UUID, Identifier: att.Identifier}
	}
	s.apply(att)

	m.store.Upsert(s.UUID, s)
	m.client.metrics.RecordCacheSize("server", m.store.Len())
	return s, nil
}

func (m *ServerManager) evict(s *Server) {
	m.store.Delete(s.UUID)
	m.client.metrics.RecordCacheSize("server", m.store.Len())

	if owner, ok := m.client.Users.Find(func(u *User) bool { return u.ID == s.UserID }); ok && owner.servers != nil {
		owner.servers.store.Delete(s.UUID)
	}
}

// UserServerManager is the per-user server view, resolved from the user
// payload's embedded relationship data at construction time. Entries are
// shared with the manager-wide cache.
type UserServerManager struct {
	client *Client
	user   *User
	store  *store[*Server]
}

// Owner returns the user this view belongs to.
func (m *UserServerManager) Owner() *User {
	return m.user
}

// Get looks a server up in this user's view.
func (m *UserServerManager) Get(ref Ref) (*Server, bool) {
	if ref.Numeric() {
		return m.store.Find(func(s *Server) bool { return s.ID == ref.ID() })
	}
	return m.store.Match(ref.Key())
}

// Find scans the view for the first server satisfying pred.
func (m *UserServerManager) Find(pred func(*Server) bool) (*Server, bool) {
	return m.store.Find(pred)
}

// Cached returns a snapshot of the user's servers.
func (m *UserServerManager) Cached() []*Server {
	return m.store.All()
}

// Len reports how many servers the view holds.
func (m *UserServerManager) Len() int {
	return m.store.Len()
}
