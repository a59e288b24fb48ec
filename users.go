package dashactyl

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

// UserManager owns the account cache and the account-level operations.
type UserManager struct {
	client *Client
	store  *store[*User]
}

func newUserManager(c *Client) *UserManager {
	return &UserManager{client: c, store: newStore[*User]()}
}

// Fetch unconditionally asks the panel for the account with the given
// numeric id and upserts the result into the cache. A refetch refreshes
// the existing *User in place, so references held elsewhere observe the
// new profile fields.
func (m *UserManager) Fetch(ctx context.Context, id int) (*User, error) {
	payload, err := m.client.request(ctx, http.MethodGet, "/api/userinfo?id="+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}

	var p userPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, errMalformed("users.Fetch", "decode user payload: "+err.Error())
	}

	return m.materialize(&p)
}

// materialize builds or refreshes the cached *User for a payload. The
// cache slot is keyed by uuid: a second fetch of the same account patches
// the existing entity rather than allocating a new slot. The relationship
// data is resolved before anything is applied, so a malformed payload
// leaves a cached entity exactly as it was.
func (m *UserManager) materialize(p *userPayload) (*User, error) {
	att := &p.Userinfo.Attributes
	if att.UUID == "" {
		return nil, errMalformed("users.Fetch", "user attributes missing from response")
	}

	u, ok := m.store.Get(att.UUID)
	if !ok {
		u = &User{client: m.client, ID: att.ID, UUID: att.UUID}
	}

	servers, err := m.client.Servers.resolve(u, att.Relationships)
	if err != nil {
		return nil, err
	}

	u.apply(att, p)
	u.servers = servers

	m.store.Upsert(u.UUID, u)
	m.client.metrics.RecordCacheSize("user", m.store.Len())
	return u, nil
}

// Get resolves a reference cache-first. Numeric references fall back to
// Fetch on a miss; opaque keys cannot be looked up remotely (the panel's
// endpoint only accepts numeric ids) and a miss is a NotFound error.
func (m *UserManager) Get(ctx context.Context, ref Ref) (*User, error) {
	if ref.Numeric() {
		if u, ok := m.store.Find(func(u *User) bool { return u.ID == ref.ID() }); ok {
			m.client.metrics.RecordCacheHit("user")
			return u, nil
		}
		m.client.metrics.RecordCacheMiss("user")
		return m.Fetch(ctx, ref.ID())
	}

	if u, ok := m.store.Match(ref.Key()); ok {
		m.client.metrics.RecordCacheHit("user")
		return u, nil
	}
	m.client.metrics.RecordCacheMiss("user")
	return nil, errNotFound("users.Get", "user not found, try a numeric id")
}

// Find scans the cache for the first user satisfying pred. It never hits
// the network.
func (m *UserManager) Find(pred func(*User) bool) (*User, bool) {
	return m.store.Find(pred)
}

// Cached returns a snapshot of every cached user.
func (m *UserManager) Cached() []*User {
	return m.store.All()
}

// Remove resolves the reference (fetching if needed for numeric ids) and
// deletes the account. The cache entry survives a failed remote delete.
func (m *UserManager) Remove(ctx context.Context, ref Ref) error {
	u, err := m.Get(ctx, ref)
	if err != nil {
		return err
	}
	return u.Remove(ctx)
}

// Evict drops a user from the cache without touching the panel.
func (m *UserManager) Evict(u *User) {
	m.evict(u)
}

func (m *UserManager) evict(u *User) {
	m.store.Delete(u.UUID)
	m.client.metrics.RecordCacheSize("user", m.store.Len())
}
