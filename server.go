package dashactyl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"
)

// serverPayload wraps Pterodactyl-style server attributes the way the
// panel embeds them in create responses and user relationship data.
type serverPayload struct {
	Attributes serverAttributes `json:"attributes"`
}

type serverAttributes struct {
	ID            int             `json:"id"`
	UUID          string          `json:"uuid"`
	Identifier    string          `json:"identifier"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Status        *string         `json:"status"`
	Suspended     bool            `json:"suspended"`
	Limits        Limits          `json:"limits"`
	FeatureLimits FeatureLimits   `json:"feature_limits"`
	User          int             `json:"user"`
	Node          int             `json:"node"`
	Allocation    int             `json:"allocation"`
	Nest          int             `json:"nest"`
	Egg           int             `json:"egg"`
	Container     json.RawMessage `json:"container"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     *string         `json:"updated_at"`
}

// Limits are a server's resource limits in the panel's units (RAM and
// disk in MB, CPU in percent).
type Limits struct {
	RAM  int64 `json:"ram"`
	Swap int64 `json:"swap"`
	Disk int64 `json:"disk"`
	IO   int64 `json:"io"`
	CPU  int64 `json:"cpu"`
}

// FeatureLimits are a server's feature allotments.
type FeatureLimits struct {
	Databases   int `json:"databases"`
	Allocations int `json:"allocations"`
	Backups     int `json:"backups"`
}

// Server represents a hosted server. The owning user is recorded as the
// raw foreign id (UserID) and lazily upgraded to a *User handle on first
// Owner call; the handle is a back reference, not an ownership claim.
type Server struct {
	ID         int
	UUID       string
	Identifier string

	Name        string
	Description string
	// Status is empty when the panel reports none.
	Status    string
	Suspended bool

	Limits        Limits
	FeatureLimits FeatureLimits

	// UserID is the owning user's numeric id as reported by the panel.
	UserID     int
	Node       int
	Allocation int
	Nest       int
	Egg        int
	Container  json.RawMessage

	CreatedAt string
	// UpdatedAt is empty for servers the panel never updated.
	UpdatedAt string

	client *Client

	mu    sync.Mutex
	owner *User
}

func (s *Server) apply(att *serverAttributes) {
	s.Name = att.Name
	s.Description = att.Description
	if att.Status != nil {
		s.Status = *att.Status
	} else {
		s.Status = ""
	}
	s.Suspended = att.Suspended
	s.Limits = att.Limits
	s.FeatureLimits = att.FeatureLimits
	s.UserID = att.User
	s.Node = att.Node
	s.Allocation = att.Allocation
	s.Nest = att.Nest
	s.Egg = att.Egg
	s.Container = att.Container
	s.CreatedAt = att.CreatedAt
	if att.UpdatedAt != nil {
		s.UpdatedAt = *att.UpdatedAt
	} else {
		s.UpdatedAt = ""
	}
}

// Owner resolves the owning user from the user cache, memoizing the
// handle for subsequent calls. The miss is soft: when the owner is not
// cached it returns (nil, false) and the caller may fetch the user by
// UserID and retry.
func (s *Server) Owner() (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner != nil {
		return s.owner, true
	}

	u, ok := s.client.Users.Find(func(u *User) bool { return u.ID == s.UserID })
	if !ok {
		return nil, false
	}
	s.owner = u
	return u, true
}

// ModifyServerOptions carries a partial limits update. Nil fields are
// preserved, not zeroed.
type ModifyServerOptions struct {
	RAM  *int64
	Disk *int64
	CPU  *int64
}

// Int64 returns a pointer to v, for use in ModifyServerOptions.
func Int64(v int64) *int64 {
	return &v
}

// Modify updates the server's RAM, disk or CPU limits. Provided values
// are bounds-checked before any network call; on remote failure the local
// limits are left untouched. When the panel returns an updated attribute
// snapshot the whole entity is refreshed from it, otherwise the confirmed
// values are applied.
func (s *Server) Modify(ctx context.Context, opts ModifyServerOptions) error {
	const op = "server.Modify"

	for name, v := range map[string]*int64{"ram": opts.RAM, "disk": opts.Disk, "cpu": opts.CPU} {
		if v != nil && (*v < 1 || *v > MaxAmount) {
			return errValidation(op, "%s must be between 1 and %d", name, MaxAmount)
		}
	}
	if opts.RAM == nil && opts.Disk == nil && opts.CPU == nil {
		return errValidation(op, "no limits provided")
	}

	unlock := s.client.locks.Lock("server:" + s.UUID)
	defer unlock()

	next := s.Limits
	if opts.RAM != nil {
		next.RAM = *opts.RAM
	}
	if opts.Disk != nil {
		next.Disk = *opts.Disk
	}
	if opts.CPU != nil {
		next.CPU = *opts.CPU
	}

	q := url.Values{}
	q.Set("id", strconv.Itoa(s.ID))
	q.Set("ram", strconv.FormatInt(next.RAM, 10))
	q.Set("disk", strconv.FormatInt(next.Disk, 10))
	q.Set("cpu", strconv.FormatInt(next.CPU, 10))

	payload, err := s.client.request(ctx, http.MethodGet, "/modify?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	var p serverPayload
	if json.Unmarshal(payload, &p) == nil && p.Attributes.UUID != "" {
		s.apply(&p.Attributes)
		return nil
	}

	s.Limits = next
	return nil
}

// SetState would start, stop or kill the server. The panel does not
// expose this endpoint yet; the call always returns an Unsupported error.
func (s *Server) SetState(ctx context.Context, state string) error {
	return errUnsupported("server.SetState")
}

// Delete removes the server on the panel. The delete endpoint is
// owner-scoped, so the owner handle is resolved first (warming the
// memoized reference); the raw owner id from the payload addresses the
// call either way. Both cache entries (the manager-wide one and the
// owner's) are evicted only after the panel confirms.
func (s *Server) Delete(ctx context.Context) error {
	s.Owner()

	path := "/api/deleteserver/" + strconv.Itoa(s.UserID) + "/" + strconv.Itoa(s.ID)
	if _, err := s.client.request(ctx, http.MethodDelete, path, nil); err != nil {
		return err
	}

	s.client.Servers.evict(s)
	return nil
}
