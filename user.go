package dashactyl

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
)

// userPayload is the shape of GET /api/userinfo responses: Pterodactyl
// user attributes wrapped in a userinfo envelope, with the panel's own
// coin balance and resource grants alongside.
type userPayload struct {
	Userinfo struct {
		Attributes userAttributes `json:"attributes"`
	} `json:"userinfo"`
	Coins   int64      `json:"coins"`
	Package *allotment `json:"package"`
	Extra   *allotment `json:"extra"`
}

type userAttributes struct {
	ID            int             `json:"id"`
	UUID          string          `json:"uuid"`
	Username      string          `json:"username"`
	Email         string          `json:"email"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	RootAdmin     bool            `json:"root_admin"`
	Language      string          `json:"language"`
	TwoFactor     *bool           `json:"2fa"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     *string         `json:"updated_at"`
	Relationships json.RawMessage `json:"relationships"`
}

// User represents a Dashactyl account. Identity (ID, UUID) is fixed at
// construction; profile fields are replaced wholesale when the account is
// refetched, on the same *User so held references stay valid.
type User struct {
	ID   int
	UUID string

	Username  string
	Email     string
	FirstName string
	LastName  string
	Admin     bool
	Language  string
	// TwoFactor defaults to false when the panel omits the flag.
	TwoFactor bool

	CreatedAt string
	// UpdatedAt is empty for accounts the panel never updated.
	UpdatedAt string

	// Resources is the allotment snapshot taken when the user was last
	// fetched (package plus extra).
	Resources Resources

	client  *Client
	servers *UserServerManager

	mu    sync.Mutex
	coins int64
	ip    string
}

// apply refreshes the mutable profile fields from a fresh payload.
func (u *User) apply(att *userAttributes, p *userPayload) {
	u.Username = att.Username
	u.Email = att.Email
	u.FirstName = att.FirstName
	u.LastName = att.LastName
	u.Admin = att.RootAdmin
	u.Language = att.Language
	u.TwoFactor = att.TwoFactor != nil && *att.TwoFactor
	u.CreatedAt = att.CreatedAt
	if att.UpdatedAt != nil {
		u.UpdatedAt = *att.UpdatedAt
	} else {
		u.UpdatedAt = ""
	}
	u.Resources = sumResources(p.Package, p.Extra)
	u.setBalance(p.Coins)
}

// Tag returns the user's display tag (first name directly followed by
// last name, the panel's convention).
func (u *User) Tag() string {
	return u.FirstName + u.LastName
}

// Coins returns the coin manager bound to this user.
func (u *User) Coins() *CoinManager {
	return &CoinManager{client: u.client, user: u}
}

// Servers returns the per-user server view resolved from the user's
// relationship data.
func (u *User) Servers() *UserServerManager {
	return u.servers
}

// IP returns the user's last known IP address, fetching it from the panel
// once and memoizing the result.
func (u *User) IP(ctx context.Context) (string, error) {
	u.mu.Lock()
	cached := u.ip
	u.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	payload, err := u.client.request(ctx, http.MethodGet, "/getip?id="+strconv.Itoa(u.ID), nil)
	if err != nil {
		return "", err
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.IP == "" {
		return "", errMalformed("GET /getip", "ip missing from response")
	}

	u.mu.Lock()
	u.ip = body.IP
	u.mu.Unlock()
	return body.IP, nil
}

// Remove deletes the account on the panel. The cached entry is evicted
// only after the panel confirms the deletion; on failure the user stays
// retrievable.
func (u *User) Remove(ctx context.Context) error {
	if _, err := u.client.request(ctx, http.MethodDelete, "/api/removeaccount/"+strconv.Itoa(u.ID), nil); err != nil {
		return err
	}

	u.client.Users.evict(u)
	return nil
}

// AddResources grants extra resources to the account. The panel does not
// expose this endpoint yet; the call always returns an Unsupported error.
func (u *User) AddResources(ctx context.Context, r Resources) error {
	return errUnsupported("user.AddResources")
}

// RemoveResources revokes resources from the account. The panel does not
// expose this endpoint yet; the call always returns an Unsupported error.
func (u *User) RemoveResources(ctx context.Context, r Resources) error {
	return errUnsupported("user.RemoveResources")
}

// SetResources replaces the account's resource allotment. The panel does
// not expose this endpoint yet; the call always returns an Unsupported
// error.
func (u *User) SetResources(ctx context.Context, r Resources) error {
	return errUnsupported("user.SetResources")
}

// Password would return the account's panel password. The panel does not
// expose this endpoint yet; the call always returns an Unsupported error.
func (u *User) Password(ctx context.Context) (string, error) {
	return "", errUnsupported("user.Password")
}

// RegenPassword would rotate the account's panel password. The panel does
// not expose this endpoint yet; the call always returns an Unsupported
// error.
func (u *User) RegenPassword(ctx context.Context) error {
	return errUnsupported("user.RegenPassword")
}

// SetPlan would move the account to a different resource plan. The panel
// does not expose this endpoint yet; the call always returns an
// Unsupported error.
func (u *User) SetPlan(ctx context.Context, plan string) error {
	return errUnsupported("user.SetPlan")
}

func (u *User) balance() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.coins
}

func (u *User) setBalance(v int64) {
	u.mu.Lock()
	u.coins = v
	u.mu.Unlock()
}
