package dashactyl

import (
	"context"
	"encoding/json"
	"net/http"
)

// maxCouponServers bounds the server-count grant of a coupon; the panel
// rejects anything above ten.
const maxCouponServers = 10

// CouponManager creates and revokes promotional coupons. The panel has no
// coupon lookup endpoint, so the cache only ever holds coupons this
// client created; rely on the create-time handle or local bookkeeping.
type CouponManager struct {
	client *Client
	store  *store[*Coupon]
}

func newCouponManager(c *Client) *CouponManager {
	return &CouponManager{client: c, store: newStore[*Coupon]()}
}

// CreateCouponOptions are the parameters for CouponManager.Create. A
// zero-valued field is simply absent from the grant; at least one field
// must be set.
type CreateCouponOptions struct {
	Code    string
	Coins   int64
	RAM     int64
	Disk    int64
	CPU     int64
	Servers int
}

// Create registers a coupon with the panel. All amounts are validated
// before any network call; on remote failure nothing is cached.
func (m *CouponManager) Create(ctx context.Context, opts CreateCouponOptions) (*Coupon, error) {
	const op = "coupons.Create"

	for name, v := range map[string]int64{"coins": opts.Coins, "ram": opts.RAM, "disk": opts.Disk, "cpu": opts.CPU} {
		if v < 0 || v > MaxAmount {
			return nil, errValidation(op, "%s must be between 0 and %d", name, MaxAmount)
		}
	}
	if opts.Servers < 0 || opts.Servers > maxCouponServers {
		return nil, errValidation(op, "servers must be between 0 and %d", maxCouponServers)
	}
	if opts.Code == "" && opts.Coins == 0 && opts.RAM == 0 && opts.Disk == 0 && opts.CPU == 0 && opts.Servers == 0 {
		return nil, errValidation(op, "no valid parameters provided")
	}

	body := map[string]any{
		"code":    opts.Code,
		"coins":   opts.Coins,
		"ram":     opts.RAM,
		"disk":    opts.Disk,
		"cpu":     opts.CPU,
		"servers": opts.Servers,
	}
	payload, err := m.client.request(ctx, http.MethodPost, "/createcoupon", body)
	if err != nil {
		return nil, err
	}

	coupon := &Coupon{}
	if err := json.Unmarshal(payload, coupon); err != nil {
		return nil, errMalformed(op, "decode coupon: "+err.Error())
	}
	if coupon.Code == "" {
		// Some panel builds only echo the generated code on creation;
		// fall back to the requested one.
		if opts.Code == "" {
			return nil, errMalformed(op, "coupon code missing from response")
		}
		coupon.Code = opts.Code
	}

	m.store.Upsert(coupon.Code, coupon)
	m.client.metrics.RecordCacheSize("coupon", m.store.Len())
	return coupon, nil
}

// Revoke invalidates a coupon code. The cached entry is evicted only
// after the panel confirms; a failed revoke leaves the coupon cached.
func (m *CouponManager) Revoke(ctx context.Context, code string) error {
	const op = "coupons.Revoke"

	if code == "" {
		return errValidation(op, "code must not be empty")
	}

	if _, err := m.client.request(ctx, http.MethodPost, "/revokecoupon", map[string]any{"code": code}); err != nil {
		return err
	}

	m.store.Delete(code)
	m.client.metrics.RecordCacheSize("coupon", m.store.Len())
	return nil
}

// Fetch would look a coupon up on the panel, but the panel does not
// expose such an endpoint; the call always returns an Unsupported error.
func (m *CouponManager) Fetch(ctx context.Context, code string) (*Coupon, error) {
	return nil, errUnsupported("coupons.Fetch")
}

// Get returns a coupon created by this client, from the local cache only.
func (m *CouponManager) Get(code string) (*Coupon, bool) {
	c, ok := m.store.Get(code)
	if ok {
		m.client.metrics.RecordCacheHit("coupon")
	} else {
		m.client.metrics.RecordCacheMiss("coupon")
	}
	return c, ok
}

// Cached returns a snapshot of the coupons this client created.
func (m *CouponManager) Cached() []*Coupon {
	return m.store.All()
}
