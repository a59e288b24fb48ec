package dashactyl

import (
	"context"
	"net/http"
)

// MaxAmount is the panel's inclusive upper bound for coin balances and
// resource amounts.
const MaxAmount int64 = 999_999_999_999_999

// CoinManager mutates one user's coin balance. The panel only offers an
// absolute "set balance" endpoint, so add and remove compute the new
// balance locally; to avoid lost updates, each mutation holds the user's
// identity lock across its read-compute-write sequence. Mutations on
// different users proceed in parallel.
type CoinManager struct {
	client *Client
	user   *User
}

// Balance returns the locally tracked balance, as of the user's last
// fetch or confirmed mutation.
func (m *CoinManager) Balance() int64 {
	return m.user.balance()
}

// Add credits amount coins. The amount is validated before any network
// call; on remote failure the local balance is unchanged.
func (m *CoinManager) Add(ctx context.Context, amount int64) error {
	const op = "coins.Add"

	if err := validAmount(op, amount); err != nil {
		return err
	}

	unlock := m.client.locks.Lock("coins:" + m.user.UUID)
	defer unlock()

	next := m.user.balance() + amount
	if next > MaxAmount {
		return errValidation(op, "balance would exceed %d", MaxAmount)
	}
	return m.setRemote(ctx, next)
}

// Remove debits amount coins, clamping the result at zero before it is
// sent; the balance never goes negative.
func (m *CoinManager) Remove(ctx context.Context, amount int64) error {
	const op = "coins.Remove"

	if err := validAmount(op, amount); err != nil {
		return err
	}

	unlock := m.client.locks.Lock("coins:" + m.user.UUID)
	defer unlock()

	next := m.user.balance() - amount
	if next < 0 {
		next = 0
	}
	return m.setRemote(ctx, next)
}

// Set assigns the balance directly.
func (m *CoinManager) Set(ctx context.Context, amount int64) error {
	const op = "coins.Set"

	if err := validAmount(op, amount); err != nil {
		return err
	}

	unlock := m.client.locks.Lock("coins:" + m.user.UUID)
	defer unlock()

	return m.setRemote(ctx, amount)
}

// setRemote pushes an absolute balance to the panel and applies it
// locally only after the panel confirms. The panel keys the request by
// username.
func (m *CoinManager) setRemote(ctx context.Context, amount int64) error {
	body := map[string]any{"id": m.user.Username, "amount": amount}
	if _, err := m.client.request(ctx, http.MethodPost, "/api/setcoins", body); err != nil {
		return err
	}

	m.user.setBalance(amount)
	return nil
}

func validAmount(op string, amount int64) error {
	if amount < 1 || amount > MaxAmount {
		return errValidation(op, "amount must be between 1 and %d", MaxAmount)
	}
	return nil
}
