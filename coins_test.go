package dashactyl

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
)

// coinTestClient wires a client with one fetched user whose handler records
// every balance the panel was asked to set.
func coinTestClient(t *testing.T, coins int64, fail *atomic.Bool) (*Client, *User, *[]int64) {
	t.Helper()

	var mu sync.Mutex
	var sent []int64

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/userinfo":
			writeJSON(t, w, userInfoJSON(5, "530d7e97", "wumpus", "wumpus@example.com", coins))
		case "/api/setcoins":
			var body struct {
				ID     string `json:"id"`
				Amount int64  `json:"amount"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decoding setcoins body: %v", err)
			}
			if body.ID != "wumpus" {
				t.Errorf("expected username as id, got %q", body.ID)
			}
			if fail != nil && fail.Load() {
				writeJSON(t, w, `{"status":"failed","code":500,"message":"database error"}`)
				return
			}
			mu.Lock()
			sent = append(sent, body.Amount)
			mu.Unlock()
			writeJSON(t, w, `{"status":"success"}`)
		}
	}))

	user, err := client.Users.Fetch(context.Background(), 5)
	if err != nil {
		t.Fatalf("Fetch() returned error: %v", err)
	}
	return client, user, &sent
}

func TestCoinsSet(t *testing.T) {
	_, user, sent := coinTestClient(t, 250, nil)
	coins := user.Coins()

	if err := coins.Set(context.Background(), 1000); err != nil {
		t.Fatalf("Set() returned error: %v", err)
	}
	if coins.Balance() != 1000 {
		t.Errorf("expected balance 1000, got %d", coins.Balance())
	}

	if err := coins.Set(context.Background(), MaxAmount); err != nil {
		t.Fatalf("Set(MaxAmount) returned error: %v", err)
	}
	if coins.Balance() != MaxAmount {
		t.Errorf("expected balance %d, got %d", MaxAmount, coins.Balance())
	}

	if got := *sent; len(got) != 2 || got[0] != 1000 || got[1] != MaxAmount {
		t.Errorf("unexpected remote balances %v", got)
	}
}

func TestCoinsAddComputesAbsolute(t *testing.T) {
	_, user, sent := coinTestClient(t, 100, nil)

	if err := user.Coins().Add(context.Background(), 50); err != nil {
		t.Fatalf("Add() returned error: %v", err)
	}
	if user.Coins().Balance() != 150 {
		t.Errorf("expected balance 150, got %d", user.Coins().Balance())
	}
	if got := *sent; len(got) != 1 || got[0] != 150 {
		t.Errorf("expected absolute balance 150 on the wire, got %v", got)
	}
}

func TestCoinsRemoveClampsAtZero(t *testing.T) {
	_, user, sent := coinTestClient(t, 30, nil)

	if err := user.Coins().Remove(context.Background(), 100); err != nil {
		t.Fatalf("Remove() returned error: %v", err)
	}
	if user.Coins().Balance() != 0 {
		t.Errorf("expected clamped balance 0, got %d", user.Coins().Balance())
	}
	if got := *sent; len(got) != 1 || got[0] != 0 {
		t.Errorf("expected clamped balance 0 on the wire, got %v", got)
	}
}

func TestCoinsAmountBounds(t *testing.T) {
	var calls atomic.Int64
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/setcoins" {
			calls.Add(1)
			return
		}
		writeJSON(t, w, userInfoJSON(5, "530d7e97", "wumpus", "wumpus@example.com", 100))
	}))

	user, err := client.Users.Fetch(context.Background(), 5)
	if err != nil {
		t.Fatalf("Fetch() returned error: %v", err)
	}
	coins := user.Coins()
	ctx := context.Background()

	for _, amount := range []int64{0, -1, MaxAmount + 1} {
		if err := coins.Add(ctx, amount); !IsValidation(err) {
			t.Errorf("Add(%d): expected validation error, got %v", amount, err)
		}
		if err := coins.Remove(ctx, amount); !IsValidation(err) {
			t.Errorf("Remove(%d): expected validation error, got %v", amount, err)
		}
		if err := coins.Set(ctx, amount); !IsValidation(err) {
			t.Errorf("Set(%d): expected validation error, got %v", amount, err)
		}
	}

	// Adding within bounds can still overflow the balance.
	if err := coins.Set(ctx, MaxAmount); err != nil {
		t.Fatalf("Set(MaxAmount) returned error: %v", err)
	}
	if err := coins.Add(ctx, 1); !IsValidation(err) {
		t.Errorf("expected overflow rejection, got %v", err)
	}
	if coins.Balance() != MaxAmount {
		t.Errorf("rejected add must not change the balance, got %d", coins.Balance())
	}

	if calls.Load() != 1 {
		t.Errorf("expected exactly one network call (the valid Set), got %d", calls.Load())
	}
}

func TestCoinsRemoteFailureKeepsBalance(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	_, user, _ := coinTestClient(t, 250, &fail)

	if err := user.Coins().Add(context.Background(), 50); !IsRemote(err) {
		t.Fatalf("expected remote failure, got %v", err)
	}
	if user.Coins().Balance() != 250 {
		t.Errorf("failed mutation must leave the balance unchanged, got %d", user.Coins().Balance())
	}
}

func TestCoinsConcurrentAddsSerialize(t *testing.T) {
	_, user, sent := coinTestClient(t, 0, nil)
	coins := user.Coins()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if err := coins.Add(context.Background(), 5); err != nil {
				t.Errorf("Add() returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if coins.Balance() != workers*5 {
		t.Errorf("expected balance %d, got %d", workers*5, coins.Balance())
	}
	if len(*sent) != workers {
		t.Errorf("expected %d remote calls, got %d", workers, len(*sent))
	}
}
