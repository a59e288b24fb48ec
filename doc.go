// Package dashactyl is a client library for the administrative HTTP API of
// the Dashactyl hosting panel:
//
//   - Typed entities for users, servers, coupons and resource allotments
//   - Identity-keyed entity caches with get-or-fetch semantics
//   - Lazy resolution of cross references (a server's owner is stored as a
//     raw id and upgraded to a *User handle on first access)
//   - Mutation consistency: cached state changes only after the panel
//     confirms the mutation, never optimistically
//   - Per-identity serialization of read-modify-write mutations (coins)
//   - Prometheus metrics and lightweight structured debug logging, both
//     opt-in
//
// Design goals:
//   - Small surface area: functional options configure everything
//   - Safe concurrent use of a single *Client instance (entity fields
//     are snapshots; read them after the refreshing call returns)
//   - Remote failures are values: branch on (*Error).Kind and StatusCode
//   - No internal retries: every call is one-shot and cancellable
//
// Typical usage:
//
//	client := dashactyl.New("https://dash.example.com", apiKey,
//	    dashactyl.WithTimeout(10*time.Second),
//	    dashactyl.WithMetrics(),
//	)
//	user, err := client.Users.Fetch(ctx, 7)
//	if err != nil {
//	    // *Error carries the panel status code and message
//	}
//	fmt.Println(user.Username, user.Coins().Balance())
//
// The panel owns all real state; this library is a pull-only client. The
// library avoids opinionated logging: provide a Logger (e.g. via
// WithSimpleLogger) and enable debug flags selectively for insight
// without noise.
package dashactyl
