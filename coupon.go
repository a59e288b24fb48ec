package dashactyl

// Coupon is a redeemable grant of coins and/or resources, identified by
// its code. Amounts the panel omitted decode as zero.
type Coupon struct {
	Code    string `json:"code"`
	Coins   int64  `json:"coins"`
	RAM     int64  `json:"ram"`
	Disk    int64  `json:"disk"`
	CPU     int64  `json:"cpu"`
	Servers int    `json:"servers"`
}
