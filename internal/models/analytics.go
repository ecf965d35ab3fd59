package models

// CleanupResult reports how many incomplete rows were removed.
type CleanupResult struct {
	Accounts int64 `json:"accounts"`
	Users    int64 `json:"users"`
}

var DiscountRates = []int{25, 30, 50}

const MaxDiscountedUsers = 10
