// AngelaMos | 2026
// entity.go

package client

import (
	"time"
)

const (
	TierBasic    = "basic"
	TierStandard = "standard"
	TierPremium  = "premium"
)

var tierRank = map[string]int{
	TierBasic:    1,
	TierStandard: 2,
	TierPremium:  3,
}

func ValidTier(tier string) bool {
	_, ok := tierRank[tier]
	return ok
}

// TierAtLeast reports whether tier ranks at or above min. Unknown tiers
// never qualify.
func TierAtLeast(tier, min string) bool {
	have, ok := tierRank[tier]
	if !ok {
		return false
	}
	return have >= tierRank[min]
}

type Client struct {
	ID        string    `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	Company   *string   `db:"company"`
	Phone     *string   `db:"phone"`
	Tier      string    `db:"tier"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (c *Client) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}
