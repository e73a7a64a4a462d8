package cache

import (
	"time"

	"github.com/bwmarrin/snowflake"
	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
)

const defaultIdentityTTL = time.Minute

// StaffResolverCache stores resolved staff identities. Every API request
// carries X-Staff-ID, so hitting the store per request would make the staff
// table the hottest path in the system. Identities only change via Create
// today, so a short TTL is safe.
type StaffResolverCache interface {
	GetIdentity(id snowflake.ID) (staffdomain.Identity, bool)
	SetIdentity(identity staffdomain.Identity)
}

type staffResolverCache struct {
	identities Cache[snowflake.ID, staffdomain.Identity]
	ttl        time.Duration
}

func NewStaffResolverCache() StaffResolverCache {
	return &staffResolverCache{
		identities: NewTTLCache[snowflake.ID, staffdomain.Identity](),
		ttl:        defaultIdentityTTL,
	}
}

func (c *staffResolverCache) GetIdentity(id snowflake.ID) (staffdomain.Identity, bool) {
	return c.identities.Get(id)
}

func (c *staffResolverCache) SetIdentity(identity staffdomain.Identity) {
	c.identities.Set(identity.ID, identity, c.ttl)
}
