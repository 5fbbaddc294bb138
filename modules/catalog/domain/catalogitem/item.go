package catalogitem

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind mirrors the assignment relation kinds; catalog rows are the entities
// those relations point at.
type Kind string

const (
	KindService    Kind = "service"
	KindLocation   Kind = "location"
	KindTeamMember Kind = "teamMember"
	KindBundle     Kind = "bundle"
)

// Item is one configurable entity of the business: a service, a location, a
// team member or a bundle. Services and bundles carry default price (minor
// currency units) and duration (minutes) that pairings inherit unless
// overridden.
type Item struct {
	tenantID        uuid.UUID
	kind            Kind
	id              int64
	name            string
	defaultPrice    *int64
	defaultDuration *int32
	createdAt       time.Time
	updatedAt       time.Time
}

func New(tenantID uuid.UUID, kind Kind, name string, defaultPrice *int64, defaultDuration *int32) Item {
	return Item{
		tenantID:        tenantID,
		kind:            kind,
		name:            strings.TrimSpace(name),
		defaultPrice:    defaultPrice,
		defaultDuration: defaultDuration,
	}
}

func Hydrate(
	tenantID uuid.UUID,
	kind Kind,
	id int64,
	name string,
	defaultPrice *int64,
	defaultDuration *int32,
	createdAt time.Time,
	updatedAt time.Time,
) Item {
	return Item{
		tenantID:        tenantID,
		kind:            kind,
		id:              id,
		name:            strings.TrimSpace(name),
		defaultPrice:    defaultPrice,
		defaultDuration: defaultDuration,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (i Item) TenantID() uuid.UUID     { return i.tenantID }
func (i Item) Kind() Kind              { return i.kind }
func (i Item) ID() int64               { return i.id }
func (i Item) Name() string            { return i.name }
func (i Item) DefaultPrice() *int64    { return i.defaultPrice }
func (i Item) DefaultDuration() *int32 { return i.defaultDuration }
func (i Item) CreatedAt() time.Time    { return i.createdAt }
func (i Item) UpdatedAt() time.Time    { return i.updatedAt }
func (i Item) IsZero() bool            { return i.id == 0 && i.name == "" }
