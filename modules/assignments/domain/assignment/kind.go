package assignment

import (
	"fmt"
	"strings"
)

// Kind names one side of the relationship graph. The same set of kinds is
// used for owners being edited and for the related entities assigned to them.
type Kind string

const (
	KindService    Kind = "service"
	KindLocation   Kind = "location"
	KindTeamMember Kind = "teamMember"
	KindBundle     Kind = "bundle"
)

func Kinds() []Kind {
	return []Kind{KindService, KindLocation, KindTeamMember, KindBundle}
}

func ParseKind(v string) (Kind, error) {
	switch Kind(strings.TrimSpace(v)) {
	case KindService:
		return KindService, nil
	case KindLocation:
		return KindLocation, nil
	case KindTeamMember:
		return KindTeamMember, nil
	case KindBundle:
		return KindBundle, nil
	}
	return "", fmt.Errorf("unknown relation kind %q", v)
}

// OwnerRef identifies the entity whose assignments are being edited.
type OwnerRef struct {
	Kind Kind
	ID   int64
}

func (o OwnerRef) String() string {
	return fmt.Sprintf("%s/%d", o.Kind, o.ID)
}

// EditableKinds returns the relation kinds that can be assigned to an owner
// of the given kind. An entity never holds assignments of its own kind.
func EditableKinds(owner Kind) []Kind {
	out := make([]Kind, 0, 3)
	for _, k := range Kinds() {
		if k != owner {
			out = append(out, k)
		}
	}
	return out
}
