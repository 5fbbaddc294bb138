package assignment

// Override carries the per-pairing price and duration customization. A nil
// field means "inherit the related entity's default". Price is always minor
// currency units; display conversion happens in the presentation layer.
type Override struct {
	CustomPrice    *int64
	CustomDuration *int32
}

func (o Override) IsZero() bool {
	return o.CustomPrice == nil && o.CustomDuration == nil
}

func (o Override) Equal(other Override) bool {
	return int64PtrEqual(o.CustomPrice, other.CustomPrice) &&
		int32PtrEqual(o.CustomDuration, other.CustomDuration)
}

func (o Override) clone() Override {
	out := Override{}
	if o.CustomPrice != nil {
		v := *o.CustomPrice
		out.CustomPrice = &v
	}
	if o.CustomDuration != nil {
		v := *o.CustomDuration
		out.CustomDuration = &v
	}
	return out
}

// Change expresses a single-field edit with three states: not set (keep the
// current value), set to nil (revert to inherited default), set to a value.
type Change[T any] struct {
	Set   bool
	Value *T
}

func Keep[T any]() Change[T] {
	return Change[T]{}
}

func SetTo[T any](v T) Change[T] {
	return Change[T]{Set: true, Value: &v}
}

func ClearTo[T any]() Change[T] {
	return Change[T]{Set: true}
}

func (c Change[T]) apply(current *T) *T {
	if !c.Set {
		return current
	}
	if c.Value == nil {
		return nil
	}
	v := *c.Value
	return &v
}

// OverridePatch is a partial override edit. Unset fields keep their current
// values, which gives callers read-modify-write semantics without racing on
// sibling fields.
type OverridePatch struct {
	Price    Change[int64]
	Duration Change[int32]
}

func (p OverridePatch) IsZero() bool {
	return !p.Price.Set && !p.Duration.Set
}

// Apply merges the patch into an existing override record.
func (p OverridePatch) Apply(current Override) Override {
	return Override{
		CustomPrice:    p.Price.apply(current.CustomPrice),
		CustomDuration: p.Duration.apply(current.CustomDuration),
	}
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func int32PtrEqual(a, b *int32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
