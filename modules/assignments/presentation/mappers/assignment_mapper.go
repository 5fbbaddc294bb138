package mappers

import (
	"fmt"

	"github.com/Rhymond/go-money"

	"github.com/bookline/console/modules/assignments/domain/assignment"
	"github.com/bookline/console/modules/assignments/presentation/viewmodels"
	"github.com/bookline/console/modules/assignments/services"
)

const displayCurrency = money.USD

func SessionToVM(view services.SessionView) *viewmodels.Session {
	vm := &viewmodels.Session{
		OwnerKind:  string(view.Owner.Kind),
		OwnerID:    view.Owner.ID,
		Phase:      string(view.Phase),
		HasPending: view.HasPending,
		CanUndo:    view.CanUndo,
		CanRedo:    view.CanRedo,
	}
	if view.LastError != nil {
		vm.LastError = view.LastError.Error()
	}
	for _, kind := range view.State.Kinds() {
		snap, ok := view.State.Snapshot(kind)
		if !ok {
			continue
		}
		panel := &viewmodels.KindPanel{Kind: string(kind)}
		for _, id := range snap.Selected.IDs() {
			item := &viewmodels.RelatedItem{ID: id}
			if o, ok := snap.Overrides.Get(id); ok {
				if o.CustomPrice != nil {
					item.HasCustomPrice = true
					item.CustomPrice = money.New(*o.CustomPrice, displayCurrency).Display()
				}
				if o.CustomDuration != nil {
					item.HasCustomLength = true
					item.CustomDuration = fmt.Sprintf("%dm", *o.CustomDuration)
				}
			}
			panel.Items = append(panel.Items, item)
		}
		vm.Kinds = append(vm.Kinds, panel)
	}
	return vm
}

func ChangeSetToVM(cs assignment.ChangeSet) *viewmodels.ChangeSet {
	vm := &viewmodels.ChangeSet{Empty: cs.IsZero()}
	for _, kind := range cs.Kinds() {
		changes, ok := cs.Changes(kind)
		if !ok {
			continue
		}
		kindVM := &viewmodels.KindChanges{
			Kind:    string(kind),
			Added:   changes.Added,
			Removed: changes.Removed,
		}
		for _, delta := range changes.OverridesChanged {
			kindVM.Overrides = append(kindVM.Overrides, &viewmodels.OverrideChange{
				ID:       delta.ID,
				Price:    priceChangeLabel(delta.Price),
				Duration: durationChangeLabel(delta.Duration),
			})
		}
		vm.Kinds = append(vm.Kinds, kindVM)
	}
	return vm
}

func priceChangeLabel(c assignment.Change[int64]) string {
	if !c.Set {
		return ""
	}
	if c.Value == nil {
		return "inherit"
	}
	return money.New(*c.Value, displayCurrency).Display()
}

func durationChangeLabel(c assignment.Change[int32]) string {
	if !c.Set {
		return ""
	}
	if c.Value == nil {
		return "inherit"
	}
	return fmt.Sprintf("%dm", *c.Value)
}

func CountersToVM(owner assignment.OwnerRef, counters map[assignment.Kind]int) *viewmodels.Counters {
	byKind := make(map[string]int, len(counters))
	for kind, n := range counters {
		byKind[string(kind)] = n
	}
	return &viewmodels.Counters{
		OwnerKind: string(owner.Kind),
		OwnerID:   owner.ID,
		ByKind:    byKind,
	}
}
