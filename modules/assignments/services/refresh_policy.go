package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bookline/console/modules/assignments/domain/assignment"
)

// RefreshPolicy classifies which relation kinds have server-side effects the
// engine cannot compute locally. Saving a change-set that touches such a
// kind triggers a scoped refetch of the owner's assignments instead of a
// local baseline rebase.
type RefreshPolicy struct {
	refreshKinds map[assignment.Kind]bool
}

type refreshPolicyFile struct {
	RefreshAfterSave []string `yaml:"refresh_after_save"`
}

// DefaultRefreshPolicy marks bundles refresh-required: toggling a bundle
// cascades to its member services on the server.
func DefaultRefreshPolicy() RefreshPolicy {
	return RefreshPolicy{refreshKinds: map[assignment.Kind]bool{
		assignment.KindBundle: true,
	}}
}

func LoadRefreshPolicy(path string) (RefreshPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RefreshPolicy{}, fmt.Errorf("read refresh policy: %w", err)
	}
	return ParseRefreshPolicy(raw)
}

func ParseRefreshPolicy(raw []byte) (RefreshPolicy, error) {
	var file refreshPolicyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return RefreshPolicy{}, fmt.Errorf("parse refresh policy: %w", err)
	}

	policy := RefreshPolicy{refreshKinds: make(map[assignment.Kind]bool, len(file.RefreshAfterSave))}
	for _, v := range file.RefreshAfterSave {
		kind, err := assignment.ParseKind(v)
		if err != nil {
			return RefreshPolicy{}, fmt.Errorf("refresh policy: %w", err)
		}
		policy.refreshKinds[kind] = true
	}
	return policy, nil
}

// RequiresRefresh reports whether any of the kinds needs a server-confirmed
// refetch after save.
func (p RefreshPolicy) RequiresRefresh(kinds []assignment.Kind) bool {
	for _, k := range kinds {
		if p.refreshKinds[k] {
			return true
		}
	}
	return false
}
