package zone

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// LoadAliases merges alias overrides from an ini file into the
// resolver's table. The file carries one section per epoch
// ([legacy], [current]) with alias = canonical entries; only the
// section matching the resolver's epoch is applied. Used by deployments
// whose store carries zone names the built-in tables predate.
func (r *Resolver) LoadAliases(path string) error {
	cfg, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("load zone aliases: %w", err)
	}

	section := cfg.Section(string(r.epoch))
	for _, key := range section.Keys() {
		if key.Value() == "" {
			return fmt.Errorf("zone alias %q has an empty canonical name", key.Name())
		}
		r.addAlias(key.Name(), key.Value())
	}
	return nil
}
