// Package zone maps user-facing zone labels onto the canonical
// identifiers the fact store is keyed by, across the naming epochs the
// store has gone through.
package zone

import (
	"context"
	"sort"

	"github.com/obs-tools/visit-atlas/pkg/apperrors"
	"github.com/obs-tools/visit-atlas/pkg/models/domain"
	"github.com/obs-tools/visit-atlas/pkg/normalize"
)

// Epoch selects which naming scheme the underlying store uses. It is
// injected through configuration at construction, never inferred from
// the process environment.
type Epoch string

const (
	EpochLegacy  Epoch = "legacy"
	EpochCurrent Epoch = "current"
)

// ParseEpoch validates a configured epoch name.
func ParseEpoch(s string) (Epoch, bool) {
	e := Epoch(s)
	if e == EpochLegacy || e == EpochCurrent {
		return e, true
	}
	return "", false
}

// IDLookup is the single store operation the resolver depends on.
type IDLookup interface {
	ZoneID(ctx context.Context, name string) (int64, error)
}

type Resolver struct {
	epoch       Epoch
	toCanonical map[string]string
	toDisplay   map[string]string
	store       IDLookup
}

func NewResolver(epoch Epoch, store IDLookup) *Resolver {
	r := &Resolver{
		epoch:       epoch,
		toCanonical: map[string]string{},
		toDisplay:   map[string]string{},
		store:       store,
	}

	aliases, display := legacyAliases, legacyDisplay
	if epoch == EpochCurrent {
		aliases, display = currentAliases, currentDisplay
	}
	for alias, canonical := range aliases {
		r.addAlias(alias, canonical)
	}
	for canonical, disp := range display {
		r.toDisplay[normalize.Key(canonical)] = disp
	}
	return r
}

func (r *Resolver) addAlias(alias, canonical string) {
	r.toCanonical[normalize.Key(alias)] = canonical
	// Canonical labels are fixed points of Canonical().
	r.toCanonical[normalize.Key(canonical)] = canonical
}

// Epoch returns the naming epoch the resolver was built for.
func (r *Resolver) Epoch() Epoch { return r.epoch }

// Canonical maps a display label to the canonical store label. Labels
// without a table entry pass through in folded form; whether they
// resolve is decided by the store id lookup.
func (r *Resolver) Canonical(label string) string {
	key := normalize.Key(label)
	if canonical, ok := r.toCanonical[key]; ok {
		return canonical
	}
	return key
}

// Display maps a canonical store label back to its display label.
func (r *Resolver) Display(canonical string) string {
	if disp, ok := r.toDisplay[normalize.Key(canonical)]; ok {
		return disp
	}
	return canonical
}

// ResolveID resolves a display label all the way to the store's zone
// id. A label the store does not know is a hard error, never a guessed
// default.
func (r *Resolver) ResolveID(ctx context.Context, label string) (int64, error) {
	canonical := r.Canonical(label)
	id, err := r.store.ZoneID(ctx, canonical)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindZoneNotResolvable) {
			return 0, apperrors.Newf(apperrors.KindZoneNotResolvable,
				"zone %q (canonical %q) not found in store", label, canonical)
		}
		return 0, err
	}
	return id, nil
}

// Zones lists the dashboard-facing zones for this epoch, excluded
// administrative zones filtered out, sorted by display label.
func (r *Resolver) Zones() []domain.Zone {
	seen := map[string]bool{}
	var zones []domain.Zone
	for _, canonical := range r.toCanonical {
		if seen[canonical] || excludedZones[normalize.Key(canonical)] {
			continue
		}
		seen[canonical] = true
		zones = append(zones, domain.Zone{
			Canonical: canonical,
			Display:   r.Display(canonical),
		})
	}
	sort.Slice(zones, func(i, j int) bool {
		return zones[i].Display < zones[j].Display
	})
	return zones
}
