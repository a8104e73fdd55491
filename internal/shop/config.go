package shop

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
)

// Config is the GM-authored shop configuration. It is stored as one whole
// record and always replaced wholesale, never patched.
type Config struct {
	// Sources lists the catalog sources the GM has put in play. Items from
	// unselected sources are not browsable even when an entry exists.
	Sources []uuid.UUID `json:"sources,omitempty"`
	Entries []Entry     `json:"entries"`
}

// Entry puts one catalog item on sale and fixes how it can be bought.
type Entry struct {
	ItemRef uuid.UUID              `json:"item_ref"`
	Mode    enums.AvailabilityMode `json:"mode"`
	// Price overrides the catalog base price when set.
	Price *int `json:"price,omitempty"`
	// Stock is the remaining quantity. Only meaningful in limited mode.
	Stock *int `json:"stock,omitempty"`
}

// EffectivePrice resolves the price charged at the counter: the entry's
// override when present, the catalog base price otherwise.
func (e Entry) EffectivePrice(basePrice int) int {
	if e.Price != nil {
		return *e.Price
	}
	return basePrice
}

// Available reports the remaining stock. Nil means the mode does not track
// stock at all.
func (e Entry) Available() *int {
	if e.Mode != enums.AvailabilityLimited {
		return nil
	}
	if e.Stock == nil {
		zero := 0
		return &zero
	}
	return e.Stock
}

// Find returns the entry for an item reference, or nil when the item is not
// on sale.
func (c Config) Find(itemRef uuid.UUID) *Entry {
	for i := range c.Entries {
		if c.Entries[i].ItemRef == itemRef {
			return &c.Entries[i]
		}
	}
	return nil
}

// HasSource reports whether a catalog source is selected. An empty selection
// admits every source.
func (c Config) HasSource(sourceID uuid.UUID) bool {
	if len(c.Sources) == 0 {
		return true
	}
	for _, id := range c.Sources {
		if id == sourceID {
			return true
		}
	}
	return false
}

// Validate checks every entry for coherent mode, price, and stock values.
func (c Config) Validate() error {
	seenSources := make(map[uuid.UUID]struct{}, len(c.Sources))
	for i, sourceID := range c.Sources {
		if sourceID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("source %d: identifier is required", i))
		}
		if _, dup := seenSources[sourceID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("source %d: duplicate source %s", i, sourceID))
		}
		seenSources[sourceID] = struct{}{}
	}

	seen := make(map[uuid.UUID]struct{}, len(c.Entries))
	for i, entry := range c.Entries {
		if entry.ItemRef == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("entry %d: item reference is required", i))
		}
		if _, dup := seen[entry.ItemRef]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("entry %d: duplicate item %s", i, entry.ItemRef))
		}
		seen[entry.ItemRef] = struct{}{}
		if !entry.Mode.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("entry %d: invalid availability mode %q", i, entry.Mode))
		}
		if entry.Price != nil && *entry.Price < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("entry %d: price must be non-negative", i))
		}
		if entry.Mode == enums.AvailabilityLimited {
			if entry.Stock == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("entry %d: limited mode requires stock", i))
			}
			if *entry.Stock < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("entry %d: stock must be non-negative", i))
			}
		} else if entry.Stock != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("entry %d: stock only applies to limited mode", i))
		}
	}
	return nil
}
