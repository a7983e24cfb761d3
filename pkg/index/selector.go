package index

import "github.com/dialogdb/dialog/pkg/artifact"

// Selector names the subset of {entity, attribute, value} a read is
// constrained to. A nil field means "any value is acceptable" for that
// slot; selecting no fields at all is rejected with EmptySelector.
type Selector struct {
	Entity    *artifact.Entity
	Attribute *artifact.Attribute
	Value     *artifact.Value
}

// plan names which index to scan and the prefix bytes derived from the
// selector's set fields (in that index's key order). Fields outside the
// prefix are checked per candidate by matchesResidual.
type plan struct {
	ordering    artifact.Ordering
	prefixBytes []byte
}

// choosePlan picks the index whose ordering places the most set fields
// as a shared prefix: VAE when value+attribute are both set (plus the
// entity when it is set too), otherwise EAV when entity is set,
// preferring EAV when entity+attribute are both set (either EAV or AEV
// satisfies that case equally; §4.3), then AEV, then VAE.
func choosePlan(sel Selector) (plan, bool) {
	switch {
	case sel.Value != nil && sel.Attribute != nil:
		ref := sel.Value.Reference()
		padded := sel.Attribute.Padded()
		prefix := append([]byte(nil), ref[:]...)
		prefix = append(prefix, padded[:]...)
		if sel.Entity != nil {
			prefix = append(prefix, sel.Entity[:]...)
		}
		return plan{ordering: artifact.VAE, prefixBytes: prefix}, true
	case sel.Entity != nil:
		var prefix []byte
		prefix = append(prefix, sel.Entity[:]...)
		if sel.Attribute != nil {
			padded := sel.Attribute.Padded()
			prefix = append(prefix, padded[:]...)
		}
		return plan{ordering: artifact.EAV, prefixBytes: prefix}, true
	case sel.Attribute != nil:
		padded := sel.Attribute.Padded()
		prefix := append([]byte(nil), padded[:]...)
		return plan{ordering: artifact.AEV, prefixBytes: prefix}, true
	case sel.Value != nil:
		ref := sel.Value.Reference()
		prefix := append([]byte(nil), ref[:]...)
		return plan{ordering: artifact.VAE, prefixBytes: prefix}, true
	default:
		return plan{}, false
	}
}

// matchesResidual checks the fields choosePlan did not fold into the
// scanned prefix against a decoded candidate artifact. Given
// choosePlan's cases, the attribute and entity branches below never
// actually reject a candidate the prefix scan didn't already
// guarantee: an EAV plan folds in the attribute whenever it is set,
// and an entity is set on a non-EAV plan only when VAE folds it in
// after value and attribute. They stay as a defensive check against a
// future choosePlan change rather than a load-bearing filter. The
// value branch is the only one that does real work, for an EAV plan
// chosen from entity+value, whose prefix is the entity alone.
func matchesResidual(sel Selector, a artifact.Artifact, pl plan) bool {
	if sel.Attribute != nil && pl.ordering == artifact.EAV && a.The != *sel.Attribute {
		return false
	}
	if sel.Value != nil && pl.ordering != artifact.VAE {
		if a.Is.Reference() != sel.Value.Reference() {
			return false
		}
	}
	if sel.Entity != nil && pl.ordering != artifact.EAV && a.Of != *sel.Entity {
		return false
	}
	return true
}
