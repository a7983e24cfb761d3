package capability

import "strings"

// Chain is a Subject plus an ordered sequence of Attenuations, each
// narrowing what the prior link authorizes. The classic shape named in
// §4.4 is Subject → Memory → Space("local") → Cell(branch_id).
type Chain struct {
	subject      Subject
	attenuations []Attenuation
}

// NewChain starts a chain at subject with no attenuations.
func NewChain(subject Subject) Chain {
	return Chain{subject: subject}
}

// Attenuate returns a new Chain with step appended. Chain is immutable
// — the receiver's attenuations are never mutated in place, so sharing
// a partial chain across callers (e.g. one Subject → Memory → Space
// prefix reused for several cells) is safe.
func (c Chain) Attenuate(step Attenuation) Chain {
	next := make([]Attenuation, len(c.attenuations), len(c.attenuations)+1)
	copy(next, c.attenuations)
	next = append(next, step)
	return Chain{subject: c.subject, attenuations: next}
}

// Subject returns the chain's originating subject.
func (c Chain) Subject() Subject { return c.subject }

// Attenuations returns the chain's steps in order.
func (c Chain) Attenuations() []Attenuation {
	return append([]Attenuation(nil), c.attenuations...)
}

// AbilityPath derives the chain's ability path: a leading slash
// followed by each attenuation's kind segment, and — for every step
// that carries a parameter (Space, Cell, Archive), which names the
// resource rather than just the kind — the parameter itself.
func (c Chain) AbilityPath() string {
	var b strings.Builder
	for _, a := range c.attenuations {
		b.WriteByte('/')
		b.WriteString(a.Kind.pathSegment())
		if a.Param != "" {
			b.WriteByte('/')
			b.WriteString(a.Param)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// Last returns the chain's final attenuation and true, or the zero
// Attenuation and false if the chain has none yet.
func (c Chain) Last() (Attenuation, bool) {
	if len(c.attenuations) == 0 {
		return Attenuation{}, false
	}
	return c.attenuations[len(c.attenuations)-1], true
}

// Authorizes reports whether c's final attenuation is kind narrowed to
// param — the structural gate every effect passes through before a
// Provider executes it (§4.6). It is a pure comparison: Authorizes
// says nothing about whether the chain was actually signed for by its
// Subject, since that proof is the caller's Signer's concern, never
// the core's (see pkg/capability.Signer).
func (c Chain) Authorizes(kind AttenuationKind, param string) bool {
	last, ok := c.Last()
	return ok && last.Kind == kind && last.Param == param
}

// localSpace is the fixed Space name every chain built by CellChain and
// ArchiveChain narrows through, per §4.4's Subject → Memory →
// Space("local") → Cell(branch_id) shape.
const localSpace = "local"

// CellChain builds the canonical chain addressing a branch cell:
// Subject → Memory → Space("local") → Cell(branchID).
func CellChain(subject Subject, branchID string) Chain {
	return NewChain(subject).Attenuate(Memory()).Attenuate(Space(localSpace)).Attenuate(Cell(branchID))
}

// ArchiveChain builds the canonical chain addressing an archive
// catalog: Subject → Memory → Space("local") → Archive(catalog).
func ArchiveChain(subject Subject, catalog string) Chain {
	return NewChain(subject).Attenuate(Memory()).Attenuate(Space(localSpace)).Attenuate(Archive(catalog))
}
