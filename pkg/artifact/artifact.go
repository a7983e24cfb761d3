package artifact

// Artifact is the unit of assertion or retraction: a claim that entity
// Of has attribute The with value Is, optionally caused by a prior
// artifact on the same (Of, The) pair.
type Artifact struct {
	The   Attribute
	Of    Entity
	Is    Value
	Cause *Cause
}

// InstructionKind distinguishes the two ways an Artifact enters a
// commit.
type InstructionKind uint8

const (
	Assert InstructionKind = iota
	Retract
)

// Instruction is one step of a Commit: assert or retract an Artifact.
type Instruction struct {
	Kind     InstructionKind
	Artifact Artifact
}

func AssertInstruction(a Artifact) Instruction  { return Instruction{Kind: Assert, Artifact: a} }
func RetractInstruction(a Artifact) Instruction { return Instruction{Kind: Retract, Artifact: a} }
