package topology

// UnitKind is the behavioral variant of a processing unit. The variant is resolved once when the
// store is built and every constraint family dispatches on it.
type UnitKind int

const (
	// UnitGeneric is a unit listed in no variant set. Only the generic flow families apply to it.
	UnitGeneric UnitKind = iota
	UnitCDU
	UnitFixedYield
	UnitDeltaBase
	UnitMixer
	UnitSplitter
	UnitBlender
)

// UnitKinds lists the variants that have a variant set, in reporting order.
var UnitKinds = []UnitKind{UnitCDU, UnitFixedYield, UnitDeltaBase, UnitMixer, UnitSplitter, UnitBlender}

var unitKindNames = map[UnitKind]string{
	UnitGeneric:    "generic",
	UnitCDU:        "cdu",
	UnitFixedYield: "fixed-yield",
	UnitDeltaBase:  "delta-base",
	UnitMixer:      "mixer",
	UnitSplitter:   "splitter",
	UnitBlender:    "blender",
}

var unitKindSets = map[UnitKind]string{
	UnitCDU:        SetUCDU,
	UnitFixedYield: SetUPF,
	UnitDeltaBase:  SetUPD,
	UnitMixer:      SetUMIX,
	UnitSplitter:   SetUSPL,
	UnitBlender:    SetUBLD,
}

func (k UnitKind) String() string {
	if n, ok := unitKindNames[k]; ok {
		return n
	}
	return "unknown"
}

// SetName returns the name of the variant set listing units of this kind.
func (k UnitKind) SetName() string { return unitKindSets[k] }
