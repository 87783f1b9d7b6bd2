package topology

// Set names.
const (
	SetT = "T"
	SetS = "S"
	SetU = "U"
	SetM = "M"
	SetQ = "Q"
	SetC = "C"

	SetSP = "S_P"
	SetSM = "S_M"

	SetUCDU = "UCDU"
	SetUPF  = "UPF"
	SetUPD  = "UPD"
	SetUMIX = "UMIX"
	SetUSPL = "USPL"
	SetUBLD = "UBLD"

	SetQv  = "Qv"
	SetQw  = "Qw"
	SetSPG = "SPG"
	SetQp  = "Qp"

	SetIU     = "IU"
	SetOU     = "OU"
	SetIM     = "IM"
	SetOM     = "OM"
	SetSQ     = "SQ"
	SetFIX    = "FIX"
	SetQT     = "QT"
	SetDBSQ   = "DBSQ"
	SetCAPS   = "CAPS"
	SetCAPIN  = "CAPIN"
	SetCAPOUT = "CAPOUT"
)

// Parameter names.
const (
	ParamPrice        = "c_P"    // product price (s)
	ParamCost         = "c_M"    // material cost (s)
	ParamInvPrice     = "ci_P"   // product inventory price (s)
	ParamInvCost      = "ci_M"   // material inventory price (s)
	ParamFlowMin      = "FVMin"  // (s,t)
	ParamFlowMax      = "FVMax"  // (s,t)
	ParamFixedValue   = "FQ0"    // (s,q), no default
	ParamPropMin      = "FQMin"  // (s,q)
	ParamPropMax      = "FQMax"  // (s,q)
	ParamYield        = "y"      // CDU yield (u,m,s_in,s_out)
	ParamSwingYield   = "phi"    // CDU swing-cut yield (u,m,s_in,s_out)
	ParamCutProp      = "FQcut"  // (u,m,s_in,s_out,q)
	ParamCrudeProp    = "FQcrd"  // (u,m,s,q)
	ParamGamma        = "gamma"  // base yield (u,m,s)
	ParamBase         = "B"      // delta-base reference property (u,m,s,q)
	ParamDelta        = "delta"  // sensitivity (u,m,s,s',q)
	ParamNorm         = "Del"    // normalization (u,m,s,q)
	ParamAlpha        = "alpha"  // transfer coefficient (s,s',q)
	ParamWeight       = "w"      // virtual batch property weight (u,m,s,q)
	ParamCapMin       = "FVCMin" // (c,t)
	ParamCapMax       = "FVCMax" // (c,t)
	ParamBlendMin     = "FQBMin" // (u,q)
	ParamBlendMax     = "FQBMax" // (u,q)
	ParamMixMin       = "FQVMin" // (u,m,q)
	ParamMixMax       = "FQVMax" // (u,m,q)
	ParamLevelMin     = "LMin"   // (s,t)
	ParamLevelMax     = "LMax"   // (s,t)
	ParamInitialLevel = "L0"     // (s)
	ParamCrudeMixMin  = "MFQMin" // (q)
	ParamCrudeMixMax  = "MFQMax" // (q)
)

// Unbounded is the sentinel magnitude of an absent bound.
const Unbounded = 1e8

// boundThreshold separates informative bounds from the sentinel.
const boundThreshold = 1e7

// Bounded reports whether a bound value is tighter than the unbounded sentinel.
func Bounded(v float64) bool {
	return v < boundThreshold && v > -boundThreshold
}

var paramDefaults = map[string]float64{
	ParamPrice:        0,
	ParamCost:         0,
	ParamInvPrice:     0,
	ParamInvCost:      0,
	ParamFlowMin:      0,
	ParamFlowMax:      Unbounded,
	ParamPropMin:      -Unbounded,
	ParamPropMax:      Unbounded,
	ParamYield:        0,
	ParamSwingYield:   0,
	ParamCutProp:      1,
	ParamCrudeProp:    1,
	ParamGamma:        0,
	ParamBase:         0,
	ParamDelta:        0,
	ParamNorm:         1,
	ParamAlpha:        1,
	ParamWeight:       0,
	ParamCapMin:       0,
	ParamCapMax:       Unbounded,
	ParamBlendMin:     -Unbounded,
	ParamBlendMax:     Unbounded,
	ParamMixMin:       -Unbounded,
	ParamMixMax:       Unbounded,
	ParamLevelMin:     0,
	ParamLevelMax:     0,
	ParamInitialLevel: 0,
	ParamCrudeMixMin:  -Unbounded,
	ParamCrudeMixMax:  Unbounded,
}

// RelationSpec describes a partition set, a relation set or a parameter table: its arity and, per
// column, the entity set the column must reference.
type RelationSpec struct {
	Name    string
	Arity   int
	Parents []string
}

var requiredSets = []string{SetT, SetS, SetU, SetM, SetQ, SetC}

// PartitionSets are the unary sub-sets of the entity sets.
var PartitionSets = []RelationSpec{
	{SetSP, 1, []string{SetS}},
	{SetSM, 1, []string{SetS}},
	{SetUCDU, 1, []string{SetU}},
	{SetUPF, 1, []string{SetU}},
	{SetUPD, 1, []string{SetU}},
	{SetUMIX, 1, []string{SetU}},
	{SetUSPL, 1, []string{SetU}},
	{SetUBLD, 1, []string{SetU}},
	{SetQv, 1, []string{SetQ}},
	{SetQw, 1, []string{SetQ}},
	{SetSPG, 1, []string{SetQ}},
	{SetQp, 1, []string{SetQ}},
	{SetCAPIN, 1, []string{SetC}},
	{SetCAPOUT, 1, []string{SetC}},
}

// RelationSets are the sparse incidence relations.
var RelationSets = []RelationSpec{
	{SetIU, 2, []string{SetU, SetS}},
	{SetOU, 2, []string{SetU, SetS}},
	{SetIM, 3, []string{SetU, SetM, SetS}},
	{SetOM, 3, []string{SetU, SetM, SetS}},
	{SetSQ, 2, []string{SetS, SetQ}},
	{SetFIX, 2, []string{SetS, SetQ}},
	{SetQT, 3, []string{SetS, SetS, SetQ}},
	{SetDBSQ, 4, []string{SetU, SetM, SetS, SetQ}},
	{SetCAPS, 2, []string{SetC, SetS}},
}

// Parameters are the parameter tables a case may carry, indexed as documented on the names.
var Parameters = []RelationSpec{
	{ParamPrice, 1, []string{SetS}},
	{ParamCost, 1, []string{SetS}},
	{ParamInvPrice, 1, []string{SetS}},
	{ParamInvCost, 1, []string{SetS}},
	{ParamFlowMin, 2, []string{SetS, SetT}},
	{ParamFlowMax, 2, []string{SetS, SetT}},
	{ParamFixedValue, 2, []string{SetS, SetQ}},
	{ParamPropMin, 2, []string{SetS, SetQ}},
	{ParamPropMax, 2, []string{SetS, SetQ}},
	{ParamYield, 4, []string{SetU, SetM, SetS, SetS}},
	{ParamSwingYield, 4, []string{SetU, SetM, SetS, SetS}},
	{ParamCutProp, 5, []string{SetU, SetM, SetS, SetS, SetQ}},
	{ParamCrudeProp, 4, []string{SetU, SetM, SetS, SetQ}},
	{ParamGamma, 3, []string{SetU, SetM, SetS}},
	{ParamBase, 4, []string{SetU, SetM, SetS, SetQ}},
	{ParamDelta, 5, []string{SetU, SetM, SetS, SetS, SetQ}},
	{ParamNorm, 4, []string{SetU, SetM, SetS, SetQ}},
	{ParamAlpha, 3, []string{SetS, SetS, SetQ}},
	{ParamWeight, 4, []string{SetU, SetM, SetS, SetQ}},
	{ParamCapMin, 2, []string{SetC, SetT}},
	{ParamCapMax, 2, []string{SetC, SetT}},
	{ParamBlendMin, 2, []string{SetU, SetQ}},
	{ParamBlendMax, 2, []string{SetU, SetQ}},
	{ParamMixMin, 3, []string{SetU, SetM, SetQ}},
	{ParamMixMax, 3, []string{SetU, SetM, SetQ}},
	{ParamLevelMin, 2, []string{SetS, SetT}},
	{ParamLevelMax, 2, []string{SetS, SetT}},
	{ParamInitialLevel, 1, []string{SetS}},
	{ParamCrudeMixMin, 1, []string{SetQ}},
	{ParamCrudeMixMax, 1, []string{SetQ}},
}

// ParamSpec returns the spec of a parameter table.
func ParamSpec(name string) (RelationSpec, bool) {
	for _, spec := range Parameters {
		if spec.Name == name {
			return spec, true
		}
	}
	return RelationSpec{}, false
}
