package model

// Group is the scoring category a caption belongs to.  GE captions count
// in full; Visual and Music captions are averaged in pairs when a show
// total is computed.
type Group string

const (
    GroupGE     Group = "GE"
    GroupVisual Group = "Visual"
    GroupMusic  Group = "Music"
)

// CaptionName identifies one of the eight fixed roster slots.
type CaptionName string

const (
    CaptionGE1 CaptionName = "GE1" // general effect 1
    CaptionGE2 CaptionName = "GE2" // general effect 2
    CaptionVP  CaptionName = "VP"  // visual proficiency
    CaptionVA  CaptionName = "VA"  // visual analysis
    CaptionCG  CaptionName = "CG"  // color guard
    CaptionB   CaptionName = "B"   // brass
    CaptionMA  CaptionName = "MA"  // music analysis
    CaptionP   CaptionName = "P"   // percussion
)

// Caption describes a scoring slot: its name, the maximum raw points it
// contributes and its group.
type Caption struct {
    Name   CaptionName
    Weight float64
    Group  Group
}

// Captions lists the eight captions in roster order: two General Effect,
// three Visual and three Music, each weighted 20.  Visual and Music group
// sums are halved in the total, so a roster of first-placed entities on all
// eight captions scores 100 and one on six captions (one GE dropped from
// each side) scores 80.
var Captions = [8]Caption{
    {Name: CaptionGE1, Weight: 20, Group: GroupGE},
    {Name: CaptionGE2, Weight: 20, Group: GroupGE},
    {Name: CaptionVP, Weight: 20, Group: GroupVisual},
    {Name: CaptionVA, Weight: 20, Group: GroupVisual},
    {Name: CaptionCG, Weight: 20, Group: GroupVisual},
    {Name: CaptionB, Weight: 20, Group: GroupMusic},
    {Name: CaptionMA, Weight: 20, Group: GroupMusic},
    {Name: CaptionP, Weight: 20, Group: GroupMusic},
}

// LookupCaption returns the caption with the given name.
func LookupCaption(name string) (Caption, bool) {
    for _, c := range Captions {
        if string(c.Name) == name {
            return c, true
        }
    }
    return Caption{}, false
}
