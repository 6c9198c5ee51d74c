package graphbuild

// OSM tag keys and values this package looks up. Kept as named constants
// rather than inline string literals.
const (
	tagHighway  = "highway"
	tagOneway   = "oneway"
	tagMaxspeed = "maxspeed"
	tagYes      = "yes"
)

const (
	highwayTrafficSignals = "traffic_signals"
	highwayStop           = "stop"
	highwayGiveWay        = "give_way"
)

// roadClassOther is the fallback bucket for any highway=* value not present
// in speedTable.
const roadClassOther = "other"

// modeSpeedsKMH holds {car, bike, walk} speeds in km/h for one road class; a
// speed of 0 means the mode is disallowed on that class. Transit never
// appears here: the transit slot is always disallowed.
type modeSpeedsKMH struct {
	car, bike, walk float64
}

// speedTable is the per-highway-class speed table.
var speedTable = map[string]modeSpeedsKMH{
	"motorway":      {car: 100},
	"motorway_link": {car: 100},
	"trunk":         {car: 80},
	"trunk_link":    {car: 80},
	"primary":       {car: 60, bike: 15, walk: 5},
	"primary_link":  {car: 60, bike: 15, walk: 5},
	"secondary":     {car: 50, bike: 15, walk: 5},
	"secondary_link": {car: 50, bike: 15, walk: 5},
	"tertiary":      {car: 40, bike: 15, walk: 5},
	"tertiary_link": {car: 40, bike: 15, walk: 5},
	"residential":   {car: 30, bike: 15, walk: 5},
	"unclassified":  {car: 30, bike: 15, walk: 5},
	"service":       {car: 20, bike: 15, walk: 5},
	"living_street": {car: 10, bike: 10, walk: 5},
	"pedestrian":    {bike: 5, walk: 5},
	"cycleway":      {bike: 20, walk: 5},
	"footway":       {bike: 5, walk: 5},
	"path":          {bike: 5, walk: 5},
	"steps":         {bike: 5, walk: 5},
	roadClassOther:  {car: 30, bike: 15, walk: 5},
}

// roadPriority maps a road class to its 0..10 routing/display priority:
// motorway=10 down to footway=0, with the monotonic fill-in between those
// anchors listed below.
var roadPriority = map[string]uint8{
	"motorway":       10,
	"motorway_link":  10,
	"trunk":          9,
	"trunk_link":     9,
	"primary":        8,
	"primary_link":   8,
	"secondary":      7,
	"secondary_link": 7,
	"tertiary":       6,
	"tertiary_link":  6,
	"residential":    5,
	"unclassified":   5,
	"service":        4,
	"living_street":  3,
	"pedestrian":     2,
	"cycleway":       2,
	"footway":        0,
	"path":           0,
	"steps":          0,
	roadClassOther:   1,
}

func speedsFor(roadClass string) modeSpeedsKMH {
	if s, ok := speedTable[roadClass]; ok {
		return s
	}
	return speedTable[roadClassOther]
}

func priorityFor(roadClass string) uint8 {
	if p, ok := roadPriority[roadClass]; ok {
		return p
	}
	return roadPriority[roadClassOther]
}

// controlKind is the traffic-control regime observed at a node.
type controlKind uint8

const (
	controlNone controlKind = iota
	controlYield
	controlStopSign
	controlTrafficLight
)

func controlFromHighwayTag(v string) controlKind {
	switch v {
	case highwayTrafficSignals:
		return controlTrafficLight
	case highwayStop:
		return controlStopSign
	case highwayGiveWay:
		return controlYield
	default:
		return controlNone
	}
}
