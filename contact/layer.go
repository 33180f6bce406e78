package contact

// Layer is one of the four contact contexts, each with its own transmission
// multiplier and contact-selection rule.
type Layer int

const (
	// LayerHousehold covers co-resident contacts: long duration, close
	// proximity, always active.
	LayerHousehold Layer = iota
	// LayerWorkplace covers working-age colleagues.
	LayerWorkplace
	// LayerSchool covers school-class contacts.
	LayerSchool
	// LayerCommunity covers brief random encounters on the spatial grid.
	LayerCommunity
)

// String returns the string representation of the layer.
func (l Layer) String() string {
	switch l {
	case LayerHousehold:
		return "household"
	case LayerWorkplace:
		return "workplace"
	case LayerSchool:
		return "school"
	case LayerCommunity:
		return "community"
	default:
		return "unknown"
	}
}

// TransmissionMultiplier scales the base transmission probability for
// contacts made in this layer. Household contacts dominate (secondary attack
// rate around 18%), community encounters are brief and random.
func (l Layer) TransmissionMultiplier() float64 {
	switch l {
	case LayerHousehold:
		return 3.0
	case LayerWorkplace:
		return 0.6
	case LayerSchool:
		return 0.6
	case LayerCommunity:
		return 0.3
	default:
		return 0
	}
}

// DailyContactCap is the average number of distinct contacts sampled per day
// in this layer. Zero means no cap: the household layer contacts every
// co-member, and community contact counts follow grid occupancy.
func (l Layer) DailyContactCap() int {
	switch l {
	case LayerWorkplace:
		return 8
	case LayerSchool:
		return 12
	default:
		return 0
	}
}
