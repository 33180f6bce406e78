package contact

import (
	"math/rand"

	"github.com/epiforge/episim/params"
)

// Household size distribution (census-like): 1:28%, 2:34%, 3:16%, 4:14%, 5:8%.
var (
	householdSizes   = []int{1, 2, 3, 4, 5}
	householdWeights = []float64{0.28, 0.34, 0.16, 0.14, 0.08}
)

// Workplace and school class size ranges (inclusive).
const (
	workplaceSizeMin = 5
	workplaceSizeMax = 30
	schoolSizeMin    = 15
	schoolSizeMax    = 35
)

// None marks a missing group membership.
const None = -1

// Membership is one agent's group assignment per static layer.
type Membership struct {
	Household int
	Workplace int
	School    int
}

// Network is the immutable static contact topology over a fixed agent set.
// Agents are identified by their index in the slice passed to Build.
type Network struct {
	households [][]int
	workplaces [][]int
	schools    [][]int
	members    []Membership
}

// Build partitions the agent set exactly once, given each agent's age.
// Every agent lands in exactly one household; agents aged within the school
// band join a school class and are thereby students; working-age agents that
// are not students join a workplace. Partitioning shuffles the pool and then
// greedily slices groups whose size is drawn from the layer's distribution,
// clipped to the remaining pool.
func Build(ages []float64, rng *rand.Rand) *Network {
	n := &Network{members: make([]Membership, len(ages))}
	for i := range n.members {
		n.members[i] = Membership{Household: None, Workplace: None, School: None}
	}

	all := make([]int, len(ages))
	for i := range all {
		all[i] = i
	}
	n.households = n.partition(all, rng, sampleHouseholdSize, func(id, group int) {
		n.members[id].Household = group
	})

	var students []int
	for i, age := range ages {
		if age >= params.SchoolAgeMin && age <= params.SchoolAgeMax {
			students = append(students, i)
		}
	}
	n.schools = n.partition(students, rng, func(rng *rand.Rand) int {
		return schoolSizeMin + rng.Intn(schoolSizeMax-schoolSizeMin+1)
	}, func(id, group int) {
		n.members[id].School = group
	})

	var workers []int
	for i, age := range ages {
		if age >= params.WorkingAgeMin && age <= params.WorkingAgeMax && n.members[i].School == None {
			workers = append(workers, i)
		}
	}
	n.workplaces = n.partition(workers, rng, func(rng *rand.Rand) int {
		return workplaceSizeMin + rng.Intn(workplaceSizeMax-workplaceSizeMin+1)
	}, func(id, group int) {
		n.members[id].Workplace = group
	})

	return n
}

func (n *Network) partition(pool []int, rng *rand.Rand, sampleSize func(*rand.Rand) int, assign func(id, group int)) [][]int {
	shuffled := make([]int, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var groups [][]int
	for idx := 0; idx < len(shuffled); {
		size := sampleSize(rng)
		if rest := len(shuffled) - idx; size > rest {
			size = rest
		}
		group := make([]int, size)
		copy(group, shuffled[idx:idx+size])
		for _, id := range group {
			assign(id, len(groups))
		}
		groups = append(groups, group)
		idx += size
	}
	return groups
}

func sampleHouseholdSize(rng *rand.Rand) int {
	r := rng.Float64()
	for i, w := range householdWeights {
		r -= w
		if r < 0 {
			return householdSizes[i]
		}
	}
	return householdSizes[len(householdSizes)-1]
}

// Membership returns the agent's group assignment.
func (n *Network) Membership(id int) Membership { return n.members[id] }

// Counts returns the number of groups formed per static layer.
func (n *Network) Counts() (households, workplaces, schools int) {
	return len(n.households), len(n.workplaces), len(n.schools)
}

// Contacts returns the agent indices the given agent meets today in the
// given layer. Household contacts are all co-members; workplace and school
// contacts are a random sample without replacement of up to maxContacts
// (the layer's daily cap when maxContacts <= 0). The community layer carries
// no static structure: Contacts returns ok=false and the caller must resolve
// contacts from the current grid snapshot. An agent with no membership in a
// layer gets an empty set, never an error.
func (n *Network) Contacts(id int, layer Layer, rng *rand.Rand, maxContacts int) (contacts []int, ok bool) {
	switch layer {
	case LayerHousehold:
		return n.others(n.households, n.members[id].Household, id), true
	case LayerWorkplace:
		return n.sample(n.others(n.workplaces, n.members[id].Workplace, id), rng, capOrDefault(maxContacts, layer)), true
	case LayerSchool:
		return n.sample(n.others(n.schools, n.members[id].School, id), rng, capOrDefault(maxContacts, layer)), true
	case LayerCommunity:
		return nil, false
	default:
		return nil, true
	}
}

func capOrDefault(maxContacts int, layer Layer) int {
	if maxContacts > 0 {
		return maxContacts
	}
	return layer.DailyContactCap()
}

func (n *Network) others(groups [][]int, group, self int) []int {
	if group == None {
		return nil
	}
	members := groups[group]
	out := make([]int, 0, len(members)-1)
	for _, id := range members {
		if id != self {
			out = append(out, id)
		}
	}
	return out
}

func (n *Network) sample(pool []int, rng *rand.Rand, k int) []int {
	if k >= len(pool) {
		return pool
	}
	if k <= 0 {
		return nil
	}
	perm := rng.Perm(len(pool))
	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = pool[perm[i]]
	}
	return out
}
