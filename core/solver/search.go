package solver

import (
	"context"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/kilianp07/ridepool/core/datamodel"
	"github.com/kilianp07/ridepool/core/model"
)

const (
	dimRides = iota
	dimPassengers
	dimADA
	dims
)

// checkEvery is the number of expansions between two deadline checks.
const checkEvery = 1024

// nodePair is a pickup node and its dropoff node.
type nodePair struct{ pickup, dropoff int }

type chainRule struct{ prev, dropoff int }

type budgetRule struct{ dropoff, budget int }

// search is a depth-first branch and bound over visiting orders. Children
// are tried cheapest arc first from the last placed node, so the first leaf
// reached is the feasible nearest-neighbour tour; the rest of the budget is
// spent improving on it. Arc costs are meters rounded to integers.
type search struct {
	n     int
	arc   [][]int
	minIn []int
	delta [dims][]int
	cap   [dims]int
	start [dims]int
	fsID  []string

	pickupOf   []int        // dropoff -> pickup, -1 when unpaired
	pairs      []nodePair
	pinFirst   int
	chains     []chainRule
	budgets    []budgetRule
	closePairs [][]nodePair // indexed by the nearby pickup
	closeLone  [][]int      // nearby pickup -> lone dropoffs

	// partial tour
	order   []int
	pos     []int
	fs      []int
	load    [dims]int
	cost    int
	fsCum   int
	restMin int

	best     []int
	bestCost int

	ctx           context.Context
	clock         func() time.Time
	budget        time.Duration
	improveUntil  time.Time
	maxExpansions int
	expansions    int
	halted        bool
	timedOut      bool
}

func newSearch(dm *datamodel.DataModel) *search {
	n := dm.Len()
	s := &search{
		n:        n,
		arc:      make([][]int, n),
		minIn:    make([]int, n),
		fsID:     make([]string, n),
		pickupOf: make([]int, n),
		pinFirst: -1,
		pos:      make([]int, n),
		fs:       make([]int, n),
		bestCost: math.MaxInt,
		order:    make([]int, 0, n),
	}
	for i := range s.arc {
		s.arc[i] = make([]int, n)
		for j := range s.arc[i] {
			if j != 0 {
				s.arc[i][j] = int(math.Round(dm.Distance[i][j]))
			}
		}
	}
	for v := 1; v < n; v++ {
		m := math.MaxInt
		for u := 0; u < n; u++ {
			if u != v && s.arc[u][v] < m {
				m = s.arc[u][v]
			}
		}
		s.minIn[v] = m
		s.restMin += m
	}

	for k := range s.delta {
		s.delta[k] = make([]int, n)
	}
	for i, st := range dm.Nodes {
		s.fsID[i] = st.FixedStopID
		s.pickupOf[i] = -1
		sign := 0
		switch st.Type {
		case model.StopPickup:
			sign = 1
		case model.StopDropoff:
			sign = -1
		}
		s.delta[dimRides][i] = sign
		s.delta[dimPassengers][i] = sign * st.Passengers
		s.delta[dimADA][i] = sign * st.ADAPassengers
	}
	s.start = [dims]int{len(dm.Lone), dm.OnboardPassengers, dm.OnboardADA}
	s.cap = [dims]int{dm.RideCapacity, dm.PassengerCapacity, dm.ADACapacity}

	for _, p := range dm.Pairs {
		s.pickupOf[p.Dropoff] = p.Pickup
		s.pairs = append(s.pairs, nodePair{pickup: p.Pickup, dropoff: p.Dropoff})
	}

	limits := slices.Clone(dm.DropoffLimits)
	sort.SliceStable(limits, func(i, j int) bool { return limits[i].Budget < limits[j].Budget })
	keepFirst := dm.KeepFirstStop
	prevPinned := -1
	for _, l := range limits {
		if l.Budget > 1 {
			s.budgets = append(s.budgets, budgetRule{dropoff: l.Node, budget: l.Budget})
			continue
		}
		keepFirst = false
		if prevPinned < 0 {
			s.pinFirst = l.Node
		} else {
			s.chains = append(s.chains, chainRule{prev: prevPinned, dropoff: l.Node})
		}
		prevPinned = l.Node
	}
	if keepFirst && n > 1 {
		s.pinFirst = 1
	}

	s.closePairs = make([][]nodePair, n)
	s.closeLone = make([][]int, n)
	for _, g := range dm.CloseGroups {
		for _, c := range g.Near {
			if g.Pickup >= 0 {
				s.closePairs[c] = append(s.closePairs[c], nodePair{pickup: g.Pickup, dropoff: g.Dropoff})
			} else {
				s.closeLone[c] = append(s.closeLone[c], g.Dropoff)
			}
		}
	}
	return s
}

func (s *search) run() {
	for k := range s.start {
		if s.start[k] < 0 || s.start[k] > s.cap[k] {
			return
		}
	}
	for i := range s.pos {
		s.pos[i] = -1
	}
	s.load = s.start
	s.place(0, 0)
	s.dfs()
}

func (s *search) place(v, fsCum int) {
	s.pos[v] = len(s.order)
	s.order = append(s.order, v)
	s.fs[v] = fsCum
}

func (s *search) transition(from, to int) int {
	if s.fsID[from] != "" && s.fsID[from] == s.fsID[to] {
		return 0
	}
	return 1
}

type child struct{ node, arc int }

func (s *search) dfs() {
	if len(s.order) == s.n {
		if s.cost < s.bestCost {
			s.bestCost = s.cost
			s.best = slices.Clone(s.order)
			if s.improveUntil.IsZero() {
				s.improveUntil = s.clock().Add(s.budget)
			}
		}
		return
	}
	if s.cost+s.restMin >= s.bestCost {
		return
	}
	if s.stop() {
		return
	}

	cur := s.order[len(s.order)-1]
	children := make([]child, 0, s.n-len(s.order))
	for v := 1; v < s.n; v++ {
		if s.pos[v] < 0 && s.feasible(cur, v) {
			children = append(children, child{node: v, arc: s.arc[cur][v]})
		}
	}
	sort.SliceStable(children, func(i, j int) bool { return children[i].arc < children[j].arc })

	for _, c := range children {
		v := c.node
		fsCum := s.fsCum
		s.cost += c.arc
		s.restMin -= s.minIn[v]
		s.fsCum += s.transition(cur, v)
		for k := range s.load {
			s.load[k] += s.delta[k][v]
		}
		s.place(v, s.fsCum)

		s.dfs()

		s.order = s.order[:len(s.order)-1]
		s.pos[v] = -1
		for k := range s.load {
			s.load[k] -= s.delta[k][v]
		}
		s.fsCum = fsCum
		s.restMin += s.minIn[v]
		s.cost -= c.arc
		if s.halted {
			return
		}
	}
}

// feasible reports whether v can follow cur without breaking a constraint
// of the partial tour, or making one impossible to meet later.
func (s *search) feasible(cur, v int) bool {
	at := len(s.order)
	if s.pinFirst >= 0 && at == 1 && v != s.pinFirst {
		return false
	}
	if p := s.pickupOf[v]; p >= 0 && s.pos[p] < 0 {
		return false
	}
	if s.cost+s.arc[cur][v] > MaxRouteDistance {
		return false
	}
	for k := range s.load {
		l := s.load[k] + s.delta[k][v]
		if l < 0 || l > s.cap[k] {
			return false
		}
	}

	fs := s.fsCum + s.transition(cur, v)
	for _, r := range s.pairs {
		if s.pos[r.pickup] >= 0 && s.pos[r.dropoff] < 0 && fs-s.fs[r.pickup] > datamodel.MaxFixedStopsPerRide {
			return false
		}
	}
	for _, c := range s.chains {
		if s.pos[c.dropoff] >= 0 || s.pos[c.prev] < 0 {
			continue
		}
		if fs-s.fs[c.prev] > 1 {
			return false
		}
	}
	for _, b := range s.budgets {
		if s.pos[b.dropoff] < 0 && fs > b.budget {
			return false
		}
	}
	for _, r := range s.closePairs[v] {
		if s.pos[r.pickup] >= 0 && s.pos[r.dropoff] < 0 {
			return false
		}
	}
	for _, d := range s.closeLone[v] {
		if s.pos[d] < 0 {
			return false
		}
	}
	return true
}

func (s *search) stop() bool {
	if s.halted {
		return true
	}
	s.expansions++
	if s.expansions >= s.maxExpansions {
		s.halted = true
		return true
	}
	if s.expansions%checkEvery != 0 {
		return false
	}
	if s.ctx.Err() != nil {
		s.halted, s.timedOut = true, true
		return true
	}
	if !s.improveUntil.IsZero() && s.clock().After(s.improveUntil) {
		s.halted = true
		return true
	}
	return false
}
