package core

// Stats are the aggregate figures shown next to the topology.
type Stats struct {
	TotalLinks   int     `json:"total_links"`
	MeanPower    float64 `json:"mean_power"`
	MeanTrust    float64 `json:"mean_trust"`
	MeanDegree   float64 `json:"mean_degree"`
	MeanCapacity float64 `json:"mean_capacity"`
	Components   int     `json:"components"`
	Hops         int     `json:"hops"`
}

// Report is the read-only view of a finished run handed to renderers.
// Nodes are copied, so later changes to the Simulation do not leak in.
// Seed is only set by callers that know which seed fed the run.
type Report struct {
	Parameters   Parameters `json:"parameters"`
	Seed         int64      `json:"seed,omitempty"`
	Nodes        []Node     `json:"nodes"`
	Links        []Link     `json:"links"`
	Source       int        `json:"source"`
	Destination  int        `json:"destination"`
	Path         []int      `json:"path"`
	Status       Status     `json:"status"`
	DroppedAt    *int       `json:"dropped_at,omitempty"`
	SelfishNodes []int      `json:"selfish_nodes"`
	Stats        Stats      `json:"stats"`
}

// Report snapshots the current state of the simulation.
func (s *Simulation) Report() *Report {
	r := &Report{
		Parameters:   s.Params,
		Source:       s.Source,
		Destination:  s.Destination,
		Path:         s.Outcome.Path,
		Status:       s.Outcome.Status,
		DroppedAt:    s.Outcome.DroppedAt,
		SelfishNodes: s.Nodes.SelfishIDs(),
		Nodes:        make([]Node, 0, len(s.Nodes)),
		Links:        []Link{},
	}
	for _, n := range s.Nodes.Sorted() {
		r.Nodes = append(r.Nodes, *n)
	}

	r.Stats = Stats{
		MeanPower: s.Nodes.MeanPower(),
		MeanTrust: s.Nodes.MeanTrust(),
		Hops:      s.Outcome.Hops(),
	}
	if s.Graph != nil {
		r.Links = s.Graph.Links()
		r.Stats.TotalLinks = s.Graph.NumLinks()
		r.Stats.MeanDegree = s.Graph.MeanDegree()
		r.Stats.MeanCapacity = s.Graph.MeanCapacity()
		r.Stats.Components = len(s.Graph.Components())
	}
	return r
}
