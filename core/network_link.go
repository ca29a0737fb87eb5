package core

// Capacity model. A link starts at BaseCapacity and loses one unit per
// CapacityDistanceStep of distance, never dropping below MinCapacity.
// Radio and channel diversity are expressed purely as flat bonuses.
const (
	BaseCapacity         = 100
	CapacityDistanceStep = 3
	MinCapacity          = 1

	MultiRadioBonus   = 20
	MultiChannelBonus = 15
)

// Link is an undirected radio link between two nodes. U is always the
// smaller node id.
type Link struct {
	U int `json:"u"`
	V int `json:"v"`

	// Weight is the Euclidean distance between the endpoints and is the
	// routing cost of the link.
	Weight   float64 `json:"weight"`
	Capacity int     `json:"capacity"`
}

// Other returns the endpoint opposite id.
func (l Link) Other(id int) int {
	if l.U == id {
		return l.V
	}
	return l.U
}

// LinkCapacity derives the synthetic capacity of a link of the given
// length.
func LinkCapacity(distance float64, multiRadio, multiChannel bool) int {
	capacity := max(MinCapacity, BaseCapacity-int(distance/CapacityDistanceStep))
	if multiRadio {
		capacity += MultiRadioBonus
	}
	if multiChannel {
		capacity += MultiChannelBonus
	}
	return capacity
}
