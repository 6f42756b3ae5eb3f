package events

// FloorChanged is published whenever the active floor is written.
type FloorChanged struct {
	Index    int
	Previous int
}

// AssetLoaded is published once a loaded asset has been registered as a unit.
type AssetLoaded struct {
	UnitID   string
	AssetRef string
	Width    float32
	Height   float32
}

// AssetRejected carries a load failure the host should show to the user.
type AssetRejected struct {
	Path string
	Err  error
}

type ChangeReason int

const (
	ReasonPlaced ChangeReason = iota
	ReasonMoved
	ReasonRotated
	ReasonFloor
	ReasonMaterial
	ReasonRemoved
	ReasonRestored
)

func (r ChangeReason) String() string {
	switch r {
	case ReasonPlaced:
		return "placed"
	case ReasonMoved:
		return "moved"
	case ReasonRotated:
		return "rotated"
	case ReasonFloor:
		return "floor"
	case ReasonMaterial:
		return "material"
	case ReasonRemoved:
		return "removed"
	case ReasonRestored:
		return "restored"
	}
	return "unknown"
}

// UnitChanged tells render collaborators to resync the unit's node.
type UnitChanged struct {
	UnitID string
	Reason ChangeReason
}

// LayoutSaved reports a completed write of the layout document.
type LayoutSaved struct {
	Count int
}

// FloorsUpdated is published after a floor's settings were merged.
type FloorsUpdated struct {
	Index int
}
