package portal

// State is the driver's position in the portal workflow. States are strictly
// ordered; a session never moves backwards, and a failed transition abandons
// the whole attempt.
type State int

const (
	StateStarted State = iota
	StateUploadModeSelected
	StateBundleUploaded
	StateSelectorTriggered
	StateProductSelected
	StateYearIterating
	StateTilesListed
	StateMatched
	StateExhausted
)

var stateNames = map[State]string{
	StateStarted:            "started",
	StateUploadModeSelected: "upload_mode_selected",
	StateBundleUploaded:     "bundle_uploaded",
	StateSelectorTriggered:  "selector_triggered",
	StateProductSelected:    "product_selected",
	StateYearIterating:      "year_iterating",
	StateTilesListed:        "tiles_listed",
	StateMatched:            "matched",
	StateExhausted:          "exhausted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
