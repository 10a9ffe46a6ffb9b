package portal

// CSS selectors for the portal's controls. The exact presentation is the
// portal's private contract; everything outside this file speaks in terms of
// the logical preconditions and actions.
const (
	selModePicker    = ".fswiLB select"
	selUploadInput   = ".shapefile-upload input"
	selTileSelector  = ".download-button"
	selProductPicker = "select.product-select"
	selYearPicker    = "select.year-select"
	selTileLinks     = ".tiles-list a"

	// uploadModeValue is the mode option that reveals the upload control.
	uploadModeValue = "Upload shapefile"
)

// Preconditions named in timeout errors so a failed wait identifies the
// portal control that never appeared.
const (
	precondModePicker    = "upload mode selector present"
	precondUploadInput   = "upload control present"
	precondTileSelector  = "tile selector trigger clickable"
	precondProductPicker = "product selector present"
	precondYearPicker    = "year selector present"
	precondTileLinks     = "results list populated"
)
