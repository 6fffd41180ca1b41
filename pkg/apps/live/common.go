package live

const (
	buttonRelative = "Relative"
	buttonFlags    = "Flags"
	buttonStints   = "Stints"
	buttonSettings = "Settings"

	inlineKeyboardRelative  = "Relative"
	inlineKeyboardStandings = "Standings"
	inlineKeyboardUpdate    = "Update"
	inlineKeyboardStints    = "Stints"
	inlineKeyboardLaps      = "Laps"

	sortByGap   = "gap"
	sortByPlace = "place"

	symbolUpdate   = "🔄"
	symbolPrevious = "⏮"
	symbolNext     = "⏭"
	symbolLaps     = "🏁"
	symbolStint    = "⏱"

	tableDriver = "DRV"
)

// status column letters for the relative table
const (
	tagPit     = "P"
	tagYellow  = "Y"
	tagBlue    = "b"
	tagBattle  = "B"
	tagClose   = "C"
	tagLapping = "L"
)
