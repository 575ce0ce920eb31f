package constants

const (
	// Commands.
	GiveThanksCommandName       = "givethanks"
	GiveThanksUserCommandName   = "Give Thanks"
	MostThankedTableCommandName = "mostthankedtable"
	MostThankedCommandName      = "mostthanked"
	MostThankedFullCommandName  = "mostthankedfull"
	ShowFeedbackCommandName     = "showfeedback"
	SyncNameCommandName         = "syncname"
	HealthCheckCommandName      = "healthcheck"

	// Command options.
	UserOptionName    = "user"
	GameOptionName    = "game"
	MessageOptionName = "message"
	MonthOptionName   = "month"
	YearOptionName    = "year"

	// Common.
	NotApplicable     = "N/A"
	NoMessage         = "No message"
	DefaultEmbedColor = 0x1ABC9C
	MessageLimit      = 1900

	// Give Thanks Modal.
	GiveThanksModalPrefix   = "give_thanks_modal:"
	GiveThanksModalTitle    = "Give Thanks"
	GameInputCustomID       = "game"
	NoteInputCustomID       = "note"
	GameInputLabel          = "Game (optional)"
	NoteInputLabel          = "Message (optional)"
	MaxGameInputLength      = 100
	MaxNoteInputLength      = 500
	FeedbackEntriesPerQuery = 10

	// Leaderboard Menu.
	LeaderboardScopeSelectCustomID = "leaderboard_scope"
	LeaderboardPrevButtonCustomID  = "leaderboard_prev"
	LeaderboardNextButtonCustomID  = "leaderboard_next"
	LeaderboardPrevButtonLabel     = "Prev"
	LeaderboardNextButtonLabel     = "Next"
	LeaderboardTextLimit           = 10
)
