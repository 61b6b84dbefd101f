package paths

// GetPaths
// "/download/:id"
// "/ping"
// "/generations/:id"
const (
	Base           = "/"
	Download       = "/download/:id"
	DownloadPrefix = "/download/"
	Ping           = "/ping"
	Generation     = "/generations/:id"
)

// PostPaths
// "/generate"
// "/v1/chat/completions"
const (
	Generate        = "/generate"
	ChatCompletions = "/v1/chat/completions"
)
