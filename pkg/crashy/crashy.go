package crashy

import (
	"encoding/json"
	"strings"

	"github.com/go-errors/errors"
)

// ErrorResponse is the JSON envelope for every error the service returns.
// Detail carries the human-readable message, Debug an optional stack.
type ErrorResponse struct {
	ErrorString string `json:"detail"`
	Debug       any    `json:"debug,omitempty"`
}

// Wrap converts err into an ErrorResponse. Stacks from go-errors are kept in Debug.
func Wrap(err error) ErrorResponse {
	var debug *errors.Error
	if errors.As(err, &debug) {
		return ErrorResponse{ErrorString: err.Error(), Debug: debug}
	}
	return ErrorResponse{ErrorString: err.Error()}
}

// Detail returns an ErrorResponse without any debug information.
func Detail(detail string) ErrorResponse {
	return ErrorResponse{ErrorString: detail}
}

func (e ErrorResponse) Error() string {
	return e.ErrorString
}

func (e ErrorResponse) String() string {
	return e.ErrorString
}

// Stripped drops the debug stack, used when the server is not logging at debug level.
func (e ErrorResponse) Stripped() ErrorResponse {
	e.Debug = nil
	return e
}

func (e ErrorResponse) DebugString() string {
	if e.Debug == nil {
		return ""
	}
	return TrimPath(errors.Wrap(e.Debug, 0).ErrorStack())
}

func (e ErrorResponse) Map() map[string]any {
	if e.Debug == nil {
		return nil
	}
	return MapPath(errors.Wrap(e.Debug, 0).ErrorStack())
}

func (e ErrorResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Detail string         `json:"detail"`
		Debug  map[string]any `json:"debug,omitempty"`
	}{
		Detail: e.ErrorString,
		Debug:  e.Map(),
	})
}

const (
	projectPrefix = "/pkg/"
	modulePrefix  = "/pkg/mod/"
)

func inProject(line string) bool {
	return strings.Contains(line, projectPrefix) && !strings.Contains(line, modulePrefix)
}

// TrimPath cleans up the stack trace by only showing the callers inside this project
func TrimPath(s string) string {
	lines := strings.Split(s, "\n")

	var keepNext bool
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case keepNext:
			out = append(out, line)
			keepNext = false
		case inProject(line):
			out = append(out, removePrefix(line, projectPrefix))
			keepNext = true
		}
	}

	return strings.Join(out, "\n")
}

// MapPath returns a map of the stack trace.
// The keys are the callers and the values are the source lines.
func MapPath(s string) map[string]any {
	lines := strings.Split(s, "\n")

	var out = make(map[string]any)
	var caller string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case caller != "":
			out[caller] = line
			caller = ""
		case inProject(line):
			caller = removeMemoryAddress(removePrefix(line, projectPrefix))
			out[caller] = caller
		}
	}
	return out
}

func removePrefix(line string, prefix string) string {
	index := strings.Index(line, prefix)
	return line[index:]
}

func removeMemoryAddress(line string) string {
	index := strings.LastIndex(line, " (0x")
	if index < 0 {
		return line
	}
	return line[:index]
}
