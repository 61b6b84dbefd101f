package library

import (
	"net/http"

	"github.com/ellypaws/video2world/pkg/api/entities"
	"github.com/ellypaws/video2world/pkg/api/paths"
)

func Get(h *Host, opts ...func(*Request)) ([]byte, error) {
	return NewRequest(h, http.MethodGet, opts...).Do()
}

// GetPing fetches the service's static configuration.
func (h *Host) GetPing(c *http.Client) (entities.PingResponse, error) {
	var response entities.PingResponse
	_, err := Get(h.WithPath(paths.Ping),
		WithClient(c),
		WithDest(&response),
	)
	return response, err
}

// GetDownload fetches an artifact by identifier.
func (h *Host) GetDownload(c *http.Client, id string) ([]byte, error) {
	return Get(h.WithPath(paths.DownloadPrefix+id),
		WithClient(c),
		WithAccept("video/mp4"),
	)
}

// Download fetches an absolute URL as given, typically the one returned by PostChatCompletions.
func Download(c *http.Client, rawURL string) ([]byte, error) {
	h, err := parse(rawURL)
	if err != nil {
		return nil, err
	}
	return Get(h, WithClient(c), WithAccept("*/*"))
}
