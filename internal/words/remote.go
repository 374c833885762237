package words

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIURL is the public French word API.
const DefaultAPIURL = "https://trouve-mot.fr/"

// RemoteWord is one entry returned by the word API.
type RemoteWord struct {
	Name     string `json:"name"`
	Category string `json:"categorie"`
}

// RemoteSource fetches words from the trouve-mot.fr API:
//
//	GET api/daily, api/weekly, api/monthly → RemoteWord
//	GET api/sizemax/{max}                  → []RemoteWord
type RemoteSource struct {
	baseURL string
	client  *http.Client
}

// NewRemoteSource builds a source against baseURL; timeout bounds each request.
func NewRemoteSource(baseURL string, timeout time.Duration) *RemoteSource {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &RemoteSource{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (s *RemoteSource) Word(ctx context.Context, req Request) (string, error) {
	var name string
	switch req.Mode {
	case ModeDaily, ModeWeekly, ModeMonthly:
		var w RemoteWord
		if err := s.get(ctx, "api/"+string(req.Mode), &w); err != nil {
			return "", err
		}
		name = w.Name

	case ModeNormal, "":
		var list []RemoteWord
		if err := s.get(ctx, fmt.Sprintf("api/sizemax/%d", req.maxSize()), &list); err != nil {
			return "", err
		}
		candidates := make([]string, 0, len(list))
		for _, w := range list {
			if Valid(w.Name) {
				candidates = append(candidates, w.Name)
			}
		}
		if len(candidates) == 0 {
			return "", ErrNoWord
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(candidates))))
		if err != nil {
			return "", err
		}
		name = candidates[n.Int64()]

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}

	if !Valid(name) {
		return "", fmt.Errorf("%w: api returned %q", ErrNoWord, name)
	}
	return name, nil
}

// get decodes the JSON body of baseURL+path into out.
func (s *RemoteSource) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("words: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("words: fetch %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("words: decode %s: %w", path, err)
	}
	return nil
}
