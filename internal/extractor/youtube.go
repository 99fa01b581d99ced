package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"chatmate/internal/domain"
)

const (
	youTubeWatchURL      = "https://www.youtube.com/watch"
	playerResponseMarker = "ytInitialPlayerResponse = "
	autoGeneratedKind    = "asr"
)

//nolint:gochecknoglobals // Compiled once, read-only.
var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	VideoDetails      *videoDetails `json:"videoDetails"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type videoDetails struct {
	VideoID          string `json:"videoId"`
	Title            string `json:"title"`
	Author           string `json:"author"`
	LengthSeconds    string `json:"lengthSeconds"`
	ViewCount        string `json:"viewCount"`
	ShortDescription string `json:"shortDescription"`
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// YouTubeTranscripts reads caption tracks exposed on the public watch page.
type YouTubeTranscripts struct {
	client   *http.Client
	watchURL string
	log      *slog.Logger
}

func NewYouTubeTranscripts(client *http.Client, log *slog.Logger) *YouTubeTranscripts {
	return &YouTubeTranscripts{
		client:   client,
		watchURL: youTubeWatchURL,
		log:      log,
	}
}

// VideoID resolves the 11-character id from any of the common URL shapes.
func VideoID(u *url.URL) (string, error) {
	if u == nil {
		return "", errors.New("URL is nil")
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string

	switch {
	case host == "youtu.be":
		id = parts[0]
	case u.Query().Get("v") != "":
		id = u.Query().Get("v")
	case len(parts) >= 2:
		switch parts[0] {
		case "shorts", "embed", "live", "v":
			id = parts[1]
		}
	}

	id = strings.TrimSpace(id)
	if !videoIDRe.MatchString(id) {
		return "", fmt.Errorf("video id is not found (URL = %s)", u.String())
	}

	return id, nil
}

func (y *YouTubeTranscripts) FetchTranscript(
	ctx context.Context,
	videoURL *url.URL,
	languageCode string,
) ([]domain.Document, error) {
	videoID, err := VideoID(videoURL)
	if err != nil {
		return nil, err
	}

	player, err := y.fetchPlayerResponse(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("fetch player response: %w", err)
	}

	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", player.PlayabilityStatus.Reason)
		}
		return nil, errors.New("video has no captions")
	}

	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks

	track, ok := pickTrack(tracks, languageCode)
	if !ok {
		return nil, fmt.Errorf(
			"no transcript in language %q (available = %s)",
			languageCode,
			strings.Join(trackLanguages(tracks), ", "),
		)
	}

	text, err := y.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch timed text: %w", err)
	}

	y.log.DebugContext(ctx, "Transcript is fetched",
		"videoID", videoID,
		"languageCode", track.LanguageCode,
		"kind", track.Kind,
		"chars", len(text))

	return []domain.Document{{
		PageContent: text,
		Metadata:    videoMetadata(videoID, player.VideoDetails),
	}}, nil
}

func (y *YouTubeTranscripts) fetchPlayerResponse(
	ctx context.Context,
	videoID string,
) (*playerResponse, error) {
	watchURL := y.watchURL + "?v=" + url.QueryEscape(videoID)

	body, err := y.get(ctx, watchURL)
	if err != nil {
		return nil, err
	}

	idx := bytes.Index(body, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse is not found in watch page")
	}

	raw := extractJSONObject(body[idx+len(playerResponseMarker):])
	if raw == nil {
		return nil, errors.New("ytInitialPlayerResponse is truncated")
	}

	var player playerResponse
	if err = json.Unmarshal(raw, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}

	return &player, nil
}

func (y *YouTubeTranscripts) fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	body, err := y.get(ctx, baseURL)
	if err != nil {
		return "", err
	}

	var tt timedText
	if err = xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timed text XML: %w", err)
	}

	var sb strings.Builder
	for _, line := range tt.Lines {
		// Caption text is HTML-escaped a second time inside the XML.
		text := strings.Join(strings.Fields(html.UnescapeString(line.Text)), " ")
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}

func (y *YouTubeTranscripts) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	setBrowserHeaders(req)

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			y.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL,
				"operation", "youtube.get")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// pickTrack prefers a manual track over an auto-generated one. Only tracks in
// the requested language qualify.
func pickTrack(tracks []captionTrack, languageCode string) (captionTrack, bool) {
	languageCode = strings.ToLower(strings.TrimSpace(languageCode))
	if languageCode == "" {
		return captionTrack{}, false
	}

	matches := func(t captionTrack) bool {
		code := strings.ToLower(t.LanguageCode)
		return code == languageCode || strings.HasPrefix(code, languageCode+"-")
	}

	for _, t := range tracks {
		if matches(t) && t.Kind != autoGeneratedKind && t.BaseURL != "" {
			return t, true
		}
	}

	for _, t := range tracks {
		if matches(t) && t.BaseURL != "" {
			return t, true
		}
	}

	return captionTrack{}, false
}

func trackLanguages(tracks []captionTrack) []string {
	langs := make([]string, 0, len(tracks))
	for _, t := range tracks {
		langs = append(langs, t.LanguageCode)
	}

	return langs
}

func videoMetadata(videoID string, details *videoDetails) map[string]string {
	meta := map[string]string{
		"source": videoID,
		"url":    youTubeWatchURL + "?v=" + videoID,
	}

	if details == nil {
		return meta
	}

	for key, value := range map[string]string{
		"title":       details.Title,
		"author":      details.Author,
		"length":      details.LengthSeconds,
		"view_count":  details.ViewCount,
		"description": details.ShortDescription,
	} {
		if value = strings.TrimSpace(value); value != "" {
			meta[key] = value
		}
	}

	return meta
}

// extractJSONObject returns the leading balanced {...} object in data.
func extractJSONObject(data []byte) []byte {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	depth := 0
	inString := false
	escaped := false

	for i, c := range data {
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return data[:i+1]
			}
		}
	}

	return nil
}
