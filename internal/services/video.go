package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// VideoKind classifies how a stored video link should be rendered.
type VideoKind string

const (
	VideoNone  VideoKind = "none"  // no link stored
	VideoEmbed VideoKind = "embed" // recognized video host, embeddable player
	VideoFile  VideoKind = "file"  // direct playable media file
	VideoLink  VideoKind = "link"  // plain clickable link
)

// VideoInfo is the classification result attached to entry list items so
// clients never reimplement the matching rules.
type VideoInfo struct {
	Kind     VideoKind `json:"kind"`
	URL      string    `json:"url,omitempty"`
	VideoID  string    `json:"video_id,omitempty"`
	EmbedURL string    `json:"embed_url,omitempty"`
}

// youtubeID matches youtube.com / youtu.be / youtube-nocookie.com links in
// their usual path and query shapes and captures the 11-character video id.
var youtubeID = regexp.MustCompile(`(?:youtube\.com|youtu\.be|youtube-nocookie\.com)/(?:watch\?v=|embed/|v/|shorts/)?([A-Za-z0-9_-]{11})`)

var fileExtensions = []string{".mp4", ".webm", ".ogg"}

// videoMatchers are tried in order; the first match wins. The plain-link
// fallback always matches, so classification never fails.
var videoMatchers = []func(string) (VideoInfo, bool){
	matchYouTube,
	matchDirectFile,
	matchPlainLink,
}

// ClassifyVideoLink classifies a stored video link. Malformed or
// unrecognized links degrade to a plain clickable link.
func ClassifyVideoLink(link *string) VideoInfo {
	if link == nil || strings.TrimSpace(*link) == "" {
		return VideoInfo{Kind: VideoNone}
	}

	trimmed := strings.TrimSpace(*link)
	for _, match := range videoMatchers {
		if info, ok := match(trimmed); ok {
			return info
		}
	}

	// Unreachable: matchPlainLink always matches.
	return VideoInfo{Kind: VideoLink, URL: trimmed}
}

func matchYouTube(link string) (VideoInfo, bool) {
	m := youtubeID.FindStringSubmatch(link)
	if m == nil {
		return VideoInfo{}, false
	}
	id := m[1]
	return VideoInfo{
		Kind:     VideoEmbed,
		URL:      link,
		VideoID:  id,
		EmbedURL: fmt.Sprintf("https://www.youtube.com/embed/%s", id),
	}, true
}

func matchDirectFile(link string) (VideoInfo, bool) {
	path := link
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		path = u.Path
	}
	lower := strings.ToLower(path)
	for _, ext := range fileExtensions {
		if strings.HasSuffix(lower, ext) {
			return VideoInfo{Kind: VideoFile, URL: link}, true
		}
	}
	return VideoInfo{}, false
}

func matchPlainLink(link string) (VideoInfo, bool) {
	return VideoInfo{Kind: VideoLink, URL: link}, true
}
