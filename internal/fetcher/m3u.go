// Package fetcher downloads and parses M3U playlists into channel entries.
package fetcher

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/voyagen/tvcatalog/internal/models"
)

var (
	reTvgName       = regexp.MustCompile(`tvg-name="([^"]*)"`)
	reTvgID         = regexp.MustCompile(`tvg-id="([^"]*)"`)
	reTvgLogo       = regexp.MustCompile(`tvg-logo="([^"]*)"`)
	reGroup         = regexp.MustCompile(`group-title="([^"]*)"`)
	reCommaName     = regexp.MustCompile(`,([^\n\r\t]*)$`)
	reHTTPOrigin    = regexp.MustCompile(`http-origin=(.+)`)
	reHTTPReferrer  = regexp.MustCompile(`http-referrer=(.+)`)
	reHTTPUserAgent = regexp.MustCompile(`http-user-agent=(.+)`)
)

const maxLineSize = 1024 * 1024

// ParseM3U reads a playlist from r. Items without a usable name are skipped,
// as is an #EXTINF line that is never followed by a URL.
func ParseM3U(r io.Reader, useTvgID bool) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var extinf string
	var headers *models.ChannelHttpHeaders

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "#EXTINF"):
			extinf = line
			headers = nil
		case strings.HasPrefix(upper, "#EXTVLCOPT"):
			if extinf == "" {
				continue
			}
			headers = applyVLCOpt(headers, line)
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		default:
			if extinf == "" {
				continue
			}
			if e, ok := buildEntry(extinf, line, headers, useTvgID); ok {
				entries = append(entries, e)
			}
			extinf = ""
			headers = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func buildEntry(extinf, url string, headers *models.ChannelHttpHeaders, useTvgID bool) (Entry, bool) {
	name := channelName(extinf, useTvgID)
	if name == "" {
		return Entry{}, false
	}
	u := url
	e := Entry{
		Channel: models.Channel{
			Name:      name,
			URL:       &u,
			Group:     matchFirstPtr(reGroup, extinf),
			Image:     matchFirstPtr(reTvgLogo, extinf),
			MediaType: mediaTypeFromURL(url),
		},
	}
	if !headers.IsEmpty() {
		e.Headers = headers
	}
	return e, true
}

func applyVLCOpt(h *models.ChannelHttpHeaders, line string) *models.ChannelHttpHeaders {
	if h == nil {
		h = &models.ChannelHttpHeaders{}
	}
	if s := matchFirstPtr(reHTTPOrigin, line); s != nil {
		h.HTTPOrigin = s
	}
	if s := matchFirstPtr(reHTTPReferrer, line); s != nil {
		h.Referrer = s
	}
	if s := matchFirstPtr(reHTTPUserAgent, line); s != nil {
		h.UserAgent = s
	}
	return h
}

func matchFirst(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func matchFirstPtr(re *regexp.Regexp, s string) *string {
	v := matchFirst(re, s)
	if v == "" {
		return nil
	}
	return &v
}

// channelName picks tvg-name, then tvg-id or the trailing display name in the
// order selected by useTvgID.
func channelName(extinf string, useTvgID bool) string {
	if n := matchFirst(reTvgName, extinf); n != "" {
		return n
	}
	id := matchFirst(reTvgID, extinf)
	alt := matchFirst(reCommaName, stripAttributes(extinf))
	if useTvgID {
		if id != "" {
			return id
		}
		return alt
	}
	if alt != "" {
		return alt
	}
	return id
}

// stripAttributes drops quoted attribute values so a comma inside one is not
// mistaken for the display name separator.
func stripAttributes(extinf string) string {
	var b strings.Builder
	quoted := false
	for _, r := range extinf {
		if r == '"' {
			quoted = !quoted
			continue
		}
		if !quoted {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func mediaTypeFromURL(url string) models.MediaType {
	lower := strings.ToLower(url)
	if strings.HasSuffix(lower, ".mp4") || strings.HasSuffix(lower, ".mkv") {
		return models.MediaTypeMovie
	}
	return models.MediaTypeLivestream
}
