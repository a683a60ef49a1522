package figma

import (
	"net/url"
	"regexp"
	"strings"
)

// fileKeyPattern matches the file key segment of Figma links such as
// https://www.figma.com/design/<key>/Title or /proto/<key>/Title.
var fileKeyPattern = regexp.MustCompile(`^/(?:file|design|proto|board)/([A-Za-z0-9]+)(?:/branch/([A-Za-z0-9]+))?`)

// NormalizeNodeID converts the dash form used in URLs (0-3) to the colon
// form the API expects (0:3). Ids that already contain a colon are left
// alone, as are instance ids such as I1:2;3:4.
func NormalizeNodeID(id string) string {
	if strings.Contains(id, "-") && !strings.Contains(id, ":") {
		return strings.ReplaceAll(id, "-", ":")
	}
	return id
}

// ParseFileKey accepts either a bare file key or a Figma URL and returns
// the file key together with the node id from the URL's node-id
// parameter, if any. Branch URLs resolve to the branch key.
func ParseFileKey(input string) (fileKey, nodeID string, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", ErrInvalidFileKey
	}

	if !strings.Contains(input, "/") {
		if err := validateFileKey(input); err != nil {
			return "", "", err
		}
		return input, "", nil
	}

	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", ErrInvalidFileKey
	}
	host := strings.ToLower(u.Hostname())
	if host != "figma.com" && !strings.HasSuffix(host, ".figma.com") {
		return "", "", ErrInvalidFileKey
	}

	m := fileKeyPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return "", "", ErrInvalidFileKey
	}
	fileKey = m[1]
	if m[2] != "" {
		fileKey = m[2]
	}

	if id := u.Query().Get("node-id"); id != "" {
		nodeID = NormalizeNodeID(id)
	}
	return fileKey, nodeID, nil
}
