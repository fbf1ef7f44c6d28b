package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const defaultWikiBase = "https://en.wikipedia.org"

type WikiClient struct {
	http *http.Client
	base string
}

func NewWikiClient(client *http.Client) *WikiClient {
	return &WikiClient{http: client, base: defaultWikiBase}
}

// Summary fetches the encyclopedia extract for topic, trimmed to two
// sentences so the response stays speakable.
func (w *WikiClient) Summary(ctx context.Context, topic string) (string, error) {
	title := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(topic), " ", "_"))
	u := fmt.Sprintf("%s/api/rest_v1/page/summary/%s", w.base, title)

	body, status, err := get(ctx, w.http, u)
	if status == http.StatusNotFound {
		return fmt.Sprintf("No encyclopedia page found for %s", topic), nil
	}
	if err != nil {
		return "", fmt.Errorf("summary %s: %w", topic, err)
	}

	if gjson.GetBytes(body, "type").String() == "disambiguation" {
		return fmt.Sprintf("Multiple results found for %s. Please be more specific.", topic), nil
	}
	extract := gjson.GetBytes(body, "extract").String()
	if extract == "" {
		return "", fmt.Errorf("summary %s: empty extract", topic)
	}

	return "According to Wikipedia: " + firstSentences(extract, 2), nil
}

// firstSentences cuts text after n sentence boundaries.
func firstSentences(text string, n int) string {
	count := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '.' && text[i] != '!' && text[i] != '?' {
			continue
		}
		// A period followed by a lowercase letter is an abbreviation.
		if i+2 < len(text) && text[i+1] == ' ' && text[i+2] >= 'a' && text[i+2] <= 'z' {
			continue
		}
		count++
		if count == n {
			return text[:i+1]
		}
	}
	return text
}
