// Package whttp wraps retryablehttp with the timing instrumentation the
// capability prober needs: payload size, time to first byte and total
// elapsed time for a single GET.
package whttp

import (
	"io"
	stdlog "log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:83.0) Gecko/20100101 Firefox/83.0"

// FetchResult is the outcome of a timed GET.
type FetchResult struct {
	StatusCode int
	BodyBytes  int64
	TTFB       time.Duration // request sent -> first response byte
	Elapsed    time.Duration // request sent -> body fully read
	HTMLTitle  string        // empty unless the body parses as HTML with a title
	Body       []byte
}

// ClientConfig controls client construction.
type ClientConfig struct {
	Proxy    string
	Timeout  time.Duration
	RetryMax int
}

// NewClient builds a retryablehttp client with its internal logger silenced.
func NewClient(cfg ClientConfig) (*retryablehttp.Client, error) {
	client := retryablehttp.NewClient()
	client.Logger = stdlog.New(io.Discard, "", 0)
	client.RetryMax = cfg.RetryMax
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		client.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return client, nil
}

// TimedFetch performs a GET and measures it. The caller decides what the
// numbers mean; no throughput math happens here.
func TimedFetch(client *retryablehttp.Client, rawURL, userAgent string) (*FetchResult, error) {
	req, err := retryablehttp.NewRequest("GET", rawURL, nil)
	if err != nil {
		return nil, err
	}

	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-transform")
	req.Header.Set("Accept-Language", "en")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	ttfb := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	res := &FetchResult{
		StatusCode: resp.StatusCode,
		BodyBytes:  int64(len(body)),
		TTFB:       ttfb,
		Elapsed:    elapsed,
		Body:       body,
	}

	if title, ok := getHTMLTitle(string(body)); ok {
		res.HTMLTitle = strings.ToValidUTF8(strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(title, "\n", ""), "\r", "")), "")
	}

	return res, nil
}

func isTitleElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func traverse(n *html.Node) (string, bool) {
	if isTitleElement(n) {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverse(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}

func getHTMLTitle(requestBody string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(requestBody))
	if err != nil {
		return "", false
	}

	return traverse(doc)
}
