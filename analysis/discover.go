package analysis

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// discoverLink returns the first anchor matching selector in html, resolved
// against base. Links on the same host as base are preferred.
func discoverLink(html, base, selector string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var sameHost, other string
	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		link, ok := resolveHref(baseURL, href)
		if !ok {
			return true
		}
		if strings.EqualFold(link.Hostname(), baseURL.Hostname()) {
			sameHost = link.String()
			return false
		}
		if other == "" {
			other = link.String()
		}
		return true
	})

	if sameHost != "" {
		return sameHost, nil
	}
	if other != "" {
		return other, nil
	}
	return "", fmt.Errorf("no link matching %s", selector)
}

func resolveHref(base *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	link := base.ResolveReference(ref)
	if link.Scheme != "http" && link.Scheme != "https" {
		return nil, false
	}
	link.Fragment = ""
	return link, true
}

// resolveURL makes a descriptor URL absolute against the target.
func resolveURL(target, raw string) (string, error) {
	if raw == "" {
		return target, nil
	}
	base, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	link, ok := resolveHref(base, raw)
	if !ok {
		return "", fmt.Errorf("unusable page url %q", raw)
	}
	return link.String(), nil
}
