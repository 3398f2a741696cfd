package models

import "time"

// PageDescriptor identifies a logical page to analyse. Either URL is set, or
// LinkSelector names the anchors on the home page that lead to it.
type PageDescriptor struct {
	Name               string `yaml:"name" json:"name" bson:"name"`
	URL                string `yaml:"url,omitempty" json:"url,omitempty" bson:"url,omitempty"`
	LinkSelector       string `yaml:"link_selector,omitempty" json:"link_selector,omitempty" bson:"link_selector,omitempty"`
	ScreenshotSelector string `yaml:"screenshot_selector,omitempty" json:"screenshot_selector,omitempty" bson:"screenshot_selector,omitempty"`
	ScreenshotLabel    string `yaml:"screenshot_label,omitempty" json:"screenshot_label,omitempty" bson:"screenshot_label,omitempty"`
	ScreenshotLimit    int    `yaml:"screenshot_limit,omitempty" json:"screenshot_limit,omitempty" bson:"screenshot_limit,omitempty"`
}

// PageStatus is the terminal state of one page analysis
type PageStatus string

const (
	PageOK      PageStatus = "ok"
	PageFailed  PageStatus = "failed"
	PageSkipped PageStatus = "skipped"
)

// PageResult records what happened to one page descriptor.
type PageResult struct {
	Name         string            `json:"name" bson:"name"`
	URL          string            `json:"url" bson:"url"`
	Status       PageStatus        `json:"status" bson:"status"`
	Reason       string            `json:"reason,omitempty" bson:"reason,omitempty"`
	Observations int               `json:"observations" bson:"observations"`
	Screenshots  []string          `json:"screenshots,omitempty" bson:"screenshots,omitempty"`
	CSSVariables map[string]string `json:"css_variables,omitempty" bson:"css_variables,omitempty"`
	StartedAt    time.Time         `json:"started_at" bson:"started_at"`
	Duration     time.Duration     `json:"duration" bson:"duration"`
}

// Failed builds a failed result with a reason.
func Failed(name, url, reason string) PageResult {
	return PageResult{Name: name, URL: url, Status: PageFailed, Reason: reason}
}

// Skipped builds a skipped result with a reason.
func Skipped(name, url, reason string) PageResult {
	return PageResult{Name: name, URL: url, Status: PageSkipped, Reason: reason}
}
