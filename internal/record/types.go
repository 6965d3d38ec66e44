package record

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Sentinel errors for record operations.
var (
	ErrRecordNotFound = errors.New("record not found")
)

// Record is a document entry owned by a principal. Image points at the
// scanned page, Document holds optional extracted text, and Tags is a
// comma-separated label list.
type Record struct {
	ID        string    `json:"id"`
	Image     string    `json:"image"`
	Document  string    `json:"document,omitempty"`
	Tags      string    `json:"tags"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagList splits the comma-separated tags into trimmed, non-empty labels.
func (r *Record) TagList() []string {
	if r.Tags == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(r.Tags, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// Validate checks the record's client-supplied fields.
func (r *Record) Validate() error {
	if r.Image == "" {
		return fmt.Errorf("image is required")
	}
	u, err := url.Parse(r.Image)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("image must be an http(s) URL")
	}
	return nil
}
