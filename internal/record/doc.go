// Package record holds the document records principals own: an image
// URL, optional extracted text, and comma-separated tags. Ownership is
// fixed at creation; updates may change content but never the owner.
package record
