package images

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Kind discriminates how an image field arrived in the request.
type Kind int

const (
	// Empty means the field was absent or blank.
	Empty Kind = iota
	// Single means the field held one plain string.
	Single
	// Many means the field held an array (native or JSON-encoded).
	Many
)

// Field is the decoded form of a request field that may arrive as a single
// string, a JSON-encoded array of strings, or a true array depending on the
// caller. Every resource write path decodes through here instead of
// re-deriving the rules inline.
type Field struct {
	Kind   Kind
	Values []string
}

// Provided reports whether the caller sent the field at all.
func (f Field) Provided() bool {
	return f.Kind != Empty
}

// First returns the first value, or "" when empty.
func (f Field) First() string {
	if len(f.Values) == 0 {
		return ""
	}
	return f.Values[0]
}

// DecodeField turns raw form values into a Field. A multi-valued form field
// is already a sequence; a single value is first tried as a JSON array, and
// on decode failure treated as a one-element list unless blank.
func DecodeField(values []string) Field {
	if len(values) == 0 {
		return Field{Kind: Empty}
	}
	if len(values) > 1 {
		return Field{Kind: Many, Values: values}
	}

	raw := strings.TrimSpace(values[0])
	if raw == "" {
		return Field{Kind: Empty}
	}

	var decoded []string
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		return Field{Kind: Many, Values: decoded}
	}

	return Field{Kind: Single, Values: []string{raw}}
}

// DecodeJSONField is the JSON-body counterpart of DecodeField: the raw
// message may be a string, an array of strings, or absent.
func DecodeJSONField(raw json.RawMessage) Field {
	if len(raw) == 0 || string(raw) == "null" {
		return Field{Kind: Empty}
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return Field{Kind: Many, Values: many}
	}

	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return DecodeField([]string{one})
	}

	return Field{Kind: Empty}
}

// ValidURL accepts only well-formed absolute URLs. blob: references are
// transient client-side previews and are always rejected.
func ValidURL(candidate string) bool {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(strings.ToLower(trimmed), "blob:") {
		return false
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// Gateway uploads raw image bytes and returns a durable public URL. An
// unconfigured gateway reports Enabled() == false and is skipped entirely.
type Gateway interface {
	Enabled() bool
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// Input gathers everything a resource write path may carry about images.
type Input struct {
	// MainFile is a freshly uploaded file for the singular image field.
	MainFile *multipart.FileHeader
	// GalleryFiles are freshly uploaded gallery files.
	GalleryFiles []*multipart.FileHeader
	// MainURL is an explicit new URL for the main image.
	MainURL Field
	// Current is the main image field re-submitted as a string.
	Current Field
	// GalleryURLs are newly supplied gallery URL strings.
	GalleryURLs Field
	// Existing are previously stored gallery URLs the caller retains.
	Existing Field
	// PriorMain and PriorGallery come from the stored record.
	PriorMain    string
	PriorGallery []string
}

// Result is the canonical image set for the record.
type Result struct {
	Main    string
	Gallery []string
}

// Normalize resolves a heterogeneous image payload into one main image and
// an ordered gallery. No individual failure aborts the caller's write; at
// worst the result is empty.
//
// Main image priority: uploaded file, then explicit new URL, then a retained
// existing string, then the record's prior value. The gallery is retained
// existing entries (falling back to the prior gallery), then uploads, then
// new URLs, in that order.
func Normalize(ctx context.Context, gw Gateway, in Input, log *zap.Logger) Result {
	out := Result{
		Main:    resolveMain(ctx, gw, in, log),
		Gallery: make([]string, 0),
	}

	if in.Existing.Provided() {
		for _, existing := range in.Existing.Values {
			if ValidURL(existing) {
				out.Gallery = append(out.Gallery, strings.TrimSpace(existing))
			}
		}
	} else {
		out.Gallery = append(out.Gallery, in.PriorGallery...)
	}

	for _, file := range in.GalleryFiles {
		if file == nil || !gw.Enabled() {
			continue
		}
		uploaded, err := gw.Upload(ctx, file)
		if err != nil {
			log.Warn("gallery upload skipped",
				zap.String("filename", file.Filename),
				zap.Error(err))
			continue
		}
		out.Gallery = append(out.Gallery, uploaded)
	}

	for _, candidate := range in.GalleryURLs.Values {
		if ValidURL(candidate) {
			out.Gallery = append(out.Gallery, strings.TrimSpace(candidate))
		}
	}

	return out
}

func resolveMain(ctx context.Context, gw Gateway, in Input, log *zap.Logger) string {
	if in.MainFile != nil && gw.Enabled() {
		uploaded, err := gw.Upload(ctx, in.MainFile)
		if err == nil {
			return uploaded
		}
		log.Warn("main image upload skipped",
			zap.String("filename", in.MainFile.Filename),
			zap.Error(err))
	}

	if in.MainURL.Provided() && ValidURL(in.MainURL.First()) {
		return strings.TrimSpace(in.MainURL.First())
	}

	if in.Current.Provided() && ValidURL(in.Current.First()) {
		return strings.TrimSpace(in.Current.First())
	}

	return in.PriorMain
}

// Dedupe removes repeated URLs while preserving first-seen order. Only the
// product update path deduplicates its gallery.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
