package images

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	enabled bool
	urls    map[string]string
	fail    map[string]bool
}

func (f *fakeGateway) Enabled() bool { return f.enabled }

func (f *fakeGateway) Upload(_ context.Context, file *multipart.FileHeader) (string, error) {
	if f.fail[file.Filename] {
		return "", errors.New("upload rejected")
	}
	return f.urls[file.Filename], nil
}

func TestDecodeField(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		kind   Kind
		want   []string
	}{
		{"absent", nil, Empty, nil},
		{"blank", []string{"   "}, Empty, nil},
		{"single string", []string{"https://a.com/x.jpg"}, Single, []string{"https://a.com/x.jpg"}},
		{"json array", []string{`["a","b"]`}, Many, []string{"a", "b"}},
		{"invalid json falls back to single", []string{`["a",`}, Single, []string{`["a",`}},
		{"native array", []string{"a", "b"}, Many, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeField(tt.values)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.want, got.Values)
		})
	}
}

func TestDecodeJSONField(t *testing.T) {
	assert.Equal(t, Empty, DecodeJSONField(nil).Kind)
	assert.Equal(t, Empty, DecodeJSONField([]byte("null")).Kind)

	arr := DecodeJSONField([]byte(`["a","b"]`))
	assert.Equal(t, Many, arr.Kind)
	assert.Equal(t, []string{"a", "b"}, arr.Values)

	// A JSON string holding an encoded array decodes twice.
	nested := DecodeJSONField([]byte(`"[\"a\",\"b\"]"`))
	assert.Equal(t, Many, nested.Kind)
	assert.Equal(t, []string{"a", "b"}, nested.Values)

	single := DecodeJSONField([]byte(`"https://a.com/x.jpg"`))
	assert.Equal(t, Single, single.Kind)
}

func TestValidURL(t *testing.T) {
	assert.True(t, ValidURL("https://a.com/x.jpg"))
	assert.True(t, ValidURL("http://cdn.example.com/img.png"))
	assert.False(t, ValidURL("not-a-url"))
	assert.False(t, ValidURL(""))
	assert.False(t, ValidURL("blob:abc"))
	assert.False(t, ValidURL("BLOB:https://a.com/x"))
	assert.False(t, ValidURL("/relative/path.jpg"))
}

func TestNormalizeGalleryFromJSONEncodedURLs(t *testing.T) {
	gw := &fakeGateway{}

	result := Normalize(context.Background(), gw, Input{
		GalleryURLs: DecodeField([]string{`["https://a.com/x.jpg","not-a-url","blob:abc"]`}),
	}, zap.NewNop())

	assert.Equal(t, []string{"https://a.com/x.jpg"}, result.Gallery)
}

func TestNormalizeRetainsExistingMainImage(t *testing.T) {
	gw := &fakeGateway{}

	result := Normalize(context.Background(), gw, Input{
		Current:   DecodeField([]string{"https://a.com/prior.jpg"}),
		PriorMain: "https://a.com/other.jpg",
	}, zap.NewNop())

	assert.Equal(t, "https://a.com/prior.jpg", result.Main)
}

func TestNormalizeFallsBackToPriorValue(t *testing.T) {
	gw := &fakeGateway{}

	result := Normalize(context.Background(), gw, Input{
		Current:   DecodeField([]string{"blob:preview"}),
		PriorMain: "https://a.com/stored.jpg",
	}, zap.NewNop())

	assert.Equal(t, "https://a.com/stored.jpg", result.Main)
}

func TestNormalizeUploadsMainFileFirst(t *testing.T) {
	gw := &fakeGateway{
		enabled: true,
		urls:    map[string]string{"new.jpg": "https://cdn.example.com/new.jpg"},
	}

	result := Normalize(context.Background(), gw, Input{
		MainFile:  &multipart.FileHeader{Filename: "new.jpg"},
		MainURL:   DecodeField([]string{"https://a.com/url.jpg"}),
		PriorMain: "https://a.com/stored.jpg",
	}, zap.NewNop())

	assert.Equal(t, "https://cdn.example.com/new.jpg", result.Main)
}

func TestNormalizeSkipsFailedGalleryUploads(t *testing.T) {
	gw := &fakeGateway{
		enabled: true,
		urls: map[string]string{
			"ok.jpg": "https://cdn.example.com/ok.jpg",
		},
		fail: map[string]bool{"bad.jpg": true},
	}

	result := Normalize(context.Background(), gw, Input{
		GalleryFiles: []*multipart.FileHeader{
			{Filename: "ok.jpg"},
			{Filename: "bad.jpg"},
		},
	}, zap.NewNop())

	assert.Equal(t, []string{"https://cdn.example.com/ok.jpg"}, result.Gallery)
}

func TestNormalizeExistingImagesReplacePriorGallery(t *testing.T) {
	gw := &fakeGateway{}

	result := Normalize(context.Background(), gw, Input{
		Existing:     DecodeField([]string{`["https://a.com/keep.jpg"]`}),
		GalleryURLs:  DecodeField([]string{"https://a.com/new.jpg"}),
		PriorGallery: []string{"https://a.com/old1.jpg", "https://a.com/old2.jpg"},
	}, zap.NewNop())

	require.Equal(t, []string{"https://a.com/keep.jpg", "https://a.com/new.jpg"}, result.Gallery)
}

func TestNormalizePriorGalleryKeptWhenExistingAbsent(t *testing.T) {
	gw := &fakeGateway{}

	result := Normalize(context.Background(), gw, Input{
		GalleryURLs:  DecodeField([]string{"https://a.com/new.jpg"}),
		PriorGallery: []string{"https://a.com/old.jpg"},
	}, zap.NewNop())

	assert.Equal(t, []string{"https://a.com/old.jpg", "https://a.com/new.jpg"}, result.Gallery)
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"a", "b", "a", "c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
