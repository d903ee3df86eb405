// SPDX-License-Identifier: MPL-2.0

package toolkit

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// Feature IDs.
const (
	FeatureConvert   = "convert"
	FeatureCompress  = "compress"
	FeatureMulticast = "multicast"
	FeatureNWTest    = "nwtest"
	FeatureStress    = "stress"
	FeaturePing      = "ping"
	FeatureDownload  = "download"
)

// ErrUnknownFeature is returned for an ID that is not in the catalog.
var ErrUnknownFeature = errors.New("unknown feature")

// Catalog is the ordered set of features available to the menu.
type Catalog struct {
	features []Feature
}

// DefaultFeatures returns the built-in features in menu order.
func DefaultFeatures() []Feature {
	return []Feature{
		{
			ID:       FeatureConvert,
			Title:    "Convert an image using ImageMagick",
			Summary:  "Convert an image to another format",
			Template: `convert "$INPUT" "$OUTPUT"`,
			Prompts: []Prompt{
				{Key: "INPUT", Title: "Enter the input image file path", Placeholder: "photo.jpg"},
				{Key: "FORMAT", Title: "Enter the desired output format (e.g., png, jpg, gif)", Placeholder: "png"},
			},
			derive: deriveImageOutput,
		},
		{
			ID:       FeatureCompress,
			Title:    "Compress a video using FFmpeg",
			Summary:  "Re-encode a video with libx264",
			Template: `ffmpeg -i "$INPUT" -vcodec libx264 -crf "$CRF" "$OUTPUT"`,
			Prompts: []Prompt{
				{Key: "INPUT", Title: "Enter the input video file path", Placeholder: "input.mov"},
				{Key: "OUTPUT", Title: "Enter the output video file path", Placeholder: "output.mp4"},
				{Key: "CRF", Title: "Constant rate factor (lower is better quality)", Default: "28", Optional: true},
			},
		},
		{
			ID:       FeatureMulticast,
			Title:    "List visible multicast addresses",
			Summary:  "Show multicast group memberships",
			Template: `ip maddr show`,
		},
		{
			ID:       FeatureNWTest,
			Title:    "Run an nwtest multicast test",
			Summary:  "Run nwtest and report encryption and sequence errors",
			Template: `nwtest`,
			Prompts: []Prompt{
				{Key: "ARGS", Title: "Enter nwtest arguments", Placeholder: "239.1.1.1 5000", Optional: true},
			},
			ArgsKey: "ARGS",
			Mode:    ModeMonitor,
		},
		{
			ID:       FeatureStress,
			Title:    "Generate CPU load using stress-ng",
			Summary:  "Load the CPU for a fixed time",
			Template: `stress-ng --cpu "$WORKERS" --timeout "${DURATION}s"`,
			Prompts: []Prompt{
				{Key: "WORKERS", Title: "Number of CPU workers", Default: "4", Optional: true},
				{Key: "DURATION", Title: "Duration in seconds", Default: "60", Optional: true},
			},
			derive: requireNumbers("WORKERS", "DURATION"),
		},
		{
			ID:       FeaturePing,
			Title:    "Ping a host",
			Summary:  "Send ICMP echo requests to a host",
			Template: `ping -c "$COUNT" "$HOST"`,
			Prompts: []Prompt{
				{Key: "HOST", Title: "Enter the host to ping", Placeholder: "192.168.1.1"},
				{Key: "COUNT", Title: "Number of echo requests", Default: "4", Optional: true},
			},
			derive: requireNumbers("COUNT"),
		},
		{
			ID:       FeatureDownload,
			Title:    "Download a file using wget",
			Summary:  "Fetch a URL to a local file",
			Template: `wget -O "$OUTPUT" "$URL"`,
			Prompts: []Prompt{
				{Key: "URL", Title: "Enter the URL to download", Placeholder: "https://example.com/stream.ts"},
				{Key: "OUTPUT", Title: "Save as (blank for the URL file name)", Optional: true},
			},
			derive: deriveDownloadOutput,
		},
	}
}

// NewCatalog returns the default features with templates replaced by
// overrides (feature ID -> template).
func NewCatalog(overrides map[string]string) (*Catalog, error) {
	c := &Catalog{features: DefaultFeatures()}

	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		i := c.index(id)
		if i < 0 {
			return nil, fmt.Errorf("command override %q: %w", id, ErrUnknownFeature)
		}
		tmpl := strings.TrimSpace(overrides[id])
		if tmpl == "" {
			return nil, fmt.Errorf("command override %q: %w", id, ErrEmptyTemplate)
		}
		c.features[i].Template = tmpl
	}
	return c, nil
}

// Features returns the features in menu order.
func (c *Catalog) Features() []Feature {
	return slices.Clone(c.features)
}

// Lookup returns the feature with the given ID.
func (c *Catalog) Lookup(id string) (Feature, error) {
	i := c.index(id)
	if i < 0 {
		return Feature{}, fmt.Errorf("%w: %s", ErrUnknownFeature, id)
	}
	return c.features[i], nil
}

// Tools returns the distinct programs used by the catalog, in menu order.
func (c *Catalog) Tools() []string {
	var tools []string
	for _, f := range c.features {
		if t := f.Tool(); t != "" && !slices.Contains(tools, t) {
			tools = append(tools, t)
		}
	}
	return tools
}

func (c *Catalog) index(id string) int {
	return slices.IndexFunc(c.features, func(f Feature) bool { return f.ID == id })
}

// deriveImageOutput names the converted file after the input with the new
// extension: photo.jpg + png -> photo.png.
func deriveImageOutput(values map[string]string) error {
	format := strings.TrimPrefix(values["FORMAT"], ".")
	if format == "" || strings.ContainsAny(format, `/\`) {
		return fmt.Errorf("invalid output format %q", values["FORMAT"])
	}
	in := values["INPUT"]
	values["OUTPUT"] = strings.TrimSuffix(in, filepath.Ext(in)) + "." + format
	return nil
}

// deriveDownloadOutput defaults the output file to the last URL path element.
func deriveDownloadOutput(values map[string]string) error {
	u, err := url.Parse(values["URL"])
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid URL %q", values["URL"])
	}
	if values["OUTPUT"] != "" {
		return nil
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." || name == "" {
		name = "index.html"
	}
	values["OUTPUT"] = name
	return nil
}

func requireNumbers(keys ...string) func(map[string]string) error {
	return func(values map[string]string) error {
		for _, k := range keys {
			v := values[k]
			if v == "" || strings.Trim(v, "0123456789") != "" {
				return fmt.Errorf("%s must be a whole number, got %q", strings.ToLower(k), v)
			}
		}
		return nil
	}
}
