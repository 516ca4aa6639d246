package theme

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // decoders for RegisterFile
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"

	"github.com/jmylchreest/toaststack/internal/model"
)

// IconSize is the edge length of every popup icon.
const IconSize = 48

// ErrImageRegistered is returned when an icon name is already in use.
// Icons must be registered before the first popup that uses them is shown.
var ErrImageRegistered = errors.New("image already registered")

// builtinIconColors are the fill colors of the generated default icons.
var builtinIconColors = map[string]string{
	model.IconConfirm:     "#43a047",
	model.IconInformation: "#42a5f5",
	model.IconWarning:     "#ffb300",
	model.IconError:       "#e53935",
}

// IconCache holds named icons normalized to IconSize. Built-in icons are
// generated on first use, so they can still be overridden until then.
type IconCache struct {
	mu     sync.RWMutex
	icons  map[string]image.Image
	logger *slog.Logger
}

// NewIconCache creates an empty icon cache.
func NewIconCache(logger *slog.Logger) *IconCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &IconCache{
		icons:  make(map[string]image.Image),
		logger: logger,
	}
}

// Register normalizes img and stores it as name.
func (c *IconCache) Register(name string, img image.Image) error {
	if name == "" {
		return errors.New("icon name is required")
	}
	if img == nil {
		return fmt.Errorf("icon %s: image is nil", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.icons[name]; ok {
		return fmt.Errorf("%w: %s", ErrImageRegistered, name)
	}
	c.icons[name] = Normalize(img)
	c.logger.Debug("registered icon", "name", name, "bounds", img.Bounds().String())
	return nil
}

// RegisterFile decodes a PNG, JPEG or GIF file and registers it as name.
func (c *IconCache) RegisterFile(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening icon: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding icon %s: %w", path, err)
	}
	return c.Register(name, img)
}

// Get returns the icon registered as name. Built-in names resolve to a
// generated icon, which is cached on first use.
func (c *IconCache) Get(name string) (image.Image, bool) {
	c.mu.RLock()
	img, ok := c.icons[name]
	c.mu.RUnlock()
	if ok {
		return img, true
	}

	hex, builtin := builtinIconColors[name]
	if !builtin {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.icons[name]; ok {
		return img, true
	}
	img = builtinIcon(MustColor(hex).Color)
	c.icons[name] = img
	return img, true
}

// Names returns the names of all cached icons.
func (c *IconCache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.icons))
	for name := range c.icons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Normalize scales img so that its longer side is IconSize, keeping the
// aspect ratio, and centers it on a transparent IconSize square.
func Normalize(img image.Image) image.Image {
	b := img.Bounds()
	var scaled image.Image
	if b.Dx() > b.Dy() {
		scaled = resize.Resize(IconSize, 0, img, resize.Lanczos3)
	} else {
		scaled = resize.Resize(0, IconSize, img, resize.Lanczos3)
	}

	sb := scaled.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, IconSize, IconSize))
	offset := image.Pt((IconSize-sb.Dx())/2, (IconSize-sb.Dy())/2)
	draw.Draw(dst, sb.Sub(sb.Min).Add(offset), scaled, sb.Min, draw.Over)
	return dst
}

// builtinIcon draws a filled disc with a lighter rim.
func builtinIcon(fill colorful.Color) image.Image {
	rim := fill.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.35).Clamped()
	img := image.NewRGBA(image.Rect(0, 0, IconSize, IconSize))

	const r = IconSize / 2
	for y := range IconSize {
		for x := range IconSize {
			dx, dy := x-r, y-r
			d := dx*dx + dy*dy
			switch {
			case d <= (r-4)*(r-4):
				img.Set(x, y, fill)
			case d <= (r-1)*(r-1):
				img.Set(x, y, rim)
			default:
				img.Set(x, y, color.Transparent)
			}
		}
	}
	return img
}
