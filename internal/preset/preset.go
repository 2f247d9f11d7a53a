// Package preset stores named framerates so clients can refer to a house
// rate ("broadcast", "web-33") instead of repeating its definition.
package preset

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/zsiec/timeframe/pkg/timecode"
)

var (
	ErrNotFound    = errors.New("preset not found")
	ErrInvalidName = errors.New("invalid preset name")
)

var namePattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// Preset is a named framerate.
type Preset struct {
	Name        string             `json:"name"`
	Framerate   timecode.Framerate `json:"framerate"`
	Description string             `json:"description,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Store persists presets. Save creates or replaces a preset and keeps the
// original CreatedAt on replace.
type Store interface {
	Save(ctx context.Context, p *Preset) error
	Get(ctx context.Context, name string) (*Preset, error)
	List(ctx context.Context) ([]*Preset, error)
	Delete(ctx context.Context, name string) error
}

// ValidateName checks that name is 1-64 characters of [a-z0-9_-] and is not
// itself a framerate, since framerate strings take precedence on lookup.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "%q must match %s", name, namePattern.String())
	}
	if _, err := timecode.ParseFramerate(name); err == nil {
		return errors.Wrapf(ErrInvalidName, "%q is reserved: it is a framerate", name)
	}
	return nil
}

// Resolve turns a framerate string or a preset name into a Framerate.
// Framerate strings win; store may be nil when presets are disabled.
func Resolve(ctx context.Context, store Store, spec string) (timecode.Framerate, error) {
	fr, parseErr := timecode.ParseFramerate(spec)
	if parseErr == nil {
		return fr, nil
	}
	if store == nil || !namePattern.MatchString(spec) {
		return timecode.Framerate{}, parseErr
	}

	p, err := store.Get(ctx, spec)
	if errors.Is(err, ErrNotFound) {
		return timecode.Framerate{}, parseErr
	}
	if err != nil {
		return timecode.Framerate{}, err
	}
	return p.Framerate, nil
}

func validatePreset(p *Preset) error {
	if p == nil {
		return errors.New("preset is nil")
	}
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if p.Framerate.IsZero() {
		return errors.Wrapf(timecode.ErrUnsupportedFramerate, "preset %q has no framerate", p.Name)
	}
	return nil
}
