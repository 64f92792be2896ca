// Package images chooses which upstream images of an object are worth keeping.
//
// Selection is pure: [Select] never touches storage. The catalog persists whatever it returns.
package images

import (
	"fmt"
	"strings"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

// Policy names a selection strategy.
type Policy int

const (
	All Policy = iota
	Largest
	Smallest
	None
)

var policyNames = map[Policy]string{
	All:      "all",
	Largest:  "largest",
	Smallest: "smallest",
	None:     "none",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy resolves a config value such as "largest". Matching ignores case and surrounding space.
func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return None, fmt.Errorf("%w: unknown image policy %q", shared.ErrInvalidConfig, s)
}

// MarshalText implements [encoding.TextMarshaler].
func (p Policy) MarshalText() ([]byte, error) {
	if _, ok := policyNames[p]; !ok {
		return nil, fmt.Errorf("unknown image policy %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Select applies policy to candidates.
//
// Largest and Smallest consider only images whose width and height are both present and
// positive, return at most one image, and keep the first one on equal area.
// All returns every image with a distinct URL in input order. None returns nothing.
func Select(candidates []models.ImagePayload, policy Policy) []models.ImagePayload {
	switch policy {
	case All:
		return distinct(candidates)
	case Largest:
		return pick(candidates, func(area, best int) bool { return area > best })
	case Smallest:
		return pick(candidates, func(area, best int) bool { return area < best })
	default:
		return []models.ImagePayload{}
	}
}

func pick(candidates []models.ImagePayload, better func(area, best int) bool) []models.ImagePayload {
	bestIdx, bestArea := -1, 0
	for i, img := range candidates {
		area, ok := img.Area()
		if !ok {
			continue
		}
		if bestIdx < 0 || better(area, bestArea) {
			bestIdx, bestArea = i, area
		}
	}
	if bestIdx < 0 {
		return []models.ImagePayload{}
	}
	return []models.ImagePayload{candidates[bestIdx]}
}

func distinct(candidates []models.ImagePayload) []models.ImagePayload {
	seen := make(map[string]bool, len(candidates))
	out := make([]models.ImagePayload, 0, len(candidates))
	for _, img := range candidates {
		if seen[img.URL] {
			continue
		}
		seen[img.URL] = true
		out = append(out, img)
	}
	return out
}
