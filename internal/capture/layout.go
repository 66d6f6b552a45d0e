// Package capture grabs the screen and crops the scoreboard portraits into one
// directory per layout variant, ready for the variant selector.
package capture

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Base resolution the layout coordinates are measured at
const (
	BaseWidth  = 1280
	BaseHeight = 720
)

// Box is one portrait slot in base coordinates. Left comes from the variant.
type Box struct {
	Name   string
	Top    int
	Width  int
	Height int
}

// VariantOffset is the left edge of the portrait column for one scoreboard layout
type VariantOffset struct {
	ID   string
	Left int
}

// Layout describes where portraits sit on screen
type Layout struct {
	BaseWidth  int
	BaseHeight int
	Slots      []Box
	Variants   []VariantOffset
}

// DefaultLayout returns the scoreboard geometry for 1280x720.
// The column shifts left as a hero's perk count grows.
func DefaultLayout() Layout {
	return Layout{
		BaseWidth:  BaseWidth,
		BaseHeight: BaseHeight,
		Slots: []Box{
			{Name: "ally1", Top: 137, Width: 41, Height: 41},
			{Name: "ally2", Top: 178, Width: 41, Height: 41},
			{Name: "ally3", Top: 220, Width: 41, Height: 41},
			{Name: "ally4", Top: 261, Width: 41, Height: 41},
			{Name: "ally5", Top: 303, Width: 41, Height: 41},
			{Name: "enemy1", Top: 400, Width: 41, Height: 41},
			{Name: "enemy2", Top: 441, Width: 41, Height: 41},
			{Name: "enemy3", Top: 482, Width: 41, Height: 41},
			{Name: "enemy4", Top: 523, Width: 41, Height: 41},
			{Name: "enemy5", Top: 564, Width: 41, Height: 42},
		},
		Variants: []VariantOffset{
			{ID: "0perk", Left: 207},
			{ID: "1perk", Left: 203},
			{ID: "2perk", Left: 182},
		},
	}
}

// Role is the player's queue role. The player's own portrait is not cropped.
type Role string

const (
	RoleOpen    Role = "Open"
	RoleTank    Role = "Tank"
	RoleDamage  Role = "Damage"
	RoleSupport Role = "Support"
)

// ParseRole accepts role names case-insensitively, including the DPS and AllRoles aliases
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "allroles", "all", "":
		return RoleOpen, nil
	case "tank":
		return RoleTank, nil
	case "damage", "dps":
		return RoleDamage, nil
	case "support":
		return RoleSupport, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// SelfSlot returns the slot holding the player's own portrait
func (r Role) SelfSlot() string {
	switch r {
	case RoleDamage:
		return "ally2"
	case RoleSupport:
		return "ally4"
	default:
		return "ally1"
	}
}

// SlotsFor returns the boxes to crop for a role, in on-screen order
func (l Layout) SlotsFor(r Role) []Box {
	self := r.SelfSlot()
	out := make([]Box, 0, len(l.Slots))
	for _, b := range l.Slots {
		if b.Name == self {
			continue
		}
		out = append(out, b)
	}
	return out
}

// ScaleBox maps a base-resolution box to pixel bounds in the captured image,
// rounding each coordinate and clamping to the image.
func (l Layout) ScaleBox(b Box, left int, bounds image.Rectangle) image.Rectangle {
	imgW, imgH := bounds.Dx(), bounds.Dy()
	sx := float64(imgW) / float64(l.BaseWidth)
	sy := float64(imgH) / float64(l.BaseHeight)

	x := int(math.Round(float64(left) * sx))
	y := int(math.Round(float64(b.Top) * sy))
	w := int(math.Round(float64(b.Width) * sx))
	h := int(math.Round(float64(b.Height) * sy))

	x = clamp(x, 0, imgW-1)
	y = clamp(y, 0, imgH-1)
	right := clamp(x+max(1, w), 0, imgW)
	bottom := clamp(y+max(1, h), 0, imgH)

	return image.Rect(x, y, right, bottom).Add(bounds.Min)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
