package domain

import (
	"fmt"
	"regexp"
	"time"
)

// DefaultProjectColor is used when a project is created without a color.
const DefaultProjectColor = "#6366f1"

var (
	shortIDPattern = regexp.MustCompile(`^[A-Z]{3,6}[0-9]{2,4}$`)
	colorPattern   = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

type Project struct {
	ID          string
	ShortID     string
	Name        string
	Description string
	OwnerID     string
	Color       string
	StartDate   time.Time
	TargetDate  *time.Time
	Status      ProjectStatus
	ArchivedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateShortID checks that ShortID is non-empty and matches the required
// format: 3-6 uppercase letters followed by 2-4 digits (e.g. WEB01, MOBL0234).
func (p *Project) ValidateShortID() error {
	if p.ShortID == "" {
		return fmt.Errorf("short ID is required (use --id flag)")
	}
	if !shortIDPattern.MatchString(p.ShortID) {
		return fmt.Errorf("short ID %q must be 3-6 uppercase letters followed by 2-4 digits (e.g. WEB01)", p.ShortID)
	}
	return nil
}

// DisplayID returns the best short identifier for display.
// It prefers ShortID; if empty it truncates ID to 8 characters.
func (p *Project) DisplayID() string {
	if p.ShortID != "" {
		return p.ShortID
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}

// ValidateColor accepts hex colors of the form #rrggbb.
func ValidateColor(c string) error {
	if !colorPattern.MatchString(c) {
		return fmt.Errorf("color %q must be a hex value like %s", c, DefaultProjectColor)
	}
	return nil
}
