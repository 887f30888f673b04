package entities

import (
	"strings"
	"time"

	domainerrors "quorum/contexts/archive/build-registry/domain/errors"
)

// BuildStatus tracks a build through community review.
type BuildStatus string

const (
	BuildStatusPending   BuildStatus = "pending"
	BuildStatusConfirmed BuildStatus = "confirmed"
	BuildStatusDenied    BuildStatus = "denied"
)

const (
	AggregateTypeBuild = "build"

	EventTypeBuildSubmitted = "build_submitted"
	EventTypeBuildConfirmed = "build_confirmed"
	EventTypeBuildDenied    = "build_denied"
)

// Build is a submitted archive entry. The IsLocked/LockedAt pair lives on the
// same row and backs the record lock that serializes multi-step edits.
type Build struct {
	ID          int64
	Name        string
	Description string
	SubmitterID int64
	Attributes  map[string]any
	Status      BuildStatus
	IsLocked    bool
	LockedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
}

// IsPending reports whether the build still awaits a review outcome.
func (b Build) IsPending() bool {
	return b.Status == BuildStatusPending
}

// Change is one field delta proposed against a build, recorded as
// (field, from, to) so ballots can show exactly what an edit replaces.
type Change struct {
	Field string `json:"field"`
	From  any    `json:"from,omitempty"`
	To    any    `json:"to"`
}

const attributePrefix = "attributes."

// AllowedChangeField reports whether a diff may touch the named field.
// Top-level name/description plus any attributes.<key> entry are editable;
// everything else (id, status, lock columns, timestamps) is owned by the
// registry itself.
func AllowedChangeField(field string) bool {
	switch field {
	case "name", "description":
		return true
	}
	return strings.HasPrefix(field, attributePrefix) &&
		strings.TrimSpace(strings.TrimPrefix(field, attributePrefix)) != ""
}

// ValidateChanges rejects diffs touching non-editable fields or assigning
// non-string values to the string columns.
func ValidateChanges(changes []Change) error {
	for _, change := range changes {
		if !AllowedChangeField(change.Field) {
			return domainerrors.ErrInvalidChange
		}
		switch change.Field {
		case "name", "description":
			if _, ok := change.To.(string); !ok {
				return domainerrors.ErrInvalidChange
			}
		}
	}
	return nil
}

// ApplyChanges returns a copy of the build with the diff applied. The
// attributes map is cloned before merging so callers holding the input build
// never observe partial application. A nil To on an attribute removes the key.
func ApplyChanges(build Build, changes []Change) (Build, error) {
	if err := ValidateChanges(changes); err != nil {
		return Build{}, err
	}

	updated := build
	updated.Attributes = make(map[string]any, len(build.Attributes)+len(changes))
	for key, value := range build.Attributes {
		updated.Attributes[key] = value
	}

	for _, change := range changes {
		switch change.Field {
		case "name":
			updated.Name = change.To.(string)
		case "description":
			updated.Description = change.To.(string)
		default:
			key := strings.TrimPrefix(change.Field, attributePrefix)
			if change.To == nil {
				delete(updated.Attributes, key)
				continue
			}
			updated.Attributes[key] = change.To
		}
	}
	return updated, nil
}

