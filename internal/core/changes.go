package core

import (
	"fmt"
	"sort"
	"time"

	"roomdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Patch is a normalized set of field mutations keyed by field name. Only
// keys present in the field table below are ever applied.
type Patch map[string]any

type fieldSpec struct {
	name    string
	display string
	// coupled names a field that must be pruned together with this one
	// (a room-id change makes the stored display names stale too).
	coupled string
	current func(r *models.Reservation) any
}

var fieldTable = []fieldSpec{
	{"title", "Title", "", func(r *models.Reservation) any { return r.Title }},
	{"description", "Description", "", func(r *models.Reservation) any { return r.Description }},
	{"startDateTime", "Start time", "", func(r *models.Reservation) any { return r.StartDateTime }},
	{"endDateTime", "End time", "", func(r *models.Reservation) any { return r.EndDateTime }},
	{"rooms", "Rooms", "roomNames", func(r *models.Reservation) any { return r.Rooms }},
	{"roomNames", "Room names", "", func(r *models.Reservation) any { return r.RoomNames }},
	{"categories", "Categories", "", func(r *models.Reservation) any { return r.Categories }},
	{"attendeeCount", "Expected attendees", "", func(r *models.Reservation) any { return r.AttendeeCount }},
	{"setupMinutes", "Setup time", "", func(r *models.Reservation) any { return r.SetupMinutes }},
	{"doorOpenMinutes", "Door-open time", "", func(r *models.Reservation) any { return r.DoorOpenMinutes }},
	{"teardownMinutes", "Teardown time", "", func(r *models.Reservation) any { return r.TeardownMinutes }},
}

func fieldByName(name string) (fieldSpec, bool) {
	for _, spec := range fieldTable {
		if spec.name == name {
			return spec, true
		}
	}
	return fieldSpec{}, false
}

// DetectChanges compares the stored reservation against a proposed patch
// and returns one descriptor per field whose value would actually change.
// Fields absent from the patch are never reported.
func DetectChanges(before *models.Reservation, patch Patch) []models.Change {
	var changes []models.Change

	for _, spec := range fieldTable {
		proposed, ok := patch[spec.name]
		if !ok {
			continue
		}

		stored := spec.current(before)
		if equalValues(stored, proposed) {
			continue
		}

		changes = append(changes, models.Change{
			Field:       spec.name,
			DisplayName: spec.display,
			OldValue:    stored,
			NewValue:    proposed,
		})
	}

	return changes
}

// MergeReviewChanges folds freshly detected changes into the review-phase
// change set. A field already tracked keeps its original OldValue so the
// final publish notification shows the full before/after span.
func MergeReviewChanges(existing, detected []models.Change) []models.Change {
	merged := make([]models.Change, len(existing))
	copy(merged, existing)

	for _, change := range detected {
		replaced := false
		for i := range merged {
			if merged[i].Field == change.Field {
				merged[i].NewValue = change.NewValue
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, change)
		}
	}

	return merged
}

// PruneAppliedChanges removes from a requester's pending change set every
// field the reviewer's own patch touches, plus any coupled field, so a
// later approval cannot silently revert the reviewer's edit. Untouched
// fields survive; an emptied set is returned as-is rather than closing the
// edit request.
func PruneAppliedChanges(requested map[string]any, patch Patch) map[string]any {
	if requested == nil {
		return nil
	}

	pruned := make(map[string]any, len(requested))
	for field, value := range requested {
		pruned[field] = value
	}

	for field := range patch {
		delete(pruned, field)
		if spec, ok := fieldByName(field); ok && spec.coupled != "" {
			delete(pruned, spec.coupled)
		}
	}

	return pruned
}

// ParsePatch normalizes a raw JSON or store-decoded map into a typed
// Patch, dropping keys outside the field table.
func ParsePatch(raw map[string]any) (Patch, error) {
	patch := Patch{}

	for name, value := range raw {
		spec, ok := fieldByName(name)
		if !ok {
			continue
		}

		switch spec.name {
		case "title", "description":
			s, err := asString(value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			patch[name] = s
		case "startDateTime", "endDateTime":
			t, err := asTime(value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			patch[name] = t.UTC()
		case "rooms", "roomNames", "categories":
			list, err := asStringSlice(value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			patch[name] = list
		default:
			n, err := asInt(value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			patch[name] = n
		}
	}

	return patch, nil
}

// BuildSet converts a patch into the store's $set document. Canonical
// timestamps regenerate their legacy local-time strings on every write.
func BuildSet(patch Patch) bson.M {
	set := bson.M{}

	for name, value := range patch {
		switch name {
		case "startDateTime":
			t := value.(time.Time)
			set["startDateTime"] = t
			set["startLocal"] = t.Format(models.LocalTimeLayout)
		case "endDateTime":
			t := value.(time.Time)
			set["endDateTime"] = t
			set["endLocal"] = t.Format(models.LocalTimeLayout)
		default:
			set[name] = value
		}
	}

	return set
}

func equalValues(stored, proposed any) bool {
	switch sv := stored.(type) {
	case time.Time:
		pv, ok := proposed.(time.Time)
		return ok && sv.Equal(pv)
	case []string:
		pv, ok := proposed.([]string)
		return ok && sameStringSet(sv, pv)
	default:
		return stored == proposed
	}
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)

	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func asString(value any) (string, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("expected string, got %T", value)
}

func asTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case primitive.DateTime:
		return v.Time(), nil
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, nil
		}
		if t, err := time.Parse(models.LocalTimeLayout, v); err == nil {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("unparseable time %q", v)
	default:
		return time.Time{}, fmt.Errorf("expected timestamp, got %T", value)
	}
}

func asStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		return anySliceToStrings(v)
	case primitive.A:
		return anySliceToStrings(v)
	default:
		return nil, fmt.Errorf("expected string list, got %T", value)
	}
}

func anySliceToStrings(values []any) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, item := range values {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected string element, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}

func asInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}
