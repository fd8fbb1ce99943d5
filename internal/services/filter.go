package services

import (
	"sort"
	"strings"

	"github.com/aitracker-project/aitracker-server/internal/models"
)

// createdAtLayout is the rendering the date filter matches against, the
// same shape the entries page displays.
const createdAtLayout = "2006-01-02 15:04:05"

// EntryFilter holds independent optional substring filters. A blank filter
// passes everything; a NULL field never matches a non-blank filter.
type EntryFilter struct {
	Website     string
	Description string
	Remarks     string
	Date        string
}

type SortField string

const (
	SortByDate        SortField = "date"
	SortByWebsite     SortField = "website"
	SortByDescription SortField = "description"
	SortByRemarks     SortField = "remarks"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortField maps a query parameter to a sort field, defaulting to date.
func ParseSortField(s string) SortField {
	switch SortField(strings.ToLower(s)) {
	case SortByWebsite, SortByDescription, SortByRemarks:
		return SortField(strings.ToLower(s))
	default:
		return SortByDate
	}
}

// ParseSortOrder maps a query parameter to a sort order, defaulting to
// descending (newest first, the storage order).
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(s, string(Ascending)) {
		return Ascending
	}
	return Descending
}

// FilterEntries returns the entries matching every non-blank filter
// (case-insensitive contains, except the date filter which matches the
// created_at rendering verbatim). Order is preserved.
func FilterEntries(entries []models.EntryWithCreator, f EntryFilter) []models.EntryWithCreator {
	out := make([]models.EntryWithCreator, 0, len(entries))
	for _, e := range entries {
		if !containsFold(&e.WebsiteAddress, f.Website) {
			continue
		}
		if !containsFold(e.Description, f.Description) {
			continue
		}
		if !containsFold(e.Remarks, f.Remarks) {
			continue
		}
		if f.Date != "" && !strings.Contains(e.CreatedAt.Format(createdAtLayout), f.Date) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func containsFold(field *string, needle string) bool {
	if needle == "" {
		return true
	}
	if field == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*field), strings.ToLower(needle))
}

// SortEntries sorts in place by the given field and order. The sort is
// stable, and entries whose sort field is NULL always order last regardless
// of direction.
func SortEntries(entries []models.EntryWithCreator, field SortField, order SortOrder) {
	sort.SliceStable(entries, func(i, j int) bool {
		ki, iOK := sortKey(entries[i], field)
		kj, jOK := sortKey(entries[j], field)

		// NULL keys sink to the end in both directions.
		if iOK != jOK {
			return iOK
		}
		if !iOK {
			return false
		}
		if ki == kj {
			return false
		}
		if order == Ascending {
			return ki < kj
		}
		return ki > kj
	})
}

// sortKey extracts the comparable key for a field. The second return is
// false when the field is NULL. Dates use RFC 3339 so lexicographic order
// matches chronological order.
func sortKey(e models.EntryWithCreator, field SortField) (string, bool) {
	switch field {
	case SortByWebsite:
		return e.WebsiteAddress, true
	case SortByDescription:
		if e.Description == nil {
			return "", false
		}
		return *e.Description, true
	case SortByRemarks:
		if e.Remarks == nil {
			return "", false
		}
		return *e.Remarks, true
	default:
		return e.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000Z"), true
	}
}
