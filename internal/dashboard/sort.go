package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spigell/interviewer/internal/interview"
)

type SortField string

const (
	SortByScore SortField = "score"
	SortByDate  SortField = "date"
	SortByName  SortField = "name"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSort validates the field and order names.
func ParseSort(field, order string) (SortField, SortOrder, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(field)))
	switch f {
	case SortByScore, SortByDate, SortByName:
	default:
		return "", "", fmt.Errorf("unknown sort field %q", field)
	}

	o := SortOrder(strings.ToLower(strings.TrimSpace(order)))
	switch o {
	case Ascending, Descending:
	default:
		return "", "", fmt.Errorf("unknown sort order %q", order)
	}
	return f, o, nil
}

// Sort orders the sessions in place. Ties keep their stored order.
func Sort(items []interview.CompletedSession, by SortField, order SortOrder) {
	less := func(a, b interview.CompletedSession) int {
		switch by {
		case SortByName:
			return strings.Compare(strings.ToLower(a.Profile.Name), strings.ToLower(b.Profile.Name))
		case SortByDate:
			return completedAt(a).Compare(completedAt(b))
		default:
			return a.FinalScoreValue() - b.FinalScoreValue()
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		c := less(items[i], items[j])
		if order == Descending {
			return c > 0
		}
		return c < 0
	})
}

func completedAt(c interview.CompletedSession) time.Time {
	if c.CompletedAt == nil {
		return time.Time{}
	}
	return *c.CompletedAt
}
