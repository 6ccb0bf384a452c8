package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Filters is the multi-select state that drives analytics queries.
type Filters struct {
	Years      []int    `json:"years,omitempty"`
	Months     []string `json:"months,omitempty"`
	Businesses []string `json:"businesses,omitempty"`
	Channels   []string `json:"channels,omitempty"`
	Brands     []string `json:"brands,omitempty"`
}

// Encode maps each non-empty dimension to one comma-joined query parameter.
// Empty dimensions are omitted.
func (f Filters) Encode() url.Values {
	q := url.Values{}
	if len(f.Years) > 0 {
		years := make([]string, len(f.Years))
		for i, y := range f.Years {
			years[i] = strconv.Itoa(y)
		}
		q.Set("years", strings.Join(years, ","))
	}
	setJoined(q, "months", f.Months)
	setJoined(q, "businesses", f.Businesses)
	setJoined(q, "channels", f.Channels)
	setJoined(q, "brands", f.Brands)
	return q
}

func (f Filters) IsZero() bool {
	return len(f.Years) == 0 && len(f.Months) == 0 && len(f.Businesses) == 0 &&
		len(f.Channels) == 0 && len(f.Brands) == 0
}

// ParseFilters reads comma-separated dimensions from q, dropping blank items.
func ParseFilters(q url.Values) (Filters, error) {
	var f Filters
	for _, raw := range splitCSV(q.Get("years")) {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return Filters{}, fmt.Errorf("%w: year %q is not a number", ErrInvalidInput, raw)
		}
		f.Years = append(f.Years, year)
	}
	f.Months = splitCSV(q.Get("months"))
	f.Businesses = splitCSV(q.Get("businesses"))
	f.Channels = splitCSV(q.Get("channels"))
	f.Brands = splitCSV(q.Get("brands"))
	return f, nil
}

func setJoined(q url.Values, key string, values []string) {
	if len(values) == 0 {
		return
	}
	q.Set(key, strings.Join(values, ","))
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return CleanList(strings.Split(raw, ","))
}
