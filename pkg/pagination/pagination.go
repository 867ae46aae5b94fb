// Package pagination provides the shared page/size/sort parsing used by every
// list endpoint. Sort columns are validated against a per-resource allow-list,
// so raw client input never reaches the query builder.
package pagination

import (
	"strconv"
	"strings"
)

// Page holds a clamped pagination window.
type Page struct {
	Page   int
	Size   int
	Limit  int
	Offset int
}

// ParsePage clamps page to >= 1 and size to [1, maxSize], defaulting to
// page 1 / size 10 on missing or non-numeric input.
func ParsePage(pageRaw, sizeRaw string, maxSize int) Page {
	page, err := strconv.Atoi(strings.TrimSpace(pageRaw))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(strings.TrimSpace(sizeRaw))
	if err != nil || size < 1 {
		size = 10
	}
	if size > maxSize {
		size = maxSize
	}
	return Page{Page: page, Size: size, Limit: size, Offset: (page - 1) * size}
}

// Sort is a validated column/direction pair, safe to interpolate into a query.
type Sort struct {
	Column    string
	Direction string
}

// ParseSort parses "col,DIR" or "col:DIR". A column outside the allow-list
// falls back to the resource default column; a direction other than ASC/DESC
// (case-insensitive) falls back to the resource default direction.
func ParseSort(raw string, allowed []string, fallback Sort) Sort {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	col := raw
	dir := ""
	if i := strings.IndexAny(raw, ",: "); i >= 0 {
		col, dir = raw[:i], raw[i+1:]
	}

	out := fallback
	for _, a := range allowed {
		if col == a {
			out.Column = col
			break
		}
	}
	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "ASC":
		out.Direction = "ASC"
	case "DESC":
		out.Direction = "DESC"
	}
	return out
}

// Envelope is the response shape of all list endpoints.
type Envelope struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
	Total      int         `json:"total"`
	TotalPages int         `json:"totalPages"`
}

// NewEnvelope computes totalPages = ceil(total/size), never below 1.
func NewEnvelope(data interface{}, p Page, total int64) Envelope {
	pages := (int(total) + p.Size - 1) / p.Size
	if pages < 1 {
		pages = 1
	}
	return Envelope{Data: data, Page: p.Page, Size: p.Size, Total: int(total), TotalPages: pages}
}
