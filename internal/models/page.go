package models

import "time"

// Page is one slice of a reverse-chronological listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// MapPage converts the items of a page while keeping its counters.
func MapPage[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return &Page[U]{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}

type LeadCounts struct {
	Registrations            int `json:"registrations"`
	Enrollments              int `json:"enrollments"`
	MasterclassRegistrations int `json:"masterclass_registrations"`
	TotalLeads               int `json:"total_leads"`
}

// LeadSummary holds per-kind counts and the most recent records of each kind.
type LeadSummary struct {
	Counts                   LeadCounts
	Registrations            []Registration
	Enrollments              []Enrollment
	MasterclassRegistrations []MasterclassRegistration
	Timestamp                time.Time
}
