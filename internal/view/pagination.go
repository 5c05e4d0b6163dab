package view

import (
	"strconv"

	"golang.org/x/net/html"
)

// pageWindow is how many pages are shown on each side of the current one
const pageWindow = 2

// PageKind is the role of one pagination control
type PageKind int

const (
	PagePrev PageKind = iota
	PageNumber
	PageEllipsis
	PageNext
)

// PageItem is one control in the pagination bar. Page is the zero-based
// target page; Label is what the user sees.
type PageItem struct {
	Kind     PageKind
	Page     int
	Label    string
	Active   bool
	Disabled bool
}

// PaginationView is the paging part of a list response
type PaginationView struct {
	CurrentPage int
	TotalPages  int
	HasPrevious bool
	HasNext     bool
}

// Pages lays out the pagination bar: previous, a window of current±2 pages
// with first/last shortcuts and ellipses, next. Nothing is shown for a
// single page.
func Pages(v PaginationView) []PageItem {
	if v.TotalPages <= 1 {
		return nil
	}
	current, total := v.CurrentPage, v.TotalPages

	items := []PageItem{{
		Kind:     PagePrev,
		Page:     current - 1,
		Label:    "‹",
		Disabled: !v.HasPrevious || current <= 0,
	}}

	start := max(0, current-pageWindow)
	end := min(total-1, current+pageWindow)

	if start > 0 {
		items = append(items, number(0, current))
		if start > 1 {
			items = append(items, PageItem{Kind: PageEllipsis, Label: "...", Disabled: true})
		}
	}

	for i := start; i <= end; i++ {
		items = append(items, number(i, current))
	}

	if end < total-1 {
		if end < total-2 {
			items = append(items, PageItem{Kind: PageEllipsis, Label: "...", Disabled: true})
		}
		items = append(items, number(total-1, current))
	}

	items = append(items, PageItem{
		Kind:     PageNext,
		Page:     current + 1,
		Label:    "›",
		Disabled: !v.HasNext || current >= total-1,
	})
	return items
}

func number(page, current int) PageItem {
	return PageItem{Kind: PageNumber, Page: page, Label: strconv.Itoa(page + 1), Active: page == current}
}

// Pagination renders the pagination bar
func Pagination(v PaginationView) *html.Node {
	nav := el("div", a("id", "pagination", "class", "pagination"))
	for _, item := range Pages(v) {
		nav.AppendChild(pageControl(item))
	}
	return nav
}

func pageControl(item PageItem) *html.Node {
	if item.Kind == PageEllipsis {
		return el("span", a("class", "page-btn disabled"), text(item.Label))
	}

	var active string
	if item.Active {
		active = "active"
	}
	attrs := a("class", classes("page-btn", active), "data-page", strconv.Itoa(item.Page))
	if item.Disabled {
		attrs = append(attrs, "disabled", "")
	}

	var label *html.Node
	switch item.Kind {
	case PagePrev:
		label = icon("fas fa-chevron-left")
	case PageNext:
		label = icon("fas fa-chevron-right")
	default:
		label = text(item.Label)
	}
	return el("button", attrs, label)
}
