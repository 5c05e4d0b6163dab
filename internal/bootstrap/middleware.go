package bootstrap

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/renderinc/qna-board/internal/ui"
	"github.com/renderinc/qna-board/internal/view"
)

// brokenImage replaces images that fail to load
const brokenImage = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iMjQiIGhlaWdodD0iMjQiIGZpbGw9Im5vbmUiIHN0cm9rZT0iY3VycmVudENvbG9yIiBzdHJva2Utd2lkdGg9IjIiIHZpZXdCb3g9IjAgMCAyNCAyNCIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB4PSIzIiB5PSIzIiB3aWR0aD0iMTgiIGhlaWdodD0iMTgiIHJ4PSIyIi8+PGNpcmNsZSBjeD0iOC41IiBjeT0iOC41IiByPSIxLjUiLz48cG9seWxpbmUgcG9pbnRzPSIyMSwxNSAxMiw2IDksOSIvPjwvc3ZnPg=="

func images(n *html.Node) []*html.Node {
	return view.Find(n, view.ByTag("img"))
}

// lazyImages defers loading of post images until they scroll into view. The
// page swaps data-src back into src.
func lazyImages(region ui.Region, n *html.Node) {
	if region != ui.RegionDetail && region != ui.RegionPosts {
		return
	}
	for _, img := range images(n) {
		src, ok := view.Attr(img, "src")
		if !ok || strings.HasPrefix(src, "data:") {
			continue
		}
		view.SetAttr(img, "data-src", src)
		view.RemoveAttr(img, "src")
		view.SetAttr(img, "loading", "lazy")
	}
}

// imageFallback names the placeholder the page shows for broken images
func imageFallback(region ui.Region, n *html.Node) {
	for _, img := range images(n) {
		view.SetAttr(img, "data-fallback", brokenImage)
		view.SetAttr(img, "data-fallback-title", "The image could not be loaded")
	}
}

// ariaLabels makes post items reachable and readable by assistive tech
func ariaLabels(region ui.Region, n *html.Node) {
	switch region {
	case ui.RegionFilters:
		for _, in := range view.Find(n, view.ByTag("input")) {
			if id, _ := view.Attr(in, "id"); id == "searchInput" {
				view.SetAttr(in, "aria-label", "Search posts")
			}
		}
	case ui.RegionPosts:
		for i, item := range view.Find(n, view.ByClass("post-item")) {
			var title string
			if t := view.Find(item, view.ByClass("post-title")); len(t) > 0 {
				title = view.TextContent(t[0])
			}
			view.SetAttr(item, "role", "button")
			view.SetAttr(item, "tabindex", "0")
			view.SetAttr(item, "aria-label", fmt.Sprintf("Post %d: %s", i+1, title))
		}
	}
}
