package main

import (
	"sort"
	"strings"
)

// Filter selects the projects a listing shows.
type Filter func(Project) bool

// FeaturedOnly keeps projects whose featured flag is the boolean true.
func FeaturedOnly(p Project) bool {
	return bool(p.Featured)
}

// InResearchArea keeps projects tagged with the (trimmed) area label.
func InResearchArea(label string) Filter {
	label = strings.TrimSpace(label)
	return func(p Project) bool {
		return p.ResearchAreas.Contains(label)
	}
}

// Select returns the matching projects as a new slice.
func Select(projects []Project, keep Filter) []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if keep == nil || keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// SortByOrder returns a copy ordered by ascending Order. Pairs where either
// side has no order compare equal, so their relative order is kept.
func SortByOrder(projects []Project) []Project {
	out := make([]Project, len(projects))
	copy(out, projects)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Order, out[j].Order
		if !a.Defined || !b.Defined {
			return false
		}
		return a.Value < b.Value
	})
	return out
}

const truncateAt = 150

// Truncate cuts text to 150 characters and appends "..." when it was longer.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= truncateAt {
		return text
	}
	return string(runes[:truncateAt]) + "..."
}

// Link is one rendered action link.
type Link struct {
	Href     string
	Label    string
	Icon     string
	External bool
}

const researchPage = "/research"

// PrimaryLink picks the single action link of a compact card:
// projectPage, then github, then paper, then the research page.
func PrimaryLink(p Project) Link {
	l := p.Links
	switch {
	case l != nil && l.ProjectPage != "":
		return Link{Href: l.ProjectPage, Label: "Learn More →"}
	case l != nil && l.GitHub != "":
		return Link{Href: l.GitHub, Label: "View on GitHub →", External: true}
	case l != nil && l.Paper != "":
		return Link{Href: l.Paper, Label: "View Paper →", External: true}
	default:
		return Link{Href: researchPage, Label: "Learn More →"}
	}
}

// CardLinks lists every available link of a research page card, with icons.
func CardLinks(p Project) []Link {
	l := p.Links
	if l == nil {
		return nil
	}
	var links []Link
	if l.ProjectPage != "" {
		links = append(links, Link{Href: l.ProjectPage, Label: "Project Page", Icon: "fas fa-external-link-alt", External: true})
	}
	if l.GitHub != "" {
		links = append(links, Link{Href: l.GitHub, Label: "GitHub", Icon: "fab fa-github", External: true})
	}
	if l.Paper != "" {
		label := "View Paper"
		if strings.Contains(l.Paper, "doi.org") {
			label = "Paper"
		}
		links = append(links, Link{Href: l.Paper, Label: label, Icon: "fas fa-file-alt", External: true})
	}
	if l.PyPI != "" {
		links = append(links, Link{Href: l.PyPI, Label: "PyPI", Icon: "fab fa-python", External: true})
	}
	return links
}

// DetailLinks lists the links shown when an area-browser item is expanded.
func DetailLinks(p Project) []Link {
	l := p.Links
	if l == nil {
		return nil
	}
	var links []Link
	if l.ProjectPage != "" {
		links = append(links, Link{Href: l.ProjectPage, Label: "View Project Page →", External: true})
	}
	if l.GitHub != "" {
		links = append(links, Link{Href: l.GitHub, Label: "GitHub →", External: true})
	}
	if l.Paper != "" {
		links = append(links, Link{Href: l.Paper, Label: "View Paper →", External: true})
	}
	if l.PyPI != "" {
		links = append(links, Link{Href: l.PyPI, Label: "PyPI →", External: true})
	}
	return links
}
