package main

import "strings"

// Element is the slice of a DOM node that handlers match on.
type Element struct {
	Tag     string            `json:"tag"`
	ID      string            `json:"id,omitempty"`
	Classes []string          `json:"classes,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
	Href    string            `json:"href,omitempty"`
}

// documentElement terminates every propagation path.
var documentElement = Element{Tag: "#document"}

func (e Element) HasClass(name string) bool {
	for _, c := range e.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// DataAttr returns data-<key>, or "".
func (e Element) DataAttr(key string) string {
	if e.Data == nil {
		return ""
	}
	return e.Data[key]
}

// SectionSpan is the measured vertical box of a page section.
type SectionSpan struct {
	ID     string  `json:"id"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Event is a browser event forwarded to the page controller. Path lists the
// target first and then its ancestors; the document is implied at the end.
type Event struct {
	Type    string        `json:"type"`
	Path    []Element     `json:"path,omitempty"`
	Key     string        `json:"key,omitempty"`
	ScrollY float64       `json:"scrollY,omitempty"`
	Spans   []SectionSpan `json:"spans,omitempty"`
}

// Outcome is what a handler did with an event.
type Outcome struct {
	StopPropagation bool
	PreventDefault  bool
	Changed         []string
	ScrollTo        *float64
}

// Predicate selects the elements a handler is delegated to.
type Predicate func(Element) bool

// Handler runs for the element that matched its predicate.
type Handler func(ev Event, el Element) Outcome

func hasClass(name string) Predicate {
	return func(e Element) bool { return e.HasClass(name) }
}

func isDocument(e Element) bool { return e.Tag == documentElement.Tag }

type route struct {
	event  string
	match  Predicate
	handle Handler
}

// Dispatcher is a declarative table of event handlers keyed by event type
// and target predicate. Dispatch walks the propagation path the way
// delegated handlers see it: each element in turn, stopping after the
// element whose handler stopped propagation.
type Dispatcher struct {
	routes []route
}

func (d *Dispatcher) On(event string, match Predicate, h Handler) {
	d.routes = append(d.routes, route{event: event, match: match, handle: h})
}

// Dispatch runs every matching handler and merges their outcomes.
func (d *Dispatcher) Dispatch(ev Event) Outcome {
	path := append(append([]Element(nil), ev.Path...), documentElement)
	var out Outcome
	seen := map[string]bool{}
	for _, el := range path {
		for _, r := range d.routes {
			if !strings.EqualFold(r.event, ev.Type) || !r.match(el) {
				continue
			}
			res := r.handle(ev, el)
			out.PreventDefault = out.PreventDefault || res.PreventDefault
			out.StopPropagation = out.StopPropagation || res.StopPropagation
			if res.ScrollTo != nil {
				out.ScrollTo = res.ScrollTo
			}
			for _, c := range res.Changed {
				if !seen[c] {
					seen[c] = true
					out.Changed = append(out.Changed, c)
				}
			}
		}
		if out.StopPropagation {
			break
		}
	}
	return out
}
