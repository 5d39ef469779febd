package browse

import "github.com/mmcdole/popcorn/internal/domain"

// View is the placeholder or content the display should show.
type View int

const (
	ViewIdle         View = iota // nothing fetched, nothing pending
	ViewSearchPrompt             // search context, no query run yet
	ViewLoading                  // first page in flight
	ViewList                     // pages to render
	ViewEmpty                    // the listing came back with no movies
	ViewError                    // last fetch failed
)

func (v View) String() string {
	switch v {
	case ViewIdle:
		return "idle"
	case ViewSearchPrompt:
		return "search-prompt"
	case ViewLoading:
		return "loading"
	case ViewList:
		return "list"
	case ViewEmpty:
		return "empty"
	case ViewError:
		return "error"
	default:
		return "unknown"
	}
}

// ResolveView decides what to render for state. An error wins over
// everything; an empty first page is an empty result, not an error.
// A list that is also loading shows the list, with the spinner drawn
// separately from state.IsLoading.
func ResolveView(state domain.FetchState, location domain.Location) View {
	switch {
	case state.Error != "":
		return ViewError
	case len(state.Pages) > 0 && len(state.Pages[0].Movies) == 0:
		return ViewEmpty
	case len(state.Pages) > 0:
		return ViewList
	case state.IsLoading:
		return ViewLoading
	case location == domain.LocationSearch:
		return ViewSearchPrompt
	default:
		return ViewIdle
	}
}
