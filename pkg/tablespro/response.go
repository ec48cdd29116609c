package tablespro

// ResponseKind tags what a handler should send back.
type ResponseKind int

const (
	// ResponsePage is a full HTML page.
	ResponsePage ResponseKind = iota
	// ResponseFragment is an HTML fragment swapped into the page by htmx.
	ResponseFragment
	// ResponseRedirect asks htmx to navigate the browser to URL.
	ResponseRedirect
	// ResponseRefresh asks htmx to reload the current page.
	ResponseRefresh
	// ResponseFile is a downloadable attachment.
	ResponseFile
	// ResponseEvent is an empty body carrying a client-side event.
	ResponseEvent
)

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Response is the outcome of a table request.
type Response struct {
	Kind        ResponseKind
	Template    string
	Data        map[string]any
	Retarget    string
	URL         string
	Event       string
	EventDetail any
	File        *File
}

// PageResponse renders a full page.
func PageResponse(template string, data map[string]any) Response {
	return Response{Kind: ResponsePage, Template: template, Data: data}
}

// FragmentResponse renders a fragment.
func FragmentResponse(template string, data map[string]any) Response {
	return Response{Kind: ResponseFragment, Template: template, Data: data}
}

// RedirectResponse navigates the client to url.
func RedirectResponse(url string) Response {
	return Response{Kind: ResponseRedirect, URL: url}
}

// RefreshResponse reloads the client page.
func RefreshResponse() Response {
	return Response{Kind: ResponseRefresh}
}

// EventResponse triggers a client event.
func EventResponse(name string, detail any) Response {
	return Response{Kind: ResponseEvent, Event: name, EventDetail: detail}
}

// FileResponse sends an attachment.
func FileResponse(f *File) Response {
	return Response{Kind: ResponseFile, File: f}
}

// WithRetarget swaps the fragment into selector instead of the request's target.
func (r Response) WithRetarget(selector string) Response {
	r.Retarget = selector
	return r
}
