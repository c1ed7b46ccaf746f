package topbar

import "github.com/a-h/templ"

// actionURL is the form target of a mount action.
func actionURL(mount, name string) templ.SafeURL {
	return templ.URL("/bar/" + mount + "/" + name)
}
