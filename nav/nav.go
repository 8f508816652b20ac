// Package nav describes the application shell: which tabs exist and which
// one the current path lights up.
package nav

// Tab is one entry of the navigation bar
type Tab struct {
	ID      string
	LabelID string // i18n message id
	Href    string
	Icon    string
}

// Tabs in display order
var Tabs = []Tab{
	{ID: "inbox", LabelID: "nav_inbox", Href: "/dashboard", Icon: "📥"},
	{ID: "drafts", LabelID: "nav_drafts", Href: "/drafts", Icon: "📝"},
	{ID: "chat", LabelID: "nav_chat", Href: "/chat", Icon: "✨"},
	{ID: "brain", LabelID: "nav_brain", Href: "/brain", Icon: "🧠"},
}

// LandingPath is the only page rendered without tabs
const LandingPath = "/"

// Highlight returns the id of the tab whose href equals path exactly, or
// "" when no tab matches. Sub-paths do not light up their parent.
func Highlight(path string) string {
	for _, tab := range Tabs {
		if tab.Href == path {
			return tab.ID
		}
	}
	return ""
}

// ShowTabs reports whether the shell renders tabs and the upload button.
// The landing page shows an "Explore App" link instead.
func ShowTabs(path string) bool {
	return path != LandingPath
}

// Item is a tab as rendered for one request
type Item struct {
	Tab
	Label  string
	Active bool
}

// Items builds the navigation bar for path. translate resolves label ids;
// nil leaves them untranslated.
func Items(path string, translate func(string) string) []Item {
	active := Highlight(path)
	items := make([]Item, 0, len(Tabs))
	for _, tab := range Tabs {
		label := tab.LabelID
		if translate != nil {
			label = translate(tab.LabelID)
		}
		items = append(items, Item{Tab: tab, Label: label, Active: tab.ID == active})
	}
	return items
}
