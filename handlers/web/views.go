package web

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"zenbox/controllers"
	"zenbox/templates"
	"zenbox/utils"

	"github.com/gofiber/template/html/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// NewEngine builds the template engine over the embedded templates
func NewEngine(reload bool) *html.Engine {
	engine := html.NewFileSystem(http.FS(templates.FS), ".html")
	engine.AddFuncMap(TemplateFuncs())
	engine.Reload(reload)
	return engine
}

// TemplateFuncs are the helpers available in every template. Translation
// helpers take the request localizer explicitly.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"t": func(l *i18n.Localizer, messageID string) string {
			return utils.T(l, messageID)
		},
		"tData": func(l *i18n.Localizer, messageID string, pairs ...interface{}) string {
			data := make(map[string]interface{}, len(pairs)/2)
			for i := 0; i+1 < len(pairs); i += 2 {
				if key, ok := pairs[i].(string); ok {
					data[key] = pairs[i+1]
				}
			}
			return utils.TWithData(l, messageID, data)
		},
		"tPlural": func(l *i18n.Localizer, messageID string, count int) string {
			return utils.TPlural(l, messageID, count)
		},
		"body":         utils.RenderBody,
		"avatarURL":    AvatarURL,
		"replySubject": controllers.ReplySubject,
		"lower":        strings.ToLower,
		"hasPrefix":    strings.HasPrefix,
	}
}

// AvatarURL routes a sender avatar through the resizing proxy
func AvatarURL(src string) string {
	if src == "" {
		return ""
	}
	return "/avatar?src=" + url.QueryEscape(src)
}
