package transport

import (
	"encoding/json"
	"html/template"
	"net/http"

	"epdq-gateway/internal/checkout"
	"epdq-gateway/internal/utils"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	utils.WriteJSON(w, code, v)
}

func writeError(w http.ResponseWriter, message string, code int) {
	utils.WriteJSONError(w, message, code)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

var redirectForm = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body onload="document.forms[0].submit()">
<form method="post" action="{{.URL}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript><button type="submit">Continue to payment</button></noscript>
</form>
</body>
</html>
`))

type formField struct {
	Name  string
	Value string
}

type formView struct {
	Title  string
	URL    string
	Fields []formField
}

// renderRedirectForm writes a page that posts the signed fields to the
// hosted payment page as soon as it loads.
func renderRedirectForm(w http.ResponseWriter, title string, req *checkout.RedirectRequest) error {
	view := formView{Title: title, URL: req.URL}
	for _, k := range req.Params.SortedKeys() {
		view.Fields = append(view.Fields, formField{Name: k, Value: req.Params[k]})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	return redirectForm.Execute(w, view)
}
