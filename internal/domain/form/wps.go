package form

import (
	"context"
	"net/url"

	"github.com/teciza/desk/internal/domain/entity"
)

// LabelDownload is the source label of the WPS export button
const LabelDownload = "Download"

const downloadQuery = "?cmd=%(cmd)s&docname=%(docname)s"

// BindingConfig carries the environment the WPS form script reads
type BindingConfig struct {
	// RequestURL is the application's base request endpoint
	RequestURL string
}

// DownloadURL builds the export location for docname
func DownloadURL(requestURL, docname string) string {
	return Repl(requestURL+downloadQuery, map[string]string{
		"cmd":     entity.CmdGetWPSCSV,
		"docname": url.QueryEscape(docname),
	})
}

// BindWPS registers the WPS form script: submitted documents get a
// Download button that sends the browser to the salary file export.
func BindWPS(events *Events, cfg BindingConfig) {
	events.On(entity.DoctypeWPS, Hooks{
		Refresh: func(ctx context.Context, frm *Form) {
			if !frm.Doc.IsSubmitted() {
				return
			}

			docname := frm.Doc.Name
			frm.AddCustomButton(frm.Translate(LabelDownload), func(nav Navigator) {
				nav.Navigate(DownloadURL(cfg.RequestURL, docname))
			})
		},
	})
}
