package web

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/qrcatalog/internal/catalog"
	"github.com/JonMunkholm/qrcatalog/internal/logging"
	"github.com/JonMunkholm/qrcatalog/internal/qrcode"
	"github.com/JonMunkholm/qrcatalog/internal/web/templates"
)

// handleProduct renders the detail page for ?p=<identifier>.
func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("p")
	if id == "" {
		s.respondError(w, r, id, ErrProductNotFound, http.StatusNotFound)
		return
	}

	entry, err := s.index.Lookup(id)
	if err != nil {
		s.respondError(w, r, id, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Debug("product page", "slug", id)
	templ.Handler(templates.ProductPage(s.productView(entry))).ServeHTTP(w, r)
}

// productView maps an entry onto the page model. Empty display fields are
// left out, as is the description, which the page shows on its own.
func (s *Server) productView(e catalog.CatalogEntry) templates.ProductView {
	view := templates.ProductView{
		Name:        e.Name,
		Code:        e.Code,
		Description: e.Description,
		Image:       e.Image,
		Link:        e.URL,
		CodeImage:   s.codeImage(e.Slug),
	}
	for _, f := range e.Fields {
		if f.Value == "" || f.Name == catalog.DescriptionField || f.Name == catalog.LabelField {
			continue
		}
		view.Fields = append(view.Fields, templates.Field{Label: f.Name, Value: f.Value})
	}
	return view
}

// codeImage returns the site path of the QR artifact for id, trying each
// supported format, or "" when the build produced none.
func (s *Server) codeImage(id string) string {
	for _, ext := range []string{qrcode.FormatPNG, qrcode.FormatSVG} {
		rel := qrcode.DefaultDir + "/" + id + "." + ext
		if _, err := os.Stat(filepath.Join(s.siteDir, filepath.FromSlash(rel))); err == nil {
			return "/" + rel
		}
	}
	return ""
}
