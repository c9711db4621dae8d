package transport

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	apperrors "go-housing-estimator/internal/errors"
	"go-housing-estimator/internal/features"
	"go-housing-estimator/pkg/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"label": fieldLabel,
}

var pricePrinter = message.NewPrinter(language.AmericanEnglish)

type formField struct {
	Name  string
	Value string
}

type formView struct {
	Fields     []formField
	Categories []string
	Selected   string
	Price      string
	Error      string
	Version    string
}

// formatPrice renders a rounded price the way the page shows it
func formatPrice(price float64) string {
	return pricePrinter.Sprintf("$%.2f", price)
}

func fieldLabel(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (h *handler) newFormView(values map[string]string) formView {
	schema := h.svc.Schema()
	view := formView{
		Categories: schema.Categories,
		Selected:   values[features.FieldOceanProximity],
		Version:    schema.Version,
	}
	for _, name := range schema.NumericFields {
		view.Fields = append(view.Fields, formField{Name: name, Value: values[name]})
	}
	return view
}

func (h *handler) showForm(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "form.html", h.newFormView(nil))
}

func (h *handler) submitForm(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := c.Request.ParseForm(); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(c, http.StatusRequestEntityTooLarge, "form submission rejected", err)
			return
		}
		respondError(c, http.StatusBadRequest, "form submission rejected",
			apperrors.NewMalformedInputError("", "form body could not be parsed", err))
		return
	}

	values := make(map[string]string, len(features.FieldNames()))
	raw := make(map[string]any, len(features.FieldNames()))
	for _, name := range features.FieldNames() {
		if v, ok := c.GetPostForm(name); ok {
			values[name] = v
			raw[name] = v
		}
	}

	result := h.svc.Handle(ctx, raw)
	view := h.newFormView(values)
	if result.Success() {
		view.Price = formatPrice(*result.PredictedPrice)
	} else {
		view.Error = result.ErrorMessage
	}
	renderResult(c, view, result)
}

func renderResult(c *gin.Context, view formView, result models.PredictionResult) {
	c.Header("Cache-Control", "no-store")
	status := http.StatusOK
	if !result.Success() {
		status = http.StatusUnprocessableEntity
	}
	c.HTML(status, "form.html", view)
}
