package web

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"chatmate/internal/domain"

	"github.com/labstack/echo/v4"
)

const templateIndex = "index"

type pageData struct {
	Languages    []domain.Language
	LanguageCode string
	URL          string
	Error        string
	Preview      string
	Summary      string
}

func newPageData() pageData {
	return pageData{
		Languages:    domain.Languages,
		LanguageCode: domain.English.Code,
	}
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.Render(http.StatusOK, templateIndex, newPageData())
}

func (s *Server) handleSummarize(c echo.Context) error {
	req := domain.Request{
		Token:    c.FormValue("token"),
		URL:      c.FormValue("url"),
		Language: domain.ParseLanguage(c.FormValue("language")),
	}

	data := newPageData()
	data.URL = req.URL
	data.LanguageCode = req.Language.Code

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	res, err := s.runner.Run(ctx, req)
	data.Preview = res.Content.Preview()

	if err != nil {
		data.Error = domain.UserMessage(err)

		s.log.WarnContext(ctx, "Failed to summarize",
			"error", err,
			"kind", domain.KindOf(err),
			"url", req.URL)

		return c.Render(statusFor(err), templateIndex, data)
	}

	data.Summary = res.Summary.Text

	return c.Render(http.StatusOK, templateIndex, data)
}

// handleDownload echoes the posted summary back as a text file.
func (s *Server) handleDownload(c echo.Context) error {
	summary := c.FormValue("summary")
	if strings.TrimSpace(summary) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "summary is empty")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": domain.SummaryFileName}))

	return c.Blob(http.StatusOK, domain.SummaryMIMEType+"; charset=utf-8", []byte(summary))
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindMissingToken, domain.KindMissingURL, domain.KindMalformedURL:
		return http.StatusBadRequest
	case domain.KindNoContentFound:
		return http.StatusUnprocessableEntity
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
