package http

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/reader"
)

// ReaderController exposes the reader view lifecycle: open a book, report
// page turns, poll the save status, close the view.
type ReaderController struct {
	views *reader.Service
}

func NewReaderController(views *reader.Service) *ReaderController {
	return &ReaderController{views: views}
}

func (controller *ReaderController) OpenView(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	info, err := controller.views.OpenView(c.Request.Context(), GetUserID(c), bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "open reader view")
		return
	}
	respondCreated(c, info)
}

type turnPageRequest struct {
	Page int `json:"page" binding:"required"`
}

func (controller *ReaderController) TurnPage(c *gin.Context) {
	var req turnPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid page payload: "+err.Error())
		return
	}

	state, err := controller.views.TurnPage(GetUserID(c), c.Param("viewID"), req.Page)
	if err != nil {
		switch {
		case errors.Is(err, reader.ErrViewNotFound):
			respondNotFound(c, "reader view")
		case errors.Is(err, reader.ErrPageOutOfRange):
			respondBadRequest(c, "page out of range")
		default:
			respondInternalError(c, err, "turn page")
		}
		return
	}
	c.JSON(http.StatusOK, state)
}

func (controller *ReaderController) ViewStatus(c *gin.Context) {
	state, err := controller.views.Status(GetUserID(c), c.Param("viewID"))
	if err != nil {
		respondNotFound(c, "reader view")
		return
	}
	c.JSON(http.StatusOK, state)
}

func (controller *ReaderController) CloseView(c *gin.Context) {
	if err := controller.views.CloseView(GetUserID(c), c.Param("viewID")); err != nil {
		respondNotFound(c, "reader view")
		return
	}
	respondSuccess(c, "reader view closed")
}

// PDFProxyController fetches external PDFs on the client's behalf so the
// in-browser viewer is not blocked by CORS. Requests are rate limited and
// only http(s) PDFs are passed through.
type PDFProxyController struct {
	client  *http.Client
	limiter *rate.Limiter
}

func NewPDFProxyController(requestsPerMinute int, timeout time.Duration) *PDFProxyController {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PDFProxyController{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute),
	}
}

func (controller *PDFProxyController) Proxy(c *gin.Context) {
	if !controller.limiter.Allow() {
		respondError(c, http.StatusTooManyRequests, "too many proxy requests")
		return
	}

	rawURL := c.Query("url")
	if rawURL == "" {
		respondBadRequest(c, "url query parameter is required")
		return
	}

	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		respondBadRequest(c, "url must be an absolute http(s) URL")
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		respondBadRequest(c, "invalid url")
		return
	}

	resp, err := controller.client.Do(req)
	if err != nil {
		respondError(c, http.StatusBadGateway, "failed to fetch remote pdf")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respondError(c, http.StatusBadGateway, "remote server returned "+resp.Status)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Cache-Control", "public, max-age=3600")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		// Headers are already out; nothing left to do but note it
		c.Abort()
	}
}
