package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/coordinator"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/metrics"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/model/rest"
)

// pullReq is the wire form of a pull request. Credentials ride in the body
// so stateless bots need no token handshake. Domain is matched as an exact
// domain name ("shop.example"), not a substring.
type pullReq struct {
	BotID    string `json:"bot_id"`
	APIToken string `json:"api_token"`
	MaxJobs  int    `json:"max_jobs"`
	Domain   string `json:"domain"`
}

type submitReq struct {
	BotID      string                 `json:"bot_id"`
	APIToken   string                 `json:"api_token"`
	JobID      string                 `json:"job_id"`
	Success    bool                   `json:"success"`
	Price      *decimal.Decimal       `json:"price"`
	Currency   string                 `json:"currency"`
	Title      string                 `json:"title"`
	InStock    *bool                  `json:"in_stock"`
	ParsedData map[string]interface{} `json:"parsed_data"`
	RawHTML    string                 `json:"raw_html"`
	ErrorMsg   string                 `json:"error_msg"`
}

func (h *Handler) pullJobs(c *gin.Context) {
	var req pullReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewError().
			WithCode(errors.RequestParameterInvalid).
			WithMessage("malformed pull request").
			WithError(err))
		return
	}

	bot, err := h.auth.Authenticate(c, req.BotID, req.APIToken)
	if err != nil {
		metrics.PullsTotal.WithLabelValues("denied").Inc()
		_ = c.Error(err)
		return
	}

	resp, err := h.service.Pull(c, bot, req.MaxJobs, req.Domain)
	if err != nil {
		metrics.PullsTotal.WithLabelValues("error").Inc()
		_ = c.Error(err)
		return
	}

	metrics.PullsTotal.WithLabelValues("ok").Inc()
	metrics.JobsLeasedTotal.Add(float64(resp.Count))
	metrics.JobsSkippedTotal.Add(float64(resp.Skipped))
	c.JSON(http.StatusOK, rest.SuccessResp(resp))
}

func (h *Handler) submitResult(c *gin.Context) {
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewError().
			WithCode(errors.RequestParameterInvalid).
			WithMessage("malformed submit request").
			WithError(err))
		return
	}

	bot, err := h.auth.Authenticate(c, req.BotID, req.APIToken)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.service.Submit(c, bot, &coordinator.SubmitRequest{
		JobID:      req.JobID,
		Success:    req.Success,
		Price:      req.Price,
		Currency:   req.Currency,
		Title:      req.Title,
		InStock:    req.InStock,
		ParsedData: req.ParsedData,
		RawHTML:    req.RawHTML,
		ErrorMsg:   req.ErrorMsg,
	})
	if err != nil {
		metrics.SubmitsTotal.WithLabelValues("rejected").Inc()
		_ = c.Error(err)
		return
	}

	metrics.SubmitsTotal.WithLabelValues(resp.Status).Inc()
	status := http.StatusOK
	if resp.Status == string(model.JobStateDone) {
		status = http.StatusCreated
	}
	c.JSON(status, rest.SuccessResp(resp))
}
