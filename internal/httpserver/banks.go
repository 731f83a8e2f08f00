package httpserver

import (
	"net/http"

	banksvc "orgbanking/internal/service/bank"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type bankHandler struct {
	svc    BankService
	logger *zap.Logger
}

func (h *bankHandler) create(c *gin.Context) {
	var in banksvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	b, err := h.svc.Create(c.Request.Context(), principal(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *bankHandler) get(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), principal(c), c.Param("bankID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *bankHandler) list(c *gin.Context) {
	page, ok := queryInt(c, "page_number", 1)
	if !ok {
		return
	}
	size, ok := queryInt(c, "page_size", banksvc.DefaultPageSize)
	if !ok {
		return
	}
	result, err := h.svc.List(c.Request.Context(), principal(c), c.Param("organizationID"), page, size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *bankHandler) update(c *gin.Context) {
	var in banksvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	b, err := h.svc.Update(c.Request.Context(), principal(c), c.Param("bankID"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *bankHandler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), principal(c), c.Param("bankID")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "bank details successfully deleted"})
}

func (h *bankHandler) schema(c *gin.Context) {
	country := c.Query("country")
	if country == "" {
		badRequest(c, "country is required")
		return
	}
	schema, err := h.svc.CountrySchema(country)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schema": schema})
}

func (h *bankHandler) validator(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.IsSupportedCountry(c.Query("country")))
}
