package httpserver

import (
	"net/http"

	"orgbanking/internal/domain"
	customersvc "orgbanking/internal/service/customer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type customerHandler struct {
	svc    CustomerService
	logger *zap.Logger
}

type customerResponse struct {
	Message  string           `json:"message"`
	Customer *domain.Customer `json:"customer"`
}

type otherInfoRequest struct {
	OtherInfo []customersvc.OtherInfoInput `json:"other_info"`
}

// window reads offset and size, the latter defaulting to the service limit.
func window(c *gin.Context) (int, int, bool) {
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return 0, 0, false
	}
	size, ok := queryInt(c, "size", customersvc.DefaultLimit)
	if !ok {
		return 0, 0, false
	}
	return offset, size, true
}

func (h *customerHandler) list(c *gin.Context) {
	offset, size, ok := window(c)
	if !ok {
		return
	}
	page, err := h.svc.List(c.Request.Context(), principal(c), c.Param("organizationID"), offset, size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *customerHandler) search(c *gin.Context) {
	offset, size, ok := window(c)
	if !ok {
		return
	}
	found, err := h.svc.Search(c.Request.Context(), principal(c), c.Param("organizationID"), c.Query("q"), offset, size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(found))
}

func (h *customerHandler) sort(c *gin.Context) {
	offset, size, ok := window(c)
	if !ok {
		return
	}
	sorted, err := h.svc.SortBy(c.Request.Context(), principal(c), c.Param("organizationID"),
		c.Query("sort_key"), c.Query("sort_dir"), offset, size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(sorted))
}

func (h *customerHandler) create(c *gin.Context) {
	var in customersvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	created, err := h.svc.Create(c.Request.Context(), principal(c), c.Param("organizationID"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, customerResponse{Message: "customer created successfully", Customer: created})
}

func (h *customerHandler) get(c *gin.Context) {
	found, err := h.svc.GetByID(c.Request.Context(), principal(c), c.Param("customerID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customerResponse{Message: "customer retrieved successfully", Customer: found})
}

func (h *customerHandler) update(c *gin.Context) {
	var in customersvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), principal(c), c.Param("customerID"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customerResponse{Message: "customer updated successfully", Customer: updated})
}

func (h *customerHandler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), principal(c), c.Param("customerID")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer deleted successfully"})
}

func (h *customerHandler) listOtherInfo(c *gin.Context) {
	info, err := h.svc.GetExtraInfo(c.Request.Context(), principal(c), c.Param("customerID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(info))
}

func (h *customerHandler) addOtherInfo(c *gin.Context) {
	var req otherInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if len(req.OtherInfo) == 0 {
		badRequest(c, "other_info must not be empty")
		return
	}
	added, err := h.svc.AddExtraInfo(c.Request.Context(), principal(c), c.Param("customerID"), req.OtherInfo)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
