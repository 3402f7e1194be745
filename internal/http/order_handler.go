package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/okx/WEB3-DEX/internal/http/httputil"
	"github.com/okx/WEB3-DEX/internal/orderstore"
)

// OrderHandler serves the completed-order ledger.
type OrderHandler struct {
	storage *orderstore.Storage
}

func NewOrderHandler(storage *orderstore.Storage) *OrderHandler {
	return &OrderHandler{storage: storage}
}

func (h *OrderHandler) Root() string {
	return "/orders"
}

func (h *OrderHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/:id", h.getOrder)
}

func (h *OrderHandler) getOrder(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		httputil.BadRequest(c, "order id is required")
		return
	}

	order, err := h.storage.Get(id)
	if err != nil {
		if errors.Is(err, orderstore.ErrOrderNotFound) {
			httputil.NotFound(c, "order not found")
			return
		}
		httputil.InternalError(c, err.Error())
		return
	}
	httputil.Success(c, order)
}
