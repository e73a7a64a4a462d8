package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	orderdomain "github.com/expediterhq/expediter/internal/order/domain"
)

type orderCustomerPayload struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type orderItemPayload struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int64  `json:"quantity"`
	Notes      string `json:"notes"`
}

type createOrderRequest struct {
	Type        string                `json:"type"`
	TableNumber *int64                `json:"table_number"`
	Customer    *orderCustomerPayload `json:"customer"`
	Items       []orderItemPayload    `json:"items"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]orderdomain.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderdomain.CreateOrderItem{
			MenuItemID: strings.TrimSpace(item.MenuItemID),
			Quantity:   item.Quantity,
			Notes:      strings.TrimSpace(item.Notes),
		})
	}

	var customer *orderdomain.CustomerContact
	if req.Customer != nil {
		customer = &orderdomain.CustomerContact{
			Name:    strings.TrimSpace(req.Customer.Name),
			Phone:   strings.TrimSpace(req.Customer.Phone),
			Address: strings.TrimSpace(req.Customer.Address),
		}
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateOrderRequest{
		Type:        strings.TrimSpace(req.Type),
		TableNumber: req.TableNumber,
		Customer:    customer,
		Items:       items,
		Server:      identity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.OrdersCreated.WithLabelValues(string(resp.Type)).Inc()

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.UpdateStatus(c.Request.Context(), orderdomain.UpdateStatusRequest{
		OrderID: strings.TrimSpace(c.Param("id")),
		Status:  strings.TrimSpace(req.Status),
		Actor:   identity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.StatusChanges.WithLabelValues(string(resp.Status)).Inc()

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOrders(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
		Type   string `form:"type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListOrdersRequest{
		Status: strings.TrimSpace(query.Status),
		Type:   strings.TrimSpace(query.Type),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) KitchenOrders(c *gin.Context) {
	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListOrdersRequest{
		KitchenView: true,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrder(c *gin.Context) {
	resp, err := s.orderSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isOrderValidationError(err error) bool {
	switch err {
	case orderdomain.ErrInvalidID,
		orderdomain.ErrEmptyOrder,
		orderdomain.ErrUnknownItem,
		orderdomain.ErrItemUnavailable,
		orderdomain.ErrInvalidQuantity,
		orderdomain.ErrInvalidType,
		orderdomain.ErrMissingTable,
		orderdomain.ErrMissingCustomer,
		orderdomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}
