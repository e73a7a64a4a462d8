package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/expediterhq/expediter/internal/payment/domain"
)

type logPaymentRequest struct {
	Amount         int64  `json:"amount"`
	Method         string `json:"method"`
	CardLastDigits string `json:"card_last_digits"`
	ReceiptNumber  string `json:"receipt_number"`
	Notes          string `json:"notes"`
}

func (s *Server) LogPayment(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req logPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.LogPayment(c.Request.Context(), paymentdomain.LogPaymentRequest{
		OrderID:        strings.TrimSpace(c.Param("id")),
		Amount:         req.Amount,
		Method:         strings.TrimSpace(req.Method),
		CardLastDigits: strings.TrimSpace(req.CardLastDigits),
		ReceiptNumber:  strings.TrimSpace(req.ReceiptNumber),
		Notes:          strings.TrimSpace(req.Notes),
		Actor:          identity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.PaymentsLogged.WithLabelValues(strings.TrimSpace(req.Method)).Inc()

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type printReceiptRequest struct {
	Type string `json:"type"`
}

func (s *Server) PrintReceipt(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req printReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		AbortWithError(c, invalidRequestError())
		return
	}
	receiptType := strings.TrimSpace(req.Type)
	if receiptType == "" {
		receiptType = paymentdomain.ReceiptTypeCustomer
	}

	resp, err := s.paymentSvc.PrintReceipt(c.Request.Context(), paymentdomain.PrintReceiptRequest{
		OrderID: strings.TrimSpace(c.Param("id")),
		Type:    receiptType,
		Actor:   identity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.ReceiptsPrinted.Inc()

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ReceiptPDF renders the receipt as a PDF document. It goes through the
// same print path as PrintReceipt, so each download bumps the print count.
func (s *Server) ReceiptPDF(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	receiptType := strings.TrimSpace(c.Query("type"))
	if receiptType == "" {
		receiptType = paymentdomain.ReceiptTypeCustomer
	}

	resp, err := s.paymentSvc.PrintReceipt(c.Request.Context(), paymentdomain.PrintReceiptRequest{
		OrderID: strings.TrimSpace(c.Param("id")),
		Type:    receiptType,
		Actor:   identity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.ReceiptsPrinted.Inc()

	reader, err := s.pdf.GenerateReceipt(c.Request.Context(), resp.Receipt)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="receipt-`+resp.Receipt.OrderNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (s *Server) RefundPayment(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.paymentSvc.RefundPayment(c.Request.Context(), strings.TrimSpace(c.Param("id")), identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.Refunds.Inc()

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isPaymentValidationError(err error) bool {
	switch err {
	case paymentdomain.ErrInvalidAmount,
		paymentdomain.ErrInvalidMethod,
		paymentdomain.ErrInvalidCardDigits,
		paymentdomain.ErrInvalidReceiptType:
		return true
	default:
		return false
	}
}
