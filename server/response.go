package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/gateway"
	"github.com/chinmay1088/chaingate/price"
	"github.com/gin-gonic/gin"
)

// Response is the envelope of every API reply.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Data    any    `json:"data"`
}

// Business codes carried in Response.Code.
const (
	CodeOK = 0

	CodeInternal = 10001
	CodeBind     = 10002
	CodeTimeout  = 10003

	CodeInvalidRequest      = 20001
	CodeUnsupportedCurrency = 20002
	CodeNotSupported        = 20003
	CodeInsufficientFunds   = 20004
	CodeBroadcastRejected   = 20005
	CodeBackendUnavailable  = 30001
	CodeNetwork             = 30002
	CodePriceUnavailable    = 30003
)

type errorMapping struct {
	target error
	status int
	code   int
}

// Order matters: a price failure may wrap a network error.
var errorMappings = []errorMapping{
	{gateway.ErrInvalidRequest, http.StatusBadRequest, CodeInvalidRequest},
	{chain.ErrUnsupportedCurrency, http.StatusNotFound, CodeUnsupportedCurrency},
	{chain.ErrNotSupported, http.StatusNotImplemented, CodeNotSupported},
	{chain.ErrInsufficientFunds, http.StatusUnprocessableEntity, CodeInsufficientFunds},
	{chain.ErrBroadcastRejected, http.StatusUnprocessableEntity, CodeBroadcastRejected},
	{chain.ErrBackendUnavailable, http.StatusServiceUnavailable, CodeBackendUnavailable},
	{price.ErrPriceUnavailable, http.StatusServiceUnavailable, CodePriceUnavailable},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout},
	{chain.ErrNetwork, http.StatusBadGateway, CodeNetwork},
}

// Decode maps err to an HTTP status and business code.
func Decode(err error) (int, int) {
	if err == nil {
		return http.StatusOK, CodeOK
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

// Success writes data with CodeOK.
func Success(c *gin.Context, data any) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: "success", Data: data})
}

// Error writes the mapped status and code. Internal errors keep their
// message out of the response.
func Error(c *gin.Context, err error) {
	status, code := Decode(err)
	msg := err.Error()
	if code == CodeInternal {
		msg = "internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, Response{Code: code, Message: msg, Data: gin.H{}})
}

func bindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, Response{Code: CodeBind, Message: err.Error(), Data: gin.H{}})
}
