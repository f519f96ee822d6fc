package response

import "net/http"

// 信封里的 status 字段
const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// CodeMsgMap HTTP 状态码默认提示，Error 未传 msg 时使用
var CodeMsgMap = map[int]string{
	http.StatusBadRequest:            "Bad Request",
	http.StatusNotFound:              "Not Found",
	http.StatusConflict:              "Conflict",
	http.StatusRequestEntityTooLarge: "request body too large",
	http.StatusTooManyRequests:       "too many requests",
	http.StatusInternalServerError:   "Internal Server Error",
	http.StatusServiceUnavailable:    "server busy",
	http.StatusGatewayTimeout:        "timeout",
}
