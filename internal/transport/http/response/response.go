package response

// Resp 统一信封：成功 {status, data}，失败 {status, message}
type Resp struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func OK(data any) Resp {
	return Resp{Status: StatusSuccess, Data: data}
}

// Error 失败响应（customMsg 为空时按 code 取默认文案）
func Error(code int, customMsg string) Resp {
	msg := customMsg
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return Resp{Status: StatusError, Message: msg}
}
