package ez

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"user-service/internal/domain"
	resp "user-service/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON Binder = "json" // 从 JSON body 绑定
	BindNone Binder = "none" // 不绑定，自己从 c.Param 取
	// 整个 body 必须恰好是一个 JSON 值，尾随内容视为格式错误
	BindJSONStrict Binder = "json_strict"
)

// ErrTrailingJSON JSON 值之后还有多余内容
var ErrTrailingJSON = errors.New("unexpected data after JSON body")

// AErr 携带 HTTP 状态码的错误
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func NotFound(msg string) error   { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// StatusOf 错误 → HTTP 状态码 + 对外文案；存储/加密错误原样暴露（内部服务）
func StatusOf(err error) (int, string) {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae.Code, ae.Error()
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Error()
	}
	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		return http.StatusConflict, ce.Error()
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge, resp.CodeMsgMap[http.StatusRequestEntityTooLarge]
	}
	return http.StatusInternalServerError, err.Error()
}

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method    string
	Path      string
	Binder    Binder
	Status    int               // 成功状态码，默认 200
	BindError func(error) error // 绑定失败时转换成对外错误，默认 400 + 原文
	Handler   func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](r gin.IRoutes, a Action[I, O]) {
	ok := a.Status
	if ok == 0 {
		ok = http.StatusOK
	}
	h := func(c *gin.Context) {
		var in I
		var err error
		switch a.Binder {
		case BindJSON:
			err = c.ShouldBindJSON(&in)
		case BindJSONStrict:
			err = bindStrictJSON(c.Request, &in)
		}
		if err != nil {
			abort(c, bindError(a.BindError, err))
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(ok, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		r.GET(a.Path, h)
	case http.MethodPut:
		r.PUT(a.Path, h)
	case http.MethodDelete:
		r.DELETE(a.Path, h)
	default:
		r.POST(a.Path, h)
	}
}

// bindStrictJSON 解码后要求 body 已读尽，再走 gin 的 validator（保留 ValidationErrors 类型）
func bindStrictJSON(req *http.Request, obj any) error {
	if req == nil || req.Body == nil {
		return errors.New("invalid request")
	}
	dec := json.NewDecoder(req.Body)
	if err := dec.Decode(obj); err != nil {
		return err
	}
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
	case err == nil:
		return ErrTrailingJSON
	default:
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return errors.Join(ErrTrailingJSON, err)
	}
	return binding.Validator.ValidateStruct(obj)
}

func bindError(conv func(error) error, err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return err
	}
	if conv != nil {
		return conv(err)
	}
	return BadRequest(err.Error())
}

func abort(c *gin.Context, err error) {
	code, msg := StatusOf(err)
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(code, resp.Error(code, msg))
}
