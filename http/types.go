package http

import (
	"github.com/wesleyorama2/relay/internal/core"
	"github.com/wesleyorama2/relay/internal/urlbuild"
)

type (
	RequestConfig       = core.RequestConfig
	Response            = core.Response
	TimingInfo          = core.TimingInfo
	Error               = core.Error
	Kind                = core.Kind
	Params              = core.Params
	Param               = core.Param
	Plugin              = core.Plugin
	RequestInterceptor  = core.RequestInterceptor
	ResponseInterceptor = core.ResponseInterceptor
	AfterHook           = core.AfterHook
	Transport           = core.Transport
	TransportFunc       = core.TransportFunc
	TransportRequest    = core.TransportRequest
	TransportResponse   = core.TransportResponse
)

const (
	KindTimeout     = core.KindTimeout
	KindProtocol    = core.KindProtocol
	KindNetwork     = core.KindNetwork
	KindInterceptor = core.KindInterceptor

	CodeTimeout     = core.CodeTimeout
	CodeBadResponse = core.CodeBadResponse
	CodeBadRequest  = core.CodeBadRequest
	CodeCanceled    = core.CodeCanceled
	CodeNetwork     = core.CodeNetwork
	CodeConnRefused = core.CodeConnRefused
	CodeConnReset   = core.CodeConnReset
	CodeNotFound    = core.CodeNotFound
)

var (
	ErrTimeout     = core.ErrTimeout
	ErrProtocol    = core.ErrProtocol
	ErrNetwork     = core.ErrNetwork
	ErrInterceptor = core.ErrInterceptor
)

// IsError reports whether err is, or wraps, an *Error.
func IsError(err error) bool { return core.IsError(err) }

// AsError extracts the *Error from err.
func AsError(err error) (*Error, bool) { return core.AsError(err) }

// Merge combines configs left to right without mutating them.
func Merge(sources ...*RequestConfig) *RequestConfig { return core.Merge(sources...) }

// Pairs builds ordered Params from alternating keys and values.
func Pairs(kv ...any) Params { return urlbuild.Pairs(kv...) }

// BuildURL returns the URL a config would be sent to.
func BuildURL(cfg *RequestConfig) string {
	if cfg == nil {
		return ""
	}
	return urlbuild.BuildFullURL(cfg.BaseURL, cfg.URL, cfg.Params)
}
