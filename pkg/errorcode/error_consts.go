package errorcode

import "fmt"

const (
	// CodeNotFound 表示资源未找到。Service 层收到的错误中若是这样的错误信息则表示是资源未找到，而非内部运行出错。
	CodeNotFound = "~NOTFOUND~"
	// CodeForbidden 表示参数被理解，但无权进行操作。Service 层收到的错误中若是这样的错误信息则表示是操作权限的问题，而非内部运行出错。
	CodeForbidden = "~FORBIDDEN~"
	// CodeNotReady 表示对象存在但尚未就绪（如 wrap 令牌尚未绑定审计回执完成签名）。调用方可稍后重试。
	CodeNotReady = "~NOTREADY~"
	// CodeRevoked 表示对象已被撤销。撤销不可逆，调用方不应重试。
	CodeRevoked = "~REVOKED~"
	// CodeExpired 表示对象已过期或尚未生效。
	CodeExpired = "~EXPIRED~"
	// CodeNotImplemented 是个在这个项目中约定俗成的代号。Service 层收到错误中若是这样的错误信息则表示是暂时未实现的功能而非内部运行出错。
	CodeNotImplemented = "~NOTIMPLEMENTED~"
)

// ErrorNotFound 为使用了 `CodeNotFound` 的 error 实例
var ErrorNotFound = fmt.Errorf(CodeNotFound)

// ErrorForbidden 为使用了 `CodeForbidden` 的 error 实例
var ErrorForbidden = fmt.Errorf(CodeForbidden)

// ErrorNotReady 为使用了 `CodeNotReady` 的 error 实例
var ErrorNotReady = fmt.Errorf(CodeNotReady)

// ErrorRevoked 为使用了 `CodeRevoked` 的 error 实例
var ErrorRevoked = fmt.Errorf(CodeRevoked)

// ErrorExpired 为使用了 `CodeExpired` 的 error 实例
var ErrorExpired = fmt.Errorf(CodeExpired)

// ErrorNotImplemented 为使用了 `CodeNotImplemented` 的 error 实例
var ErrorNotImplemented = fmt.Errorf(CodeNotImplemented)
