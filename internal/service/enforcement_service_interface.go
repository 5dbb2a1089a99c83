package service

// EnforcementServiceInterface 定义了执行会话管理器的接口：
// 在接收会话主机一侧接受 wrap 令牌、按约束计量使用 DEK、响应撤销并销毁密钥材料。
type EnforcementServiceInterface interface {
	// Accept 接受一个已签发的 wrap 令牌并建立执行会话：
	// 验证签发方签名、解封 DEK、解析使用约束。对已有活跃会话的令牌重复调用无副作用。
	//
	// 可能返回 `FetchForSession` 的全部已分类错误；签名验证失败时返回 `errorcode.ErrorForbidden`。
	Accept(wrapID string) error

	// Use 在会话内进行一次受计量的使用：重新获取令牌以感知撤销与过期，
	// 核对用途标签与调用上限后用 DEK 解密资源内容，返回本次使用的输出摘要。
	// 令牌尚无活跃会话时先行接受（懒接受）。
	//
	// 参数：
	//   wrap 令牌 ID
	//   本次使用的用途标签
	//
	// 返回：
	//   输出摘要（明文与使用序数的绑定哈希）
	//
	// 用途不符或超出调用上限时返回 `errorcode.ErrorForbidden`。
	Use(wrapID string, purpose string) (outputHash string, err error)

	// OnRevoke 响应 wrap 令牌的撤销：销毁会话内的密钥材料并留下撤销确认证据。
	// 幂等；对不存在或已关闭的会话调用无副作用。
	OnRevoke(wrapID string) error
}
