package controller

// ResourceCreationInfo 包含资源成功创建时应该返回给客户端的信息
type ResourceCreationInfo struct {
	ResourceID  string `json:"resourceId"`        // 资源 ID
	Fingerprint string `json:"fingerprint"`       // 明文指纹
	IpfsCid     string `json:"ipfsCid,omitempty"` // 密文在 IPFS 网络上的 CID（启用 IPFS 时）
}

// AuthorizationCreationInfo 包含授权记录成功发布时应该返回给客户端的信息
type AuthorizationCreationInfo struct {
	AuthorizationID string `json:"authorizationId"`
}

// WrapIssuanceInfo 包含访问请求被受理时应该返回给客户端的信息
type WrapIssuanceInfo struct {
	Accepted bool   `json:"accepted"`         // 请求是否被受理
	WrapID   string `json:"wrapId,omitempty"` // 待定 wrap 令牌 ID（受理时）
}

// UsageOutputInfo 包含会话内一次成功使用后应该返回给客户端的信息
type UsageOutputInfo struct {
	OutputHash string `json:"outputHash"` // 本次使用的输出摘要
}

// RevocationInfo 包含撤销操作完成后应该返回给客户端的信息
type RevocationInfo struct {
	RevokedWraps int `json:"revokedWraps"` // 本次新标记为已撤销的 wrap 令牌数
}
