package authorization

import "time"

// AuthorizationRecord 表示授权账本上的一条授权记录。
// 记录除 `Revoked` 标志外不可变；`Revoked` 单调（只能 false→true），且记录永不删除以保留审计痕迹。
type AuthorizationRecord struct {
	AuthorizationID string    `json:"authorizationID"` // 授权 ID
	ResourceID      string    `json:"resourceID"`      // 资源 ID
	GranteeDid      string    `json:"granteeDid"`      // 被授权方 DID
	Expiry          time.Time `json:"expiry"`          // 授权过期时间
	Revoked         bool      `json:"revoked"`         // 是否已撤销
}
