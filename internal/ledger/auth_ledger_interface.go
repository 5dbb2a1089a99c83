package ledger

import (
	"time"

	"gitee.com/czyczk/wrapdek-sharing/pkg/models/authorization"
)

// IAuthLedger 定义了授权账本的访问对象接口。
// 账本为只增链式存储：授权记录发布后除撤销标志外不可变，撤销也不会删除记录。
type IAuthLedger interface {
	// PublishAuthorization 在账本上发布一条授权记录，自当前时刻起 `ttl` 内有效。
	//
	// 参数：
	//   资源 ID
	//   被授权方 DID
	//   有效期时长
	//
	// 返回：
	//   授权 ID
	PublishAuthorization(resourceID string, granteeDid string, ttl time.Duration) (string, error)

	// IsAuthorizationValid 检查授权是否有效：记录存在、未撤销、被授权方 DID 精确匹配且未过期。
	IsAuthorizationValid(authorizationID string, granteeDid string) (bool, error)

	// RevokeAuthorization 置撤销标志。记录不会被删除，以保留审计痕迹。幂等。
	RevokeAuthorization(authorizationID string) error

	// GetAuthorization 获取授权记录。记录不存在时返回 `errorcode.ErrorNotFound`。
	GetAuthorization(authorizationID string) (*authorization.AuthorizationRecord, error)
}
